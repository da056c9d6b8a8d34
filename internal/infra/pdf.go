package infra

// pdf.go — ticket and turno-report PDF generation using go-pdf/fpdf.
// Tickets are A7-size thermal receipt-style; turno reports are A4 summaries
// with the per-method expected/counted/difference table of the arqueo.

import (
	"fmt"
	"os"
	"path/filepath"

	"tiendapos/internal/dto"
	"tiendapos/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateTicketPDF generates an internal PDF receipt for a completed Venta.
// storagePath is the directory where the PDF will be written (created if needed).
// Returns the absolute path to the generated file.
func GenerateTicketPDF(venta *model.Venta, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("ticket_%d.pdf", venta.NumeroTicket)
	filePath := filepath.Join(storagePath, fileName)

	// A7 ≈ 74mm × 105mm — close to thermal receipt paper
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, "TiendaPOS", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Comprobante de Compra", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Ticket N° %d", venta.NumeroTicket), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, venta.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range venta.Items {
		nombre := item.NombreProducto
		if len(nombre) > 22 {
			nombre = nombre[:21] + "…"
		}
		pdf.CellFormat(col1, 5, nombre, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+item.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 7)
	if !venta.Descuento.IsZero() {
		pdf.CellFormat(col1+col2, 5, "Descuento:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "-$"+venta.Descuento.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "$"+venta.Total.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1+col2, 4, "Pago ("+venta.MetodoPago+"):", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 4, "$"+venta.Total.StringFixed(2), "", 1, "R", false, 0, "")
	if venta.Vuelto != nil && !venta.Vuelto.IsZero() {
		pdf.CellFormat(col1+col2, 4, "Vuelto:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, "$"+venta.Vuelto.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "¡Gracias por su compra!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}

// GenerateReporteTurnoPDF writes an A4 summary of a closed turno: opening
// amount, sales totals, and the arqueo table (esperado / contado / diferencia
// per payment method). Returns the absolute path to the generated file.
func GenerateReporteTurnoPDF(rep *dto.ReporteTurnoResponse, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("turno_%s.pdf", rep.Turno.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Reporte de Turno", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Turno %s (%s) — %s", rep.Turno.ID, rep.Turno.Tipo, rep.Turno.EmpleadoNombre), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Apertura: $%s    Ventas: $%s (%d operaciones)",
		rep.Turno.MontoApertura.StringFixed(2),
		rep.Turno.TotalVentas.StringFixed(2),
		rep.Turno.CantidadVentas), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if rep.Arqueo != nil {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, "Arqueo de Caja", "", 1, "L", false, 0, "")

		colW := 45.0
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(colW, 7, "Método", "B", 0, "L", false, 0, "")
		pdf.CellFormat(colW, 7, "Esperado", "B", 0, "R", false, 0, "")
		pdf.CellFormat(colW, 7, "Contado", "B", 0, "R", false, 0, "")
		pdf.CellFormat(colW, 7, "Diferencia", "B", 1, "R", false, 0, "")

		rows := []struct {
			label                         string
			esperado, contado, diferencia string
		}{
			{"Efectivo", rep.Arqueo.Esperado.Efectivo.StringFixed(2), rep.Arqueo.Contado.Efectivo.StringFixed(2), rep.Arqueo.Diferencia.Efectivo.StringFixed(2)},
			{"Tarjeta débito", rep.Arqueo.Esperado.TarjetaDebito.StringFixed(2), rep.Arqueo.Contado.TarjetaDebito.StringFixed(2), rep.Arqueo.Diferencia.TarjetaDebito.StringFixed(2)},
			{"Tarjeta crédito", rep.Arqueo.Esperado.TarjetaCredito.StringFixed(2), rep.Arqueo.Contado.TarjetaCredito.StringFixed(2), rep.Arqueo.Diferencia.TarjetaCredito.StringFixed(2)},
			{"Transferencia", rep.Arqueo.Esperado.Transferencia.StringFixed(2), rep.Arqueo.Contado.Transferencia.StringFixed(2), rep.Arqueo.Diferencia.Transferencia.StringFixed(2)},
			{"MercadoPago", rep.Arqueo.Esperado.MercadoPago.StringFixed(2), rep.Arqueo.Contado.MercadoPago.StringFixed(2), rep.Arqueo.Diferencia.MercadoPago.StringFixed(2)},
		}
		pdf.SetFont("Helvetica", "", 9)
		for _, r := range rows {
			pdf.CellFormat(colW, 6, r.label, "", 0, "L", false, 0, "")
			pdf.CellFormat(colW, 6, "$"+r.esperado, "", 0, "R", false, 0, "")
			pdf.CellFormat(colW, 6, "$"+r.contado, "", 0, "R", false, 0, "")
			pdf.CellFormat(colW, 6, "$"+r.diferencia, "", 1, "R", false, 0, "")
		}

		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(colW, 8, "TOTAL", "T", 0, "L", false, 0, "")
		pdf.CellFormat(colW, 8, "$"+rep.Arqueo.Esperado.Total.StringFixed(2), "T", 0, "R", false, 0, "")
		pdf.CellFormat(colW, 8, "$"+rep.Arqueo.Contado.Total.StringFixed(2), "T", 0, "R", false, 0, "")
		pdf.CellFormat(colW, 8, "$"+rep.Arqueo.Diferencia.Total.StringFixed(2), "T", 1, "R", false, 0, "")

		pdf.Ln(2)
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, fmt.Sprintf("Estado: %s (%s)", rep.Arqueo.Estado, rep.Arqueo.Clasificacion), "", 1, "L", false, 0, "")
		if rep.Arqueo.Observaciones != nil && *rep.Arqueo.Observaciones != "" {
			pdf.MultiCell(0, 6, "Observaciones: "+*rep.Arqueo.Observaciones, "", "L", false)
		}
	}

	if len(rep.Movimientos) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, "Movimientos Manuales", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, m := range rep.Movimientos {
			signo := "+"
			if m.Tipo == "egreso" {
				signo = "-"
			}
			pdf.CellFormat(0, 6, fmt.Sprintf("%s$%s  %s", signo, m.Monto.StringFixed(2), m.Concepto), "", 1, "L", false, 0, "")
		}
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
