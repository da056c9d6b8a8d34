package dto

import "github.com/shopspring/decimal"

// ─── Requests ────────────────────────────────────────────────────────────────

type AbrirTurnoRequest struct {
	Tipo          string          `json:"tipo"           validate:"required,oneof=manana tarde"`
	MontoApertura decimal.Decimal `json:"monto_apertura" validate:"min=0"`
}

type MovimientoCajaRequest struct {
	Tipo     string          `json:"tipo"     validate:"required,oneof=ingreso egreso"`
	Monto    decimal.Decimal `json:"monto"    validate:"required,gt=0"`
	Concepto string          `json:"concepto" validate:"required"`
}

// DeclaracionArqueo is the blind count: physically counted money per method.
type DeclaracionArqueo struct {
	Efectivo       decimal.Decimal `json:"efectivo"        validate:"min=0"`
	TarjetaDebito  decimal.Decimal `json:"tarjeta_debito"  validate:"min=0"`
	TarjetaCredito decimal.Decimal `json:"tarjeta_credito" validate:"min=0"`
	Transferencia  decimal.Decimal `json:"transferencia"   validate:"min=0"`
	MercadoPago    decimal.Decimal `json:"mercadopago"     validate:"min=0"`
}

type ArqueoRequest struct {
	Contado       DeclaracionArqueo `json:"contado" validate:"required"`
	Observaciones *string           `json:"observaciones"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

// MontosPorMetodo carries one amount per payment method plus the sum.
type MontosPorMetodo struct {
	Efectivo       decimal.Decimal `json:"efectivo"`
	TarjetaDebito  decimal.Decimal `json:"tarjeta_debito"`
	TarjetaCredito decimal.Decimal `json:"tarjeta_credito"`
	Transferencia  decimal.Decimal `json:"transferencia"`
	MercadoPago    decimal.Decimal `json:"mercadopago"`
	Total          decimal.Decimal `json:"total"`
}

// Sum fills Total from the five buckets.
func (m *MontosPorMetodo) Sum() {
	m.Total = m.Efectivo.Add(m.TarjetaDebito).Add(m.TarjetaCredito).
		Add(m.Transferencia).Add(m.MercadoPago)
}

type ArqueoResponse struct {
	TurnoID       string          `json:"turno_id"`
	Esperado      MontosPorMetodo `json:"esperado"`
	Contado       MontosPorMetodo `json:"contado"`
	Diferencia    MontosPorMetodo `json:"diferencia"`
	Estado        string          `json:"estado"` // correcto | con_diferencia
	Clasificacion string          `json:"clasificacion"`
	Observaciones *string         `json:"observaciones,omitempty"`
}

type MovimientoCajaResponse struct {
	ID        string          `json:"id"`
	TurnoID   string          `json:"turno_id"`
	Tipo      string          `json:"tipo"`
	Monto     decimal.Decimal `json:"monto"`
	Concepto  string          `json:"concepto"`
	Estado    string          `json:"estado"`
	CreatedAt string          `json:"created_at"`
}

type TurnoResponse struct {
	ID             string          `json:"id"`
	Tipo           string          `json:"tipo"`
	EmpleadoNombre string          `json:"empleado_nombre"`
	MontoApertura  decimal.Decimal `json:"monto_apertura"`
	TotalVentas    decimal.Decimal `json:"total_ventas"`
	CantidadVentas int             `json:"cantidad_ventas"`
	Estado         string          `json:"estado"`
	AbiertoEn      string          `json:"abierto_en"`
	CerradoEn      *string         `json:"cerrado_en,omitempty"`
	Observaciones  *string         `json:"observaciones,omitempty"`
}

// ReporteTurnoResponse is the full session report: expectations per method
// plus manual movements and the arqueo when one exists.
type ReporteTurnoResponse struct {
	Turno       TurnoResponse            `json:"turno"`
	Esperado    MontosPorMetodo          `json:"esperado"`
	Movimientos []MovimientoCajaResponse `json:"movimientos"`
	Arqueo      *ArqueoResponse          `json:"arqueo,omitempty"`
}
