package repository

import (
	"context"

	"tiendapos/internal/dto"
	"tiendapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment-method bucket keys used by arqueo aggregation. Card sales split
// into debito/credito by tipo_tarjeta; missing tipo_tarjeta counts as debito.
const (
	MetodoEfectivo        = "efectivo"
	MetodoTarjetaDebito   = "tarjeta_debito"
	MetodoTarjetaCredito  = "tarjeta_credito"
	MetodoTransferencia   = "transferencia"
	MetodoMercadoPago     = "mercadopago"
	MetodoCuentaCorriente = "cuenta_corriente"
)

type VentaRepository interface {
	DB() *gorm.DB // exposes the DB so the service can open transactions
	Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	FindByOperacionID(ctx context.Context, operacionID string) (*model.Venta, error)
	NextTicketNumber(ctx context.Context, tx *gorm.DB) (int, error)
	UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error
	List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error)

	// Aggregations
	SumPorMetodo(ctx context.Context, turnoID uuid.UUID) (map[string]decimal.Decimal, error)
	TotalesPorTurno(ctx context.Context, turnoID uuid.UUID) (decimal.Decimal, int, error)
	ResumenRango(ctx context.Context, desde, hasta string) (*dto.ResumenVentasResponse, error)
	TotalesHoy(ctx context.Context) (decimal.Decimal, int, error)
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return tx.WithContext(ctx).Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Items").First(&v, id).Error
	return &v, err
}

func (r *ventaRepo) FindByOperacionID(ctx context.Context, operacionID string) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Items").Where("operacion_id = ?", operacionID).First(&v).Error
	return &v, err
}

func (r *ventaRepo) NextTicketNumber(ctx context.Context, tx *gorm.DB) (int, error) {
	// PostgreSQL sequence — atomic, gapless enough for tickets
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('ventas_numero_ticket_seq')").Scan(&num).Error
	return num, err
}

func (r *ventaRepo) UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error {
	return tx.Model(&model.Venta{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *ventaRepo) List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Venta{})

	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.TurnoID != "" {
		q = q.Where("turno_id = ?", filter.TurnoID)
	}
	if filter.Fecha != "" {
		q = q.Where("DATE(created_at) = ?", filter.Fecha)
	} else if filter.TurnoID == "" {
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ventas).Error

	return ventas, total, err
}

// SumPorMetodo groups completed sales of a turno into payment-method
// buckets, splitting card sales by tipo_tarjeta.
func (r *ventaRepo) SumPorMetodo(ctx context.Context, turnoID uuid.UUID) (map[string]decimal.Decimal, error) {
	type row struct {
		MetodoPago  string
		TipoTarjeta *string
		Total       decimal.Decimal
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Raw(`SELECT metodo_pago, tipo_tarjeta, COALESCE(SUM(total), 0) AS total
		     FROM ventas
		     WHERE turno_id = ? AND estado = 'completada'
		     GROUP BY metodo_pago, tipo_tarjeta`, turnoID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	sums := map[string]decimal.Decimal{
		MetodoEfectivo:        decimal.Zero,
		MetodoTarjetaDebito:   decimal.Zero,
		MetodoTarjetaCredito:  decimal.Zero,
		MetodoTransferencia:   decimal.Zero,
		MetodoMercadoPago:     decimal.Zero,
		MetodoCuentaCorriente: decimal.Zero,
	}
	for _, rw := range rows {
		key := rw.MetodoPago
		if key == "tarjeta" {
			if rw.TipoTarjeta != nil && *rw.TipoTarjeta == "credito" {
				key = MetodoTarjetaCredito
			} else {
				key = MetodoTarjetaDebito
			}
		}
		sums[key] = sums[key].Add(rw.Total)
	}
	return sums, nil
}

func (r *ventaRepo) TotalesPorTurno(ctx context.Context, turnoID uuid.UUID) (decimal.Decimal, int, error) {
	type row struct {
		Total decimal.Decimal
		Count int
	}
	var res row
	err := r.db.WithContext(ctx).
		Raw(`SELECT COALESCE(SUM(total), 0) AS total, COUNT(*) AS count
		     FROM ventas WHERE turno_id = ? AND estado = 'completada'`, turnoID).
		Scan(&res).Error
	return res.Total, res.Count, err
}

func (r *ventaRepo) TotalesHoy(ctx context.Context) (decimal.Decimal, int, error) {
	type row struct {
		Total decimal.Decimal
		Count int
	}
	var res row
	err := r.db.WithContext(ctx).
		Raw(`SELECT COALESCE(SUM(total), 0) AS total, COUNT(*) AS count
		     FROM ventas WHERE estado = 'completada' AND DATE(created_at) = CURRENT_DATE`).
		Scan(&res).Error
	return res.Total, res.Count, err
}

func (r *ventaRepo) ResumenRango(ctx context.Context, desde, hasta string) (*dto.ResumenVentasResponse, error) {
	resumen := &dto.ResumenVentasResponse{Desde: desde, Hasta: hasta}

	type totalRow struct {
		Total decimal.Decimal
		Count int
	}
	var tot totalRow
	if err := r.db.WithContext(ctx).
		Raw(`SELECT COALESCE(SUM(total), 0) AS total, COUNT(*) AS count
		     FROM ventas
		     WHERE estado = 'completada' AND DATE(created_at) BETWEEN ? AND ?`, desde, hasta).
		Scan(&tot).Error; err != nil {
		return nil, err
	}
	resumen.Total = tot.Total
	resumen.CantidadVentas = tot.Count

	type metodoRow struct {
		MetodoPago  string
		TipoTarjeta *string
		Total       decimal.Decimal
	}
	var metodos []metodoRow
	if err := r.db.WithContext(ctx).
		Raw(`SELECT metodo_pago, tipo_tarjeta, COALESCE(SUM(total), 0) AS total
		     FROM ventas
		     WHERE estado = 'completada' AND DATE(created_at) BETWEEN ? AND ?
		     GROUP BY metodo_pago, tipo_tarjeta`, desde, hasta).
		Scan(&metodos).Error; err != nil {
		return nil, err
	}
	for _, m := range metodos {
		switch {
		case m.MetodoPago == "efectivo":
			resumen.PorMetodo.Efectivo = resumen.PorMetodo.Efectivo.Add(m.Total)
		case m.MetodoPago == "tarjeta" && m.TipoTarjeta != nil && *m.TipoTarjeta == "credito":
			resumen.PorMetodo.TarjetaCredito = resumen.PorMetodo.TarjetaCredito.Add(m.Total)
		case m.MetodoPago == "tarjeta":
			resumen.PorMetodo.TarjetaDebito = resumen.PorMetodo.TarjetaDebito.Add(m.Total)
		case m.MetodoPago == "transferencia":
			resumen.PorMetodo.Transferencia = resumen.PorMetodo.Transferencia.Add(m.Total)
		case m.MetodoPago == "mercadopago":
			resumen.PorMetodo.MercadoPago = resumen.PorMetodo.MercadoPago.Add(m.Total)
		}
	}
	resumen.PorMetodo.Sum()

	var porDia []dto.VentasPorDia
	if err := r.db.WithContext(ctx).
		Raw(`SELECT TO_CHAR(DATE(created_at), 'YYYY-MM-DD') AS fecha,
		            COALESCE(SUM(total), 0) AS total, COUNT(*) AS count
		     FROM ventas
		     WHERE estado = 'completada' AND DATE(created_at) BETWEEN ? AND ?
		     GROUP BY DATE(created_at) ORDER BY DATE(created_at)`, desde, hasta).
		Scan(&porDia).Error; err != nil {
		return nil, err
	}
	resumen.PorDia = porDia

	var top []dto.TopProducto
	if err := r.db.WithContext(ctx).
		Raw(`SELECT vi.producto_id, vi.nombre_producto AS nombre,
		            SUM(vi.cantidad) AS cantidad, COALESCE(SUM(vi.subtotal), 0) AS total
		     FROM venta_items vi
		     JOIN ventas v ON v.id = vi.venta_id
		     WHERE v.estado = 'completada' AND DATE(v.created_at) BETWEEN ? AND ?
		     GROUP BY vi.producto_id, vi.nombre_producto
		     ORDER BY cantidad DESC LIMIT 10`, desde, hasta).
		Scan(&top).Error; err != nil {
		return nil, err
	}
	resumen.TopProductos = top

	return resumen, nil
}
