package repository

import (
	"context"

	"tiendapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TurnoRepository interface {
	DB() *gorm.DB // exposes the DB so the service can open transactions
	CreateTurno(ctx context.Context, t *model.Turno) error
	FindActivo(ctx context.Context) (*model.Turno, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Turno, error)
	// UpdateTurnoTx saves the turno inside the arqueo transaction, so the
	// close and its arqueo row commit or roll back together.
	UpdateTurnoTx(tx *gorm.DB, t *model.Turno) error
	ListCerrados(ctx context.Context, page, limit int) ([]model.Turno, int64, error)
	// IncrementarTotalesTx bumps total_ventas/cantidad_ventas with atomic
	// SQL inside the sale transaction — never read-modify-write.
	IncrementarTotalesTx(tx *gorm.DB, turnoID uuid.UUID, monto decimal.Decimal, deltaVentas int) error
	// SetTotales overwrites the running totals — used only by the
	// reconciliation worker after recomputing from the ventas table.
	SetTotales(ctx context.Context, turnoID uuid.UUID, total decimal.Decimal, cantidad int) error
	ListRecientes(ctx context.Context, limit int) ([]model.Turno, error)

	// Movimientos manuales
	CreateMovimiento(ctx context.Context, m *model.MovimientoCaja) error
	FindMovimientoByID(ctx context.Context, id uuid.UUID) (*model.MovimientoCaja, error)
	ListMovimientos(ctx context.Context, turnoID uuid.UUID) ([]model.MovimientoCaja, error)
	SoftDeleteMovimiento(ctx context.Context, id uuid.UUID) error
	// SumMovimientos returns (ingresos, egresos) over estado='activa'.
	SumMovimientos(ctx context.Context, turnoID uuid.UUID) (decimal.Decimal, decimal.Decimal, error)

	// Arqueos
	// CreateArqueoTx inserts inside the close transaction; the unique index
	// on arqueos_caja.turno_id rejects a second arqueo for the same turno.
	CreateArqueoTx(tx *gorm.DB, a *model.ArqueoCaja) error
	FindArqueoByTurno(ctx context.Context, turnoID uuid.UUID) (*model.ArqueoCaja, error)
}

type turnoRepo struct{ db *gorm.DB }

func NewTurnoRepository(db *gorm.DB) TurnoRepository { return &turnoRepo{db: db} }

func (r *turnoRepo) DB() *gorm.DB { return r.db }

func (r *turnoRepo) CreateTurno(ctx context.Context, t *model.Turno) error {
	// The partial unique index idx_turnos_activo rejects a second activo
	// row, so concurrent opens cannot both succeed.
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *turnoRepo) FindActivo(ctx context.Context) (*model.Turno, error) {
	var t model.Turno
	err := r.db.WithContext(ctx).Where("estado = 'activo'").First(&t).Error
	return &t, err
}

func (r *turnoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Turno, error) {
	var t model.Turno
	err := r.db.WithContext(ctx).First(&t, id).Error
	return &t, err
}

func (r *turnoRepo) UpdateTurnoTx(tx *gorm.DB, t *model.Turno) error {
	return tx.Save(t).Error
}

func (r *turnoRepo) ListCerrados(ctx context.Context, page, limit int) ([]model.Turno, int64, error) {
	var turnos []model.Turno
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Turno{}).Where("estado = 'cerrado'")
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("abierto_en DESC").Offset((page - 1) * limit).Limit(limit).Find(&turnos).Error
	return turnos, total, err
}

func (r *turnoRepo) IncrementarTotalesTx(tx *gorm.DB, turnoID uuid.UUID, monto decimal.Decimal, deltaVentas int) error {
	return tx.Model(&model.Turno{}).Where("id = ?", turnoID).
		Updates(map[string]interface{}{
			"total_ventas":    gorm.Expr("total_ventas + ?", monto),
			"cantidad_ventas": gorm.Expr("cantidad_ventas + ?", deltaVentas),
		}).Error
}

func (r *turnoRepo) SetTotales(ctx context.Context, turnoID uuid.UUID, total decimal.Decimal, cantidad int) error {
	return r.db.WithContext(ctx).Model(&model.Turno{}).Where("id = ?", turnoID).
		Updates(map[string]interface{}{
			"total_ventas":    total,
			"cantidad_ventas": cantidad,
		}).Error
}

func (r *turnoRepo) ListRecientes(ctx context.Context, limit int) ([]model.Turno, error) {
	var turnos []model.Turno
	err := r.db.WithContext(ctx).Order("abierto_en DESC").Limit(limit).Find(&turnos).Error
	return turnos, err
}

// ── Movimientos ──────────────────────────────────────────────────────────────

func (r *turnoRepo) CreateMovimiento(ctx context.Context, m *model.MovimientoCaja) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *turnoRepo) FindMovimientoByID(ctx context.Context, id uuid.UUID) (*model.MovimientoCaja, error) {
	var m model.MovimientoCaja
	err := r.db.WithContext(ctx).First(&m, id).Error
	return &m, err
}

func (r *turnoRepo) ListMovimientos(ctx context.Context, turnoID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).
		Where("turno_id = ? AND estado = 'activa'", turnoID).
		Order("created_at ASC").Find(&movs).Error
	return movs, err
}

func (r *turnoRepo) SoftDeleteMovimiento(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.MovimientoCaja{}).
		Where("id = ?", id).Update("estado", "eliminada").Error
}

func (r *turnoRepo) SumMovimientos(ctx context.Context, turnoID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	type row struct {
		Tipo  string
		Total decimal.Decimal
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Raw(`SELECT tipo, COALESCE(SUM(monto), 0) AS total
		     FROM movimientos_caja
		     WHERE turno_id = ? AND estado = 'activa'
		     GROUP BY tipo`, turnoID).
		Scan(&rows).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	ingresos, egresos := decimal.Zero, decimal.Zero
	for _, rw := range rows {
		switch rw.Tipo {
		case "ingreso":
			ingresos = rw.Total
		case "egreso":
			egresos = rw.Total
		}
	}
	return ingresos, egresos, nil
}

// ── Arqueos ──────────────────────────────────────────────────────────────────

func (r *turnoRepo) CreateArqueoTx(tx *gorm.DB, a *model.ArqueoCaja) error {
	return tx.Create(a).Error
}

func (r *turnoRepo) FindArqueoByTurno(ctx context.Context, turnoID uuid.UUID) (*model.ArqueoCaja, error) {
	var a model.ArqueoCaja
	err := r.db.WithContext(ctx).Where("turno_id = ?", turnoID).Order("created_at DESC").First(&a).Error
	return &a, err
}
