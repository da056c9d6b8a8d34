package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovimientoCaja is a manual cash movement inside a turno.
// Tipo: "ingreso" | "egreso". Estado: "activa" | "eliminada".
// Movements are never hard-deleted — EliminarMovimiento flips Estado and
// every aggregation filters estado = 'activa'.
type MovimientoCaja struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TurnoID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	Tipo       string          `gorm:"type:varchar(10);not null"`
	Monto      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Concepto   string          `gorm:"not null"`
	EmpleadoID uuid.UUID       `gorm:"type:uuid;not null"`
	Estado     string          `gorm:"type:varchar(10);not null;default:'activa'"`
	CreatedAt  time.Time
}

func (MovimientoCaja) TableName() string { return "movimientos_caja" }

// ArqueoCaja stores one cash-count reconciliation for a turno: expected vs
// physically counted amounts per payment method.
// Estado: "correcto" (diferencia cero) | "con_diferencia".
// Clasificacion: "normal" | "advertencia" | "critico" by |desvío %|.
type ArqueoCaja struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TurnoID uuid.UUID `gorm:"type:uuid;index;not null"`

	EfectivoEsperado      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	EfectivoContado       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DebitoEsperado        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DebitoContado         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreditoEsperado       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreditoContado        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TransferenciaEsperado decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TransferenciaContado  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MercadoPagoEsperado   decimal.Decimal `gorm:"type:decimal(12,2);not null;column:mercadopago_esperado"`
	MercadoPagoContado    decimal.Decimal `gorm:"type:decimal(12,2);not null;column:mercadopago_contado"`

	DiferenciaTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado          string          `gorm:"type:varchar(20);not null"`
	Clasificacion   string          `gorm:"type:varchar(20);not null"`
	Observaciones   *string
	CreatedAt       time.Time
}

func (ArqueoCaja) TableName() string { return "arqueos_caja" }
