package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Turno represents a cashier's bounded working session.
// Estado: "activo" | "cerrado". Tipo: "manana" | "tarde".
//
// At most one turno is activo at a time — enforced by a partial unique
// index (see infra.applySchemaPatches), not by a client-side check.
// TotalVentas and CantidadVentas are updated with atomic SQL increments
// inside the sale transaction and audited by the reconciliation cron.
type Turno struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Tipo           string          `gorm:"type:varchar(10);not null"`
	EmpleadoID     uuid.UUID       `gorm:"type:uuid;not null"`
	EmpleadoNombre string          `gorm:"not null"`
	MontoApertura  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalVentas    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CantidadVentas int             `gorm:"not null;default:0"`
	Estado         string          `gorm:"type:varchar(10);not null;default:'activo'"`
	Observaciones  *string
	AbiertoEn      time.Time
	CerradoEn      *time.Time

	Movimientos []MovimientoCaja `gorm:"foreignKey:TurnoID"`
}

func (Turno) TableName() string { return "turnos" }
