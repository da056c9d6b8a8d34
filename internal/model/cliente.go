package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cliente holds a customer with a cuenta corriente balance.
// SaldoCuenta goes negative when the customer owes money; sales on
// cuenta_corriente decrement it inside the sale transaction and manual
// payments credit it back.
type Cliente struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string    `gorm:"index;not null"`
	Telefono    *string
	Email       *string
	SaldoCuenta decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Activo      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Cliente) TableName() string { return "clientes" }
