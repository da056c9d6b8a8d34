package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta is created atomically with its items, the stock decrements and the
// turno total update, all in one transaction.
// Estado: "completada" | "anulada"
// MetodoPago: "efectivo" | "tarjeta" | "transferencia" | "mercadopago" | "cuenta_corriente"
// TipoTarjeta (only for tarjeta): "debito" | "credito"
type Venta struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroTicket  int              `gorm:"uniqueIndex;not null"`
	TurnoID       uuid.UUID        `gorm:"type:uuid;index;not null"`
	EmpleadoID    uuid.UUID        `gorm:"type:uuid;not null"`
	ClienteID     *uuid.UUID       `gorm:"type:uuid;index"`
	Subtotal      decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Descuento     decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	Total         decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	MetodoPago    string           `gorm:"type:varchar(20);not null"`
	TipoTarjeta   *string          `gorm:"type:varchar(10)"`
	MontoRecibido *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Vuelto        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Estado        string           `gorm:"type:varchar(20);not null;default:'completada'"`
	// OperacionID is the client-supplied idempotency key — a retry after a
	// timeout returns the original sale instead of double-inserting.
	OperacionID *string `gorm:"uniqueIndex"`
	CreatedAt   time.Time

	Items    []VentaItem `gorm:"foreignKey:VentaID"`
	Empleado *Empleado   `gorm:"foreignKey:EmpleadoID"`
	Cliente  *Cliente    `gorm:"foreignKey:ClienteID"`
}

func (Venta) TableName() string { return "ventas" }

// VentaItem is a frozen line: price and name are copied from the product at
// sale time so later catalog edits never rewrite history.
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	NombreProducto string          `gorm:"not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (VentaItem) TableName() string { return "venta_items" }
