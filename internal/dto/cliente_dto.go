package dto

import "github.com/shopspring/decimal"

type CrearClienteRequest struct {
	Nombre   string  `json:"nombre" validate:"required"`
	Telefono *string `json:"telefono"`
	Email    *string `json:"email"  validate:"omitempty,email"`
}

type ActualizarClienteRequest struct {
	Nombre   string  `json:"nombre"`
	Telefono *string `json:"telefono"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

// PagoCuentaRequest credits a payment against the customer's saldo.
type PagoCuentaRequest struct {
	Monto    decimal.Decimal `json:"monto"    validate:"required,gt=0"`
	Concepto string          `json:"concepto"`
}

type ClienteResponse struct {
	ID          string          `json:"id"`
	Nombre      string          `json:"nombre"`
	Telefono    *string         `json:"telefono"`
	Email       *string         `json:"email"`
	SaldoCuenta decimal.Decimal `json:"saldo_cuenta"`
	Activo      bool            `json:"activo"`
}
