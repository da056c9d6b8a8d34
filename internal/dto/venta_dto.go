package dto

import "github.com/shopspring/decimal"

// ─── Requests ────────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,gt=0"`
}

// DescuentoRequest describes the discount to apply over the cart subtotal.
// percentage: valor ≤ 100, computed as subtotal × valor / 100.
// amount: valor taken as-is, must be < subtotal.
// The discount is always derived from the original subtotal, so re-sending
// the same request can never compound it.
type DescuentoRequest struct {
	Tipo  string          `json:"tipo"  validate:"required,oneof=percentage amount"`
	Valor decimal.Decimal `json:"valor" validate:"min=0"`
}

type RegistrarVentaRequest struct {
	Items         []ItemVentaRequest `json:"items"       validate:"required,min=1,dive"`
	Descuento     *DescuentoRequest  `json:"descuento"`
	MetodoPago    string             `json:"metodo_pago" validate:"required,oneof=efectivo tarjeta transferencia mercadopago cuenta_corriente"`
	TipoTarjeta   *string            `json:"tipo_tarjeta"  validate:"omitempty,oneof=debito credito"`
	MontoRecibido *decimal.Decimal   `json:"monto_recibido"`
	ClienteID     *string            `json:"cliente_id"    validate:"omitempty,uuid"`
	// OperacionID makes the request idempotent: a retry after a timeout
	// returns the original sale instead of inserting a duplicate.
	OperacionID *string `json:"operacion_id"`
}

type AnularVentaRequest struct {
	Motivo string `json:"motivo" validate:"required"`
}

type VentaFilter struct {
	Fecha   string `form:"fecha"` // YYYY-MM-DD, default hoy
	Estado  string `form:"estado"`
	TurnoID string `form:"turno_id"`
	Page    int    `form:"page"`
	Limit   int    `form:"limit"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ProductoID     string          `json:"producto_id"`
	Nombre         string          `json:"nombre"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID            string              `json:"id"`
	NumeroTicket  int                 `json:"numero_ticket"`
	TurnoID       string              `json:"turno_id"`
	EmpleadoID    string              `json:"empleado_id"`
	ClienteID     *string             `json:"cliente_id,omitempty"`
	Items         []ItemVentaResponse `json:"items"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Descuento     decimal.Decimal     `json:"descuento"`
	Total         decimal.Decimal     `json:"total"`
	MetodoPago    string              `json:"metodo_pago"`
	TipoTarjeta   *string             `json:"tipo_tarjeta,omitempty"`
	MontoRecibido *decimal.Decimal    `json:"monto_recibido,omitempty"`
	Vuelto        *decimal.Decimal    `json:"vuelto,omitempty"`
	Estado        string              `json:"estado"`
	CreatedAt     string              `json:"created_at"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
