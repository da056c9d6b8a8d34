package dto

import "github.com/shopspring/decimal"

type CrearProductoRequest struct {
	Nombre       string          `json:"nombre"        validate:"required"`
	CodigoBarras *string         `json:"codigo_barras"`
	Categoria    string          `json:"categoria"`
	Precio       decimal.Decimal `json:"precio"        validate:"required,gt=0"`
	Stock        int             `json:"stock"         validate:"min=0"`
	StockMinimo  int             `json:"stock_minimo"  validate:"min=0"`
	UnidadMedida string          `json:"unidad_medida"`
}

type ActualizarProductoRequest struct {
	Nombre       string           `json:"nombre"`
	CodigoBarras *string          `json:"codigo_barras"`
	Categoria    string           `json:"categoria"`
	Precio       *decimal.Decimal `json:"precio"       validate:"omitempty,gt=0"`
	StockMinimo  *int             `json:"stock_minimo" validate:"omitempty,min=0"`
	UnidadMedida string           `json:"unidad_medida"`
}

// AjustarStockRequest applies a signed delta with an audit reason.
type AjustarStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Motivo string `json:"motivo" validate:"required"`
}

type ProductoFilter struct {
	Nombre    string `form:"nombre"`
	Categoria string `form:"categoria"`
	Barcode   string `form:"barcode"`
	Activo    string `form:"activo"` // "", "false", "all"
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}

type ProductoResponse struct {
	ID           string          `json:"id"`
	Nombre       string          `json:"nombre"`
	CodigoBarras *string         `json:"codigo_barras"`
	Categoria    string          `json:"categoria"`
	Precio       decimal.Decimal `json:"precio"`
	Stock        int             `json:"stock"`
	StockMinimo  int             `json:"stock_minimo"`
	UnidadMedida string          `json:"unidad_medida"`
	Activo       bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// ConsultaPrecioResponse is the cached barcode price-check payload.
type ConsultaPrecioResponse struct {
	Nombre          string          `json:"nombre"`
	Precio          decimal.Decimal `json:"precio"`
	StockDisponible int             `json:"stock_disponible"`
	Categoria       string          `json:"categoria"`
}
