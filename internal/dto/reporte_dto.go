package dto

import "github.com/shopspring/decimal"

type RangoReporteFilter struct {
	Desde string `form:"desde" validate:"required"` // YYYY-MM-DD
	Hasta string `form:"hasta" validate:"required"`
}

type VentasPorDia struct {
	Fecha string          `json:"fecha"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type TopProducto struct {
	ProductoID string          `json:"producto_id"`
	Nombre     string          `json:"nombre"`
	Cantidad   int             `json:"cantidad"`
	Total      decimal.Decimal `json:"total"`
}

type ResumenVentasResponse struct {
	Desde          string          `json:"desde"`
	Hasta          string          `json:"hasta"`
	Total          decimal.Decimal `json:"total"`
	CantidadVentas int             `json:"cantidad_ventas"`
	PorMetodo      MontosPorMetodo `json:"por_metodo"`
	PorDia         []VentasPorDia  `json:"por_dia"`
	TopProductos   []TopProducto   `json:"top_productos"`
}

type DashboardResponse struct {
	VentasHoy      decimal.Decimal `json:"ventas_hoy"`
	CantidadHoy    int             `json:"cantidad_hoy"`
	TurnoActivo    *TurnoResponse  `json:"turno_activo,omitempty"`
	StockBajoCount int64           `json:"stock_bajo_count"`
}
