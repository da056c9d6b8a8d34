package handler

import (
	"net/http"

	"tiendapos/internal/apierror"
	"tiendapos/internal/dto"
	"tiendapos/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// ResumenVentas godoc
// @Summary      Resumen de ventas por rango de fechas
// @Description  Totales, desglose por método de pago, ventas por día y top de productos. Cacheado en Redis por 3 minutos.
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Param        desde query string true "Fecha inicial YYYY-MM-DD"
// @Param        hasta query string true "Fecha final YYYY-MM-DD"
// @Success      200 {object} dto.ResumenVentasResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/reportes/ventas [get]
func (h *ReportesHandler) ResumenVentas(c *gin.Context) {
	var filter dto.RangoReporteFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if filter.Desde == "" || filter.Hasta == "" {
		c.JSON(http.StatusBadRequest, apierror.New("desde y hasta son requeridos"))
		return
	}
	resp, err := h.svc.ResumenVentas(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al generar el resumen"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Dashboard godoc
// @Summary      Snapshot del dashboard
// @Description  Ventas de hoy, turno activo y productos con stock bajo.
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.DashboardResponse
// @Router       /v1/reportes/dashboard [get]
func (h *ReportesHandler) Dashboard(c *gin.Context) {
	resp, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al generar el dashboard"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
