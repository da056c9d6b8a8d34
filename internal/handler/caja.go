package handler

import (
	"net/http"
	"strconv"

	"tiendapos/internal/apierror"
	"tiendapos/internal/dto"
	"tiendapos/internal/infra"
	"tiendapos/internal/middleware"
	"tiendapos/internal/service"

	"github.com/gin-gonic/gin"
)

type CajaHandler struct {
	svc            service.TurnoService
	pdfStoragePath string
}

func NewCajaHandler(svc service.TurnoService, pdfStoragePath string) *CajaHandler {
	return &CajaHandler{svc: svc, pdfStoragePath: pdfStoragePath}
}

// AbrirTurno godoc
// @Summary      Abrir turno de caja
// @Description  Abre un turno (mañana/tarde) con el monto inicial. Falla con 409 si ya hay un turno activo.
// @Tags         caja
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AbrirTurnoRequest true "Tipo y monto de apertura"
// @Success      201  {object} dto.TurnoResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/caja/turnos [post]
func (h *CajaHandler) AbrirTurno(c *gin.Context) {
	var req dto.AbrirTurnoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	emp := middleware.GetEmpleado(c)
	resp, err := h.svc.Abrir(c.Request.Context(), emp.ID, emp.Nombre, req)
	if err != nil {
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// TurnoActivo godoc
// @Summary      Obtener el turno activo
// @Tags         caja
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.TurnoResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/caja/turnos/activo [get]
func (h *CajaHandler) TurnoActivo(c *gin.Context) {
	resp, err := h.svc.ObtenerActivo(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial godoc
// @Summary      Historial de turnos cerrados
// @Tags         caja
// @Produce      json
// @Security     BearerAuth
// @Param        page  query int false "Página (default 1)"
// @Param        limit query int false "Registros por página (default 20)"
// @Success      200 {object} map[string]interface{}
// @Router       /v1/caja/turnos [get]
func (h *CajaHandler) Historial(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	turnos, total, err := h.svc.Historial(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar turnos"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  turnos,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// RegistrarMovimiento godoc
// @Summary      Registrar ingreso o egreso manual
// @Tags         caja
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.MovimientoCajaRequest true "Tipo, monto y concepto"
// @Success      201  {object} dto.MovimientoCajaResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/caja/movimientos [post]
func (h *CajaHandler) RegistrarMovimiento(c *gin.Context) {
	var req dto.MovimientoCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	emp := middleware.GetEmpleado(c)
	resp, err := h.svc.RegistrarMovimiento(c.Request.Context(), emp.ID, req)
	if err != nil {
		status := http.StatusBadRequest
		if err == service.ErrSinTurnoActivo {
			status = http.StatusConflict
		}
		c.JSON(status, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// EliminarMovimiento godoc
// @Summary      Eliminar un movimiento manual
// @Description  Baja lógica: el movimiento pasa a estado eliminada y deja de contar en el arqueo. Solo sobre el turno activo.
// @Tags         caja
// @Security     BearerAuth
// @Param        id path string true "UUID del movimiento"
// @Success      204
// @Failure      400 {object} apierror.APIError
// @Router       /v1/caja/movimientos/{id} [delete]
func (h *CajaHandler) EliminarMovimiento(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.EliminarMovimiento(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// RealizarArqueo godoc
// @Summary      Arqueo de caja y cierre de turno
// @Description  Concilia el conteo ciego contra lo esperado por método de pago, clasifica el desvío y cierra el turno. Un desvío crítico exige observaciones.
// @Tags         caja
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ArqueoRequest true "Montos contados"
// @Success      200  {object} dto.ArqueoResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/caja/arqueo [post]
func (h *CajaHandler) RealizarArqueo(c *gin.Context) {
	var req dto.ArqueoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RealizarArqueo(c.Request.Context(), req)
	if err != nil {
		status := http.StatusBadRequest
		if err == service.ErrSinTurnoActivo {
			status = http.StatusConflict
		}
		c.JSON(status, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReporteTurno godoc
// @Summary      Reporte completo de un turno
// @Tags         caja
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del turno"
// @Success      200 {object} dto.ReporteTurnoResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/caja/turnos/{id}/reporte [get]
func (h *CajaHandler) ReporteTurno(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ReporteTurno(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReporteTurnoPDF godoc
// @Summary      Reporte de turno en PDF
// @Tags         caja
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "UUID del turno"
// @Success      200 {file} binary
// @Failure      404 {object} apierror.APIError
// @Router       /v1/caja/turnos/{id}/reporte.pdf [get]
func (h *CajaHandler) ReporteTurnoPDF(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rep, err := h.svc.ReporteTurno(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	path, err := infra.GenerateReporteTurnoPDF(rep, h.pdfStoragePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al generar el PDF"))
		return
	}
	c.FileAttachment(path, "reporte_turno.pdf")
}
