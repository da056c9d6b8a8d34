package handler

import (
	"net/http"

	"tiendapos/internal/apierror"
	"tiendapos/internal/dto"
	"tiendapos/internal/service"

	"github.com/gin-gonic/gin"
)

type EmpleadosHandler struct{ svc service.AuthService }

func NewEmpleadosHandler(svc service.AuthService) *EmpleadosHandler {
	return &EmpleadosHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear empleado
// @Description  Alta de empleado con rol y, opcionalmente, una lista explícita de módulos que reemplaza los permisos del rol.
// @Tags         empleados
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearEmpleadoRequest true "Datos del empleado"
// @Success      201  {object} dto.EmpleadoResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/empleados [post]
func (h *EmpleadosHandler) Crear(c *gin.Context) {
	var req dto.CrearEmpleadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearEmpleado(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Listar empleados
// @Tags         empleados
// @Produce      json
// @Security     BearerAuth
// @Param        incluir_inactivos query bool false "Incluir empleados dados de baja"
// @Success      200 {array} dto.EmpleadoResponse
// @Router       /v1/empleados [get]
func (h *EmpleadosHandler) Listar(c *gin.Context) {
	incluirInactivos := c.Query("incluir_inactivos") == "true"
	resp, err := h.svc.ListarEmpleados(c.Request.Context(), incluirInactivos)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar empleados"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary      Actualizar empleado
// @Description  Modifica datos, rol o la lista explícita de módulos. Una lista vacía restaura los permisos del rol.
// @Tags         empleados
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID del empleado"
// @Param        body body dto.ActualizarEmpleadoRequest true "Campos a actualizar"
// @Success      200  {object} dto.EmpleadoResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/empleados/{id} [put]
func (h *EmpleadosHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ActualizarEmpleadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarEmpleado(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Desactivar godoc
// @Summary      Dar de baja un empleado
// @Tags         empleados
// @Security     BearerAuth
// @Param        id path string true "UUID del empleado"
// @Success      204
// @Router       /v1/empleados/{id} [delete]
func (h *EmpleadosHandler) Desactivar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.DesactivarEmpleado(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// Reactivar godoc
// @Summary      Reactivar un empleado dado de baja
// @Tags         empleados
// @Security     BearerAuth
// @Param        id path string true "UUID del empleado"
// @Success      204
// @Router       /v1/empleados/{id}/reactivar [post]
func (h *EmpleadosHandler) Reactivar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.ReactivarEmpleado(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}
