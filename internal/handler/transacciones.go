package handler

import (
	"net/http"

	"tiendapos/internal/apierror"
	"tiendapos/internal/dto"
	"tiendapos/internal/service"

	"github.com/gin-gonic/gin"
)

type TransaccionesHandler struct{ svc service.TransaccionService }

func NewTransaccionesHandler(svc service.TransaccionService) *TransaccionesHandler {
	return &TransaccionesHandler{svc: svc}
}

// Registrar godoc
// @Summary      Registra una venta o compra
// @Description  Operación ACID: mueve inventario, caja y resumen diario en una sola transacción. Con metodo_pago=credito genera además el crédito y su plan de cuotas.
// @Tags         transacciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarTransaccionRequest true "Detalle de la operación"
// @Success      201  {object} dto.TransaccionResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/transacciones [post]
func (h *TransaccionesHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarTransaccionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), usuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Devolucion godoc
// @Summary      Registra una devolución parcial o total
// @Description  Restituye inventario, prorratea descuentos sobre lo retenido y reintegra caja. Sobre créditos primero reduce el saldo pendiente; sólo el excedente vuelve en efectivo.
// @Tags         transacciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarDevolucionRequest true "Líneas devueltas"
// @Success      201  {object} dto.DevolucionResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/transacciones/devoluciones [post]
func (h *TransaccionesHandler) Devolucion(c *gin.Context) {
	var req dto.RegistrarDevolucionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarDevolucion(c.Request.Context(), usuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// MovimientoManual godoc
// @Summary      Registra un ingreso o egreso manual de caja
// @Tags         transacciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.MovimientoManualRequest true "Movimiento manual"
// @Success      201  {object} dto.TransaccionResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/transacciones/movimientos [post]
func (h *TransaccionesHandler) MovimientoManual(c *gin.Context) {
	var req dto.MovimientoManualRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarMovimientoManual(c.Request.Context(), usuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Obtener returns one transaction with its lines and applied discounts.
func (h *TransaccionesHandler) Obtener(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Lista transacciones
// @Tags         transacciones
// @Produce      json
// @Security     BearerAuth
// @Param        sucursal_id query string false "Filtrar por sucursal"
// @Param        tipo   query string false "VENTA | COMPRA | DEVOLUCION | INGRESO | EGRESO"
// @Param        estado query string false "PENDIENTE | PAGADA | DEVUELTA"
// @Param        desde  query string false "Fecha YYYY-MM-DD"
// @Param        hasta  query string false "Fecha YYYY-MM-DD"
// @Success      200    {object} dto.TransaccionListResponse
// @Router       /v1/transacciones [get]
func (h *TransaccionesHandler) Listar(c *gin.Context) {
	var filter dto.TransaccionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar transacciones"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
