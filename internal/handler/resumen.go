package handler

import (
	"net/http"
	"time"

	"tiendapos/internal/apierror"
	"tiendapos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ResumenHandler struct{ svc service.ResumenService }

func NewResumenHandler(svc service.ResumenService) *ResumenHandler {
	return &ResumenHandler{svc: svc}
}

// Dia godoc
// @Summary      Resumen diario de una caja
// @Description  Totales acumulados del día (ventas, compras, ingresos, egresos, saldo de efectivo) para una caja y sucursal. Fecha por defecto: hoy.
// @Tags         resumen
// @Produce      json
// @Security     BearerAuth
// @Param        sucursal_id query string true  "Sucursal"
// @Param        caja_id     query string true  "Caja"
// @Param        fecha       query string false "YYYY-MM-DD"
// @Success      200 {object} model.ResumenCajaDiario
// @Failure      404 {object} apierror.APIError
// @Router       /v1/resumen/dia [get]
func (h *ResumenHandler) Dia(c *gin.Context) {
	sucursalID, err := uuid.Parse(c.Query("sucursal_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("sucursal_id invalido"))
		return
	}
	cajaID, err := uuid.Parse(c.Query("caja_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("caja_id invalido"))
		return
	}
	fecha := time.Now()
	if raw := c.Query("fecha"); raw != "" {
		fecha, err = time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("fecha invalida, formato YYYY-MM-DD"))
			return
		}
	}
	resp, err := h.svc.ObtenerDia(c.Request.Context(), sucursalID, cajaID, fecha)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Sin resumen para ese día"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
