package handler

import (
	"net/http"
	"strconv"

	"tiendapos/internal/dto"
	"tiendapos/internal/service"

	"github.com/gin-gonic/gin"
)

type InventarioHandler struct{ svc service.InventarioService }

func NewInventarioHandler(svc service.InventarioService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// AjustarStock godoc
// @Summary Ajuste manual de stock
// @Description Registra una entrada o salida manual; las salidas nunca dejan el stock negativo.
// @Tags inventario
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AjusteStockRequest true "Ajuste"
// @Success 200 {object} dto.ExistenciaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/inventario/ajuste [post]
func (h *InventarioHandler) AjustarStock(c *gin.Context) {
	var req dto.AjusteStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AjustarStock(c.Request.Context(), usuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarExistencias godoc
// @Summary Lista existencias por sucursal
// @Tags inventario
// @Produce json
// @Security BearerAuth
// @Param sucursal_id query string false "Filtrar por sucursal"
// @Param bajo_reorden query bool false "Solo existencias en o bajo el punto de reorden"
// @Success 200 {object} map[string]interface{}
// @Router /v1/inventario/existencias [get]
func (h *InventarioHandler) ListarExistencias(c *gin.Context) {
	var filter dto.ExistenciaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondError(c, err)
		return
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	data, total, err := h.svc.ListarExistencias(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  data,
		"total": total,
		"page":  filter.Page,
		"limit": filter.Limit,
	})
}

// Movimientos returns the append-only movement history of one stock record.
func (h *InventarioHandler) Movimientos(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 500 {
		limit = 50
	}
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
