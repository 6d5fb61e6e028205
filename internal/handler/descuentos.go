package handler

import (
	"net/http"
	"strconv"

	"tiendapos/internal/dto"
	"tiendapos/internal/service"

	"github.com/gin-gonic/gin"
)

type DescuentosHandler struct{ svc service.DescuentoService }

func NewDescuentosHandler(svc service.DescuentoService) *DescuentosHandler {
	return &DescuentosHandler{svc: svc}
}

// Crear godoc
// @Summary      Crea una definición de descuento
// @Description  El descuento apunta a un producto o a un grupo y puede llevar ventana de vigencia. Las ventas posteriores lo resuelven por referencia.
// @Tags         descuentos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearDescuentoRequest true "Definición"
// @Success      201  {object} dto.DescuentoResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/descuentos [post]
func (h *DescuentosHandler) Crear(c *gin.Context) {
	var req dto.CrearDescuentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *DescuentosHandler) Listar(c *gin.Context) {
	soloActivos, _ := strconv.ParseBool(c.DefaultQuery("solo_activos", "true"))
	resp, err := h.svc.Listar(c.Request.Context(), soloActivos)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// Desactivar retires a discount definition. Applied snapshots on historic
// transactions are untouched.
func (h *DescuentosHandler) Desactivar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
