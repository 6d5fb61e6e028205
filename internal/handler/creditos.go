package handler

import (
	"net/http"

	"tiendapos/internal/dto"
	"tiendapos/internal/service"

	"github.com/gin-gonic/gin"
)

type CreditosHandler struct{ svc service.CreditoService }

func NewCreditosHandler(svc service.CreditoService) *CreditosHandler {
	return &CreditosHandler{svc: svc}
}

// Obtener returns one credit with its installment plan and payment history.
func (h *CreditosHandler) Obtener(c *gin.Context) {
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

// PorEntidad lists every credit held against one customer or supplier.
func (h *CreditosHandler) PorEntidad(c *gin.Context) {
	id, ok := parseID(c, "entidad_id")
	if !ok {
		return
	}
	resp, err := h.svc.ListarPorEntidad(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// Pagar godoc
// @Summary      Registra un pago sobre un crédito abierto
// @Description  PLAZO exige cubrir al menos la cuota vigente; PAGO exige el mínimo del 20% sobre el saldo, salvo que el pago lo cancele por completo.
// @Tags         creditos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "ID del crédito"
// @Param        body body dto.PagarCreditoRequest true "Monto del pago"
// @Success      200  {object} dto.CreditoResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/creditos/{id}/pagos [post]
func (h *CreditosHandler) Pagar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.PagarCreditoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Pagar(c.Request.Context(), id, usuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
