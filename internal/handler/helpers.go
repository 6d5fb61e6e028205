package handler

import (
	"errors"
	"net/http"
	"reflect"

	"tiendapos/internal/apierror"
	"tiendapos/internal/middleware"
	"tiendapos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps business errors to HTTP status codes. Sentinel errors
// from the service layer become 4xx; anything unrecognized is a 400 with
// the error message (services wrap infrastructure failures before here).
func respondError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, service.ErrCajaNoEncontrada),
		errors.Is(err, service.ErrExistenciaNoExiste),
		errors.Is(err, service.ErrTransaccionNoEncontrada),
		errors.Is(err, service.ErrDescuentoNoEncontrado),
		errors.Is(err, service.ErrCreditoNoEncontrado):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrCajaYaCerrada),
		errors.Is(err, service.ErrCajaCerrada),
		errors.Is(err, service.ErrStockInsuficiente),
		errors.Is(err, service.ErrDevolucionExcede),
		errors.Is(err, service.ErrCreditoCerrado),
		errors.Is(err, service.ErrSaldoExcedido):
		status = http.StatusConflict
	}
	c.JSON(status, apierror.New(err.Error()))
}

// parseID parses a UUID path parameter; writes the 400 itself on failure.
func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(param+" invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// usuarioID extracts the authenticated user's UUID from the JWT claims.
func usuarioID(c *gin.Context) uuid.UUID {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return uuid.Nil
	}
	id, _ := uuid.Parse(claims.UserID)
	return id
}
