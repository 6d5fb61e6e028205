package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type DetalleRequest struct {
	ProductoID string          `json:"producto_id"  validate:"required,uuid"`
	Cantidad   int             `json:"cantidad"     validate:"required,gt=0"`
	Precio     decimal.Decimal `json:"precio"       validate:"min=0"`
	// DescuentoID: referencia declarada por el cliente a la definición viva.
	DescuentoID *string `json:"descuento_id" validate:"omitempty,uuid"`
	// CostoUnitario solo aplica a compras: re-promedia el costo de la existencia.
	CostoUnitario *decimal.Decimal `json:"costo_unitario"`
}

type TerminosCreditoRequest struct {
	Modalidad string `json:"modalidad" validate:"required,oneof=PLAZO PAGO"`
	// PlazoMeses es obligatorio en modalidad PLAZO.
	PlazoMeses int `json:"plazo_meses" validate:"omitempty,gt=0,lte=60"`
}

type RegistrarTransaccionRequest struct {
	Tipo       string           `json:"tipo"        validate:"required,oneof=VENTA COMPRA"`
	SucursalID string           `json:"sucursal_id" validate:"required,uuid"`
	CajaID     string           `json:"caja_id"     validate:"required,uuid"`
	EntidadID  *string          `json:"entidad_id"  validate:"omitempty,uuid"`
	MetodoPago string           `json:"metodo_pago" validate:"required,oneof=contado credito"`
	Detalles   []DetalleRequest `json:"detalles"    validate:"required,min=1,dive"`
	// MontoRecibido permite calcular el cambio en ventas de contado.
	MontoRecibido *decimal.Decimal        `json:"monto_recibido"`
	Credito       *TerminosCreditoRequest `json:"credito" validate:"omitempty"`
}

type DetalleDevolucionRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,gt=0"`
	// DescuentoAplicado: si el cliente declara que el descuento original sigue
	// vigente para la cantidad retenida.
	DescuentoAplicado bool `json:"descuento_aplicado"`
}

type RegistrarDevolucionRequest struct {
	OrigenID string                     `json:"origen_id" validate:"required,uuid"`
	CajaID   string                     `json:"caja_id"   validate:"required,uuid"`
	Detalles []DetalleDevolucionRequest `json:"detalles"  validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DetalleResponse struct {
	ID             string          `json:"id"`
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto,omitempty"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Cantidad       int             `json:"cantidad"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Total          decimal.Decimal `json:"total"`
	MontoDescuento decimal.Decimal `json:"monto_descuento"`
	MontoAjuste    decimal.Decimal `json:"monto_ajuste"`
}

type DescuentoAplicadoResponse struct {
	DetalleID   string          `json:"detalle_id"`
	DescuentoID string          `json:"descuento_id"`
	Alcance     string          `json:"alcance"`
	Monto       decimal.Decimal `json:"monto"`
	Porcentaje  decimal.Decimal `json:"porcentaje"`
}

type TransaccionResponse struct {
	ID         string            `json:"id"`
	Tipo       string            `json:"tipo"`
	Estado     string            `json:"estado"`
	SucursalID string            `json:"sucursal_id"`
	CajaID     string            `json:"caja_id"`
	EntidadID  *string           `json:"entidad_id"`
	MetodoPago string            `json:"metodo_pago"`
	Subtotal   decimal.Decimal   `json:"subtotal"`
	Descuento  decimal.Decimal   `json:"descuento"`
	Total      decimal.Decimal   `json:"total"`
	Cambio     *decimal.Decimal  `json:"cambio,omitempty"`
	OrigenID   *string           `json:"origen_id,omitempty"`
	Detalles   []DetalleResponse `json:"detalles"`
	Descuentos []DescuentoAplicadoResponse `json:"descuentos_aplicados,omitempty"`
	CreditoID  *string           `json:"credito_id,omitempty"`
	CreatedAt  string            `json:"created_at"`
}

type DevolucionResponse struct {
	Devolucion    TransaccionResponse `json:"devolucion"`
	MontoDevuelto decimal.Decimal     `json:"monto_devuelto"`
	// MontoEfectivo: lo reintegrado en caja; en créditos queda limitado por lo
	// efectivamente cobrado.
	MontoEfectivo decimal.Decimal `json:"monto_efectivo"`
	MontoAjuste   decimal.Decimal `json:"monto_ajuste"`
	OrigenEstado  string          `json:"origen_estado"`
	OrigenTotal   decimal.Decimal `json:"origen_total"`
}

type TransaccionFilter struct {
	SucursalID string `form:"sucursal_id"`
	Tipo       string `form:"tipo"`
	Estado     string `form:"estado"`
	Desde      string `form:"desde"`
	Hasta      string `form:"hasta"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

type TransaccionListResponse struct {
	Data  []TransaccionResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
