package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AjusteStockRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	SucursalID string `json:"sucursal_id" validate:"required,uuid"`
	// Cantidad: positiva = entrada, negativa = salida.
	Cantidad      int              `json:"cantidad"       validate:"required"`
	CostoUnitario *decimal.Decimal `json:"costo_unitario"`
}

type ExistenciaFilter struct {
	SucursalID   string `form:"sucursal_id"`
	BajoReorden  bool   `form:"bajo_reorden"`
	SoloActivas  bool   `form:"solo_activas"`
	Page         int    `form:"page"`
	Limit        int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ExistenciaResponse struct {
	ID            string          `json:"id"`
	ProductoID    string          `json:"producto_id"`
	Producto      string          `json:"producto,omitempty"`
	SucursalID    string          `json:"sucursal_id"`
	Stock         int             `json:"stock"`
	CostoUnitario decimal.Decimal `json:"costo_unitario"`
	PrecioVenta   decimal.Decimal `json:"precio_venta"`
	PuntoReorden  int             `json:"punto_reorden"`
	Activo        bool            `json:"activo"`
}

type MovimientoInventarioResponse struct {
	ID            string `json:"id"`
	ExistenciaID  string `json:"existencia_id"`
	Tipo          string `json:"tipo"`
	Cantidad      int    `json:"cantidad"`
	StockAnterior int    `json:"stock_anterior"`
	StockNuevo    int    `json:"stock_nuevo"`
	CreatedAt     string `json:"created_at"`
}
