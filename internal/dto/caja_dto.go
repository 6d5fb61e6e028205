package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	CajaID       string          `json:"caja_id"       validate:"required,uuid"`
	MontoInicial decimal.Decimal `json:"monto_inicial" validate:"min=0"`
}

type CerrarCajaRequest struct {
	CajaID         string          `json:"caja_id"         validate:"required,uuid"`
	MontoDeclarado decimal.Decimal `json:"monto_declarado" validate:"min=0"`
}

type MovimientoManualRequest struct {
	CajaID      string          `json:"caja_id"     validate:"required,uuid"`
	Tipo        string          `json:"tipo"        validate:"required,oneof=INGRESO EGRESO"`
	Monto       decimal.Decimal `json:"monto"       validate:"required,gt=0"`
	Descripcion string          `json:"descripcion" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CajaResponse struct {
	ID              string          `json:"id"`
	SucursalID      string          `json:"sucursal_id"`
	Consecutivo     int             `json:"consecutivo"`
	Estado          string          `json:"estado"`
	MontoInicial    decimal.Decimal `json:"monto_inicial"`
	MontoEsperado   decimal.Decimal `json:"monto_esperado"`
	TieneMovimiento bool            `json:"tiene_movimiento"`
	AbiertaEn       *string         `json:"abierta_en"`
}

type CierreCajaResponse struct {
	CajaID         string          `json:"caja_id"`
	MontoInicial   decimal.Decimal `json:"monto_inicial"`
	MontoEsperado  decimal.Decimal `json:"monto_esperado"`
	MontoDeclarado decimal.Decimal `json:"monto_declarado"`
	// Diferencia es magnitud; Desvio conserva el signo (negativo = faltante).
	Diferencia decimal.Decimal `json:"diferencia"`
	Desvio     decimal.Decimal `json:"desvio"`
	CerradaEn  string          `json:"cerrada_en"`
}

type MovimientoCajaResponse struct {
	ID        string          `json:"id"`
	Tipo      string          `json:"tipo"`
	Monto     decimal.Decimal `json:"monto"`
	CreatedAt string          `json:"created_at"`
}
