package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearDescuentoRequest struct {
	Nombre string          `json:"nombre" validate:"required,min=2"`
	Tipo   string          `json:"tipo"   validate:"required,oneof=porcentaje fijo"`
	Valor  decimal.Decimal `json:"valor"  validate:"required,gt=0"`
	// Exactamente uno de producto_id / grupo_id.
	ProductoID   *string `json:"producto_id"   validate:"omitempty,uuid"`
	GrupoID      *string `json:"grupo_id"      validate:"omitempty,uuid"`
	VigenteDesde *string `json:"vigente_desde"`
	VigenteHasta *string `json:"vigente_hasta"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DescuentoResponse struct {
	ID         string          `json:"id"`
	Nombre     string          `json:"nombre"`
	Tipo       string          `json:"tipo"`
	Valor      decimal.Decimal `json:"valor"`
	Alcance    string          `json:"alcance"`
	ObjetivoID string          `json:"objetivo_id"`
	Activo     bool            `json:"activo"`
}
