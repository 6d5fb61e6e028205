package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type PagarCreditoRequest struct {
	Monto decimal.Decimal `json:"monto" validate:"required,gt=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CuotaResponse struct {
	Numero           int             `json:"numero"`
	Monto            decimal.Decimal `json:"monto"`
	FechaVencimiento string          `json:"fecha_vencimiento"`
	Estado           string          `json:"estado"`
}

type PagoCreditoResponse struct {
	Monto          decimal.Decimal `json:"monto"`
	SaldoResultado decimal.Decimal `json:"saldo_resultado"`
	Fecha          string          `json:"fecha"`
}

type CreditoResponse struct {
	ID             string                `json:"id"`
	Modalidad      string                `json:"modalidad"`
	TipoCredito    string                `json:"tipo_credito"`
	Estado         string                `json:"estado"`
	EntidadID      string                `json:"entidad_id"`
	TransaccionID  string                `json:"transaccion_id"`
	SaldoOriginal  decimal.Decimal       `json:"saldo_original"`
	SaldoPendiente decimal.Decimal       `json:"saldo_pendiente"`
	PlazoMeses     int                   `json:"plazo_meses,omitempty"`
	PagoMinimo     decimal.Decimal       `json:"pago_minimo"`
	Cuotas         []CuotaResponse       `json:"cuotas"`
	Pagos          []PagoCreditoResponse `json:"pagos"`
}
