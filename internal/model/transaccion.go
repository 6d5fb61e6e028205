package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de transacción.
const (
	TxVenta      = "VENTA"
	TxCompra     = "COMPRA"
	TxIngreso    = "INGRESO"
	TxEgreso     = "EGRESO"
	TxApertura   = "APERTURA"
	TxDevolucion = "DEVOLUCION"
)

// Estados de transacción.
const (
	TxPendiente       = "PENDIENTE"
	TxParcialmentePag = "PARCIALMENTE_PAGADA"
	TxVencida         = "VENCIDA"
	TxPagada          = "PAGADA"
	TxCancelada       = "CANCELADA"
	TxDevuelta        = "DEVUELTA"
)

// Métodos de pago.
const (
	PagoContado = "contado"
	MetodoCredito = "credito"
)

// Transaccion is the sale/purchase/return/income/expense header.
// A DEVOLUCION always references its origin via OrigenID; origin and return
// must stay mutually consistent (sum of totals conserves the pre-return
// total, modulo the per-line adjustment amount).
type Transaccion struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Tipo       string    `gorm:"type:varchar(20);not null;index"`
	Estado     string    `gorm:"type:varchar(30);not null;index"`
	SucursalID uuid.UUID `gorm:"type:uuid;not null;index"`
	CajaID     uuid.UUID `gorm:"type:uuid;not null;index"`
	// EntidadID is the counterparty (cliente o proveedor); nil for manual
	// ingresos/egresos.
	EntidadID  *uuid.UUID `gorm:"type:uuid;index"`
	UsuarioID  uuid.UUID  `gorm:"type:uuid;not null"`
	MetodoPago string     `gorm:"type:varchar(20);not null"`

	Subtotal  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Descuento decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Total     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	Descripcion *string
	OrigenID    *uuid.UUID `gorm:"type:uuid;index"`
	EliminadaEn *time.Time `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Detalles []DetalleTransaccion `gorm:"foreignKey:TransaccionID"`
}

func (Transaccion) TableName() string { return "transacciones" }

// DetalleTransaccion is one line item.
// MontoAjuste records the charge/credit produced when a partial return
// changes the effective per-unit price (ajuste a cobrar).
type DetalleTransaccion struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TransaccionID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Cantidad       int             `gorm:"not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	MontoDescuento decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	MontoAjuste    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	EliminadaEn    *time.Time      `gorm:"index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DetalleTransaccion) TableName() string { return "detalles_transaccion" }
