package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Modalidades de crédito.
const (
	CreditoPlazo = "PLAZO" // cuotas fijas iguales
	CreditoPago  = "PAGO"  // pago mínimo del 20% del saldo
)

// Tipos de crédito según la transacción que lo origina.
const (
	CreditoVenta  = "VENTA"
	CreditoCompra = "COMPRA"
)

// Estados de crédito.
const (
	CreditoAbierto = "ABIERTO"
	CreditoCerrado = "CERRADO"
)

// Estados de cuota.
const (
	CuotaPendiente = "PENDIENTE"
	CuotaPagada    = "PAGADA"
)

// Credito is a deferred-payment account created atomically with its origin
// transaction. It is mutated only by the amortization engine and closes
// irreversibly once SaldoPendiente reaches zero.
type Credito struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Modalidad     string    `gorm:"type:varchar(10);not null"`
	TipoCredito   string    `gorm:"type:varchar(10);not null"`
	Estado        string    `gorm:"type:varchar(10);not null;default:'ABIERTO'"`
	EntidadID     uuid.UUID `gorm:"type:uuid;not null;index"`
	TransaccionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	SaldoOriginal  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	SaldoPendiente decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	// PlazoMeses only applies to modalidad PLAZO.
	PlazoMeses int `gorm:"not null;default:0"`
	// PagoMinimo only applies to modalidad PAGO: 20% of the remaining balance.
	PagoMinimo decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Cuotas []Cuota        `gorm:"foreignKey:CreditoID"`
	Pagos  []PagoCredito  `gorm:"foreignKey:CreditoID"`
}

func (Credito) TableName() string { return "creditos" }

// Cuota is one installment. PLAZO accounts generate all of them at
// creation, one calendar month apart; PAGO accounts carry a single open
// cuota regenerated after every payment.
type Cuota struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreditoID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Numero           int             `gorm:"not null"`
	Monto            decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	FechaVencimiento time.Time       `gorm:"not null"`
	Estado           string          `gorm:"type:varchar(10);not null;default:'PENDIENTE'"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Cuota) TableName() string { return "cuotas" }

// PagoCredito is the append-only payment history with the resulting
// balance snapshot.
type PagoCredito struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreditoID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Monto          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	SaldoResultado decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	UsuarioID      uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt      time.Time
}

func (PagoCredito) TableName() string { return "pagos_credito" }
