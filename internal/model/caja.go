package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de caja.
const (
	CajaAbierta = "abierta"
	CajaCerrada = "cerrada"
)

// Caja is one cash drawer per branch, identified by consecutive number.
// MontoEsperado is the running balance the system believes is in the drawer;
// it changes only through a recorded MovimientoCaja (the pairing is the
// integrity contract of AjustarMontoEsperadoTx).
type Caja struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SucursalID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_caja_suc_num"`
	Consecutivo int       `gorm:"not null;uniqueIndex:idx_caja_suc_num"`
	Estado      string    `gorm:"type:varchar(20);not null;default:'cerrada'"`

	MontoInicial  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MontoEsperado decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// TieneMovimiento: true once any movement was posted in the current cycle.
	// Re-opening an already moved box adds the new initial amount instead of
	// resetting the expected balance.
	TieneMovimiento   bool `gorm:"not null;default:false"`
	AbiertaEn         *time.Time
	UsuarioAperturaID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Historial []CierreCaja `gorm:"foreignKey:CajaID"`
}

func (Caja) TableName() string { return "cajas" }

// CierreCaja snapshots one completed open/close cycle.
// Desvio keeps the sign (negativo = faltante, positivo = sobrante);
// Diferencia stores the magnitude used for the closing report.
type CierreCaja struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CajaID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	MontoInicial    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoEsperado   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoDeclarado  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Diferencia      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Desvio          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AbiertaEn       time.Time
	CerradaEn       time.Time
	UsuarioCierreID uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt       time.Time
}

func (CierreCaja) TableName() string { return "cierres_caja" }

// Tipos de movimiento de caja.
const (
	MovCajaVenta      = "VENTA"
	MovCajaCompra     = "COMPRA"
	MovCajaIngreso    = "INGRESO"
	MovCajaEgreso     = "EGRESO"
	MovCajaApertura   = "APERTURA"
	MovCajaDevolucion = "DEVOLUCION"
)

// MovimientoCaja is an immutable event in the cash register ledger.
// Movements are NEVER modified or deleted — reversals create inverse entries.
type MovimientoCaja struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CajaID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tipo      string          `gorm:"type:varchar(20);not null"`
	Monto     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UsuarioID uuid.UUID       `gorm:"type:uuid;not null"`
	// Cambio: vuelto entregado al cliente cuando aplica.
	Cambio       *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ReferenciaID *uuid.UUID       `gorm:"type:uuid"` // transacción que originó el movimiento
	CreatedAt    time.Time
}

func (MovimientoCaja) TableName() string { return "movimientos_caja" }
