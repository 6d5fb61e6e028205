package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ResumenCajaDiario is the per-(sucursal, caja, día) rollup, created lazily
// on the first transaction of the day and updated with atomic
// increment-on-upsert so concurrent transactions never lose updates.
type ResumenCajaDiario struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SucursalID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_resumen_dia"`
	CajaID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_resumen_dia"`
	// Fecha is the calendar day (UTC date, midnight-truncated).
	Fecha time.Time `gorm:"type:date;not null;uniqueIndex:idx_resumen_dia"`

	TotalVentas   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalCompras  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalIngresos decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalEgresos  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	// MontoFinalSistema: +ventas +ingresos −compras −egresos del día.
	MontoFinalSistema decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Transacciones []ResumenTransaccion `gorm:"foreignKey:ResumenID"`
}

func (ResumenCajaDiario) TableName() string { return "resumenes_caja_diarios" }

// ResumenTransaccion references one transaction from a daily summary.
// Child rows instead of an in-row array: a plain INSERT is atomic, so
// concurrent same-day transactions cannot lose references.
type ResumenTransaccion struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ResumenID     uuid.UUID `gorm:"type:uuid;not null;index"`
	TransaccionID uuid.UUID `gorm:"type:uuid;not null"`
	Tipo          string    `gorm:"type:varchar(20);not null"` // VENTA | COMPRA
	CreatedAt     time.Time
}

func (ResumenTransaccion) TableName() string { return "resumen_transacciones" }
