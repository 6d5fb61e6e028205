package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de descuento (cómo se expresa el valor).
const (
	DescPorcentaje = "porcentaje"
	DescFijo       = "fijo"
)

// Alcances de descuento.
const (
	AlcanceProducto = "producto"
	AlcanceGrupo    = "grupo"
)

// Alcance is the explicit tag for what a discount targets. The storage row
// keeps two nullable FKs, but services only ever see this tagged value.
type Alcance struct {
	Tipo       string
	ObjetivoID uuid.UUID
}

// Descuento is the live discount definition. Definitions can be edited or
// expired later without corrupting history: applied discounts snapshot the
// realized values at sale time.
type Descuento struct {
	ID     uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre string          `gorm:"not null"`
	Tipo   string          `gorm:"type:varchar(20);not null"` // porcentaje | fijo
	Valor  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Exactly one of ProductoID / GrupoID is set; AlcanceDe() materializes
	// the tagged form.
	ProductoID   *uuid.UUID `gorm:"type:uuid;index"`
	GrupoID      *uuid.UUID `gorm:"type:uuid;index"`
	VigenteDesde *time.Time
	VigenteHasta *time.Time
	Activo       bool `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Descuento) TableName() string { return "descuentos" }

// AlcanceDe returns the tagged scope, or ok=false when the row is malformed
// (neither or both FKs set).
func (d *Descuento) AlcanceDe() (Alcance, bool) {
	switch {
	case d.ProductoID != nil && d.GrupoID == nil:
		return Alcance{Tipo: AlcanceProducto, ObjetivoID: *d.ProductoID}, true
	case d.GrupoID != nil && d.ProductoID == nil:
		return Alcance{Tipo: AlcanceGrupo, ObjetivoID: *d.GrupoID}, true
	default:
		return Alcance{}, false
	}
}

// DescuentoAplicado links a transaction line to the discount that applied,
// snapshotting the realized monto/porcentaje at application time.
// Reversals update these fields in place; a line never accumulates more
// than one applied-discount row per definition.
type DescuentoAplicado struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DetalleID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	DescuentoID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Alcance     string          `gorm:"type:varchar(20);not null"`
	Monto       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Porcentaje  decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (DescuentoAplicado) TableName() string { return "descuentos_aplicados" }
