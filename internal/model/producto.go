package model

import (
	"time"

	"github.com/google/uuid"
)

// GrupoProducto agrupa productos para descuentos a nivel de grupo.
type GrupoProducto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string    `gorm:"uniqueIndex;not null"`
	Descripcion *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (GrupoProducto) TableName() string { return "grupos_producto" }

// Producto is the catalog entry. Stock, price and cost live per-branch in
// Existencia; the catalog row only carries identity and grouping.
type Producto struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CodigoBarras string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"index;not null"`
	Descripcion  *string
	GrupoID      *uuid.UUID `gorm:"type:uuid;index"`
	UnidadMedida string     `gorm:"not null;default:'unidad'"`
	Activo       bool       `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Grupo *GrupoProducto `gorm:"foreignKey:GrupoID"`
}

func (Producto) TableName() string { return "productos" }
