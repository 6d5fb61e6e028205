package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de entidad.
const (
	EntidadCliente   = "cliente"
	EntidadProveedor = "proveedor"
)

// Entidad is a counterparty (cliente o proveedor). The four running
// counters reflect aggregate credit exposure and are adjusted only by the
// amortization engine, never directly by the orchestrator:
//
//	MontoPorCobrar      — receivable principal still owed to us
//	AnticiposRecibidos  — payments received against open receivables
//	MontoPorPagar       — payable principal we still owe
//	AnticiposEntregados — payments we delivered against open payables
type Entidad struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Tipo      string    `gorm:"type:varchar(20);not null;index"`
	Nombre    string    `gorm:"index;not null"`
	Documento *string   `gorm:"uniqueIndex"`
	Telefono  *string
	Email     *string

	MontoPorCobrar      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	AnticiposRecibidos  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	MontoPorPagar       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	AnticiposEntregados decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Entidad) TableName() string { return "entidades" }
