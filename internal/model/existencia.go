package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Existencia is the per-(producto, sucursal) inventory record.
// CostoUnitario is a moving weighted average recomputed on every entrada.
// The row deactivates itself when stock hits 0 by a salida and reactivates
// on any entrada; it is only ever mutated through the inventory Libro.
type Existencia struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_existencia_prod_suc"`
	SucursalID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_existencia_prod_suc"`
	Stock      int       `gorm:"not null;default:0"`
	// Version supports optimistic concurrency: the flush rejects a stale write.
	Version          int             `gorm:"not null;default:0"`
	CostoUnitario    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PrecioVenta      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PuntoReorden     int             `gorm:"not null;default:5"`
	UltimoMovimiento *time.Time
	Activo           bool `gorm:"not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (Existencia) TableName() string { return "existencias" }

// Tipos de movimiento de inventario.
const (
	MovInvEntrada       = "entrada"
	MovInvSalida        = "salida"
	MovInvAjuste        = "ajuste"
	MovInvDevolucion    = "devolucion"
	MovInvTransferencia = "transferencia"
	MovInvCompra        = "compra"
	MovInvVenta         = "venta"
	MovInvDestruccion   = "destruccion"
)

// MovimientoInventario registra cada cambio de stock sobre una Existencia.
// Append-only: nunca se modifica ni borra una vez escrito.
type MovimientoInventario struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ExistenciaID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo          string    `gorm:"type:varchar(20);not null"`
	Cantidad      int       `gorm:"not null"` // positivo = entrada, negativo = salida
	StockAnterior int       `gorm:"not null"`
	StockNuevo    int       `gorm:"not null"`
	UsuarioID     uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt     time.Time
}

func (MovimientoInventario) TableName() string { return "movimientos_inventario" }
