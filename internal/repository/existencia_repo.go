package repository

import (
	"context"
	"errors"
	"time"

	"tiendapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExistenciaRepository is the data access contract for branch inventory
// records and their append-only movement log. Stock mutations flow through
// the inventory Libro and land here as a batch inside the caller's
// transaction.
type ExistenciaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Existencia, error)
	// FindBySucursalYProductos loads the working set for one unit of work.
	FindBySucursalYProductos(ctx context.Context, sucursalID uuid.UUID, productoIDs []uuid.UUID) ([]model.Existencia, error)
	List(ctx context.Context, sucursalID uuid.UUID, soloActivas, bajoReorden bool, page, limit int) ([]model.Existencia, int64, error)

	// GuardarLoteTx persists staged records with optimistic concurrency:
	// each UPDATE is guarded by the version read at load time and fails with
	// ErrVersionObsoleta when another request won the race.
	GuardarLoteTx(tx *gorm.DB, existencias []*model.Existencia) error
	CrearMovimientosTx(tx *gorm.DB, movs []model.MovimientoInventario) error
	ListMovimientos(ctx context.Context, existenciaID uuid.UUID, limit int) ([]model.MovimientoInventario, error)

	DB() *gorm.DB
}

// ErrVersionObsoleta: la existencia cambió entre la carga y el flush.
var ErrVersionObsoleta = errors.New("existencia modificada por otra operación")

type existenciaRepo struct{ db *gorm.DB }

func NewExistenciaRepository(db *gorm.DB) ExistenciaRepository { return &existenciaRepo{db: db} }

func (r *existenciaRepo) DB() *gorm.DB { return r.db }

func (r *existenciaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Existencia, error) {
	var e model.Existencia
	err := r.db.WithContext(ctx).Preload("Producto").First(&e, id).Error
	return &e, err
}

func (r *existenciaRepo) FindBySucursalYProductos(ctx context.Context, sucursalID uuid.UUID, productoIDs []uuid.UUID) ([]model.Existencia, error) {
	var existencias []model.Existencia
	err := r.db.WithContext(ctx).
		Preload("Producto").
		Where("sucursal_id = ? AND producto_id IN ?", sucursalID, productoIDs).
		Find(&existencias).Error
	return existencias, err
}

func (r *existenciaRepo) List(ctx context.Context, sucursalID uuid.UUID, soloActivas, bajoReorden bool, page, limit int) ([]model.Existencia, int64, error) {
	var existencias []model.Existencia
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Existencia{}).Where("sucursal_id = ?", sucursalID)
	if soloActivas {
		q = q.Where("activo = true")
	}
	if bajoReorden {
		q = q.Where("stock <= punto_reorden")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Preload("Producto").Order("updated_at DESC").Limit(limit).Offset(offset).Find(&existencias).Error
	return existencias, total, err
}

func (r *existenciaRepo) GuardarLoteTx(tx *gorm.DB, existencias []*model.Existencia) error {
	now := time.Now()
	for _, e := range existencias {
		res := tx.Model(&model.Existencia{}).
			Where("id = ? AND version = ?", e.ID, e.Version).
			Updates(map[string]interface{}{
				"stock":             e.Stock,
				"costo_unitario":    e.CostoUnitario,
				"activo":            e.Activo,
				"version":           e.Version + 1,
				"ultimo_movimiento": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVersionObsoleta
		}
		e.Version++
	}
	return nil
}

func (r *existenciaRepo) CrearMovimientosTx(tx *gorm.DB, movs []model.MovimientoInventario) error {
	if len(movs) == 0 {
		return nil
	}
	return tx.Create(&movs).Error
}

func (r *existenciaRepo) ListMovimientos(ctx context.Context, existenciaID uuid.UUID, limit int) ([]model.MovimientoInventario, error) {
	if limit <= 0 {
		limit = 100
	}
	var movs []model.MovimientoInventario
	err := r.db.WithContext(ctx).
		Where("existencia_id = ?", existenciaID).
		Order("created_at DESC").Limit(limit).
		Find(&movs).Error
	return movs, err
}
