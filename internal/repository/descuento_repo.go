package repository

import (
	"context"

	"tiendapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DescuentoRepository interface {
	Create(ctx context.Context, d *model.Descuento) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Descuento, error)
	List(ctx context.Context, soloActivos bool) ([]model.Descuento, error)
	Desactivar(ctx context.Context, id uuid.UUID) error

	CreateAplicadoTx(tx *gorm.DB, a *model.DescuentoAplicado) error
	FindAplicadoPorDetalleTx(tx *gorm.DB, detalleID, descuentoID uuid.UUID) (*model.DescuentoAplicado, error)
	FindAplicadosPorDetalle(ctx context.Context, detalleID uuid.UUID) ([]model.DescuentoAplicado, error)
	UpdateAplicadoTx(tx *gorm.DB, a *model.DescuentoAplicado) error
}

type descuentoRepo struct{ db *gorm.DB }

func NewDescuentoRepository(db *gorm.DB) DescuentoRepository { return &descuentoRepo{db: db} }

func (r *descuentoRepo) Create(ctx context.Context, d *model.Descuento) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *descuentoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Descuento, error) {
	var d model.Descuento
	err := r.db.WithContext(ctx).First(&d, id).Error
	return &d, err
}

func (r *descuentoRepo) List(ctx context.Context, soloActivos bool) ([]model.Descuento, error) {
	var descuentos []model.Descuento
	q := r.db.WithContext(ctx)
	if soloActivos {
		q = q.Where("activo = true")
	}
	err := q.Order("created_at DESC").Find(&descuentos).Error
	return descuentos, err
}

func (r *descuentoRepo) Desactivar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Descuento{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *descuentoRepo) CreateAplicadoTx(tx *gorm.DB, a *model.DescuentoAplicado) error {
	return tx.Create(a).Error
}

func (r *descuentoRepo) FindAplicadoPorDetalleTx(tx *gorm.DB, detalleID, descuentoID uuid.UUID) (*model.DescuentoAplicado, error) {
	var a model.DescuentoAplicado
	err := tx.Where("detalle_id = ? AND descuento_id = ?", detalleID, descuentoID).First(&a).Error
	return &a, err
}

func (r *descuentoRepo) FindAplicadosPorDetalle(ctx context.Context, detalleID uuid.UUID) ([]model.DescuentoAplicado, error) {
	var aplicados []model.DescuentoAplicado
	err := r.db.WithContext(ctx).Where("detalle_id = ?", detalleID).Find(&aplicados).Error
	return aplicados, err
}

func (r *descuentoRepo) UpdateAplicadoTx(tx *gorm.DB, a *model.DescuentoAplicado) error {
	return tx.Model(&model.DescuentoAplicado{}).Where("id = ?", a.ID).
		Updates(map[string]interface{}{
			"monto":      a.Monto,
			"porcentaje": a.Porcentaje,
		}).Error
}
