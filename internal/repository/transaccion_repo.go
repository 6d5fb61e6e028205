package repository

import (
	"context"

	"tiendapos/internal/dto"
	"tiendapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransaccionRepository interface {
	CreateTx(tx *gorm.DB, t *model.Transaccion) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transaccion, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Transaccion, error)
	UpdateTx(tx *gorm.DB, t *model.Transaccion) error
	UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error
	UpdateDetalleTx(tx *gorm.DB, d *model.DetalleTransaccion) error
	List(ctx context.Context, filter dto.TransaccionFilter) ([]model.Transaccion, int64, error)
	DB() *gorm.DB
}

type transaccionRepo struct{ db *gorm.DB }

func NewTransaccionRepository(db *gorm.DB) TransaccionRepository { return &transaccionRepo{db: db} }

func (r *transaccionRepo) DB() *gorm.DB { return r.db }

func (r *transaccionRepo) CreateTx(tx *gorm.DB, t *model.Transaccion) error {
	return tx.Create(t).Error
}

func (r *transaccionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaccion, error) {
	var t model.Transaccion
	err := r.db.WithContext(ctx).Preload("Detalles.Producto").First(&t, id).Error
	return &t, err
}

func (r *transaccionRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Transaccion, error) {
	var t model.Transaccion
	err := tx.Clauses(forUpdate()).Preload("Detalles").First(&t, id).Error
	return &t, err
}

func (r *transaccionRepo) UpdateTx(tx *gorm.DB, t *model.Transaccion) error {
	// Save cascadearía detalles; Updates limita la escritura al encabezado.
	return tx.Model(&model.Transaccion{}).Where("id = ?", t.ID).
		Updates(map[string]interface{}{
			"estado":       t.Estado,
			"subtotal":     t.Subtotal,
			"descuento":    t.Descuento,
			"total":        t.Total,
			"eliminada_en": t.EliminadaEn,
		}).Error
}

func (r *transaccionRepo) UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error {
	return tx.Model(&model.Transaccion{}).Where("id = ?", id).
		Update("estado", estado).Error
}

func (r *transaccionRepo) UpdateDetalleTx(tx *gorm.DB, d *model.DetalleTransaccion) error {
	return tx.Model(&model.DetalleTransaccion{}).Where("id = ?", d.ID).
		Updates(map[string]interface{}{
			"cantidad":        d.Cantidad,
			"subtotal":        d.Subtotal,
			"total":           d.Total,
			"monto_descuento": d.MontoDescuento,
			"monto_ajuste":    d.MontoAjuste,
			"eliminada_en":    d.EliminadaEn,
		}).Error
}

func (r *transaccionRepo) List(ctx context.Context, filter dto.TransaccionFilter) ([]model.Transaccion, int64, error) {
	var transacciones []model.Transaccion
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Transaccion{})
	if filter.SucursalID != "" {
		q = q.Where("sucursal_id = ?", filter.SucursalID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Desde != "" {
		q = q.Where("created_at >= ?", filter.Desde)
	}
	if filter.Hasta != "" {
		q = q.Where("created_at <= ?", filter.Hasta)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Detalles.Producto").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&transacciones).Error
	return transacciones, total, err
}
