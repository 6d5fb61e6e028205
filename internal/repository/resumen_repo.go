package repository

import (
	"context"
	"time"

	"tiendapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IncrementosResumen son los deltas de una operación sobre el resumen
// diario. Solo los campos no-cero participan del upsert.
type IncrementosResumen struct {
	TotalVentas       decimal.Decimal
	TotalCompras      decimal.Decimal
	TotalIngresos     decimal.Decimal
	TotalEgresos      decimal.Decimal
	MontoFinalSistema decimal.Decimal
}

type ResumenRepository interface {
	// IncrementarTx upserts the daily row with atomic increments: the
	// ON CONFLICT path adds the deltas server-side, so concurrent same-day
	// transactions never lose an update.
	IncrementarTx(tx *gorm.DB, sucursalID, cajaID uuid.UUID, fecha time.Time, inc IncrementosResumen) (*model.ResumenCajaDiario, error)
	AgregarReferenciaTx(tx *gorm.DB, resumenID, transaccionID uuid.UUID, tipo string) error
	FindByDia(ctx context.Context, sucursalID, cajaID uuid.UUID, fecha time.Time) (*model.ResumenCajaDiario, error)
}

type resumenRepo struct{ db *gorm.DB }

func NewResumenRepository(db *gorm.DB) ResumenRepository { return &resumenRepo{db: db} }

func (r *resumenRepo) IncrementarTx(tx *gorm.DB, sucursalID, cajaID uuid.UUID, fecha time.Time, inc IncrementosResumen) (*model.ResumenCajaDiario, error) {
	dia := fecha.UTC().Truncate(24 * time.Hour)
	resumen := model.ResumenCajaDiario{
		SucursalID:        sucursalID,
		CajaID:            cajaID,
		Fecha:             dia,
		TotalVentas:       inc.TotalVentas,
		TotalCompras:      inc.TotalCompras,
		TotalIngresos:     inc.TotalIngresos,
		TotalEgresos:      inc.TotalEgresos,
		MontoFinalSistema: inc.MontoFinalSistema,
	}

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "sucursal_id"}, {Name: "caja_id"}, {Name: "fecha"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_ventas":        gorm.Expr("resumenes_caja_diarios.total_ventas + ?", inc.TotalVentas),
			"total_compras":       gorm.Expr("resumenes_caja_diarios.total_compras + ?", inc.TotalCompras),
			"total_ingresos":      gorm.Expr("resumenes_caja_diarios.total_ingresos + ?", inc.TotalIngresos),
			"total_egresos":       gorm.Expr("resumenes_caja_diarios.total_egresos + ?", inc.TotalEgresos),
			"monto_final_sistema": gorm.Expr("resumenes_caja_diarios.monto_final_sistema + ?", inc.MontoFinalSistema),
			"updated_at":          time.Now(),
		}),
	}).Create(&resumen).Error
	if err != nil {
		return nil, err
	}

	// Re-read: on the conflict path the returned struct carries the deltas,
	// not the accumulated totals.
	var actual model.ResumenCajaDiario
	if err := tx.Where("sucursal_id = ? AND caja_id = ? AND fecha = ?", sucursalID, cajaID, dia).
		First(&actual).Error; err != nil {
		return nil, err
	}
	return &actual, nil
}

func (r *resumenRepo) AgregarReferenciaTx(tx *gorm.DB, resumenID, transaccionID uuid.UUID, tipo string) error {
	return tx.Create(&model.ResumenTransaccion{
		ResumenID:     resumenID,
		TransaccionID: transaccionID,
		Tipo:          tipo,
	}).Error
}

func (r *resumenRepo) FindByDia(ctx context.Context, sucursalID, cajaID uuid.UUID, fecha time.Time) (*model.ResumenCajaDiario, error) {
	dia := fecha.UTC().Truncate(24 * time.Hour)
	var resumen model.ResumenCajaDiario
	err := r.db.WithContext(ctx).
		Preload("Transacciones").
		Where("sucursal_id = ? AND caja_id = ? AND fecha = ?", sucursalID, cajaID, dia).
		First(&resumen).Error
	return &resumen, err
}
