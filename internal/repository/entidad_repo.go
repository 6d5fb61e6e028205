package repository

import (
	"context"

	"tiendapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AjusteContadores are signed deltas over the four credit-exposure
// counters of an Entidad. Zero fields still execute (a + 0 no-op) to keep
// the update a single statement.
type AjusteContadores struct {
	MontoPorCobrar      decimal.Decimal
	AnticiposRecibidos  decimal.Decimal
	MontoPorPagar       decimal.Decimal
	AnticiposEntregados decimal.Decimal
}

type EntidadRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Entidad, error)
	// AjustarContadoresTx applies the deltas atomically with server-side
	// GREATEST(..., 0): the counters never persist negative even under
	// rounding drift.
	AjustarContadoresTx(tx *gorm.DB, id uuid.UUID, ajuste AjusteContadores) error
}

type entidadRepo struct{ db *gorm.DB }

func NewEntidadRepository(db *gorm.DB) EntidadRepository { return &entidadRepo{db: db} }

func (r *entidadRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Entidad, error) {
	var e model.Entidad
	err := r.db.WithContext(ctx).First(&e, id).Error
	return &e, err
}

func (r *entidadRepo) AjustarContadoresTx(tx *gorm.DB, id uuid.UUID, ajuste AjusteContadores) error {
	return tx.Model(&model.Entidad{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"monto_por_cobrar":     gorm.Expr("GREATEST(monto_por_cobrar + ?, 0)", ajuste.MontoPorCobrar),
			"anticipos_recibidos":  gorm.Expr("GREATEST(anticipos_recibidos + ?, 0)", ajuste.AnticiposRecibidos),
			"monto_por_pagar":      gorm.Expr("GREATEST(monto_por_pagar + ?, 0)", ajuste.MontoPorPagar),
			"anticipos_entregados": gorm.Expr("GREATEST(anticipos_entregados + ?, 0)", ajuste.AnticiposEntregados),
		}).Error
}
