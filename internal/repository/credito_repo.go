package repository

import (
	"context"

	"tiendapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreditoRepository interface {
	CreateTx(tx *gorm.DB, c *model.Credito) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Credito, error)
	// FindByIDTx locks the account row: payments against the same credit
	// serialize instead of double-spending the balance.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Credito, error)
	FindByTransaccionTx(tx *gorm.DB, transaccionID uuid.UUID) (*model.Credito, error)
	UpdateTx(tx *gorm.DB, c *model.Credito) error
	UpdateCuotaTx(tx *gorm.DB, cuota *model.Cuota) error
	CreateCuotasTx(tx *gorm.DB, cuotas []model.Cuota) error
	CreatePagoTx(tx *gorm.DB, p *model.PagoCredito) error
	// SumPagosTx totals the payments already recorded for a credit. Used to
	// cap cash refunds on returns at what the entity actually handed over.
	SumPagosTx(tx *gorm.DB, creditoID uuid.UUID) (decimal.Decimal, error)
	ListPorEntidad(ctx context.Context, entidadID uuid.UUID) ([]model.Credito, error)
	DB() *gorm.DB
}

type creditoRepo struct{ db *gorm.DB }

func NewCreditoRepository(db *gorm.DB) CreditoRepository { return &creditoRepo{db: db} }

func (r *creditoRepo) DB() *gorm.DB { return r.db }

func (r *creditoRepo) CreateTx(tx *gorm.DB, c *model.Credito) error {
	return tx.Create(c).Error
}

func (r *creditoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Credito, error) {
	var c model.Credito
	err := r.db.WithContext(ctx).
		Preload("Cuotas", func(db *gorm.DB) *gorm.DB { return db.Order("numero ASC") }).
		Preload("Pagos", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&c, id).Error
	return &c, err
}

func (r *creditoRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Credito, error) {
	var c model.Credito
	if err := tx.Clauses(forUpdate()).First(&c, id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("credito_id = ?", id).Order("numero ASC").Find(&c.Cuotas).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *creditoRepo) FindByTransaccionTx(tx *gorm.DB, transaccionID uuid.UUID) (*model.Credito, error) {
	var c model.Credito
	if err := tx.Clauses(forUpdate()).Where("transaccion_id = ?", transaccionID).First(&c).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("credito_id = ?", c.ID).Order("numero ASC").Find(&c.Cuotas).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *creditoRepo) UpdateTx(tx *gorm.DB, c *model.Credito) error {
	return tx.Model(&model.Credito{}).Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"estado":          c.Estado,
			"saldo_original":  c.SaldoOriginal,
			"saldo_pendiente": c.SaldoPendiente,
			"pago_minimo":     c.PagoMinimo,
		}).Error
}

func (r *creditoRepo) UpdateCuotaTx(tx *gorm.DB, cuota *model.Cuota) error {
	return tx.Model(&model.Cuota{}).Where("id = ?", cuota.ID).
		Updates(map[string]interface{}{
			"estado": cuota.Estado,
			"monto":  cuota.Monto,
		}).Error
}

func (r *creditoRepo) CreateCuotasTx(tx *gorm.DB, cuotas []model.Cuota) error {
	if len(cuotas) == 0 {
		return nil
	}
	return tx.Create(&cuotas).Error
}

func (r *creditoRepo) CreatePagoTx(tx *gorm.DB, p *model.PagoCredito) error {
	return tx.Create(p).Error
}

func (r *creditoRepo) SumPagosTx(tx *gorm.DB, creditoID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := tx.Model(&model.PagoCredito{}).
		Where("credito_id = ?", creditoID).
		Select("SUM(monto)").
		Scan(&total).Error
	if err != nil || !total.Valid {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}

func (r *creditoRepo) ListPorEntidad(ctx context.Context, entidadID uuid.UUID) ([]model.Credito, error) {
	var creditos []model.Credito
	err := r.db.WithContext(ctx).
		Preload("Cuotas").
		Where("entidad_id = ?", entidadID).
		Order("created_at DESC").
		Find(&creditos).Error
	return creditos, err
}
