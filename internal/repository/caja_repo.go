package repository

import (
	"context"

	"tiendapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CajaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Caja, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Caja, error)
	ListBySucursal(ctx context.Context, sucursalID uuid.UUID) ([]model.Caja, error)
	Update(ctx context.Context, c *model.Caja) error
	UpdateTx(tx *gorm.DB, c *model.Caja) error

	// AjustarMontoEsperadoTx is an atomic increment/decrement; it never does
	// read-modify-write on the expected amount.
	AjustarMontoEsperadoTx(tx *gorm.DB, id uuid.UUID, monto decimal.Decimal, aumentar bool) error

	CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoCaja) error
	ListMovimientos(ctx context.Context, cajaID uuid.UUID) ([]model.MovimientoCaja, error)
	CreateCierreTx(tx *gorm.DB, c *model.CierreCaja) error
	ListCierres(ctx context.Context, cajaID uuid.UUID) ([]model.CierreCaja, error)

	DB() *gorm.DB
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *cajaRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	// FOR UPDATE: serializa aperturas/cierres concurrentes de la misma caja.
	err := tx.Clauses(forUpdate()).First(&c, id).Error
	return &c, err
}

func (r *cajaRepo) ListBySucursal(ctx context.Context, sucursalID uuid.UUID) ([]model.Caja, error) {
	var cajas []model.Caja
	err := r.db.WithContext(ctx).Where("sucursal_id = ?", sucursalID).Order("consecutivo ASC").Find(&cajas).Error
	return cajas, err
}

func (r *cajaRepo) Update(ctx context.Context, c *model.Caja) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *cajaRepo) UpdateTx(tx *gorm.DB, c *model.Caja) error {
	return tx.Save(c).Error
}

func (r *cajaRepo) AjustarMontoEsperadoTx(tx *gorm.DB, id uuid.UUID, monto decimal.Decimal, aumentar bool) error {
	expr := gorm.Expr("monto_esperado + ?", monto)
	if !aumentar {
		expr = gorm.Expr("monto_esperado - ?", monto)
	}
	return tx.Model(&model.Caja{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"monto_esperado":   expr,
			"tiene_movimiento": true,
		}).Error
}

func (r *cajaRepo) CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoCaja) error {
	return tx.Create(m).Error
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, cajaID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).Where("caja_id = ?", cajaID).Order("created_at ASC").Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) CreateCierreTx(tx *gorm.DB, c *model.CierreCaja) error {
	return tx.Create(c).Error
}

func (r *cajaRepo) ListCierres(ctx context.Context, cajaID uuid.UUID) ([]model.CierreCaja, error) {
	var cierres []model.CierreCaja
	err := r.db.WithContext(ctx).Where("caja_id = ?", cajaID).Order("cerrada_en DESC").Find(&cierres).Error
	return cierres, err
}
