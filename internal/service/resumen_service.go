package service

import (
	"context"
	"time"

	"tiendapos/internal/model"
	"tiendapos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ResumenService mantiene el rollup diario por (sucursal, caja, día).
// Todos los métodos *Tx operan dentro de la transacción del orquestador; el
// upsert usa incrementos atómicos del lado del servidor, nunca
// read-modify-write.
type ResumenService interface {
	AgregarTransaccionTx(tx *gorm.DB, t *model.Transaccion) error
	// AgregarDevolucionTx descuenta la devolución del total del día según el
	// tipo de la transacción de origen. El saldo en efectivo sólo se mueve
	// por la porción reintegrada en caja, que en créditos puede ser menor al
	// total devuelto.
	AgregarDevolucionTx(tx *gorm.DB, devolucion *model.Transaccion, tipoOrigen string, efectivo decimal.Decimal) error
	AgregarIngresoTx(tx *gorm.DB, t *model.Transaccion) error
	AgregarEgresoTx(tx *gorm.DB, t *model.Transaccion) error
	ObtenerDia(ctx context.Context, sucursalID, cajaID uuid.UUID, fecha time.Time) (*model.ResumenCajaDiario, error)
}

type resumenService struct {
	repo repository.ResumenRepository
}

func NewResumenService(repo repository.ResumenRepository) ResumenService {
	return &resumenService{repo: repo}
}

func (s *resumenService) AgregarTransaccionTx(tx *gorm.DB, t *model.Transaccion) error {
	inc := repository.IncrementosResumen{}
	// Las operaciones a crédito suman al total del día pero no mueven el
	// saldo en efectivo: la plata todavía no pasó por la caja.
	contado := t.MetodoPago == model.PagoContado
	switch t.Tipo {
	case model.TxVenta:
		inc.TotalVentas = t.Total
		if contado {
			inc.MontoFinalSistema = t.Total
		}
	case model.TxCompra:
		inc.TotalCompras = t.Total
		if contado {
			inc.MontoFinalSistema = t.Total.Neg()
		}
	default:
		return nil
	}

	resumen, err := s.repo.IncrementarTx(tx, t.SucursalID, t.CajaID, t.CreatedAt, inc)
	if err != nil {
		return err
	}
	return s.repo.AgregarReferenciaTx(tx, resumen.ID, t.ID, t.Tipo)
}

func (s *resumenService) AgregarDevolucionTx(tx *gorm.DB, devolucion *model.Transaccion, tipoOrigen string, efectivo decimal.Decimal) error {
	inc := repository.IncrementosResumen{}
	switch tipoOrigen {
	case model.TxVenta:
		inc.TotalVentas = devolucion.Total.Neg()
		inc.MontoFinalSistema = efectivo.Neg()
	case model.TxCompra:
		inc.TotalCompras = devolucion.Total.Neg()
		inc.MontoFinalSistema = efectivo
	default:
		return nil
	}

	resumen, err := s.repo.IncrementarTx(tx, devolucion.SucursalID, devolucion.CajaID, devolucion.CreatedAt, inc)
	if err != nil {
		return err
	}
	return s.repo.AgregarReferenciaTx(tx, resumen.ID, devolucion.ID, model.TxDevolucion)
}

func (s *resumenService) AgregarIngresoTx(tx *gorm.DB, t *model.Transaccion) error {
	_, err := s.repo.IncrementarTx(tx, t.SucursalID, t.CajaID, t.CreatedAt, repository.IncrementosResumen{
		TotalIngresos:     t.Total,
		MontoFinalSistema: t.Total,
	})
	return err
}

func (s *resumenService) AgregarEgresoTx(tx *gorm.DB, t *model.Transaccion) error {
	_, err := s.repo.IncrementarTx(tx, t.SucursalID, t.CajaID, t.CreatedAt, repository.IncrementosResumen{
		TotalEgresos:      t.Total,
		MontoFinalSistema: t.Total.Neg(),
	})
	return err
}

func (s *resumenService) ObtenerDia(ctx context.Context, sucursalID, cajaID uuid.UUID, fecha time.Time) (*model.ResumenCajaDiario, error) {
	return s.repo.FindByDia(ctx, sucursalID, cajaID, fecha)
}
