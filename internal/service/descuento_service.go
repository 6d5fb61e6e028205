package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tiendapos/internal/dto"
	"tiendapos/internal/model"
	"tiendapos/internal/moneda"
	"tiendapos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DescuentoService resuelve descuentos declarados por línea y materializa
// DescuentoAplicado: el histórico de "qué descuento aplicó a esta venta"
// queda desacoplado de la definición viva, que puede editarse o expirar
// después sin corromper ventas pasadas.
type DescuentoService interface {
	Crear(ctx context.Context, req dto.CrearDescuentoRequest) (*dto.DescuentoResponse, error)
	Listar(ctx context.Context, soloActivos bool) ([]dto.DescuentoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error

	// AplicarTx resuelve la definición, valida su alcance contra el producto
	// de la línea y materializa (o reutiliza) el registro aplicado. El bool
	// indica si se creó uno nuevo: re-aplicar a la misma línea actualiza el
	// registro existente y devuelve false, de modo que el orquestador nunca
	// suma dos veces el mismo monto al descuento de la transacción.
	AplicarTx(tx *gorm.DB, detalle *model.DetalleTransaccion, producto *model.Producto, descuentoID uuid.UUID) (*model.DescuentoAplicado, bool, error)

	// RecalcularPorDevolucionTx prorratea el descuento aplicado de una línea
	// contra el nuevo total retenido, actualizando el registro en el lugar.
	// Devuelve el monto resultante (0 si el descuento ya no aplica).
	RecalcularPorDevolucionTx(tx *gorm.DB, detalleID uuid.UUID, nuevoTotal decimal.Decimal, mantiene bool) (decimal.Decimal, error)
}

type descuentoService struct {
	repo repository.DescuentoRepository
}

func NewDescuentoService(repo repository.DescuentoRepository) DescuentoService {
	return &descuentoService{repo: repo}
}

func (s *descuentoService) Crear(ctx context.Context, req dto.CrearDescuentoRequest) (*dto.DescuentoResponse, error) {
	if (req.ProductoID == nil) == (req.GrupoID == nil) {
		return nil, ErrDescuentoMalFormado
	}

	d := &model.Descuento{
		Nombre: req.Nombre,
		Tipo:   req.Tipo,
		Valor:  moneda.Redondear(req.Valor),
		Activo: true,
	}
	if req.ProductoID != nil {
		id, err := uuid.Parse(*req.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("producto_id inválido: %w", err)
		}
		d.ProductoID = &id
	}
	if req.GrupoID != nil {
		id, err := uuid.Parse(*req.GrupoID)
		if err != nil {
			return nil, fmt.Errorf("grupo_id inválido: %w", err)
		}
		d.GrupoID = &id
	}
	if req.VigenteDesde != nil {
		t, err := time.Parse("2006-01-02", *req.VigenteDesde)
		if err != nil {
			return nil, fmt.Errorf("vigente_desde inválido: %w", err)
		}
		d.VigenteDesde = &t
	}
	if req.VigenteHasta != nil {
		t, err := time.Parse("2006-01-02", *req.VigenteHasta)
		if err != nil {
			return nil, fmt.Errorf("vigente_hasta inválido: %w", err)
		}
		d.VigenteHasta = &t
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	resp := descuentoToResponse(d)
	return &resp, nil
}

func (s *descuentoService) Listar(ctx context.Context, soloActivos bool) ([]dto.DescuentoResponse, error) {
	descuentos, err := s.repo.List(ctx, soloActivos)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DescuentoResponse, 0, len(descuentos))
	for i := range descuentos {
		out = append(out, descuentoToResponse(&descuentos[i]))
	}
	return out, nil
}

func (s *descuentoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.Desactivar(ctx, id)
}

func (s *descuentoService) AplicarTx(tx *gorm.DB, detalle *model.DetalleTransaccion, producto *model.Producto, descuentoID uuid.UUID) (*model.DescuentoAplicado, bool, error) {
	def, err := s.repo.FindByID(context.Background(), descuentoID)
	if err != nil {
		return nil, false, ErrDescuentoNoEncontrado
	}
	alcance, ok := def.AlcanceDe()
	if !ok {
		return nil, false, ErrDescuentoMalFormado
	}
	if !def.Activo || !vigente(def, time.Now()) {
		return nil, false, ErrDescuentoNoEncontrado
	}

	switch alcance.Tipo {
	case model.AlcanceProducto:
		if alcance.ObjetivoID != detalle.ProductoID {
			return nil, false, ErrDescuentoNoAplica
		}
	case model.AlcanceGrupo:
		if producto == nil || producto.GrupoID == nil || *producto.GrupoID != alcance.ObjetivoID {
			return nil, false, ErrDescuentoNoAplica
		}
	}

	var monto, porcentaje decimal.Decimal
	switch def.Tipo {
	case model.DescPorcentaje:
		porcentaje = def.Valor
		monto = moneda.Porcentaje(detalle.Subtotal, def.Valor)
	case model.DescFijo:
		monto = def.Valor
		if moneda.MayorQue(monto, detalle.Subtotal) {
			monto = detalle.Subtotal
		}
		// Porcentaje equivalente retro-calculado para el histórico.
		pct, err := moneda.Dividir(monto.Mul(decimal.NewFromInt(100)), detalle.Subtotal)
		if err != nil {
			return nil, false, err
		}
		porcentaje = pct
	default:
		return nil, false, ErrDescuentoMalFormado
	}

	// Replay idempotente: una línea nunca acumula dos registros para la
	// misma definición.
	existente, err := s.repo.FindAplicadoPorDetalleTx(tx, detalle.ID, def.ID)
	if err == nil && existente != nil && existente.ID != uuid.Nil {
		existente.Monto = monto
		existente.Porcentaje = porcentaje
		if err := s.repo.UpdateAplicadoTx(tx, existente); err != nil {
			return nil, false, err
		}
		return existente, false, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	aplicado := &model.DescuentoAplicado{
		DetalleID:   detalle.ID,
		DescuentoID: def.ID,
		Alcance:     alcance.Tipo,
		Monto:       monto,
		Porcentaje:  porcentaje,
	}
	if err := s.repo.CreateAplicadoTx(tx, aplicado); err != nil {
		return nil, false, err
	}
	return aplicado, true, nil
}

func (s *descuentoService) RecalcularPorDevolucionTx(tx *gorm.DB, detalleID uuid.UUID, nuevoTotal decimal.Decimal, mantiene bool) (decimal.Decimal, error) {
	aplicados, err := s.repo.FindAplicadosPorDetalle(context.Background(), detalleID)
	if err != nil {
		return moneda.Cero, err
	}
	total := moneda.Cero
	for i := range aplicados {
		a := &aplicados[i]
		if mantiene {
			a.Monto = moneda.Porcentaje(nuevoTotal, a.Porcentaje)
		} else {
			a.Monto = moneda.Cero
		}
		if err := s.repo.UpdateAplicadoTx(tx, a); err != nil {
			return moneda.Cero, err
		}
		total = moneda.Sumar(total, a.Monto)
	}
	return total, nil
}

func vigente(d *model.Descuento, ahora time.Time) bool {
	if d.VigenteDesde != nil && ahora.Before(*d.VigenteDesde) {
		return false
	}
	if d.VigenteHasta != nil && ahora.After(*d.VigenteHasta) {
		return false
	}
	return true
}

func descuentoToResponse(d *model.Descuento) dto.DescuentoResponse {
	alcance, _ := d.AlcanceDe()
	return dto.DescuentoResponse{
		ID:         d.ID.String(),
		Nombre:     d.Nombre,
		Tipo:       d.Tipo,
		Valor:      d.Valor,
		Alcance:    alcance.Tipo,
		ObjetivoID: alcance.ObjetivoID.String(),
		Activo:     d.Activo,
	}
}
