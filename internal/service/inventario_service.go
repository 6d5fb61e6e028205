package service

import (
	"context"
	"fmt"

	"tiendapos/internal/dto"
	"tiendapos/internal/model"
	"tiendapos/internal/moneda"
	"tiendapos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Libro de inventario ───────────────────────────────────────────────────────
// Unidad de trabajo explícita por request: las mutaciones de stock/costo se
// acumulan en memoria y se persisten como lote en Guardar, dentro de la
// transacción del llamador. Un Libro nunca se comparte entre requests; el
// control de versiones por registro detecta escrituras concurrentes al
// momento del flush.

type Libro struct {
	sucursalID  uuid.UUID
	existencias map[uuid.UUID]*model.Existencia // por existencia ID
	porProducto map[uuid.UUID]uuid.UUID         // producto ID → existencia ID
	movimientos []model.MovimientoInventario
}

// PorProducto returns the loaded record for a product, or nil.
func (l *Libro) PorProducto(productoID uuid.UUID) *model.Existencia {
	id, ok := l.porProducto[productoID]
	if !ok {
		return nil
	}
	return l.existencias[id]
}

// Existencias returns every record in the working set (staged state).
func (l *Libro) Existencias() []*model.Existencia {
	out := make([]*model.Existencia, 0, len(l.existencias))
	for _, e := range l.existencias {
		out = append(out, e)
	}
	return out
}

// Descontar stages a stock subtraction. Fails without mutating anything when
// the record is missing from the working set or the quantity exceeds stock,
// so the whole batch stays untouched on error. Stock 0 deactivates the row.
func (l *Libro) Descontar(existenciaID uuid.UUID, cantidad int, tipo string, usuarioID uuid.UUID) (*model.Existencia, error) {
	if cantidad <= 0 {
		return nil, ErrCantidadInvalida
	}
	e, ok := l.existencias[existenciaID]
	if !ok {
		return nil, ErrExistenciaNoCargada
	}
	if cantidad > e.Stock {
		return nil, fmt.Errorf("%w: disponible %d, solicitado %d", ErrStockInsuficiente, e.Stock, cantidad)
	}

	anterior := e.Stock
	e.Stock -= cantidad
	if e.Stock == 0 {
		e.Activo = false
	}
	l.movimientos = append(l.movimientos, model.MovimientoInventario{
		ExistenciaID:  e.ID,
		Tipo:          tipo,
		Cantidad:      -cantidad,
		StockAnterior: anterior,
		StockNuevo:    e.Stock,
		UsuarioID:     usuarioID,
	})
	return e, nil
}

// Agregar stages a stock addition, reactivating the record. When a unit cost
// is given and differs from the current one, the cost is recomputed as a
// stock-weighted moving average, not FIFO/LIFO:
//
//	nuevo = (costoActual*stockActual + costo*cantidad) / (stockActual+cantidad)
func (l *Libro) Agregar(existenciaID uuid.UUID, cantidad int, tipo string, usuarioID uuid.UUID, costoUnitario *decimal.Decimal) (*model.Existencia, error) {
	if cantidad <= 0 {
		return nil, ErrCantidadInvalida
	}
	e, ok := l.existencias[existenciaID]
	if !ok {
		return nil, ErrExistenciaNoCargada
	}

	anterior := e.Stock
	if costoUnitario != nil && !costoUnitario.Equal(e.CostoUnitario) {
		existente := e.CostoUnitario.Mul(decimal.NewFromInt(int64(e.Stock)))
		entrante := costoUnitario.Mul(decimal.NewFromInt(int64(cantidad)))
		promedio, err := moneda.Dividir(existente.Add(entrante), decimal.NewFromInt(int64(e.Stock+cantidad)))
		if err != nil {
			return nil, err
		}
		e.CostoUnitario = promedio
	}
	e.Stock += cantidad
	e.Activo = true

	l.movimientos = append(l.movimientos, model.MovimientoInventario{
		ExistenciaID:  e.ID,
		Tipo:          tipo,
		Cantidad:      cantidad,
		StockAnterior: anterior,
		StockNuevo:    e.Stock,
		UsuarioID:     usuarioID,
	})
	return e, nil
}

// ── Servicio ──────────────────────────────────────────────────────────────────

type InventarioService interface {
	// CargarLibro loads the working set once per request, before any mutation.
	CargarLibro(ctx context.Context, sucursalID uuid.UUID, productoIDs []uuid.UUID) (*Libro, error)
	// GuardarLibroTx flushes staged records (upsert batch) and then the
	// staged movements (append-only insert), in that order.
	GuardarLibroTx(tx *gorm.DB, libro *Libro) error

	AjustarStock(ctx context.Context, usuarioID uuid.UUID, req dto.AjusteStockRequest) (*dto.ExistenciaResponse, error)
	ListarExistencias(ctx context.Context, filter dto.ExistenciaFilter) ([]dto.ExistenciaResponse, int64, error)
	ListarMovimientos(ctx context.Context, existenciaID uuid.UUID, limit int) ([]dto.MovimientoInventarioResponse, error)
}

type inventarioService struct {
	repo repository.ExistenciaRepository
}

func NewInventarioService(repo repository.ExistenciaRepository) InventarioService {
	return &inventarioService{repo: repo}
}

func (s *inventarioService) CargarLibro(ctx context.Context, sucursalID uuid.UUID, productoIDs []uuid.UUID) (*Libro, error) {
	existencias, err := s.repo.FindBySucursalYProductos(ctx, sucursalID, productoIDs)
	if err != nil {
		return nil, err
	}

	libro := &Libro{
		sucursalID:  sucursalID,
		existencias: make(map[uuid.UUID]*model.Existencia, len(existencias)),
		porProducto: make(map[uuid.UUID]uuid.UUID, len(existencias)),
	}
	for i := range existencias {
		e := &existencias[i]
		libro.existencias[e.ID] = e
		libro.porProducto[e.ProductoID] = e.ID
	}

	// Todo producto solicitado debe tener existencia en la sucursal.
	for _, pid := range productoIDs {
		if _, ok := libro.porProducto[pid]; !ok {
			return nil, fmt.Errorf("%w: producto %s en sucursal %s", ErrExistenciaNoExiste, pid, sucursalID)
		}
	}
	return libro, nil
}

func (s *inventarioService) GuardarLibroTx(tx *gorm.DB, libro *Libro) error {
	if len(libro.movimientos) == 0 {
		return nil
	}
	// Solo se persisten los registros efectivamente tocados por movimientos.
	tocadas := make(map[uuid.UUID]bool, len(libro.movimientos))
	for _, m := range libro.movimientos {
		tocadas[m.ExistenciaID] = true
	}
	var lote []*model.Existencia
	for id := range tocadas {
		lote = append(lote, libro.existencias[id])
	}

	if err := s.repo.GuardarLoteTx(tx, lote); err != nil {
		return err
	}
	return s.repo.CrearMovimientosTx(tx, libro.movimientos)
}

// AjustarStock is the manual entrada/salida endpoint: one-record working
// set, one movement, one transaction.
func (s *inventarioService) AjustarStock(ctx context.Context, usuarioID uuid.UUID, req dto.AjusteStockRequest) (*dto.ExistenciaResponse, error) {
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, fmt.Errorf("producto_id inválido: %w", err)
	}
	sucursalID, err := uuid.Parse(req.SucursalID)
	if err != nil {
		return nil, fmt.Errorf("sucursal_id inválido: %w", err)
	}

	libro, err := s.CargarLibro(ctx, sucursalID, []uuid.UUID{productoID})
	if err != nil {
		return nil, err
	}
	e := libro.PorProducto(productoID)

	if req.Cantidad > 0 {
		_, err = libro.Agregar(e.ID, req.Cantidad, model.MovInvAjuste, usuarioID, req.CostoUnitario)
	} else {
		_, err = libro.Descontar(e.ID, -req.Cantidad, model.MovInvAjuste, usuarioID)
	}
	if err != nil {
		return nil, err
	}

	if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.GuardarLibroTx(tx, libro)
	}); err != nil {
		return nil, err
	}

	resp := existenciaToResponse(e)
	return &resp, nil
}

func (s *inventarioService) ListarExistencias(ctx context.Context, filter dto.ExistenciaFilter) ([]dto.ExistenciaResponse, int64, error) {
	sucursalID, err := uuid.Parse(filter.SucursalID)
	if err != nil {
		return nil, 0, fmt.Errorf("sucursal_id inválido: %w", err)
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}

	existencias, total, err := s.repo.List(ctx, sucursalID, filter.SoloActivas, filter.BajoReorden, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.ExistenciaResponse, 0, len(existencias))
	for i := range existencias {
		out = append(out, existenciaToResponse(&existencias[i]))
	}
	return out, total, nil
}

func (s *inventarioService) ListarMovimientos(ctx context.Context, existenciaID uuid.UUID, limit int) ([]dto.MovimientoInventarioResponse, error) {
	movs, err := s.repo.ListMovimientos(ctx, existenciaID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovimientoInventarioResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, dto.MovimientoInventarioResponse{
			ID:            m.ID.String(),
			ExistenciaID:  m.ExistenciaID.String(),
			Tipo:          m.Tipo,
			Cantidad:      m.Cantidad,
			StockAnterior: m.StockAnterior,
			StockNuevo:    m.StockNuevo,
			CreatedAt:     m.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	return out, nil
}

func existenciaToResponse(e *model.Existencia) dto.ExistenciaResponse {
	nombre := ""
	if e.Producto != nil {
		nombre = e.Producto.Nombre
	}
	return dto.ExistenciaResponse{
		ID:            e.ID.String(),
		ProductoID:    e.ProductoID.String(),
		Producto:      nombre,
		SucursalID:    e.SucursalID.String(),
		Stock:         e.Stock,
		CostoUnitario: e.CostoUnitario,
		PrecioVenta:   e.PrecioVenta,
		PuntoReorden:  e.PuntoReorden,
		Activo:        e.Activo,
	}
}
