package service

// In-memory repository fakes shared by the service tests. Every *Tx method
// ignores the nil transaction handed down by runTx in unit-test mode.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tiendapos/internal/dto"
	"tiendapos/internal/model"
	"tiendapos/internal/moneda"
	"tiendapos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ── Existencias ──────────────────────────────────────────────────────────────

type fakeExistenciaRepo struct {
	existencias map[uuid.UUID]*model.Existencia
	movimientos []model.MovimientoInventario
}

func newFakeExistenciaRepo() *fakeExistenciaRepo {
	return &fakeExistenciaRepo{existencias: make(map[uuid.UUID]*model.Existencia)}
}

func (r *fakeExistenciaRepo) agregar(e *model.Existencia) *model.Existencia {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.existencias[e.ID] = e
	return e
}

func (r *fakeExistenciaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Existencia, error) {
	e, ok := r.existencias[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (r *fakeExistenciaRepo) FindBySucursalYProductos(_ context.Context, sucursalID uuid.UUID, productoIDs []uuid.UUID) ([]model.Existencia, error) {
	var out []model.Existencia
	for _, pid := range productoIDs {
		for _, e := range r.existencias {
			if e.SucursalID == sucursalID && e.ProductoID == pid {
				out = append(out, *e)
			}
		}
	}
	return out, nil
}

func (r *fakeExistenciaRepo) List(_ context.Context, sucursalID uuid.UUID, soloActivas, bajoReorden bool, _, _ int) ([]model.Existencia, int64, error) {
	var out []model.Existencia
	for _, e := range r.existencias {
		if e.SucursalID != sucursalID {
			continue
		}
		if soloActivas && !e.Activo {
			continue
		}
		if bajoReorden && e.Stock > e.PuntoReorden {
			continue
		}
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r *fakeExistenciaRepo) GuardarLoteTx(_ *gorm.DB, existencias []*model.Existencia) error {
	for _, e := range existencias {
		guardada, ok := r.existencias[e.ID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		if guardada.Version != e.Version {
			return repository.ErrVersionObsoleta
		}
		copia := *e
		copia.Version++
		r.existencias[e.ID] = &copia
	}
	return nil
}

func (r *fakeExistenciaRepo) CrearMovimientosTx(_ *gorm.DB, movs []model.MovimientoInventario) error {
	for i := range movs {
		if movs[i].ID == uuid.Nil {
			movs[i].ID = uuid.New()
		}
		movs[i].CreatedAt = time.Now()
	}
	r.movimientos = append(r.movimientos, movs...)
	return nil
}

func (r *fakeExistenciaRepo) ListMovimientos(_ context.Context, existenciaID uuid.UUID, limit int) ([]model.MovimientoInventario, error) {
	var out []model.MovimientoInventario
	for _, m := range r.movimientos {
		if m.ExistenciaID == existenciaID {
			out = append(out, m)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeExistenciaRepo) DB() *gorm.DB { return nil }

// ── Caja ─────────────────────────────────────────────────────────────────────

type fakeCajaRepo struct {
	cajas       map[uuid.UUID]*model.Caja
	movimientos []model.MovimientoCaja
	cierres     []model.CierreCaja
}

func newFakeCajaRepo() *fakeCajaRepo {
	return &fakeCajaRepo{cajas: make(map[uuid.UUID]*model.Caja)}
}

func (r *fakeCajaRepo) agregar(c *model.Caja) *model.Caja {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.cajas[c.ID] = c
	return c
}

func (r *fakeCajaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Caja, error) {
	c, ok := r.cajas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *fakeCajaRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Caja, error) {
	return r.FindByID(context.Background(), id)
}

func (r *fakeCajaRepo) ListBySucursal(_ context.Context, sucursalID uuid.UUID) ([]model.Caja, error) {
	var out []model.Caja
	for _, c := range r.cajas {
		if c.SucursalID == sucursalID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCajaRepo) Update(_ context.Context, c *model.Caja) error {
	r.cajas[c.ID] = c
	return nil
}

func (r *fakeCajaRepo) UpdateTx(_ *gorm.DB, c *model.Caja) error {
	return r.Update(context.Background(), c)
}

func (r *fakeCajaRepo) AjustarMontoEsperadoTx(_ *gorm.DB, id uuid.UUID, monto decimal.Decimal, aumentar bool) error {
	c, ok := r.cajas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if aumentar {
		c.MontoEsperado = moneda.Sumar(c.MontoEsperado, monto)
	} else {
		c.MontoEsperado = moneda.Restar(c.MontoEsperado, monto)
	}
	c.TieneMovimiento = true
	return nil
}

func (r *fakeCajaRepo) CreateMovimientoTx(_ *gorm.DB, m *model.MovimientoCaja) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *fakeCajaRepo) ListMovimientos(_ context.Context, cajaID uuid.UUID) ([]model.MovimientoCaja, error) {
	var out []model.MovimientoCaja
	for _, m := range r.movimientos {
		if m.CajaID == cajaID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeCajaRepo) CreateCierreTx(_ *gorm.DB, c *model.CierreCaja) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.cierres = append([]model.CierreCaja{*c}, r.cierres...)
	return nil
}

func (r *fakeCajaRepo) ListCierres(_ context.Context, cajaID uuid.UUID) ([]model.CierreCaja, error) {
	var out []model.CierreCaja
	for _, c := range r.cierres {
		if c.CajaID == cajaID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCajaRepo) DB() *gorm.DB { return nil }

// ── Resumen diario ───────────────────────────────────────────────────────────

type fakeResumenRepo struct {
	resumenes   map[string]*model.ResumenCajaDiario
	referencias []model.ResumenTransaccion
}

func newFakeResumenRepo() *fakeResumenRepo {
	return &fakeResumenRepo{resumenes: make(map[string]*model.ResumenCajaDiario)}
}

func claveDia(sucursalID, cajaID uuid.UUID, fecha time.Time) string {
	return fmt.Sprintf("%s|%s|%s", sucursalID, cajaID, fecha.UTC().Format("2006-01-02"))
}

func (r *fakeResumenRepo) IncrementarTx(_ *gorm.DB, sucursalID, cajaID uuid.UUID, fecha time.Time, inc repository.IncrementosResumen) (*model.ResumenCajaDiario, error) {
	clave := claveDia(sucursalID, cajaID, fecha)
	resumen, ok := r.resumenes[clave]
	if !ok {
		resumen = &model.ResumenCajaDiario{
			ID:         uuid.New(),
			SucursalID: sucursalID,
			CajaID:     cajaID,
			Fecha:      fecha.UTC().Truncate(24 * time.Hour),
		}
		r.resumenes[clave] = resumen
	}
	resumen.TotalVentas = moneda.Sumar(resumen.TotalVentas, inc.TotalVentas)
	resumen.TotalCompras = moneda.Sumar(resumen.TotalCompras, inc.TotalCompras)
	resumen.TotalIngresos = moneda.Sumar(resumen.TotalIngresos, inc.TotalIngresos)
	resumen.TotalEgresos = moneda.Sumar(resumen.TotalEgresos, inc.TotalEgresos)
	resumen.MontoFinalSistema = moneda.Sumar(resumen.MontoFinalSistema, inc.MontoFinalSistema)
	return resumen, nil
}

func (r *fakeResumenRepo) AgregarReferenciaTx(_ *gorm.DB, resumenID, transaccionID uuid.UUID, tipo string) error {
	r.referencias = append(r.referencias, model.ResumenTransaccion{
		ID:            uuid.New(),
		ResumenID:     resumenID,
		TransaccionID: transaccionID,
		Tipo:          tipo,
	})
	return nil
}

func (r *fakeResumenRepo) FindByDia(_ context.Context, sucursalID, cajaID uuid.UUID, fecha time.Time) (*model.ResumenCajaDiario, error) {
	resumen, ok := r.resumenes[claveDia(sucursalID, cajaID, fecha)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return resumen, nil
}

// ── Transacciones ────────────────────────────────────────────────────────────

type fakeTransaccionRepo struct {
	transacciones map[uuid.UUID]*model.Transaccion
}

func newFakeTransaccionRepo() *fakeTransaccionRepo {
	return &fakeTransaccionRepo{transacciones: make(map[uuid.UUID]*model.Transaccion)}
}

func (r *fakeTransaccionRepo) CreateTx(_ *gorm.DB, t *model.Transaccion) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now()
	copia := *t
	r.transacciones[t.ID] = &copia
	return nil
}

func (r *fakeTransaccionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Transaccion, error) {
	t, ok := r.transacciones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *t
	copia.Detalles = append([]model.DetalleTransaccion(nil), t.Detalles...)
	return &copia, nil
}

func (r *fakeTransaccionRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Transaccion, error) {
	return r.FindByID(context.Background(), id)
}

func (r *fakeTransaccionRepo) UpdateTx(_ *gorm.DB, t *model.Transaccion) error {
	guardada, ok := r.transacciones[t.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	guardada.Estado = t.Estado
	guardada.Subtotal = t.Subtotal
	guardada.Descuento = t.Descuento
	guardada.Total = t.Total
	guardada.EliminadaEn = t.EliminadaEn
	return nil
}

func (r *fakeTransaccionRepo) UpdateEstadoTx(_ *gorm.DB, id uuid.UUID, estado string) error {
	t, ok := r.transacciones[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Estado = estado
	return nil
}

func (r *fakeTransaccionRepo) UpdateDetalleTx(_ *gorm.DB, d *model.DetalleTransaccion) error {
	t, ok := r.transacciones[d.TransaccionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range t.Detalles {
		if t.Detalles[i].ID == d.ID {
			t.Detalles[i] = *d
			return nil
		}
	}
	t.Detalles = append(t.Detalles, *d)
	return nil
}

func (r *fakeTransaccionRepo) List(_ context.Context, filter dto.TransaccionFilter) ([]model.Transaccion, int64, error) {
	var out []model.Transaccion
	for _, t := range r.transacciones {
		if filter.Tipo != "" && t.Tipo != filter.Tipo {
			continue
		}
		if filter.Estado != "" && t.Estado != filter.Estado {
			continue
		}
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTransaccionRepo) DB() *gorm.DB { return nil }

// ── Descuentos ───────────────────────────────────────────────────────────────

type fakeDescuentoRepo struct {
	descuentos map[uuid.UUID]*model.Descuento
	aplicados  []*model.DescuentoAplicado
}

func newFakeDescuentoRepo() *fakeDescuentoRepo {
	return &fakeDescuentoRepo{descuentos: make(map[uuid.UUID]*model.Descuento)}
}

func (r *fakeDescuentoRepo) Create(_ context.Context, d *model.Descuento) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	r.descuentos[d.ID] = d
	return nil
}

func (r *fakeDescuentoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Descuento, error) {
	d, ok := r.descuentos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return d, nil
}

func (r *fakeDescuentoRepo) List(_ context.Context, soloActivos bool) ([]model.Descuento, error) {
	var out []model.Descuento
	for _, d := range r.descuentos {
		if soloActivos && !d.Activo {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (r *fakeDescuentoRepo) Desactivar(_ context.Context, id uuid.UUID) error {
	d, ok := r.descuentos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.Activo = false
	return nil
}

func (r *fakeDescuentoRepo) CreateAplicadoTx(_ *gorm.DB, a *model.DescuentoAplicado) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	copia := *a
	r.aplicados = append(r.aplicados, &copia)
	return nil
}

func (r *fakeDescuentoRepo) FindAplicadoPorDetalleTx(_ *gorm.DB, detalleID, descuentoID uuid.UUID) (*model.DescuentoAplicado, error) {
	for _, a := range r.aplicados {
		if a.DetalleID == detalleID && a.DescuentoID == descuentoID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeDescuentoRepo) FindAplicadosPorDetalle(_ context.Context, detalleID uuid.UUID) ([]model.DescuentoAplicado, error) {
	var out []model.DescuentoAplicado
	for _, a := range r.aplicados {
		if a.DetalleID == detalleID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeDescuentoRepo) UpdateAplicadoTx(_ *gorm.DB, a *model.DescuentoAplicado) error {
	for i, guardado := range r.aplicados {
		if guardado.ID == a.ID {
			copia := *a
			r.aplicados[i] = &copia
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Créditos ─────────────────────────────────────────────────────────────────

type fakeCreditoRepo struct {
	creditos map[uuid.UUID]*model.Credito
	pagos    []model.PagoCredito
}

func newFakeCreditoRepo() *fakeCreditoRepo {
	return &fakeCreditoRepo{creditos: make(map[uuid.UUID]*model.Credito)}
}

func (r *fakeCreditoRepo) CreateTx(_ *gorm.DB, c *model.Credito) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.creditos[c.ID] = c
	return nil
}

func (r *fakeCreditoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Credito, error) {
	c, ok := r.creditos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c.Pagos = nil
	for _, p := range r.pagos {
		if p.CreditoID == id {
			c.Pagos = append(c.Pagos, p)
		}
	}
	return c, nil
}

func (r *fakeCreditoRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Credito, error) {
	return r.FindByID(context.Background(), id)
}

func (r *fakeCreditoRepo) FindByTransaccionTx(_ *gorm.DB, transaccionID uuid.UUID) (*model.Credito, error) {
	for _, c := range r.creditos {
		if c.TransaccionID == transaccionID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCreditoRepo) UpdateTx(_ *gorm.DB, c *model.Credito) error {
	r.creditos[c.ID] = c
	return nil
}

func (r *fakeCreditoRepo) UpdateCuotaTx(_ *gorm.DB, cuota *model.Cuota) error {
	c, ok := r.creditos[cuota.CreditoID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range c.Cuotas {
		if c.Cuotas[i].ID == cuota.ID {
			c.Cuotas[i] = *cuota
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeCreditoRepo) CreateCuotasTx(_ *gorm.DB, cuotas []model.Cuota) error {
	for i := range cuotas {
		if cuotas[i].ID == uuid.Nil {
			cuotas[i].ID = uuid.New()
		}
		c, ok := r.creditos[cuotas[i].CreditoID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		c.Cuotas = append(c.Cuotas, cuotas[i])
	}
	return nil
}

func (r *fakeCreditoRepo) CreatePagoTx(_ *gorm.DB, p *model.PagoCredito) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	r.pagos = append(r.pagos, *p)
	return nil
}

func (r *fakeCreditoRepo) SumPagosTx(_ *gorm.DB, creditoID uuid.UUID) (decimal.Decimal, error) {
	total := moneda.Cero
	for _, p := range r.pagos {
		if p.CreditoID == creditoID {
			total = moneda.Sumar(total, p.Monto)
		}
	}
	return total, nil
}

func (r *fakeCreditoRepo) ListPorEntidad(_ context.Context, entidadID uuid.UUID) ([]model.Credito, error) {
	var out []model.Credito
	for _, c := range r.creditos {
		if c.EntidadID == entidadID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCreditoRepo) DB() *gorm.DB { return nil }

// ── Entidades ────────────────────────────────────────────────────────────────

type fakeEntidadRepo struct {
	entidades map[uuid.UUID]*model.Entidad
}

func newFakeEntidadRepo() *fakeEntidadRepo {
	return &fakeEntidadRepo{entidades: make(map[uuid.UUID]*model.Entidad)}
}

func (r *fakeEntidadRepo) agregar(e *model.Entidad) *model.Entidad {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.entidades[e.ID] = e
	return e
}

func (r *fakeEntidadRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Entidad, error) {
	e, ok := r.entidades[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (r *fakeEntidadRepo) AjustarContadoresTx(_ *gorm.DB, id uuid.UUID, ajuste repository.AjusteContadores) error {
	e, ok := r.entidades[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.MontoPorCobrar = moneda.ClampCero(moneda.Sumar(e.MontoPorCobrar, ajuste.MontoPorCobrar))
	e.AnticiposRecibidos = moneda.ClampCero(moneda.Sumar(e.AnticiposRecibidos, ajuste.AnticiposRecibidos))
	e.MontoPorPagar = moneda.ClampCero(moneda.Sumar(e.MontoPorPagar, ajuste.MontoPorPagar))
	e.AnticiposEntregados = moneda.ClampCero(moneda.Sumar(e.AnticiposEntregados, ajuste.AnticiposEntregados))
	return nil
}

// ── Productos ────────────────────────────────────────────────────────────────

type fakeProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
}

func newFakeProductoRepo() *fakeProductoRepo {
	return &fakeProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *fakeProductoRepo) agregar(p *model.Producto) *model.Producto {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return p
}

func (r *fakeProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *fakeProductoRepo) FindByBarcode(_ context.Context, barcode string) (*model.Producto, error) {
	for _, p := range r.productos {
		if p.CodigoBarras == barcode {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductoRepo) List(_ context.Context, soloActivos bool) ([]model.Producto, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if soloActivos && !p.Activo {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

// ── Notificador ──────────────────────────────────────────────────────────────

// El orquestador despacha las alertas desde una goroutine propia, así que el
// fake protege su estado con mutex y expone un contador para poll en tests.
type fakeNotificador struct {
	mu      sync.Mutex
	alertas []AlertaReorden
	falla   bool
}

func (n *fakeNotificador) EncolarAlertaReorden(_ context.Context, alerta AlertaReorden) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.falla {
		return errors.New("cola no disponible")
	}
	n.alertas = append(n.alertas, alerta)
	return nil
}

func (n *fakeNotificador) cantidadAlertas() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alertas)
}
