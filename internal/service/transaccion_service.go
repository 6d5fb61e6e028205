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
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AlertaReorden is the payload emitted when a sale leaves a product at or
// below its reorder point.
type AlertaReorden struct {
	SucursalID   uuid.UUID `json:"sucursal_id"`
	ProductoID   uuid.UUID `json:"producto_id"`
	ExistenciaID uuid.UUID `json:"existencia_id"`
	Producto     string    `json:"producto"`
	Stock        int       `json:"stock"`
	PuntoReorden int       `json:"punto_reorden"`
}

// NotificadorReorden encola alertas de reposición. Siempre fire-and-forget:
// la venta ya está confirmada cuando se invoca y ningún fallo acá la toca.
type NotificadorReorden interface {
	EncolarAlertaReorden(ctx context.Context, alerta AlertaReorden) error
}

// TransaccionService es el orquestador: compone inventario, caja, resumen,
// descuentos y créditos dentro de una única transacción de base de datos.
// O todos los efectos de una operación quedan persistidos, o ninguno.
type TransaccionService interface {
	Registrar(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarTransaccionRequest) (*dto.TransaccionResponse, error)
	RegistrarDevolucion(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarDevolucionRequest) (*dto.DevolucionResponse, error)
	RegistrarMovimientoManual(ctx context.Context, usuarioID uuid.UUID, req dto.MovimientoManualRequest) (*dto.TransaccionResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.TransaccionResponse, error)
	Listar(ctx context.Context, filter dto.TransaccionFilter) (*dto.TransaccionListResponse, error)
}

type transaccionService struct {
	repo        repository.TransaccionRepository
	productos   repository.ProductoRepository
	inventario  InventarioService
	caja        CajaService
	resumen     ResumenService
	descuentos  DescuentoService
	creditos    CreditoService
	notificador NotificadorReorden
	logger      zerolog.Logger
}

func NewTransaccionService(
	repo repository.TransaccionRepository,
	productos repository.ProductoRepository,
	inventario InventarioService,
	caja CajaService,
	resumen ResumenService,
	descuentos DescuentoService,
	creditos CreditoService,
	notificador NotificadorReorden,
	logger zerolog.Logger,
) TransaccionService {
	return &transaccionService{
		repo:        repo,
		productos:   productos,
		inventario:  inventario,
		caja:        caja,
		resumen:     resumen,
		descuentos:  descuentos,
		creditos:    creditos,
		notificador: notificador,
		logger:      logger.With().Str("servicio", "transacciones").Logger(),
	}
}

// ── Registro de venta / compra ────────────────────────────────────────────────

func (s *transaccionService) Registrar(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarTransaccionRequest) (*dto.TransaccionResponse, error) {
	sucursalID, err := uuid.Parse(req.SucursalID)
	if err != nil {
		return nil, fmt.Errorf("sucursal_id inválido: %w", err)
	}
	cajaID, err := uuid.Parse(req.CajaID)
	if err != nil {
		return nil, fmt.Errorf("caja_id inválido: %w", err)
	}
	var entidadID *uuid.UUID
	if req.EntidadID != nil {
		id, err := uuid.Parse(*req.EntidadID)
		if err != nil {
			return nil, fmt.Errorf("entidad_id inválido: %w", err)
		}
		entidadID = &id
	}
	if req.MetodoPago == model.MetodoCredito {
		if entidadID == nil {
			return nil, ErrEntidadRequerida
		}
		if req.Credito == nil {
			return nil, ErrTerminosRequeridos
		}
	}

	productoIDs := make([]uuid.UUID, 0, len(req.Detalles))
	for _, d := range req.Detalles {
		pid, err := uuid.Parse(d.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("producto_id inválido: %w", err)
		}
		productoIDs = append(productoIDs, pid)
	}
	productos, err := s.cargarProductos(ctx, productoIDs)
	if err != nil {
		return nil, err
	}

	// El conjunto de trabajo se carga una sola vez antes de mutar; el flush
	// detecta escrituras concurrentes por versión y aborta la transacción.
	libro, err := s.inventario.CargarLibro(ctx, sucursalID, productoIDs)
	if err != nil {
		return nil, err
	}

	estado := model.TxPagada
	if req.MetodoPago == model.MetodoCredito {
		estado = model.TxPendiente
	}
	t := &model.Transaccion{
		ID:         uuid.New(),
		Tipo:       req.Tipo,
		Estado:     estado,
		SucursalID: sucursalID,
		CajaID:     cajaID,
		EntidadID:  entidadID,
		UsuarioID:  usuarioID,
		MetodoPago: req.MetodoPago,
	}

	var (
		cambio    *decimal.Decimal
		aplicados []model.DescuentoAplicado
		creditoID *uuid.UUID
		alertas   []AlertaReorden
	)
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.caja.ValidarAbiertaTx(tx, cajaID); err != nil {
			return err
		}

		subtotal, descuento := moneda.Cero, moneda.Cero
		for i, lineaReq := range req.Detalles {
			pid := productoIDs[i]
			existencia := libro.PorProducto(pid)
			if existencia == nil {
				return fmt.Errorf("%w: producto %s", ErrExistenciaNoExiste, pid)
			}

			precio := moneda.Redondear(lineaReq.Precio)
			if moneda.EsCero(precio) && req.Tipo == model.TxVenta {
				precio = existencia.PrecioVenta
			}
			linea := &model.DetalleTransaccion{
				ID:             uuid.New(),
				TransaccionID:  t.ID,
				ProductoID:     pid,
				PrecioUnitario: precio,
				Cantidad:       lineaReq.Cantidad,
				Subtotal:       moneda.Multiplicar(precio, decimal.NewFromInt(int64(lineaReq.Cantidad))),
			}
			linea.Total = linea.Subtotal

			switch req.Tipo {
			case model.TxVenta:
				if _, err := libro.Descontar(existencia.ID, lineaReq.Cantidad, model.MovInvVenta, usuarioID); err != nil {
					return err
				}
			case model.TxCompra:
				costo := lineaReq.CostoUnitario
				if costo == nil {
					costo = &precio
				}
				if _, err := libro.Agregar(existencia.ID, lineaReq.Cantidad, model.MovInvCompra, usuarioID, costo); err != nil {
					return err
				}
			default:
				return fmt.Errorf("tipo de transacción no soportado: %s", req.Tipo)
			}

			t.Detalles = append(t.Detalles, *linea)
			subtotal = moneda.Sumar(subtotal, linea.Subtotal)
		}

		t.Subtotal = subtotal
		t.Total = subtotal
		if err := s.repo.CreateTx(tx, t); err != nil {
			return err
		}

		// Descuentos: se resuelven contra las líneas ya persistidas y el
		// monto realizado queda congelado en el registro aplicado.
		if req.Tipo == model.TxVenta {
			for i, lineaReq := range req.Detalles {
				if lineaReq.DescuentoID == nil {
					continue
				}
				descuentoID, err := uuid.Parse(*lineaReq.DescuentoID)
				if err != nil {
					return fmt.Errorf("descuento_id inválido: %w", err)
				}
				linea := &t.Detalles[i]
				aplicado, _, err := s.descuentos.AplicarTx(tx, linea, productos[linea.ProductoID], descuentoID)
				if err != nil {
					return err
				}
				linea.MontoDescuento = aplicado.Monto
				linea.Total = moneda.Restar(linea.Subtotal, aplicado.Monto)
				if err := s.repo.UpdateDetalleTx(tx, linea); err != nil {
					return err
				}
				descuento = moneda.Sumar(descuento, aplicado.Monto)
				aplicados = append(aplicados, *aplicado)
			}
		}

		t.Descuento = descuento
		t.Total = moneda.Restar(subtotal, descuento)
		if err := s.repo.UpdateTx(tx, t); err != nil {
			return err
		}

		if err := s.inventario.GuardarLibroTx(tx, libro); err != nil {
			return err
		}

		if req.MetodoPago == model.PagoContado {
			if req.Tipo == model.TxVenta && req.MontoRecibido != nil {
				recibido := moneda.Redondear(*req.MontoRecibido)
				if moneda.MayorQue(t.Total, recibido) {
					return ErrPagoInsuficiente
				}
				c := moneda.Restar(recibido, t.Total)
				cambio = &c
			}
			aumentar := req.Tipo == model.TxVenta
			tipoMov := model.MovCajaVenta
			if req.Tipo == model.TxCompra {
				tipoMov = model.MovCajaCompra
			}
			if err := s.caja.AjustarMontoEsperadoTx(tx, cajaID, t.Total, aumentar, tipoMov, usuarioID, &t.ID, cambio); err != nil {
				return err
			}
		}

		if err := s.resumen.AgregarTransaccionTx(tx, t); err != nil {
			return err
		}

		if req.MetodoPago == model.MetodoCredito {
			credito, err := s.creditos.CrearDesdeTransaccionTx(tx, t, *req.Credito)
			if err != nil {
				return err
			}
			creditoID = &credito.ID
		}

		if req.Tipo == model.TxVenta {
			alertas = s.detectarReorden(sucursalID, libro, productos)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// La venta ya está confirmada: las alertas de reposición se despachan
	// fuera de la transacción y jamás la afectan.
	s.despacharAlertas(alertas)

	resp := s.transaccionToResponse(t, productos)
	resp.Cambio = cambio
	if creditoID != nil {
		id := creditoID.String()
		resp.CreditoID = &id
	}
	for i := range aplicados {
		a := &aplicados[i]
		resp.Descuentos = append(resp.Descuentos, dto.DescuentoAplicadoResponse{
			DetalleID:   a.DetalleID.String(),
			DescuentoID: a.DescuentoID.String(),
			Alcance:     a.Alcance,
			Monto:       a.Monto,
			Porcentaje:  a.Porcentaje,
		})
	}
	return &resp, nil
}

// ── Devoluciones ──────────────────────────────────────────────────────────────

func (s *transaccionService) RegistrarDevolucion(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarDevolucionRequest) (*dto.DevolucionResponse, error) {
	origenID, err := uuid.Parse(req.OrigenID)
	if err != nil {
		return nil, fmt.Errorf("origen_id inválido: %w", err)
	}
	cajaID, err := uuid.Parse(req.CajaID)
	if err != nil {
		return nil, fmt.Errorf("caja_id inválido: %w", err)
	}

	// Lectura preliminar sin lock sólo para armar el conjunto de trabajo de
	// inventario; el origen se relee con lock adentro de la transacción.
	preliminar, err := s.repo.FindByID(ctx, origenID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransaccionNoEncontrada
		}
		return nil, err
	}
	productoIDs := make([]uuid.UUID, 0, len(req.Detalles))
	for _, d := range req.Detalles {
		pid, err := uuid.Parse(d.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("producto_id inválido: %w", err)
		}
		productoIDs = append(productoIDs, pid)
	}
	productos, err := s.cargarProductos(ctx, productoIDs)
	if err != nil {
		return nil, err
	}
	libro, err := s.inventario.CargarLibro(ctx, preliminar.SucursalID, productoIDs)
	if err != nil {
		return nil, err
	}

	var (
		devolucion    *model.Transaccion
		origen        *model.Transaccion
		montoDevuelto = moneda.Cero
		montoAjuste   = moneda.Cero
		efectivoCaja  = moneda.Cero
	)
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		origen, err = s.repo.FindByIDTx(tx, origenID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransaccionNoEncontrada
			}
			return err
		}
		if origen.Tipo != model.TxVenta && origen.Tipo != model.TxCompra {
			return fmt.Errorf("sólo ventas y compras admiten devolución")
		}
		if origen.Estado == model.TxDevuelta || origen.EliminadaEn != nil {
			return ErrDevolucionExcede
		}
		if _, err := s.caja.ValidarAbiertaTx(tx, cajaID); err != nil {
			return err
		}

		ahora := time.Now()
		devolucion = &model.Transaccion{
			ID:         uuid.New(),
			Tipo:       model.TxDevolucion,
			Estado:     model.TxPagada,
			SucursalID: origen.SucursalID,
			CajaID:     cajaID,
			EntidadID:  origen.EntidadID,
			UsuarioID:  usuarioID,
			MetodoPago: origen.MetodoPago,
			OrigenID:   &origen.ID,
		}

		for i, devReq := range req.Detalles {
			pid := productoIDs[i]
			linea := buscarDetalleVigente(origen.Detalles, pid)
			if linea == nil {
				return ErrDetalleNoEncontrado
			}
			if devReq.Cantidad > linea.Cantidad {
				return fmt.Errorf("%w: producto %s, vigente %d, solicitado %d",
					ErrDevolucionExcede, pid, linea.Cantidad, devReq.Cantidad)
			}

			// Precio unitario bruto efectivo de la línea, no el de lista: la
			// devolución reembolsa lo que realmente se cobró.
			porUnidad, err := moneda.Dividir(linea.Subtotal, decimal.NewFromInt(int64(linea.Cantidad)))
			if err != nil {
				return err
			}

			retenida := linea.Cantidad - devReq.Cantidad
			totalAnterior := linea.Total
			var bruto, nuevoSubtotal, nuevoDescuento decimal.Decimal
			if retenida == 0 {
				// Devolución total de la línea: el bruto absorbe cualquier
				// residuo de redondeo del por-unidad.
				bruto = linea.Subtotal
				nuevoSubtotal = moneda.Cero
				nuevoDescuento, err = s.descuentos.RecalcularPorDevolucionTx(tx, linea.ID, moneda.Cero, false)
				if err != nil {
					return err
				}
				linea.EliminadaEn = &ahora
			} else {
				bruto = moneda.Multiplicar(porUnidad, decimal.NewFromInt(int64(devReq.Cantidad)))
				nuevoSubtotal = moneda.Restar(linea.Subtotal, bruto)
				nuevoDescuento, err = s.descuentos.RecalcularPorDevolucionTx(tx, linea.ID, nuevoSubtotal, devReq.DescuentoAplicado)
				if err != nil {
					return err
				}
			}
			nuevoTotal := moneda.Restar(nuevoSubtotal, nuevoDescuento)

			// Delta con signo: positivo reembolsa, negativo es un ajuste a
			// cobrar porque el descuento dejó de aplicar sobre lo retenido.
			delta := moneda.Restar(totalAnterior, nuevoTotal)
			reembolso := moneda.ClampCero(delta)
			ajuste := moneda.ClampCero(delta.Neg())
			montoDevuelto = moneda.Sumar(montoDevuelto, reembolso)
			montoAjuste = moneda.Sumar(montoAjuste, ajuste)

			descuentoDevuelto := moneda.Restar(linea.MontoDescuento, nuevoDescuento)
			linea.Cantidad = retenida
			linea.Subtotal = nuevoSubtotal
			linea.MontoDescuento = nuevoDescuento
			linea.Total = nuevoTotal
			linea.MontoAjuste = moneda.Sumar(linea.MontoAjuste, ajuste)
			if err := s.repo.UpdateDetalleTx(tx, linea); err != nil {
				return err
			}

			existencia := libro.PorProducto(pid)
			if existencia == nil {
				return fmt.Errorf("%w: producto %s", ErrExistenciaNoExiste, pid)
			}
			if origen.Tipo == model.TxVenta {
				if _, err := libro.Agregar(existencia.ID, devReq.Cantidad, model.MovInvDevolucion, usuarioID, nil); err != nil {
					return err
				}
			} else {
				if _, err := libro.Descontar(existencia.ID, devReq.Cantidad, model.MovInvDevolucion, usuarioID); err != nil {
					return err
				}
			}

			devolucion.Detalles = append(devolucion.Detalles, model.DetalleTransaccion{
				ID:             uuid.New(),
				TransaccionID:  devolucion.ID,
				ProductoID:     pid,
				PrecioUnitario: porUnidad,
				Cantidad:       devReq.Cantidad,
				Subtotal:       bruto,
				MontoDescuento: moneda.ClampCero(descuentoDevuelto),
				Total:          delta,
			})
			devolucion.Subtotal = moneda.Sumar(devolucion.Subtotal, bruto)
		}

		// Total de la devolución con signo: lo reembolsado menos lo que el
		// cliente pasa a deber por los descuentos caídos.
		devolucion.Descuento = moneda.Restar(devolucion.Subtotal, moneda.Restar(montoDevuelto, montoAjuste))
		devolucion.Total = moneda.Restar(montoDevuelto, montoAjuste)
		if err := s.repo.CreateTx(tx, devolucion); err != nil {
			return err
		}

		// El origen se reescribe desde sus líneas vigentes: origen + neto
		// devuelto conserva el total previo a la devolución.
		origen.Subtotal, origen.Descuento, origen.Total = moneda.Cero, moneda.Cero, moneda.Cero
		vigentes := 0
		for i := range origen.Detalles {
			linea := &origen.Detalles[i]
			if linea.EliminadaEn != nil {
				continue
			}
			vigentes++
			origen.Subtotal = moneda.Sumar(origen.Subtotal, linea.Subtotal)
			origen.Descuento = moneda.Sumar(origen.Descuento, linea.MontoDescuento)
			origen.Total = moneda.Sumar(origen.Total, linea.Total)
		}
		if vigentes == 0 {
			origen.Estado = model.TxDevuelta
			origen.EliminadaEn = &ahora
		}
		if err := s.repo.UpdateTx(tx, origen); err != nil {
			return err
		}

		if err := s.inventario.GuardarLibroTx(tx, libro); err != nil {
			return err
		}

		// Movimiento de plata: el neto a favor del cliente sale de caja en
		// contado; en crédito primero se achica el saldo pendiente y sólo el
		// excedente (limitado por lo efectivamente pagado) se reintegra.
		neto := devolucion.Total
		switch {
		case moneda.MayorQue(neto, moneda.Cero) && origen.MetodoPago == model.MetodoCredito:
			reduccion, err := s.creditos.ReducirPorDevolucionTx(tx, origen.ID, neto)
			if err != nil {
				return err
			}
			efectivoCaja = reduccion.Efectivo
			// Si la devolución dejó el crédito en cero con mercadería aún
			// retenida, no queda nada por cobrar: la operación está saldada.
			if reduccion.Cerrado && vigentes > 0 && origen.Estado == model.TxPendiente {
				origen.Estado = model.TxPagada
				if err := s.repo.UpdateEstadoTx(tx, origen.ID, model.TxPagada); err != nil {
					return err
				}
			}
		case moneda.MayorQue(neto, moneda.Cero):
			efectivoCaja = neto
		}
		if !moneda.EsCero(efectivoCaja) {
			// Devolución de venta saca plata de la caja; de compra la vuelve
			// a ingresar.
			aumentar := origen.Tipo == model.TxCompra
			if err := s.caja.AjustarMontoEsperadoTx(tx, cajaID, efectivoCaja, aumentar, model.MovCajaDevolucion, usuarioID, &devolucion.ID, nil); err != nil {
				return err
			}
		}

		return s.resumen.AgregarDevolucionTx(tx, devolucion, origen.Tipo, efectivoCaja)
	})
	if txErr != nil {
		return nil, txErr
	}

	return &dto.DevolucionResponse{
		Devolucion:    s.transaccionToResponse(devolucion, productos),
		MontoDevuelto: montoDevuelto,
		MontoEfectivo: efectivoCaja,
		MontoAjuste:   montoAjuste,
		OrigenEstado:  origen.Estado,
		OrigenTotal:   origen.Total,
	}, nil
}

// ── Ingresos y egresos manuales ───────────────────────────────────────────────

func (s *transaccionService) RegistrarMovimientoManual(ctx context.Context, usuarioID uuid.UUID, req dto.MovimientoManualRequest) (*dto.TransaccionResponse, error) {
	cajaID, err := uuid.Parse(req.CajaID)
	if err != nil {
		return nil, fmt.Errorf("caja_id inválido: %w", err)
	}
	monto := moneda.Redondear(req.Monto)

	var t *model.Transaccion
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		caja, err := s.caja.ValidarAbiertaTx(tx, cajaID)
		if err != nil {
			return err
		}

		t = &model.Transaccion{
			ID:          uuid.New(),
			Tipo:        req.Tipo,
			Estado:      model.TxPagada,
			SucursalID:  caja.SucursalID,
			CajaID:      cajaID,
			UsuarioID:   usuarioID,
			MetodoPago:  model.PagoContado,
			Subtotal:    monto,
			Total:       monto,
			Descripcion: &req.Descripcion,
		}
		if err := s.repo.CreateTx(tx, t); err != nil {
			return err
		}

		aumentar := req.Tipo == model.TxIngreso
		tipoMov := model.MovCajaIngreso
		if !aumentar {
			tipoMov = model.MovCajaEgreso
		}
		if err := s.caja.AjustarMontoEsperadoTx(tx, cajaID, monto, aumentar, tipoMov, usuarioID, &t.ID, nil); err != nil {
			return err
		}

		if aumentar {
			return s.resumen.AgregarIngresoTx(tx, t)
		}
		return s.resumen.AgregarEgresoTx(tx, t)
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := s.transaccionToResponse(t, nil)
	return &resp, nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *transaccionService) Obtener(ctx context.Context, id uuid.UUID) (*dto.TransaccionResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransaccionNoEncontrada
		}
		return nil, err
	}
	resp := s.transaccionToResponse(t, nil)
	return &resp, nil
}

func (s *transaccionService) Listar(ctx context.Context, filter dto.TransaccionFilter) (*dto.TransaccionListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	transacciones, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.TransaccionListResponse{
		Data:  make([]dto.TransaccionResponse, 0, len(transacciones)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range transacciones {
		resp.Data = append(resp.Data, s.transaccionToResponse(&transacciones[i], nil))
	}
	return resp, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *transaccionService) cargarProductos(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Producto, error) {
	out := make(map[uuid.UUID]*model.Producto, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		p, err := s.productos.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("producto %s no existe", id)
			}
			return nil, err
		}
		out[id] = p
	}
	return out, nil
}

func (s *transaccionService) detectarReorden(sucursalID uuid.UUID, libro *Libro, productos map[uuid.UUID]*model.Producto) []AlertaReorden {
	var alertas []AlertaReorden
	for _, e := range libro.Existencias() {
		if e.Stock > e.PuntoReorden {
			continue
		}
		nombre := ""
		if p, ok := productos[e.ProductoID]; ok {
			nombre = p.Nombre
		}
		alertas = append(alertas, AlertaReorden{
			SucursalID:   sucursalID,
			ProductoID:   e.ProductoID,
			ExistenciaID: e.ID,
			Producto:     nombre,
			Stock:        e.Stock,
			PuntoReorden: e.PuntoReorden,
		})
	}
	return alertas
}

func (s *transaccionService) despacharAlertas(alertas []AlertaReorden) {
	if s.notificador == nil || len(alertas) == 0 {
		return
	}
	go func(alertas []AlertaReorden) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, alerta := range alertas {
			if err := s.notificador.EncolarAlertaReorden(ctx, alerta); err != nil {
				s.logger.Warn().Err(err).
					Str("producto_id", alerta.ProductoID.String()).
					Int("stock", alerta.Stock).
					Msg("no se pudo encolar alerta de reposición")
			}
		}
	}(alertas)
}

func buscarDetalleVigente(detalles []model.DetalleTransaccion, productoID uuid.UUID) *model.DetalleTransaccion {
	for i := range detalles {
		if detalles[i].ProductoID == productoID && detalles[i].EliminadaEn == nil {
			return &detalles[i]
		}
	}
	return nil
}

func (s *transaccionService) transaccionToResponse(t *model.Transaccion, productos map[uuid.UUID]*model.Producto) dto.TransaccionResponse {
	resp := dto.TransaccionResponse{
		ID:         t.ID.String(),
		Tipo:       t.Tipo,
		Estado:     t.Estado,
		SucursalID: t.SucursalID.String(),
		CajaID:     t.CajaID.String(),
		MetodoPago: t.MetodoPago,
		Subtotal:   t.Subtotal,
		Descuento:  t.Descuento,
		Total:      t.Total,
		Detalles:   make([]dto.DetalleResponse, 0, len(t.Detalles)),
		CreatedAt:  t.CreatedAt.Format(time.RFC3339),
	}
	if t.EntidadID != nil {
		id := t.EntidadID.String()
		resp.EntidadID = &id
	}
	if t.OrigenID != nil {
		id := t.OrigenID.String()
		resp.OrigenID = &id
	}
	for i := range t.Detalles {
		d := &t.Detalles[i]
		det := dto.DetalleResponse{
			ID:             d.ID.String(),
			ProductoID:     d.ProductoID.String(),
			PrecioUnitario: d.PrecioUnitario,
			Cantidad:       d.Cantidad,
			Subtotal:       d.Subtotal,
			Total:          d.Total,
			MontoDescuento: d.MontoDescuento,
			MontoAjuste:    d.MontoAjuste,
		}
		if d.Producto != nil {
			det.Producto = d.Producto.Nombre
		} else if p, ok := productos[d.ProductoID]; ok && p != nil {
			det.Producto = p.Nombre
		}
		resp.Detalles = append(resp.Detalles, det)
	}
	return resp
}
