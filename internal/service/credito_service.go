package service

import (
	"context"
	"errors"
	"time"

	"tiendapos/internal/dto"
	"tiendapos/internal/model"
	"tiendapos/internal/moneda"
	"tiendapos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// porcentajeMinimoPago es el mínimo exigido por cuota en modalidad PAGO:
// 20% del saldo pendiente al momento de generarla.
var porcentajeMinimoPago = decimal.NewFromInt(20)

// ReduccionCredito is what a return took out of a credit account: the part
// refunded in cash (capped at what was actually collected) and the part
// absorbed by shrinking the outstanding balance.
type ReduccionCredito struct {
	Efectivo       decimal.Decimal
	ReduccionSaldo decimal.Decimal
	Cerrado        bool
}

type CreditoService interface {
	Obtener(ctx context.Context, id uuid.UUID) (*dto.CreditoResponse, error)
	ListarPorEntidad(ctx context.Context, entidadID uuid.UUID) ([]dto.CreditoResponse, error)

	// Pagar amortiza el crédito. PLAZO exige cubrir al menos la próxima cuota
	// pendiente; PAGO exige el mínimo del 20% vigente y regenera el mínimo
	// sobre el saldo resultante. El crédito se cierra al llegar a cero y el
	// cierre es irreversible.
	Pagar(ctx context.Context, id, usuarioID uuid.UUID, req dto.PagarCreditoRequest) (*dto.CreditoResponse, error)

	// CrearDesdeTransaccionTx la invoca el orquestador dentro de la misma
	// transacción que crea la venta/compra a crédito: o se persisten ambas o
	// ninguna.
	CrearDesdeTransaccionTx(tx *gorm.DB, t *model.Transaccion, terminos dto.TerminosCreditoRequest) (*model.Credito, error)

	// ReducirPorDevolucionTx descuenta una devolución del crédito que originó
	// la transacción. Primero reduce el saldo pendiente; el excedente se
	// reintegra en efectivo, nunca más allá de lo efectivamente pagado.
	ReducirPorDevolucionTx(tx *gorm.DB, transaccionID uuid.UUID, monto decimal.Decimal) (*ReduccionCredito, error)
}

type creditoService struct {
	repo          repository.CreditoRepository
	entidades     repository.EntidadRepository
	transacciones repository.TransaccionRepository
}

func NewCreditoService(repo repository.CreditoRepository, entidades repository.EntidadRepository, transacciones repository.TransaccionRepository) CreditoService {
	return &creditoService{repo: repo, entidades: entidades, transacciones: transacciones}
}

func (s *creditoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.CreditoResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCreditoNoEncontrado
		}
		return nil, err
	}
	resp := creditoToResponse(c)
	return &resp, nil
}

func (s *creditoService) ListarPorEntidad(ctx context.Context, entidadID uuid.UUID) ([]dto.CreditoResponse, error) {
	creditos, err := s.repo.ListPorEntidad(ctx, entidadID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CreditoResponse, 0, len(creditos))
	for i := range creditos {
		out = append(out, creditoToResponse(&creditos[i]))
	}
	return out, nil
}

// ── Creación ──────────────────────────────────────────────────────────────────

func (s *creditoService) CrearDesdeTransaccionTx(tx *gorm.DB, t *model.Transaccion, terminos dto.TerminosCreditoRequest) (*model.Credito, error) {
	if t.EntidadID == nil {
		return nil, ErrEntidadRequerida
	}

	tipo := model.CreditoVenta
	if t.Tipo == model.TxCompra {
		tipo = model.CreditoCompra
	}

	c := &model.Credito{
		Modalidad:      terminos.Modalidad,
		TipoCredito:    tipo,
		Estado:         model.CreditoAbierto,
		EntidadID:      *t.EntidadID,
		TransaccionID:  t.ID,
		SaldoOriginal:  t.Total,
		SaldoPendiente: t.Total,
	}

	switch terminos.Modalidad {
	case model.CreditoPlazo:
		if terminos.PlazoMeses <= 0 {
			return nil, ErrTerminosRequeridos
		}
		c.PlazoMeses = terminos.PlazoMeses
	case model.CreditoPago:
		c.PagoMinimo = moneda.Porcentaje(t.Total, porcentajeMinimoPago)
	default:
		return nil, ErrTerminosRequeridos
	}

	if err := s.repo.CreateTx(tx, c); err != nil {
		return nil, err
	}
	if err := s.repo.CreateCuotasTx(tx, generarCuotas(c, time.Now())); err != nil {
		return nil, err
	}

	// Exposición de la entidad: una venta a crédito es plata por cobrar,
	// una compra a crédito es plata por pagar.
	ajuste := repository.AjusteContadores{}
	if tipo == model.CreditoVenta {
		ajuste.MontoPorCobrar = c.SaldoOriginal
	} else {
		ajuste.MontoPorPagar = c.SaldoOriginal
	}
	if err := s.entidades.AjustarContadoresTx(tx, c.EntidadID, ajuste); err != nil {
		return nil, err
	}
	return c, nil
}

// generarCuotas arma el plan: PLAZO divide el saldo en cuotas mensuales
// iguales y la última absorbe el residuo de redondeo para que la suma cierre
// exacta contra el saldo; PAGO abre una única cuota por el mínimo del 20%.
func generarCuotas(c *model.Credito, desde time.Time) []model.Cuota {
	if c.Modalidad == model.CreditoPago {
		return []model.Cuota{{
			CreditoID:        c.ID,
			Numero:           1,
			Monto:            c.PagoMinimo,
			FechaVencimiento: desde.AddDate(0, 1, 0),
			Estado:           model.CuotaPendiente,
		}}
	}

	n := c.PlazoMeses
	base, _ := moneda.Dividir(c.SaldoPendiente, decimal.NewFromInt(int64(n)))
	cuotas := make([]model.Cuota, 0, n)
	acumulado := moneda.Cero
	for i := 1; i <= n; i++ {
		monto := base
		if i == n {
			monto = moneda.Restar(c.SaldoPendiente, acumulado)
		}
		acumulado = moneda.Sumar(acumulado, monto)
		cuotas = append(cuotas, model.Cuota{
			CreditoID:        c.ID,
			Numero:           i,
			Monto:            monto,
			FechaVencimiento: desde.AddDate(0, i, 0),
			Estado:           model.CuotaPendiente,
		})
	}
	return cuotas
}

// ── Pago ──────────────────────────────────────────────────────────────────────

func (s *creditoService) Pagar(ctx context.Context, id, usuarioID uuid.UUID, req dto.PagarCreditoRequest) (*dto.CreditoResponse, error) {
	monto := moneda.Redondear(req.Monto)
	if !moneda.MayorQue(monto, moneda.Cero) {
		return nil, ErrPagoInsuficiente
	}

	var credito *model.Credito
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		c, err := s.findTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if c.Estado == model.CreditoCerrado {
			return ErrCreditoCerrado
		}
		if moneda.MayorQue(monto, c.SaldoPendiente) {
			return ErrSaldoExcedido
		}

		switch c.Modalidad {
		case model.CreditoPlazo:
			err = s.pagarPlazoTx(ctx, tx, c, monto)
		case model.CreditoPago:
			err = s.pagarPagoTx(ctx, tx, c, monto, time.Now())
		default:
			err = ErrTerminosRequeridos
		}
		if err != nil {
			return err
		}

		c.SaldoPendiente = moneda.Restar(c.SaldoPendiente, monto)
		cierra := moneda.EsCero(c.SaldoPendiente)

		if err := s.crearPagoTx(ctx, tx, &model.PagoCredito{
			CreditoID:      c.ID,
			Monto:          monto,
			SaldoResultado: c.SaldoPendiente,
			UsuarioID:      usuarioID,
		}); err != nil {
			return err
		}

		if err := s.ajustarPorPagoTx(ctx, tx, c, monto, cierra); err != nil {
			return err
		}
		if cierra {
			c.Estado = model.CreditoCerrado
			c.PagoMinimo = moneda.Cero
			// La transacción de origen queda saldada junto con el crédito.
			if err := s.transacciones.UpdateEstadoTx(tx, c.TransaccionID, model.TxPagada); err != nil {
				return err
			}
		}
		if err := s.updateTx(ctx, tx, c); err != nil {
			return err
		}
		credito = c
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := creditoToResponse(credito)
	return &resp, nil
}

// pagarPlazoTx aplica el pago a las cuotas pendientes en orden. El pago debe
// cubrir como mínimo la próxima cuota entera; el excedente pisa cuotas
// siguientes y, si queda un resto, achica la próxima en el lugar.
func (s *creditoService) pagarPlazoTx(ctx context.Context, tx *gorm.DB, c *model.Credito, monto decimal.Decimal) error {
	restante := monto
	primera := true
	for i := range c.Cuotas {
		cuota := &c.Cuotas[i]
		if cuota.Estado != model.CuotaPendiente {
			continue
		}
		if primera {
			if moneda.MayorQue(cuota.Monto, restante) {
				return ErrPagoInsuficiente
			}
			primera = false
		}
		if moneda.EsCero(restante) {
			break
		}
		if moneda.MayorQue(cuota.Monto, restante) {
			cuota.Monto = moneda.Restar(cuota.Monto, restante)
			restante = moneda.Cero
		} else {
			restante = moneda.Restar(restante, cuota.Monto)
			cuota.Estado = model.CuotaPagada
		}
		if err := s.updateCuotaTx(ctx, tx, cuota); err != nil {
			return err
		}
	}
	return nil
}

// pagarPagoTx exige el mínimo del 20% vigente, salda la cuota abierta y, si
// queda saldo, regenera el mínimo y abre la cuota siguiente.
func (s *creditoService) pagarPagoTx(ctx context.Context, tx *gorm.DB, c *model.Credito, monto decimal.Decimal, ahora time.Time) error {
	// Cancelar el saldo completo siempre está permitido aunque el mínimo
	// calculado quedara por encima por redondeo.
	if moneda.MayorQue(c.PagoMinimo, monto) && !monto.Equal(c.SaldoPendiente) {
		return ErrPagoInsuficiente
	}

	ultimoNumero := 0
	for i := range c.Cuotas {
		cuota := &c.Cuotas[i]
		if cuota.Numero > ultimoNumero {
			ultimoNumero = cuota.Numero
		}
		if cuota.Estado == model.CuotaPendiente {
			cuota.Estado = model.CuotaPagada
			cuota.Monto = monto
			if err := s.updateCuotaTx(ctx, tx, cuota); err != nil {
				return err
			}
		}
	}

	saldoNuevo := moneda.Restar(c.SaldoPendiente, monto)
	if moneda.EsCero(saldoNuevo) {
		return nil
	}
	c.PagoMinimo = moneda.Porcentaje(saldoNuevo, porcentajeMinimoPago)
	siguiente := []model.Cuota{{
		CreditoID:        c.ID,
		Numero:           ultimoNumero + 1,
		Monto:            c.PagoMinimo,
		FechaVencimiento: ahora.AddDate(0, 1, 0),
		Estado:           model.CuotaPendiente,
	}}
	return s.crearCuotasTx(ctx, tx, siguiente)
}

// ajustarPorPagoTx mueve los contadores de la entidad. Un pago que no cierra
// acumula como anticipo; el pago de cierre baja la exposición original y
// deshace los anticipos que ahora quedaron realizados.
func (s *creditoService) ajustarPorPagoTx(ctx context.Context, tx *gorm.DB, c *model.Credito, monto decimal.Decimal, cierra bool) error {
	ajuste := repository.AjusteContadores{}
	if cierra {
		pagado, err := s.sumPagosTx(ctx, tx, c.ID)
		if err != nil {
			return err
		}
		// El pago de cierre ya está registrado pero nunca entró a los
		// anticipos: sólo se deshacen los pagos anteriores.
		anticipos := moneda.Restar(pagado, monto)
		if c.TipoCredito == model.CreditoVenta {
			ajuste.MontoPorCobrar = c.SaldoOriginal.Neg()
			ajuste.AnticiposRecibidos = anticipos.Neg()
		} else {
			ajuste.MontoPorPagar = c.SaldoOriginal.Neg()
			ajuste.AnticiposEntregados = anticipos.Neg()
		}
	} else {
		if c.TipoCredito == model.CreditoVenta {
			ajuste.AnticiposRecibidos = monto
		} else {
			ajuste.AnticiposEntregados = monto
		}
	}
	return s.ajustarContadoresTx(ctx, tx, c.EntidadID, ajuste)
}

// ── Devoluciones ──────────────────────────────────────────────────────────────

func (s *creditoService) ReducirPorDevolucionTx(tx *gorm.DB, transaccionID uuid.UUID, monto decimal.Decimal) (*ReduccionCredito, error) {
	c, err := s.repo.FindByTransaccionTx(tx, transaccionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCreditoNoEncontrado
		}
		return nil, err
	}
	// Un crédito cerrado ya se cobró completo: la devolución es toda en
	// efectivo y no toca cuotas ni contadores.
	if c.Estado == model.CreditoCerrado {
		return &ReduccionCredito{Efectivo: moneda.Redondear(monto), Cerrado: true}, nil
	}

	monto = moneda.Redondear(monto)
	reduccion := monto
	if moneda.MayorQue(reduccion, c.SaldoPendiente) {
		reduccion = c.SaldoPendiente
	}

	// El sobrante de la devolución pertenece a plata ya cobrada: se devuelve
	// en efectivo hasta el total pagado, nunca más.
	pagado, err := s.repo.SumPagosTx(tx, c.ID)
	if err != nil {
		return nil, err
	}
	efectivo := moneda.Restar(monto, reduccion)
	if moneda.MayorQue(efectivo, pagado) {
		efectivo = pagado
	}

	c.SaldoPendiente = moneda.Restar(c.SaldoPendiente, reduccion)
	c.SaldoOriginal = moneda.ClampCero(moneda.Restar(c.SaldoOriginal, monto))
	cierra := moneda.EsCero(c.SaldoPendiente)

	if err := s.replanificarTx(tx, c, cierra); err != nil {
		return nil, err
	}

	// Al cierre los pagos previos quedan realizados: la exposición baja por
	// lo devuelto y también por lo que esos pagos ya cubrían.
	bajaExposicion := reduccion
	if cierra {
		bajaExposicion = moneda.Sumar(reduccion, pagado)
	}
	ajuste := repository.AjusteContadores{}
	if c.TipoCredito == model.CreditoVenta {
		ajuste.MontoPorCobrar = bajaExposicion.Neg()
		if cierra {
			ajuste.AnticiposRecibidos = pagado.Neg()
		}
	} else {
		ajuste.MontoPorPagar = bajaExposicion.Neg()
		if cierra {
			ajuste.AnticiposEntregados = pagado.Neg()
		}
	}
	if err := s.entidades.AjustarContadoresTx(tx, c.EntidadID, ajuste); err != nil {
		return nil, err
	}

	if cierra {
		c.Estado = model.CreditoCerrado
		c.PagoMinimo = moneda.Cero
	}
	if err := s.repo.UpdateTx(tx, c); err != nil {
		return nil, err
	}
	return &ReduccionCredito{Efectivo: efectivo, ReduccionSaldo: reduccion, Cerrado: cierra}, nil
}

// replanificarTx reparte el saldo reducido sobre las cuotas pendientes:
// PLAZO las re-divide en partes iguales con la última absorbiendo el residuo,
// PAGO recalcula el mínimo del 20% sobre la cuota abierta. Con cierre, todas
// las pendientes quedan saldadas en cero.
func (s *creditoService) replanificarTx(tx *gorm.DB, c *model.Credito, cierra bool) error {
	pendientes := make([]*model.Cuota, 0, len(c.Cuotas))
	for i := range c.Cuotas {
		if c.Cuotas[i].Estado == model.CuotaPendiente {
			pendientes = append(pendientes, &c.Cuotas[i])
		}
	}
	if len(pendientes) == 0 {
		return nil
	}

	if cierra {
		for _, cuota := range pendientes {
			cuota.Monto = moneda.Cero
			cuota.Estado = model.CuotaPagada
			if err := s.repo.UpdateCuotaTx(tx, cuota); err != nil {
				return err
			}
		}
		return nil
	}

	switch c.Modalidad {
	case model.CreditoPago:
		c.PagoMinimo = moneda.Porcentaje(c.SaldoPendiente, porcentajeMinimoPago)
		pendientes[0].Monto = c.PagoMinimo
		return s.repo.UpdateCuotaTx(tx, pendientes[0])
	default:
		n := int64(len(pendientes))
		base, err := moneda.Dividir(c.SaldoPendiente, decimal.NewFromInt(n))
		if err != nil {
			return err
		}
		acumulado := moneda.Cero
		for i, cuota := range pendientes {
			if i == len(pendientes)-1 {
				cuota.Monto = moneda.Restar(c.SaldoPendiente, acumulado)
			} else {
				cuota.Monto = base
			}
			acumulado = moneda.Sumar(acumulado, cuota.Monto)
			if err := s.repo.UpdateCuotaTx(tx, cuota); err != nil {
				return err
			}
		}
		return nil
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────
// Los wrappers *Tx toleran tx == nil para los tests unitarios, donde el fake
// de repositorio no usa gorm.

func (s *creditoService) findTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Credito, error) {
	var (
		c   *model.Credito
		err error
	)
	if tx != nil {
		c, err = s.repo.FindByIDTx(tx, id)
	} else {
		c, err = s.repo.FindByID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCreditoNoEncontrado
		}
		return nil, err
	}
	return c, nil
}

func (s *creditoService) updateTx(ctx context.Context, tx *gorm.DB, c *model.Credito) error {
	return s.repo.UpdateTx(tx, c)
}

func (s *creditoService) updateCuotaTx(ctx context.Context, tx *gorm.DB, cuota *model.Cuota) error {
	return s.repo.UpdateCuotaTx(tx, cuota)
}

func (s *creditoService) crearCuotasTx(ctx context.Context, tx *gorm.DB, cuotas []model.Cuota) error {
	return s.repo.CreateCuotasTx(tx, cuotas)
}

func (s *creditoService) crearPagoTx(ctx context.Context, tx *gorm.DB, p *model.PagoCredito) error {
	return s.repo.CreatePagoTx(tx, p)
}

func (s *creditoService) sumPagosTx(ctx context.Context, tx *gorm.DB, creditoID uuid.UUID) (decimal.Decimal, error) {
	return s.repo.SumPagosTx(tx, creditoID)
}

func (s *creditoService) ajustarContadoresTx(ctx context.Context, tx *gorm.DB, entidadID uuid.UUID, ajuste repository.AjusteContadores) error {
	return s.entidades.AjustarContadoresTx(tx, entidadID, ajuste)
}

func creditoToResponse(c *model.Credito) dto.CreditoResponse {
	resp := dto.CreditoResponse{
		ID:             c.ID.String(),
		Modalidad:      c.Modalidad,
		TipoCredito:    c.TipoCredito,
		Estado:         c.Estado,
		EntidadID:      c.EntidadID.String(),
		TransaccionID:  c.TransaccionID.String(),
		SaldoOriginal:  c.SaldoOriginal,
		SaldoPendiente: c.SaldoPendiente,
		PlazoMeses:     c.PlazoMeses,
		PagoMinimo:     c.PagoMinimo,
		Cuotas:         make([]dto.CuotaResponse, 0, len(c.Cuotas)),
		Pagos:          make([]dto.PagoCreditoResponse, 0, len(c.Pagos)),
	}
	for i := range c.Cuotas {
		cuota := &c.Cuotas[i]
		resp.Cuotas = append(resp.Cuotas, dto.CuotaResponse{
			Numero:           cuota.Numero,
			Monto:            cuota.Monto,
			FechaVencimiento: cuota.FechaVencimiento.Format("2006-01-02"),
			Estado:           cuota.Estado,
		})
	}
	for i := range c.Pagos {
		pago := &c.Pagos[i]
		resp.Pagos = append(resp.Pagos, dto.PagoCreditoResponse{
			Monto:          pago.Monto,
			SaldoResultado: pago.SaldoResultado,
			Fecha:          pago.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp
}
