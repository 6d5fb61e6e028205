package service

import (
	"context"
	"testing"

	"tiendapos/internal/dto"
	"tiendapos/internal/model"
	"tiendapos/internal/moneda"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entornoCredito struct {
	creditos      *fakeCreditoRepo
	entidades     *fakeEntidadRepo
	transacciones *fakeTransaccionRepo
	svc           CreditoService
	entidad       *model.Entidad
}

func nuevoEntornoCredito() *entornoCredito {
	e := &entornoCredito{
		creditos:      newFakeCreditoRepo(),
		entidades:     newFakeEntidadRepo(),
		transacciones: newFakeTransaccionRepo(),
	}
	e.svc = NewCreditoService(e.creditos, e.entidades, e.transacciones)
	e.entidad = e.entidades.agregar(&model.Entidad{Tipo: "cliente", Nombre: "Comercial Díaz", Activo: true})
	return e
}

// ventaACredito crea la transacción de origen y su crédito asociado, como lo
// haría el orquestador dentro de la misma transacción.
func (e *entornoCredito) ventaACredito(t *testing.T, total string, terminos dto.TerminosCreditoRequest) *model.Credito {
	t.Helper()
	trans := &model.Transaccion{
		ID:         uuid.New(),
		Tipo:       model.TxVenta,
		Estado:     model.TxPendiente,
		SucursalID: uuid.New(),
		CajaID:     uuid.New(),
		EntidadID:  &e.entidad.ID,
		UsuarioID:  uuid.New(),
		MetodoPago: model.MetodoCredito,
		Subtotal:   dec(total),
		Total:      dec(total),
	}
	require.NoError(t, e.transacciones.CreateTx(nil, trans))
	credito, err := e.svc.CrearDesdeTransaccionTx(nil, trans, terminos)
	require.NoError(t, err)
	return credito
}

func montosCuotas(c *model.Credito) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(c.Cuotas))
	for i := range c.Cuotas {
		out = append(out, c.Cuotas[i].Monto)
	}
	return out
}

func TestCrearCreditoPlazoCuotasIguales(t *testing.T) {
	e := nuevoEntornoCredito()
	credito := e.ventaACredito(t, "300.00", dto.TerminosCreditoRequest{Modalidad: model.CreditoPlazo, PlazoMeses: 3})

	guardado, err := e.creditos.FindByID(context.Background(), credito.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CreditoAbierto, guardado.Estado)
	assert.True(t, dec("300.00").Equal(guardado.SaldoPendiente))
	require.Len(t, guardado.Cuotas, 3)
	for _, monto := range montosCuotas(guardado) {
		assert.True(t, dec("100.00").Equal(monto), "cuota: %s", monto)
	}
	assert.True(t, dec("300.00").Equal(e.entidad.MontoPorCobrar))
}

func TestCrearCreditoPlazoResiduoEnUltimaCuota(t *testing.T) {
	e := nuevoEntornoCredito()
	credito := e.ventaACredito(t, "100.00", dto.TerminosCreditoRequest{Modalidad: model.CreditoPlazo, PlazoMeses: 3})

	guardado, err := e.creditos.FindByID(context.Background(), credito.ID)
	require.NoError(t, err)
	montos := montosCuotas(guardado)
	require.Len(t, montos, 3)
	assert.True(t, dec("33.33").Equal(montos[0]))
	assert.True(t, dec("33.33").Equal(montos[1]))
	assert.True(t, dec("33.34").Equal(montos[2]), "la última absorbe el residuo")

	suma := moneda.Cero
	for _, m := range montos {
		suma = moneda.Sumar(suma, m)
	}
	assert.True(t, guardado.SaldoPendiente.Equal(suma))
}

func TestCrearCreditoPagoMinimoVeinte(t *testing.T) {
	e := nuevoEntornoCredito()
	credito := e.ventaACredito(t, "200.00", dto.TerminosCreditoRequest{Modalidad: model.CreditoPago})

	guardado, err := e.creditos.FindByID(context.Background(), credito.ID)
	require.NoError(t, err)
	assert.True(t, dec("40.00").Equal(guardado.PagoMinimo))
	require.Len(t, guardado.Cuotas, 1)
	assert.True(t, dec("40.00").Equal(guardado.Cuotas[0].Monto))
}

func TestCrearCreditoSinTerminos(t *testing.T) {
	e := nuevoEntornoCredito()
	trans := &model.Transaccion{ID: uuid.New(), Tipo: model.TxVenta, EntidadID: &e.entidad.ID, Total: dec("100.00")}
	require.NoError(t, e.transacciones.CreateTx(nil, trans))

	_, err := e.svc.CrearDesdeTransaccionTx(nil, trans, dto.TerminosCreditoRequest{Modalidad: model.CreditoPlazo})
	assert.ErrorIs(t, err, ErrTerminosRequeridos)

	trans.EntidadID = nil
	_, err = e.svc.CrearDesdeTransaccionTx(nil, trans, dto.TerminosCreditoRequest{Modalidad: model.CreditoPlazo, PlazoMeses: 3})
	assert.ErrorIs(t, err, ErrEntidadRequerida)
}

func TestPagarPlazoPorDebajoDeCuota(t *testing.T) {
	e := nuevoEntornoCredito()
	credito := e.ventaACredito(t, "300.00", dto.TerminosCreditoRequest{Modalidad: model.CreditoPlazo, PlazoMeses: 3})

	_, err := e.svc.Pagar(context.Background(), credito.ID, uuid.New(), dto.PagarCreditoRequest{Monto: dec("50.00")})
	assert.ErrorIs(t, err, ErrPagoInsuficiente)
}

func TestPagarPlazoUnaCuota(t *testing.T) {
	e := nuevoEntornoCredito()
	credito := e.ventaACredito(t, "300.00", dto.TerminosCreditoRequest{Modalidad: model.CreditoPlazo, PlazoMeses: 3})

	resp, err := e.svc.Pagar(context.Background(), credito.ID, uuid.New(), dto.PagarCreditoRequest{Monto: dec("100.00")})
	require.NoError(t, err)
	assert.True(t, dec("200.00").Equal(resp.SaldoPendiente))
	assert.Equal(t, model.CreditoAbierto, resp.Estado)
	assert.Equal(t, model.CuotaPagada, resp.Cuotas[0].Estado)
	assert.Equal(t, model.CuotaPendiente, resp.Cuotas[1].Estado)

	// Un pago que no cierra acumula como anticipo; la exposición original
	// queda intacta hasta el cierre.
	assert.True(t, dec("100.00").Equal(e.entidad.AnticiposRecibidos))
	assert.True(t, dec("300.00").Equal(e.entidad.MontoPorCobrar))
}

func TestPagarPlazoExcedentePisaCuotas(t *testing.T) {
	e := nuevoEntornoCredito()
	credito := e.ventaACredito(t, "300.00", dto.TerminosCreditoRequest{Modalidad: model.CreditoPlazo, PlazoMeses: 3})

	// 150 cubre la primera cuota entera y achica la segunda en el lugar.
	resp, err := e.svc.Pagar(context.Background(), credito.ID, uuid.New(), dto.PagarCreditoRequest{Monto: dec("150.00")})
	require.NoError(t, err)
	assert.True(t, dec("150.00").Equal(resp.SaldoPendiente))
	assert.Equal(t, model.CuotaPagada, resp.Cuotas[0].Estado)
	assert.Equal(t, model.CuotaPendiente, resp.Cuotas[1].Estado)
	assert.True(t, dec("50.00").Equal(resp.Cuotas[1].Monto))
	assert.True(t, dec("100.00").Equal(resp.Cuotas[2].Monto))
}

func TestPagarCierreSaldaTransaccionOrigen(t *testing.T) {
	e := nuevoEntornoCredito()
	credito := e.ventaACredito(t, "300.00", dto.TerminosCreditoRequest{Modalidad: model.CreditoPlazo, PlazoMeses: 3})

	_, err := e.svc.Pagar(context.Background(), credito.ID, uuid.New(), dto.PagarCreditoRequest{Monto: dec("100.00")})
	require.NoError(t, err)
	resp, err := e.svc.Pagar(context.Background(), credito.ID, uuid.New(), dto.PagarCreditoRequest{Monto: dec("200.00")})
	require.NoError(t, err)

	assert.Equal(t, model.CreditoCerrado, resp.Estado)
	assert.True(t, resp.SaldoPendiente.IsZero())
	for _, cuota := range resp.Cuotas {
		assert.Equal(t, model.CuotaPagada, cuota.Estado)
	}

	// El cierre deshace la exposición y los anticipos realizados.
	assert.True(t, e.entidad.MontoPorCobrar.IsZero(), "por cobrar: %s", e.entidad.MontoPorCobrar)
	assert.True(t, e.entidad.AnticiposRecibidos.IsZero(), "anticipos: %s", e.entidad.AnticiposRecibidos)

	origen, err := e.transacciones.FindByID(context.Background(), credito.TransaccionID)
	require.NoError(t, err)
	assert.Equal(t, model.TxPagada, origen.Estado)
}

func TestPagarPagoRegeneraMinimo(t *testing.T) {
	e := nuevoEntornoCredito()
	credito := e.ventaACredito(t, "200.00", dto.TerminosCreditoRequest{Modalidad: model.CreditoPago})

	_, err := e.svc.Pagar(context.Background(), credito.ID, uuid.New(), dto.PagarCreditoRequest{Monto: dec("30.00")})
	assert.ErrorIs(t, err, ErrPagoInsuficiente, "30 queda por debajo del mínimo de 40")

	resp, err := e.svc.Pagar(context.Background(), credito.ID, uuid.New(), dto.PagarCreditoRequest{Monto: dec("50.00")})
	require.NoError(t, err)
	assert.True(t, dec("150.00").Equal(resp.SaldoPendiente))
	// Nuevo mínimo: 20% del saldo resultante.
	assert.True(t, dec("30.00").Equal(resp.PagoMinimo))
	require.Len(t, resp.Cuotas, 2)
	assert.Equal(t, model.CuotaPagada, resp.Cuotas[0].Estado)
	assert.Equal(t, model.CuotaPendiente, resp.Cuotas[1].Estado)
	assert.True(t, dec("30.00").Equal(resp.Cuotas[1].Monto))
}

func TestPagarSaldoCompletoEnPagoSiemprePermitido(t *testing.T) {
	e := nuevoEntornoCredito()
	credito := e.ventaACredito(t, "10.00", dto.TerminosCreditoRequest{Modalidad: model.CreditoPago})

	// Cancelar el total está permitido aunque sea el último resto.
	resp, err := e.svc.Pagar(context.Background(), credito.ID, uuid.New(), dto.PagarCreditoRequest{Monto: dec("10.00")})
	require.NoError(t, err)
	assert.Equal(t, model.CreditoCerrado, resp.Estado)
	assert.True(t, resp.PagoMinimo.IsZero())
}

func TestPagarValidaciones(t *testing.T) {
	e := nuevoEntornoCredito()
	credito := e.ventaACredito(t, "100.00", dto.TerminosCreditoRequest{Modalidad: model.CreditoPago})

	_, err := e.svc.Pagar(context.Background(), credito.ID, uuid.New(), dto.PagarCreditoRequest{Monto: dec("150.00")})
	assert.ErrorIs(t, err, ErrSaldoExcedido)

	_, err = e.svc.Pagar(context.Background(), uuid.New(), uuid.New(), dto.PagarCreditoRequest{Monto: dec("10.00")})
	assert.ErrorIs(t, err, ErrCreditoNoEncontrado)

	_, err = e.svc.Pagar(context.Background(), credito.ID, uuid.New(), dto.PagarCreditoRequest{Monto: dec("100.00")})
	require.NoError(t, err)
	_, err = e.svc.Pagar(context.Background(), credito.ID, uuid.New(), dto.PagarCreditoRequest{Monto: dec("10.00")})
	assert.ErrorIs(t, err, ErrCreditoCerrado)
}

func TestReducirPorDevolucionAchicaSaldo(t *testing.T) {
	e := nuevoEntornoCredito()
	credito := e.ventaACredito(t, "300.00", dto.TerminosCreditoRequest{Modalidad: model.CreditoPlazo, PlazoMeses: 3})

	reduccion, err := e.svc.ReducirPorDevolucionTx(nil, credito.TransaccionID, dec("100.00"))
	require.NoError(t, err)
	assert.True(t, reduccion.Efectivo.IsZero(), "todo se absorbe contra el saldo")
	assert.True(t, dec("100.00").Equal(reduccion.ReduccionSaldo))
	assert.False(t, reduccion.Cerrado)

	guardado, err := e.creditos.FindByID(context.Background(), credito.ID)
	require.NoError(t, err)
	assert.True(t, dec("200.00").Equal(guardado.SaldoPendiente))
	assert.True(t, dec("200.00").Equal(e.entidad.MontoPorCobrar))

	// Las cuotas pendientes se replanifican y suman exacto el saldo nuevo.
	suma := moneda.Cero
	for i := range guardado.Cuotas {
		if guardado.Cuotas[i].Estado == model.CuotaPendiente {
			suma = moneda.Sumar(suma, guardado.Cuotas[i].Monto)
		}
	}
	assert.True(t, dec("200.00").Equal(suma), "cuotas pendientes: %s", suma)
}

func TestReducirPorDevolucionExcedenteEnEfectivo(t *testing.T) {
	e := nuevoEntornoCredito()
	credito := e.ventaACredito(t, "300.00", dto.TerminosCreditoRequest{Modalidad: model.CreditoPlazo, PlazoMeses: 3})

	_, err := e.svc.Pagar(context.Background(), credito.ID, uuid.New(), dto.PagarCreditoRequest{Monto: dec("100.00")})
	require.NoError(t, err)

	// Saldo 200, pagado 100: devolver 250 achica 200 y reintegra 50.
	reduccion, err := e.svc.ReducirPorDevolucionTx(nil, credito.TransaccionID, dec("250.00"))
	require.NoError(t, err)
	assert.True(t, dec("200.00").Equal(reduccion.ReduccionSaldo))
	assert.True(t, dec("50.00").Equal(reduccion.Efectivo))
	assert.True(t, reduccion.Cerrado)

	guardado, err := e.creditos.FindByID(context.Background(), credito.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CreditoCerrado, guardado.Estado)
	assert.True(t, e.entidad.MontoPorCobrar.IsZero())
	assert.True(t, e.entidad.AnticiposRecibidos.IsZero())
}

func TestReducirPorDevolucionEfectivoNuncaExcedeLoPagado(t *testing.T) {
	e := nuevoEntornoCredito()
	credito := e.ventaACredito(t, "100.00", dto.TerminosCreditoRequest{Modalidad: model.CreditoPago})

	// Sin pagos registrados el excedente no puede salir de caja.
	reduccion, err := e.svc.ReducirPorDevolucionTx(nil, credito.TransaccionID, dec("100.00"))
	require.NoError(t, err)
	assert.True(t, reduccion.Efectivo.IsZero())
	assert.True(t, reduccion.Cerrado)
}

func TestReducirPorDevolucionCreditoCerrado(t *testing.T) {
	e := nuevoEntornoCredito()
	credito := e.ventaACredito(t, "100.00", dto.TerminosCreditoRequest{Modalidad: model.CreditoPago})
	_, err := e.svc.Pagar(context.Background(), credito.ID, uuid.New(), dto.PagarCreditoRequest{Monto: dec("100.00")})
	require.NoError(t, err)

	// Crédito ya cobrado completo: la devolución es toda en efectivo y no
	// toca cuotas ni contadores.
	reduccion, err := e.svc.ReducirPorDevolucionTx(nil, credito.TransaccionID, dec("80.00"))
	require.NoError(t, err)
	assert.True(t, dec("80.00").Equal(reduccion.Efectivo))
	assert.True(t, reduccion.ReduccionSaldo.IsZero())
	assert.True(t, reduccion.Cerrado)
}

func TestObtenerYListarPorEntidad(t *testing.T) {
	e := nuevoEntornoCredito()
	credito := e.ventaACredito(t, "100.00", dto.TerminosCreditoRequest{Modalidad: model.CreditoPago})

	resp, err := e.svc.Obtener(context.Background(), credito.ID)
	require.NoError(t, err)
	assert.Equal(t, credito.ID.String(), resp.ID)

	_, err = e.svc.Obtener(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrCreditoNoEncontrado)

	lista, err := e.svc.ListarPorEntidad(context.Background(), e.entidad.ID)
	require.NoError(t, err)
	assert.Len(t, lista, 1)
}
