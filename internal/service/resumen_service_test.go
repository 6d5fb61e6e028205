package service

import (
	"context"
	"testing"
	"time"

	"tiendapos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transaccionDelDia(tipo, metodoPago, total string) *model.Transaccion {
	return &model.Transaccion{
		ID:         uuid.New(),
		Tipo:       tipo,
		SucursalID: uuid.New(),
		CajaID:     uuid.New(),
		MetodoPago: metodoPago,
		Total:      dec(total),
		CreatedAt:  time.Now(),
	}
}

func TestResumenVentaContado(t *testing.T) {
	repo := newFakeResumenRepo()
	svc := NewResumenService(repo)
	venta := transaccionDelDia(model.TxVenta, model.PagoContado, "150.00")

	require.NoError(t, svc.AgregarTransaccionTx(nil, venta))

	resumen, err := svc.ObtenerDia(context.Background(), venta.SucursalID, venta.CajaID, venta.CreatedAt)
	require.NoError(t, err)
	assert.True(t, dec("150.00").Equal(resumen.TotalVentas))
	assert.True(t, dec("150.00").Equal(resumen.MontoFinalSistema))
	require.Len(t, repo.referencias, 1)
	assert.Equal(t, venta.ID, repo.referencias[0].TransaccionID)
	assert.Equal(t, model.TxVenta, repo.referencias[0].Tipo)
}

func TestResumenVentaCreditoNoMueveEfectivo(t *testing.T) {
	repo := newFakeResumenRepo()
	svc := NewResumenService(repo)
	venta := transaccionDelDia(model.TxVenta, model.MetodoCredito, "300.00")

	require.NoError(t, svc.AgregarTransaccionTx(nil, venta))

	resumen, err := svc.ObtenerDia(context.Background(), venta.SucursalID, venta.CajaID, venta.CreatedAt)
	require.NoError(t, err)
	// La plata todavía no pasó por la caja.
	assert.True(t, dec("300.00").Equal(resumen.TotalVentas))
	assert.True(t, resumen.MontoFinalSistema.IsZero())
}

func TestResumenCompraContado(t *testing.T) {
	repo := newFakeResumenRepo()
	svc := NewResumenService(repo)
	compra := transaccionDelDia(model.TxCompra, model.PagoContado, "80.00")

	require.NoError(t, svc.AgregarTransaccionTx(nil, compra))

	resumen, err := svc.ObtenerDia(context.Background(), compra.SucursalID, compra.CajaID, compra.CreatedAt)
	require.NoError(t, err)
	assert.True(t, dec("80.00").Equal(resumen.TotalCompras))
	assert.True(t, dec("-80.00").Equal(resumen.MontoFinalSistema))
}

func TestResumenAcumulaMismoDia(t *testing.T) {
	repo := newFakeResumenRepo()
	svc := NewResumenService(repo)
	venta := transaccionDelDia(model.TxVenta, model.PagoContado, "100.00")
	otra := transaccionDelDia(model.TxVenta, model.PagoContado, "50.00")
	otra.SucursalID, otra.CajaID = venta.SucursalID, venta.CajaID
	otra.CreatedAt = venta.CreatedAt.Add(2 * time.Hour)

	require.NoError(t, svc.AgregarTransaccionTx(nil, venta))
	require.NoError(t, svc.AgregarTransaccionTx(nil, otra))

	assert.Len(t, repo.resumenes, 1, "una sola fila por (sucursal, caja, día)")
	resumen, err := svc.ObtenerDia(context.Background(), venta.SucursalID, venta.CajaID, venta.CreatedAt)
	require.NoError(t, err)
	assert.True(t, dec("150.00").Equal(resumen.TotalVentas))
}

func TestResumenDevolucionSoloMueveEfectivoReintegrado(t *testing.T) {
	repo := newFakeResumenRepo()
	svc := NewResumenService(repo)
	venta := transaccionDelDia(model.TxVenta, model.MetodoCredito, "300.00")
	require.NoError(t, svc.AgregarTransaccionTx(nil, venta))

	devolucion := transaccionDelDia(model.TxDevolucion, model.MetodoCredito, "100.00")
	devolucion.SucursalID, devolucion.CajaID = venta.SucursalID, venta.CajaID
	devolucion.CreatedAt = venta.CreatedAt

	// De los 100 devueltos sólo 40 salieron de caja; el resto se absorbió
	// contra el saldo pendiente del crédito.
	require.NoError(t, svc.AgregarDevolucionTx(nil, devolucion, model.TxVenta, dec("40.00")))

	resumen, err := svc.ObtenerDia(context.Background(), venta.SucursalID, venta.CajaID, venta.CreatedAt)
	require.NoError(t, err)
	assert.True(t, dec("200.00").Equal(resumen.TotalVentas))
	assert.True(t, dec("-40.00").Equal(resumen.MontoFinalSistema))
	require.Len(t, repo.referencias, 2)
	assert.Equal(t, model.TxDevolucion, repo.referencias[1].Tipo)
}

func TestResumenDevolucionDeCompraReingresa(t *testing.T) {
	repo := newFakeResumenRepo()
	svc := NewResumenService(repo)
	compra := transaccionDelDia(model.TxCompra, model.PagoContado, "80.00")
	require.NoError(t, svc.AgregarTransaccionTx(nil, compra))

	devolucion := transaccionDelDia(model.TxDevolucion, model.PagoContado, "30.00")
	devolucion.SucursalID, devolucion.CajaID = compra.SucursalID, compra.CajaID
	devolucion.CreatedAt = compra.CreatedAt

	require.NoError(t, svc.AgregarDevolucionTx(nil, devolucion, model.TxCompra, dec("30.00")))

	resumen, err := svc.ObtenerDia(context.Background(), compra.SucursalID, compra.CajaID, compra.CreatedAt)
	require.NoError(t, err)
	assert.True(t, dec("50.00").Equal(resumen.TotalCompras))
	assert.True(t, dec("-50.00").Equal(resumen.MontoFinalSistema))
}

func TestResumenIngresoYEgreso(t *testing.T) {
	repo := newFakeResumenRepo()
	svc := NewResumenService(repo)
	ingreso := transaccionDelDia(model.TxIngreso, model.PagoContado, "500.00")
	require.NoError(t, svc.AgregarIngresoTx(nil, ingreso))

	egreso := transaccionDelDia(model.TxEgreso, model.PagoContado, "120.00")
	egreso.SucursalID, egreso.CajaID = ingreso.SucursalID, ingreso.CajaID
	egreso.CreatedAt = ingreso.CreatedAt
	require.NoError(t, svc.AgregarEgresoTx(nil, egreso))

	resumen, err := svc.ObtenerDia(context.Background(), ingreso.SucursalID, ingreso.CajaID, ingreso.CreatedAt)
	require.NoError(t, err)
	assert.True(t, dec("500.00").Equal(resumen.TotalIngresos))
	assert.True(t, dec("120.00").Equal(resumen.TotalEgresos))
	assert.True(t, dec("380.00").Equal(resumen.MontoFinalSistema))
}
