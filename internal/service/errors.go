package service

import "errors"

// Errores de negocio. Se propagan sin modificar hasta el handler, que los
// mapea a respuestas 4xx; todo lo demás termina en 500 genérico.
var (
	// Inventario
	ErrExistenciaNoCargada = errors.New("la existencia no fue cargada en el libro de trabajo")
	ErrExistenciaNoExiste  = errors.New("existencia no encontrada")
	ErrStockInsuficiente   = errors.New("stock insuficiente")
	ErrCantidadInvalida    = errors.New("la cantidad debe ser mayor que cero")

	// Caja
	ErrCajaNoEncontrada = errors.New("caja no encontrada")
	ErrCajaYaCerrada    = errors.New("la caja ya está cerrada")
	ErrCajaCerrada      = errors.New("la caja debe estar abierta para esta operación")
	ErrSinCierres       = errors.New("la caja no registra cierres")

	// Transacciones
	ErrTransaccionNoEncontrada = errors.New("transacción no encontrada")
	ErrDetalleNoEncontrado     = errors.New("la transacción de origen no contiene ese producto")
	ErrDevolucionExcede        = errors.New("la cantidad devuelta excede la cantidad vendida")
	ErrEntidadRequerida        = errors.New("una transacción a crédito requiere entidad")
	ErrTerminosRequeridos      = errors.New("una transacción a crédito requiere términos de crédito")

	// Descuentos
	ErrDescuentoNoEncontrado = errors.New("descuento no encontrado")
	ErrDescuentoNoAplica     = errors.New("el descuento no aplica a este producto")
	ErrDescuentoMalFormado   = errors.New("definición de descuento sin alcance válido")

	// Créditos
	ErrCreditoNoEncontrado = errors.New("crédito no encontrado")
	ErrCreditoCerrado      = errors.New("el crédito ya está cerrado")
	ErrPagoInsuficiente    = errors.New("el monto es menor que la cuota vigente")
	ErrSaldoExcedido       = errors.New("el monto excede el saldo pendiente")
)
