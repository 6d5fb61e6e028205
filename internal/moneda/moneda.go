// Package moneda centraliza la aritmética monetaria del sistema.
// Todos los montos (precios, totales, saldos, montos esperados) pasan por
// estas funciones: cada resultado se canoniza a 2 decimales con redondeo
// half-away-from-zero (decimal.Round), nunca por punto flotante binario.
package moneda

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Escala es la precisión de presentación y almacenamiento de todo monto.
const Escala = 2

var (
	ErrDivisionPorCero = errors.New("división por cero")
	ErrDecimalInvalido = errors.New("monto decimal inválido")
)

// Cero es el monto canónico 0.00.
var Cero = decimal.Zero

// Desde parsea una representación string ("10.005", "-3") a decimal.
// No redondea: los intermedios conservan precisión arbitraria y solo los
// resultados de las operaciones de este paquete se canonizan.
func Desde(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrDecimalInvalido
	}
	return d, nil
}

// Redondear canoniza un monto a la escala de almacenamiento.
func Redondear(d decimal.Decimal) decimal.Decimal {
	return d.Round(Escala)
}

func Sumar(a, b decimal.Decimal) decimal.Decimal {
	return Redondear(a.Add(b))
}

// Restar devuelve la diferencia CON signo. Los llamadores que necesitan
// magnitud (la diferencia de cierre de caja) usan RestarAbs explícitamente;
// faltante y sobrante de caja se distinguen por el signo de Restar.
func Restar(a, b decimal.Decimal) decimal.Decimal {
	return Redondear(a.Sub(b))
}

// RestarAbs devuelve |a - b|.
func RestarAbs(a, b decimal.Decimal) decimal.Decimal {
	return Redondear(a.Sub(b).Abs())
}

func Multiplicar(a, b decimal.Decimal) decimal.Decimal {
	return Redondear(a.Mul(b))
}

// Dividir falla con ErrDivisionPorCero en vez de dejar que decimal haga panic.
func Dividir(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, ErrDivisionPorCero
	}
	return Redondear(a.Div(b)), nil
}

// Porcentaje calcula monto*(pct/100) sin redondear el intermedio pct/100.
func Porcentaje(monto, pct decimal.Decimal) decimal.Decimal {
	return Redondear(monto.Mul(pct).Div(decimal.NewFromInt(100)))
}

func MayorQue(a, b decimal.Decimal) bool { return a.GreaterThan(b) }

func EsCero(d decimal.Decimal) bool { return d.IsZero() }

// ClampCero lleva montos negativos a 0.00. Guardia contra deriva de redondeo
// en saldos que nunca deben persistirse negativos.
func ClampCero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return Redondear(d)
}
