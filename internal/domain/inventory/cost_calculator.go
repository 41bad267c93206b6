// Package inventory servicios de dominio de inventario sin dependencias de almacenamiento.
package inventory

import "github.com/shopspring/decimal"

// costPrecision decimales con que se guarda el costo promedio.
const costPrecision = 4

// AverageCost costo promedio ponderado tras una entrada:
// ((stock × costo) + (cantidad × costoEntrada)) / (stock + cantidad).
// Con stock resultante ≤ 0 se conserva el costo de la entrada.
func AverageCost(stock, cost, qtyIn, costIn decimal.Decimal) decimal.Decimal {
	if stock.IsNegative() {
		stock = decimal.Zero
	}
	total := stock.Add(qtyIn)
	if total.LessThanOrEqual(decimal.Zero) {
		return costIn.Round(costPrecision)
	}
	num := stock.Mul(cost).Add(qtyIn.Mul(costIn))
	return num.Div(total).Round(costPrecision)
}
