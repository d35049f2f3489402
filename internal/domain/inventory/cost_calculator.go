package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost costo promedio ponderado tras un ingreso de compra:
//
//	(onHand*cost + qty*unitCost) / (onHand + qty)
//
// Si no había existencia positiva, el costo de la entrada reemplaza al anterior.
func WeightedAverageCost(onHand, cost, qty, unitCost decimal.Decimal) decimal.Decimal {
	if !onHand.IsPositive() {
		return unitCost.Round(4)
	}
	total := onHand.Add(qty)
	if !total.IsPositive() {
		return decimal.Zero
	}
	return onHand.Mul(cost).Add(qty.Mul(unitCost)).DivRound(total, 4)
}
