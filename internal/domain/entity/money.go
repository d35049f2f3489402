package entity

import "github.com/shopspring/decimal"

// Escalas de punto fijo: importes con 2 decimales y cantidades con 3.
const (
	MoneyScale    = 2
	QuantityScale = 3
)

// RoundMoney redondea un importe a MoneyScale decimales.
func RoundMoney(d decimal.Decimal) decimal.Decimal { return d.Round(MoneyScale) }

// RoundQuantity redondea una cantidad a QuantityScale decimales.
func RoundQuantity(d decimal.Decimal) decimal.Decimal { return d.Round(QuantityScale) }

// Gross importe bruto de una línea: qty·unit_price redondeado a centavos.
func Gross(qty, unitPrice decimal.Decimal) decimal.Decimal {
	return RoundMoney(qty.Mul(unitPrice))
}
