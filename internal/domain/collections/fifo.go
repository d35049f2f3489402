// Package collections contiene la lógica pura de imputación de cobros.
package collections

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Outstanding venta con saldo pendiente candidata a imputación.
type Outstanding struct {
	SaleID  int64
	Date    time.Time
	Balance decimal.Decimal
}

// Allocation monto imputado a una venta.
type Allocation struct {
	SaleID int64
	Amount decimal.Decimal
}

// AllocateFIFO reparte amount sobre las ventas más antiguas primero, orden (date asc, id asc).
// Devuelve las imputaciones y el remanente no imputado (queda en el cobro).
func AllocateFIFO(amount decimal.Decimal, sales []Outstanding) ([]Allocation, decimal.Decimal) {
	ordered := make([]Outstanding, len(sales))
	copy(ordered, sales)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return ordered[i].SaleID < ordered[j].SaleID
	})

	remaining := amount
	var out []Allocation
	for _, s := range ordered {
		if !remaining.IsPositive() {
			break
		}
		if !s.Balance.IsPositive() {
			continue
		}
		take := decimal.Min(remaining, s.Balance)
		out = append(out, Allocation{SaleID: s.SaleID, Amount: take})
		remaining = remaining.Sub(take)
	}
	return out, remaining
}
