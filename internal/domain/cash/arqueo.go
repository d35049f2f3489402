// Package cash contiene la aritmética del arqueo de caja chica.
package cash

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
)

// ComputeFinal saldo calculado: inicial − Σ(gastos + pagos a proveedor) + Σ ingresos.
func ComputeFinal(initial decimal.Decimal, movements []*entity.CashMovement) decimal.Decimal {
	total := initial
	for _, m := range movements {
		switch m.Kind {
		case entity.CashMovementIncome:
			total = total.Add(m.Amount)
		case entity.CashMovementExpense, entity.CashMovementPurchasePayment:
			total = total.Sub(m.Amount)
		}
	}
	return total
}

// Arqueo resultado del cierre: calculado, declarado y diferencia (declarado − calculado).
type Arqueo struct {
	Computed   decimal.Decimal
	Declared   decimal.Decimal
	Difference decimal.Decimal
}

// Reconcile calcula el arqueo de una sesión.
func Reconcile(initial, declared decimal.Decimal, movements []*entity.CashMovement) Arqueo {
	computed := ComputeFinal(initial, movements)
	return Arqueo{Computed: computed, Declared: declared, Difference: declared.Sub(computed)}
}
