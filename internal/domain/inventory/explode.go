package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
)

// Consumption egreso de stock que produce una línea de venta.
type Consumption struct {
	ItemID   int64
	Quantity decimal.Decimal
	Motive   string
}

// Explode traduce una línea de venta (item × qty) en egresos de stock.
//
// Sin receta, un ítem con GeneratesStock egresa qty. Con receta, cada componente egresa
// qty·component_qty como consumo de procedimiento y el padre egresa además qty solo si
// GeneratesStock. La explosión es de un nivel: los componentes no se vuelven a explotar.
// Cada egreso se redondea a 3 decimales; los que quedan en cero se omiten.
func Explode(item *entity.Item, qty decimal.Decimal, composition []entity.CompositionLine) []Consumption {
	var out []Consumption
	for _, c := range composition {
		q := entity.RoundQuantity(qty.Mul(c.Quantity))
		if !q.IsPositive() {
			continue
		}
		out = append(out, Consumption{
			ItemID:   c.ComponentID,
			Quantity: q,
			Motive:   entity.MotiveProcedureConsumption,
		})
	}
	if item.GeneratesStock {
		out = append(out, Consumption{ItemID: item.ID, Quantity: qty, Motive: entity.MotiveSale})
	}
	return out
}
