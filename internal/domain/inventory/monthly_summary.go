package inventory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
)

// MonthlyRow fila del resumen mensual de stock por ítem.
type MonthlyRow struct {
	ItemID  int64
	Initial decimal.Decimal
	Ingreso decimal.Decimal
	Ventas  decimal.Decimal
	Otros   decimal.Decimal
	Final   decimal.Decimal
}

// MonthBounds devuelve [inicio, fin) del mes en la zona loc, expresados en UTC.
func MonthBounds(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start.UTC(), start.AddDate(0, 1, 0).UTC()
}

// BuildMonthlySummary arma el resumen a partir del saldo inicial por ítem y los movimientos del mes.
//
//	ingreso = Σ INGRESO con origen compra (neto de anulaciones de compra)
//	ventas  = Σ EGRESO con origen venta (neto de anulaciones de venta)
//	otros   = Σ restantes egresos menos ajustes positivos
//	final   = initial + ingreso − ventas − otros
//
// Un final negativo se informa tal cual (señala inconsistencia). Filas ordenadas por item_id.
func BuildMonthlySummary(initial map[int64]decimal.Decimal, movements []*entity.StockMovement) []MonthlyRow {
	rows := make(map[int64]*MonthlyRow, len(initial))
	row := func(id int64) *MonthlyRow {
		r, ok := rows[id]
		if !ok {
			r = &MonthlyRow{ItemID: id, Initial: initial[id]}
			rows[id] = r
		}
		return r
	}
	for id := range initial {
		row(id)
	}
	for _, m := range movements {
		r := row(m.ItemID)
		switch m.Origin.Module {
		case entity.OriginPurchase:
			r.Ingreso = r.Ingreso.Add(m.Signed())
		case entity.OriginSale:
			r.Ventas = r.Ventas.Sub(m.Signed())
		default:
			r.Otros = r.Otros.Sub(m.Signed())
		}
	}
	out := make([]MonthlyRow, 0, len(rows))
	for _, r := range rows {
		r.Final = r.Initial.Add(r.Ingreso).Sub(r.Ventas).Sub(r.Otros)
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}
