package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Costo promedio ponderado
// ──────────────────────────────────────────────────────────────────────────────

func TestWeightedAverageCost_PromedioPonderado(t *testing.T) {
	// 10 u a 100 + 10 u a 200 => 150
	got := inventory.WeightedAverageCost(d("10"), d("100"), d("10"), d("200"))
	assert.True(t, got.Equal(d("150")), "esperado 150, obtenido %s", got)
}

func TestWeightedAverageCost_SinStockPrevioTomaCostoEntrada(t *testing.T) {
	got := inventory.WeightedAverageCost(d("-2"), d("80"), d("5"), d("120"))
	assert.True(t, got.Equal(d("120")), "con stock previo no positivo manda el costo de la entrada")
}

// ──────────────────────────────────────────────────────────────────────────────
// Explosión de receta
// ──────────────────────────────────────────────────────────────────────────────

func TestExplode_ProductoSinReceta(t *testing.T) {
	item := &entity.Item{ID: 1, GeneratesStock: true}
	out := inventory.Explode(item, d("3"), nil)

	require.Len(t, out, 1)
	assert.Equal(t, int64(1), out[0].ItemID)
	assert.True(t, out[0].Quantity.Equal(d("3")))
	assert.Equal(t, entity.MotiveSale, out[0].Motive)
}

func TestExplode_ServicioConReceta(t *testing.T) {
	item := &entity.Item{ID: 10, GeneratesStock: false}
	comp := []entity.CompositionLine{
		{ParentID: 10, ComponentID: 1, Quantity: d("2")},
		{ParentID: 10, ComponentID: 2, Quantity: d("0.5")},
	}
	out := inventory.Explode(item, d("2"), comp)

	require.Len(t, out, 2, "el servicio sin stock propio solo consume componentes")
	assert.Equal(t, int64(1), out[0].ItemID)
	assert.True(t, out[0].Quantity.Equal(d("4")))
	assert.Equal(t, entity.MotiveProcedureConsumption, out[0].Motive)
	assert.True(t, out[1].Quantity.Equal(d("1")))
}

func TestExplode_PadreConStockYReceta(t *testing.T) {
	item := &entity.Item{ID: 10, GeneratesStock: true}
	comp := []entity.CompositionLine{{ParentID: 10, ComponentID: 1, Quantity: d("1")}}
	out := inventory.Explode(item, d("1"), comp)

	require.Len(t, out, 2)
	assert.Equal(t, int64(10), out[1].ItemID, "el padre egresa además de sus componentes")
}

func TestExplode_RedondeaATresDecimalesYOmiteCeros(t *testing.T) {
	item := &entity.Item{ID: 10}
	comp := []entity.CompositionLine{
		{ParentID: 10, ComponentID: 1, Quantity: d("0.125")},
		{ParentID: 10, ComponentID: 2, Quantity: d("0.001")},
	}
	out := inventory.Explode(item, d("0.333"), comp)

	require.Len(t, out, 1, "un consumo que redondea a cero no genera egreso")
	assert.True(t, out[0].Quantity.Equal(d("0.042")), "0.333 × 0.125 = 0.041625 → 0.042, obtenido %s", out[0].Quantity)
}

func TestExplode_ServicioSinStockNiReceta(t *testing.T) {
	out := inventory.Explode(&entity.Item{ID: 5}, d("1"), nil)
	assert.Empty(t, out)
}

// ──────────────────────────────────────────────────────────────────────────────
// Resumen mensual
// ──────────────────────────────────────────────────────────────────────────────

func mov(item int64, qty, kind, module string) *entity.StockMovement {
	return &entity.StockMovement{ItemID: item, Quantity: d(qty), Kind: kind, Origin: entity.OriginRef{Module: module}}
}

func TestBuildMonthlySummary(t *testing.T) {
	initial := map[int64]decimal.Decimal{1: d("10"), 3: d("4")}
	movs := []*entity.StockMovement{
		mov(1, "20", entity.MovementKindIngreso, entity.OriginPurchase),
		mov(1, "5", entity.MovementKindEgreso, entity.OriginSale),
		mov(1, "2", entity.MovementKindIngreso, entity.OriginSale), // anulación de venta
		mov(1, "1", entity.MovementKindEgreso, entity.OriginManual),
		mov(2, "3", entity.MovementKindEgreso, entity.OriginManual),
	}

	rows := inventory.BuildMonthlySummary(initial, movs)
	require.Len(t, rows, 3)

	r1 := rows[0]
	assert.Equal(t, int64(1), r1.ItemID)
	assert.True(t, r1.Initial.Equal(d("10")))
	assert.True(t, r1.Ingreso.Equal(d("20")))
	assert.True(t, r1.Ventas.Equal(d("3")), "ventas netas de anulaciones")
	assert.True(t, r1.Otros.Equal(d("1")))
	assert.True(t, r1.Final.Equal(d("26")))

	r2 := rows[1]
	assert.True(t, r2.Final.Equal(d("-3")), "un final negativo se informa")

	r3 := rows[2]
	assert.True(t, r3.Final.Equal(d("4")), "ítems sin movimientos mantienen su saldo")
}

func TestMonthBounds_UsaZonaConfigurada(t *testing.T) {
	loc := time.FixedZone("PYT", -3*3600)
	start, end := inventory.MonthBounds(2024, time.February, loc)

	assert.Equal(t, time.Date(2024, 2, 1, 3, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 1, 3, 0, 0, 0, time.UTC), end)
}
