package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Importes en punto fijo de 2 decimales
// ──────────────────────────────────────────────────────────────────────────────

func TestComputeSubtotal_RedondeaACentavos(t *testing.T) {
	cases := []struct {
		name          string
		qty, price    string
		discount, out string
	}{
		{"exacto", "2", "150.50", "0", "301"},
		{"medio centavo sube", "0.125", "10.05", "0", "1.26"},
		{"con descuento", "0.125", "10.05", "0.26", "1"},
		{"descuento total", "1", "99.99", "99.99", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := entity.SaleLine{Quantity: d(tc.qty), UnitPrice: d(tc.price), Discount: d(tc.discount)}
			got := l.ComputeSubtotal()
			assert.True(t, got.Equal(d(tc.out)), "esperado %s, obtenido %s", tc.out, got)
			assert.LessOrEqual(t, -got.Exponent(), int32(entity.MoneyScale), "el subtotal no excede 2 decimales")
		})
	}
}

func TestGross_SumaDeLineasIgualAlTotal(t *testing.T) {
	// Dos líneas de medio centavo: cada una redondea por separado y el total es su suma.
	a := entity.Gross(d("1"), d("0.005"))
	b := entity.Gross(d("1"), d("0.005"))
	assert.True(t, a.Equal(d("0.01")))
	assert.True(t, a.Add(b).Equal(d("0.02")))
}

func TestRoundQuantity(t *testing.T) {
	assert.True(t, entity.RoundQuantity(d("1.23456")).Equal(d("1.235")))
	assert.True(t, entity.RoundMoney(d("-0.005")).Equal(d("-0.01")))
}
