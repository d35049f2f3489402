package collections_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinica-api/internal/domain/collections"
)

func day(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

func TestAllocateFIFO_MasAntiguaPrimero(t *testing.T) {
	sales := []collections.Outstanding{
		{SaleID: 2, Date: day(5), Balance: decimal.NewFromInt(50)},
		{SaleID: 1, Date: day(1), Balance: decimal.NewFromInt(100)},
	}
	allocs, rest := collections.AllocateFIFO(decimal.NewFromInt(120), sales)

	require.Len(t, allocs, 2)
	assert.Equal(t, int64(1), allocs[0].SaleID)
	assert.True(t, allocs[0].Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, int64(2), allocs[1].SaleID)
	assert.True(t, allocs[1].Amount.Equal(decimal.NewFromInt(20)))
	assert.True(t, rest.IsZero())
}

func TestAllocateFIFO_DesempataPorID(t *testing.T) {
	sales := []collections.Outstanding{
		{SaleID: 9, Date: day(1), Balance: decimal.NewFromInt(10)},
		{SaleID: 4, Date: day(1), Balance: decimal.NewFromInt(10)},
	}
	allocs, _ := collections.AllocateFIFO(decimal.NewFromInt(5), sales)

	require.Len(t, allocs, 1)
	assert.Equal(t, int64(4), allocs[0].SaleID)
}

func TestAllocateFIFO_SobranteQuedaSinImputar(t *testing.T) {
	sales := []collections.Outstanding{{SaleID: 1, Date: day(1), Balance: decimal.NewFromInt(30)}}
	allocs, rest := collections.AllocateFIFO(decimal.NewFromInt(45), sales)

	require.Len(t, allocs, 1)
	assert.True(t, rest.Equal(decimal.NewFromInt(15)))
}

func TestAllocateFIFO_SinVentasPendientes(t *testing.T) {
	allocs, rest := collections.AllocateFIFO(decimal.NewFromInt(10), nil)
	assert.Empty(t, allocs)
	assert.True(t, rest.Equal(decimal.NewFromInt(10)))
}
