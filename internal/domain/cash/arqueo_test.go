package cash_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/clinica-api/internal/domain/cash"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
)

func TestReconcile_CierreConFaltante(t *testing.T) {
	movs := []*entity.CashMovement{
		{Kind: entity.CashMovementExpense, Amount: decimal.NewFromInt(200000)},
		{Kind: entity.CashMovementPurchasePayment, Amount: decimal.NewFromInt(300000)},
	}
	a := cash.Reconcile(decimal.NewFromInt(1000000), decimal.NewFromInt(490000), movs)

	assert.True(t, a.Computed.Equal(decimal.NewFromInt(500000)))
	assert.True(t, a.Difference.Equal(decimal.NewFromInt(-10000)), "diferencia = declarado − calculado")
}

func TestComputeFinal_SumaIngresos(t *testing.T) {
	movs := []*entity.CashMovement{
		{Kind: entity.CashMovementIncome, Amount: decimal.NewFromInt(50)},
		{Kind: entity.CashMovementExpense, Amount: decimal.NewFromInt(20)},
	}
	assert.True(t, cash.ComputeFinal(decimal.NewFromInt(100), movs).Equal(decimal.NewFromInt(130)))
}
