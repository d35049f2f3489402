package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de sesión de caja chica.
const (
	CashSessionOpen   = "Open"
	CashSessionClosed = "Closed"
)

// Clases de movimiento de caja chica.
const (
	CashMovementExpense         = "Expense"
	CashMovementPurchasePayment = "PurchasePayment"
	CashMovementIncome          = "Income"
)

// ValidCashMovementKind indica si k es una clase de movimiento de caja reconocida.
func ValidCashMovementKind(k string) bool {
	switch k {
	case CashMovementExpense, CashMovementPurchasePayment, CashMovementIncome:
		return true
	}
	return false
}

// CashSession sesión diaria de caja chica. A lo sumo una abierta.
type CashSession struct {
	ID            int64
	OpenedAt      time.Time
	ClosedAt      *time.Time
	OpenedBy      *int64
	ClosedBy      *int64
	InitialAmount decimal.Decimal
	ComputedFinal *decimal.Decimal
	DeclaredFinal *decimal.Decimal
	Difference    *decimal.Decimal
	State         string
	Observations  string
}

// CashMovement movimiento de caja chica. PurchaseID obligatorio sii Kind = PurchasePayment.
type CashMovement struct {
	ID          int64
	SessionID   int64
	OccurredAt  time.Time
	Kind        string
	Description string
	Amount      decimal.Decimal
	PurchaseID  *int64
	RecordedBy  *int64
}
