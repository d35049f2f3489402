package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenCashSessionRequest apertura de caja chica.
type OpenCashSessionRequest struct {
	InitialAmount decimal.Decimal `json:"initial_amount" validate:"min=0,scale=2"`
	Observations  string          `json:"observations" validate:"max=500"`
}

// RecordCashMovementRequest movimiento de caja. PurchaseID obligatorio sii Kind=PurchasePayment.
type RecordCashMovementRequest struct {
	SessionID   int64           `json:"session_id" validate:"required,gt=0"`
	Kind        string          `json:"kind" validate:"required,oneof=Expense PurchasePayment Income"`
	Description string          `json:"description" validate:"required,notblank,max=300"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0,scale=2"`
	PurchaseID  *int64          `json:"purchase_id" validate:"omitempty,gt=0"`
}

// CloseCashSessionRequest cierre con arqueo.
type CloseCashSessionRequest struct {
	DeclaredFinal decimal.Decimal `json:"declared_final" validate:"min=0,scale=2"`
	Observations  string          `json:"observations" validate:"max=500"`
}

// CashMovementResponse movimiento de caja.
type CashMovementResponse struct {
	ID          int64           `json:"id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Kind        string          `json:"kind"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	PurchaseID  *int64          `json:"purchase_id,omitempty"`
	RecordedBy  *int64          `json:"recorded_by,omitempty"`
}

// CashSessionResponse sesión de caja con saldo corriente.
type CashSessionResponse struct {
	ID             int64                  `json:"id"`
	State          string                 `json:"state"`
	OpenedAt       time.Time              `json:"opened_at"`
	ClosedAt       *time.Time             `json:"closed_at,omitempty"`
	OpenedBy       *int64                 `json:"opened_by,omitempty"`
	ClosedBy       *int64                 `json:"closed_by,omitempty"`
	InitialAmount  decimal.Decimal        `json:"initial_amount"`
	RunningBalance decimal.Decimal        `json:"running_balance"`
	ComputedFinal  *decimal.Decimal       `json:"computed_final,omitempty"`
	DeclaredFinal  *decimal.Decimal       `json:"declared_final,omitempty"`
	Difference     *decimal.Decimal       `json:"difference,omitempty"`
	Observations   string                 `json:"observations"`
	Movements      []CashMovementResponse `json:"movements"`
}
