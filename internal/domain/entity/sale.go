package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de venta. Open → Confirmed → Charged; Voided solo desde Open/Confirmed y terminal.
const (
	SaleStateOpen      = "Open"
	SaleStateConfirmed = "Confirmed"
	SaleStateCharged   = "Charged"
	SaleStateVoided    = "Voided"
)

// Sale cabecera de venta. Balance (saldo) = Total − Σ imputaciones activas.
type Sale struct {
	ID             int64
	Date           time.Time
	PatientID      int64
	ProfessionalID *int64
	ClinicID       *int64
	Total          decimal.Decimal
	Balance        decimal.Decimal
	State          string
	InvoiceNumber  *string
	Observations   string
	VoidReason     string
	VoidedAt       *time.Time
	CreatedBy      *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AcceptsPayments indica si la venta admite imputaciones de cobro.
func (s *Sale) AcceptsPayments() bool {
	return s.State == SaleStateConfirmed && s.Balance.IsPositive()
}

// SaleLine línea de venta. Subtotal = qty·unit_price − discount.
type SaleLine struct {
	ID        int64
	SaleID    int64
	ItemID    int64
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	Subtotal  decimal.Decimal
}

// ComputeSubtotal calcula round(qty·unit_price, 2) − discount.
func (l *SaleLine) ComputeSubtotal() decimal.Decimal {
	return Gross(l.Quantity, l.UnitPrice).Sub(RoundMoney(l.Discount))
}
