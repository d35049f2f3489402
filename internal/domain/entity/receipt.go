package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Medios de cobro.
const (
	PaymentCash       = "Cash"
	PaymentTransfer   = "Transfer"
	PaymentCheck      = "Check"
	PaymentCreditCard = "CreditCard"
	PaymentDebitCard  = "DebitCard"
)

// ValidPaymentMethod indica si m es un medio de cobro reconocido.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentTransfer, PaymentCheck, PaymentCreditCard, PaymentDebitCard:
		return true
	}
	return false
}

// Estados de cobro.
const (
	ReceiptStateActive = "Active"
	ReceiptStateVoided = "Voided"
)

// Receipt cobro recibido de un paciente.
type Receipt struct {
	ID           int64
	Date         time.Time
	PatientID    int64
	Amount       decimal.Decimal
	Method       string
	State        string
	Observations string
	RecordedBy   *int64
	VoidReason   string
	VoidedAt     *time.Time
	CreatedAt    time.Time
}

// ReceiptImputation imputación (cobro_venta). Al anular el cobro queda inactiva, no se borra.
type ReceiptImputation struct {
	ReceiptID int64
	SaleID    int64
	Amount    decimal.Decimal
	Active    bool
}
