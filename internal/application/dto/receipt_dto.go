package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterReceiptRequest alta de cobro. Con AutoFIFO se ignoran Imputations.
type RegisterReceiptRequest struct {
	PatientID    int64               `json:"patient_id" validate:"required,gt=0"`
	Date         *time.Time          `json:"date"`
	Amount       decimal.Decimal     `json:"amount" validate:"gt=0,scale=2"`
	Method       string              `json:"method" validate:"required,oneof=Cash Transfer Check CreditCard DebitCard"`
	Observations string              `json:"observations" validate:"max=1000"`
	AutoFIFO     bool                `json:"auto_fifo"`
	Imputations  []ImputationRequest `json:"imputations" validate:"omitempty,dive"`
}

// ImputationRequest imputación explícita a una venta.
type ImputationRequest struct {
	SaleID int64           `json:"sale_id" validate:"required,gt=0"`
	Amount decimal.Decimal `json:"amount" validate:"gt=0,scale=2"`
}

// ImputationResponse imputación de un cobro.
type ImputationResponse struct {
	SaleID int64           `json:"sale_id"`
	Amount decimal.Decimal `json:"amount"`
	Active bool            `json:"active"`
}

// ReceiptResponse salida de un cobro. Unallocated es el remanente no imputado.
type ReceiptResponse struct {
	ID           int64                `json:"id"`
	Date         time.Time            `json:"date"`
	PatientID    int64                `json:"patient_id"`
	Amount       decimal.Decimal      `json:"amount"`
	Unallocated  decimal.Decimal      `json:"unallocated"`
	Method       string               `json:"method"`
	State        string               `json:"state"`
	Observations string               `json:"observations"`
	VoidReason   string               `json:"void_reason,omitempty"`
	VoidedAt     *time.Time           `json:"voided_at,omitempty"`
	Imputations  []ImputationResponse `json:"imputations"`
}
