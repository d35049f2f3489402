package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSaleRequest alta de venta confirmada con sus líneas.
type CreateSaleRequest struct {
	PatientID      int64             `json:"patient_id" validate:"required,gt=0"`
	ProfessionalID *int64            `json:"professional_id" validate:"omitempty,gt=0"`
	ClinicID       *int64            `json:"clinic_id" validate:"omitempty,gt=0"`
	Date           *time.Time        `json:"date"`
	InvoiceNumber  *string           `json:"invoice_number" validate:"omitempty,max=50"`
	Observations   string            `json:"observations" validate:"max=1000"`
	Lines          []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// SaleLineRequest línea de venta. UnitPrice nil toma el precio del catálogo.
type SaleLineRequest struct {
	ItemID    int64            `json:"item_id" validate:"required,gt=0"`
	Quantity  decimal.Decimal  `json:"quantity" validate:"gt=0,scale=3"`
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"omitempty,min=0,scale=2"`
	Discount  decimal.Decimal  `json:"discount" validate:"min=0,scale=2"`
}

// SaleFilterRequest filtros de listado de ventas.
type SaleFilterRequest struct {
	PageRequest
	PatientID *int64     `query:"patient_id"`
	State     string     `query:"state" validate:"omitempty,oneof=Open Confirmed Charged Voided"`
	From      *time.Time `query:"from"`
	To        *time.Time `query:"to"`
}

// SaleLineResponse línea de venta.
type SaleLineResponse struct {
	ID        int64           `json:"id"`
	ItemID    int64           `json:"item_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID             int64              `json:"id"`
	Date           time.Time          `json:"date"`
	PatientID      int64              `json:"patient_id"`
	ProfessionalID *int64             `json:"professional_id,omitempty"`
	ClinicID       *int64             `json:"clinic_id,omitempty"`
	Total          decimal.Decimal    `json:"total"`
	Balance        decimal.Decimal    `json:"balance"`
	State          string             `json:"state"`
	InvoiceNumber  *string            `json:"invoice_number,omitempty"`
	Observations   string             `json:"observations"`
	VoidReason     string             `json:"void_reason,omitempty"`
	VoidedAt       *time.Time         `json:"voided_at,omitempty"`
	Lines          []SaleLineResponse `json:"lines,omitempty"`
	Plans          []PlanResponse     `json:"plans,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}
