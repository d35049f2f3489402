package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePurchaseRequest alta de compra con sus líneas.
type CreatePurchaseRequest struct {
	SupplierID    int64                 `json:"supplier_id" validate:"required,gt=0"`
	Date          *time.Time            `json:"date"`
	VoucherType   string                `json:"voucher_type" validate:"max=30"`
	VoucherNumber string                `json:"voucher_number" validate:"max=50"`
	Condition     string                `json:"condition" validate:"required,oneof=cash credit"`
	Observations  string                `json:"observations" validate:"max=1000"`
	Lines         []PurchaseLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// PurchaseLineRequest línea de compra. IVA es un monto, no una tasa.
type PurchaseLineRequest struct {
	ItemID    int64           `json:"item_id" validate:"required,gt=0"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0,scale=3"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"min=0,scale=2"`
	IVA       decimal.Decimal `json:"iva" validate:"min=0,scale=2"`
	Lot       *string         `json:"lot" validate:"omitempty,max=50"`
	Expiry    *time.Time      `json:"expiry"`
}

// PurchaseFilterRequest filtros de listado de compras.
type PurchaseFilterRequest struct {
	PageRequest
	SupplierID *int64     `query:"supplier_id"`
	From       *time.Time `query:"from"`
	To         *time.Time `query:"to"`
}

// PurchaseLineResponse línea de compra.
type PurchaseLineResponse struct {
	ID        int64           `json:"id"`
	ItemID    int64           `json:"item_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	IVA       decimal.Decimal `json:"iva"`
	Amount    decimal.Decimal `json:"amount"`
	Lot       *string         `json:"lot,omitempty"`
	Expiry    *time.Time      `json:"expiry,omitempty"`
}

// PurchaseResponse salida de una compra.
type PurchaseResponse struct {
	ID            int64                  `json:"id"`
	SupplierID    int64                  `json:"supplier_id"`
	Date          time.Time              `json:"date"`
	VoucherType   string                 `json:"voucher_type"`
	VoucherNumber string                 `json:"voucher_number"`
	Condition     string                 `json:"condition"`
	Total         decimal.Decimal        `json:"total"`
	Voided        bool                   `json:"voided"`
	VoidReason    string                 `json:"void_reason,omitempty"`
	VoidedAt      *time.Time             `json:"voided_at,omitempty"`
	Observations  string                 `json:"observations"`
	Lines         []PurchaseLineResponse `json:"lines,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}
