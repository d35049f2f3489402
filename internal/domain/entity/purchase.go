package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Condición de pago de una compra.
const (
	PurchaseConditionCash   = "cash"
	PurchaseConditionCredit = "credit"
)

// Purchase cabecera de factura de proveedor. Total se deriva de las líneas.
type Purchase struct {
	ID            int64
	SupplierID    int64
	Date          time.Time
	VoucherType   string
	VoucherNumber string
	Condition     string
	Total         decimal.Decimal
	Voided        bool
	VoidReason    string
	VoidedAt      *time.Time
	Observations  string
	CreatedBy     *int64
	CreatedAt     time.Time
}

// PurchaseLine línea de compra. IVA es un monto, no una tasa.
type PurchaseLine struct {
	ID         int64
	PurchaseID int64
	ItemID     int64
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	IVA        decimal.Decimal
	Lot        *string
	Expiry     *time.Time
}

// Amount devuelve qty × unit_price + iva.
func (l *PurchaseLine) Amount() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice).Add(l.IVA)
}
