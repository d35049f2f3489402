package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Clase de movimiento: determina el signo.
const (
	MovementKindIngreso = "INGRESO"
	MovementKindEgreso  = "EGRESO"
)

// Motivos de movimiento.
const (
	MotiveAdjustmentPlus       = "AdjustmentPlus"
	MotiveAdjustmentMinus      = "AdjustmentMinus"
	MotivePurchase             = "Purchase"
	MotivePurchaseVoid         = "PurchaseVoid"
	MotiveSale                 = "Sale"
	MotiveSaleVoid             = "SaleVoid"
	MotiveProcedureConsumption = "ProcedureConsumption"
)

// Módulos de origen de un movimiento.
const (
	OriginPurchase = "purchase"
	OriginSale     = "sale"
	OriginManual   = "manual"
)

// ValidMovementKind indica si k es INGRESO o EGRESO.
func ValidMovementKind(k string) bool {
	return k == MovementKindIngreso || k == MovementKindEgreso
}

// ValidMotive indica si m es un motivo reconocido.
func ValidMotive(m string) bool {
	switch m {
	case MotiveAdjustmentPlus, MotiveAdjustmentMinus, MotivePurchase, MotivePurchaseVoid,
		MotiveSale, MotiveSaleVoid, MotiveProcedureConsumption:
		return true
	}
	return false
}

// OriginRef referencia al documento que originó el movimiento (módulo + id).
type OriginRef struct {
	Module string
	ID     *int64
}

// StockMovement movimiento del ledger. Solo se inserta; las correcciones son movimientos
// compensatorios con ReversalOf apuntando al original.
type StockMovement struct {
	ID         int64
	ItemID     int64
	Quantity   decimal.Decimal // siempre positivo; Kind da el signo
	Kind       string
	Motive     string
	Origin     OriginRef
	ReversalOf *int64
	OccurredAt time.Time
	Note       string
	CreatedBy  *int64
}

// Signed devuelve la cantidad con signo (INGRESO +, EGRESO −).
func (m *StockMovement) Signed() decimal.Decimal {
	if m.Kind == MovementKindEgreso {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
