package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PostMovementRequest movimiento manual del ledger (ajustes).
type PostMovementRequest struct {
	ItemID        int64           `json:"item_id" validate:"required,gt=0"`
	Quantity      decimal.Decimal `json:"quantity" validate:"gt=0,scale=3"`
	Kind          string          `json:"kind" validate:"required,oneof=INGRESO EGRESO"`
	Motive        string          `json:"motive" validate:"required"`
	OriginModule  string          `json:"origin_module" validate:"omitempty,max=30"`
	OriginID      *int64          `json:"origin_id" validate:"omitempty,gt=0"`
	Note          string          `json:"note" validate:"max=500"`
	OccurredAt    *time.Time      `json:"occurred_at"`
	SkipUntracked bool            `json:"skip_untracked"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID           int64           `json:"id"`
	ItemID       int64           `json:"item_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Signed       decimal.Decimal `json:"signed_quantity"`
	Kind         string          `json:"kind"`
	Motive       string          `json:"motive"`
	OriginModule string          `json:"origin_module"`
	OriginID     *int64          `json:"origin_id,omitempty"`
	ReversalOf   *int64          `json:"reversal_of,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Note         string          `json:"note"`
}

// KardexRequest filtros del kardex de un ítem.
type KardexRequest struct {
	PageRequest
	From *time.Time `query:"from"`
	To   *time.Time `query:"to"`
}

// OnHandResponse stock derivado de un ítem a una fecha.
type OnHandResponse struct {
	ItemID   int64           `json:"item_id"`
	AsOf     time.Time       `json:"as_of"`
	Quantity decimal.Decimal `json:"quantity"`
}

// MonthlySummaryRowResponse fila del resumen mensual de stock.
type MonthlySummaryRowResponse struct {
	ItemID   int64           `json:"item_id"`
	ItemName string          `json:"item_name"`
	Initial  decimal.Decimal `json:"initial"`
	Ingreso  decimal.Decimal `json:"ingreso"`
	Ventas   decimal.Decimal `json:"ventas"`
	Otros    decimal.Decimal `json:"otros"`
	Final    decimal.Decimal `json:"final"`
	Negative bool            `json:"negative"`
}
