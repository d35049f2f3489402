package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// UpsertItemRequest alta (ID nil) o modificación de un ítem del catálogo.
// Composition nil deja la receta intacta en una modificación; un slice vacío la borra.
type UpsertItemRequest struct {
	ID               *int64                   `json:"id" validate:"omitempty,gt=0"`
	Name             string                   `json:"name" validate:"required,notblank,max=200"`
	Barcode          *string                  `json:"barcode" validate:"omitempty,max=64"`
	TypeID           int64                    `json:"type_id" validate:"required,gt=0"`
	UnitPrice        decimal.Decimal          `json:"unit_price" validate:"min=0,scale=2"`
	GeneratesStock   bool                     `json:"generates_stock"`
	PlanTypeID       *int64                   `json:"plan_type_id" validate:"omitempty,gt=0"`
	SessionsIncluded *int                     `json:"sessions_included" validate:"omitempty,min=1"`
	Active           *bool                    `json:"active"`
	Composition      []CompositionLineRequest `json:"composition" validate:"omitempty,dive"`
}

// CompositionLineRequest componente de receta.
type CompositionLineRequest struct {
	ComponentID int64           `json:"component_id" validate:"required,gt=0"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0,scale=3"`
}

// SetCompositionRequest reemplazo completo de la receta.
type SetCompositionRequest struct {
	Components []CompositionLineRequest `json:"components" validate:"dive"`
}

// ItemFilterRequest filtros de listado de ítems.
type ItemFilterRequest struct {
	PageRequest
	Search     string `query:"search"`
	Kind       string `query:"kind" validate:"omitempty,oneof=product service consumable package plan"`
	OnlyActive bool   `query:"only_active"`
}

// CompositionLineResponse componente de receta.
type CompositionLineResponse struct {
	ComponentID int64           `json:"component_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// ItemResponse salida de un ítem.
type ItemResponse struct {
	ID               int64                     `json:"id"`
	Name             string                    `json:"name"`
	Barcode          *string                   `json:"barcode,omitempty"`
	TypeID           int64                     `json:"type_id"`
	Kind             string                    `json:"kind"`
	UnitPrice        decimal.Decimal           `json:"unit_price"`
	Cost             decimal.Decimal           `json:"cost"`
	GeneratesStock   bool                      `json:"generates_stock"`
	PlanTypeID       *int64                    `json:"plan_type_id,omitempty"`
	SessionsIncluded *int                      `json:"sessions_included,omitempty"`
	Active           bool                      `json:"active"`
	Composition      []CompositionLineResponse `json:"composition"`
	CreatedAt        time.Time                 `json:"created_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

// ItemListResponse lista paginada de ítems.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// CreateItemTypeRequest alta de tipo de ítem.
type CreateItemTypeRequest struct {
	Name string `json:"name" validate:"required,notblank,max=100"`
	Kind string `json:"kind" validate:"required,oneof=product service consumable package plan"`
}

// ItemTypeResponse salida de tipo de ítem.
type ItemTypeResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// CreatePlanTypeRequest alta de tipo de plan.
type CreatePlanTypeRequest struct {
	Name            string `json:"name" validate:"required,notblank,max=150"`
	DefaultSessions int    `json:"default_sessions" validate:"required,min=1,max=1000"`
}

// PlanTypeResponse salida de tipo de plan.
type PlanTypeResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	DefaultSessions int    `json:"default_sessions"`
	Active          bool   `json:"active"`
}
