package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Clases de ítem (copiadas desde item_types; el FK es la fuente de verdad).
const (
	ItemKindProduct    = "product"
	ItemKindService    = "service"
	ItemKindConsumable = "consumable"
	ItemKindPackage    = "package"
	ItemKindPlan       = "plan"
)

// ValidItemKind indica si k es una clase de ítem reconocida.
func ValidItemKind(k string) bool {
	switch k {
	case ItemKindProduct, ItemKindService, ItemKindConsumable, ItemKindPackage, ItemKindPlan:
		return true
	}
	return false
}

// ItemType catálogo de tipos de ítem (iditemtipo). Kind determina las reglas de negocio.
type ItemType struct {
	ID   int64
	Name string
	Kind string
}

// PlanType tipo de plan de sesiones (ej. "Depilación láser 10 sesiones").
type PlanType struct {
	ID              int64
	Name            string
	DefaultSessions int
	Active          bool
}

// Item registro polimórfico del catálogo: producto, servicio, insumo, paquete o plan.
// Stock nunca se almacena aquí; se deriva del ledger de movimientos.
type Item struct {
	ID               int64
	Name             string
	SearchKey        string // nombre normalizado sin acentos, para búsquedas
	Barcode          *string
	TypeID           int64
	Kind             string // presentación; copiado de ItemType.Kind
	UnitPrice        decimal.Decimal
	Cost             decimal.Decimal // costo promedio ponderado, actualizado en compras
	GeneratesStock   bool
	PlanTypeID       *int64
	SessionsIncluded *int
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsPlanBearing indica si al venderse el ítem genera un plan de sesiones.
func (i *Item) IsPlanBearing() bool { return i.PlanTypeID != nil }

// CompositionLine componente de la receta (bill of materials) de un ítem de servicio.
type CompositionLine struct {
	ParentID    int64
	ComponentID int64
	Quantity    decimal.Decimal
}
