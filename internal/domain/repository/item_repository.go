package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
)

// ItemFilter filtros para listar ítems del catálogo.
type ItemFilter struct {
	Search     string // clave normalizada (ver textnorm.Key)
	Kind       string
	OnlyActive bool
	Limit      int
	Offset     int
}

// ItemRepository define el puerto de persistencia del catálogo (ítems, tipos y composición).
// Los métodos Get* devuelven (nil, nil) si no existe el registro.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	Update(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id int64) (*entity.Item, error)
	// GetForUpdate bloquea la fila del ítem (composición, costo promedio).
	GetForUpdate(ctx context.Context, id int64) (*entity.Item, error)
	GetByBarcode(ctx context.Context, barcode string) (*entity.Item, error)
	List(ctx context.Context, f ItemFilter) ([]*entity.Item, error)
	// UpdateCost actualiza solo el costo promedio (motor de compras).
	UpdateCost(ctx context.Context, id int64, cost decimal.Decimal) error
	Delete(ctx context.Context, id int64) error
	// IsReferenced indica si hay movimientos, líneas de venta/compra o recetas que lo usan.
	IsReferenced(ctx context.Context, id int64) (bool, error)

	GetComposition(ctx context.Context, parentID int64) ([]entity.CompositionLine, error)
	ReplaceComposition(ctx context.Context, parentID int64, lines []entity.CompositionLine) error

	CreateItemType(ctx context.Context, t *entity.ItemType) error
	GetItemType(ctx context.Context, id int64) (*entity.ItemType, error)
	ListItemTypes(ctx context.Context) ([]*entity.ItemType, error)

	CreatePlanType(ctx context.Context, t *entity.PlanType) error
	GetPlanType(ctx context.Context, id int64) (*entity.PlanType, error)
	ListPlanTypes(ctx context.Context) ([]*entity.PlanType, error)
}
