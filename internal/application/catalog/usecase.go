package catalog

import (
	"context"
	"strings"

	"github.com/jhoicas/clinica-api/internal/application/audit"
	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/application/ports"
	"github.com/jhoicas/clinica-api/internal/domain"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
	"github.com/jhoicas/clinica-api/pkg/clock"
	"github.com/jhoicas/clinica-api/pkg/textnorm"
)

// Errores de validación propios del catálogo.
var (
	ErrBarcodeDuplicated      = domain.Validation("BARCODE_DUPLICATED", "barcode is already used by another item")
	ErrUnknownItemType        = domain.Validation("UNKNOWN_ITEM_TYPE", "item type does not exist")
	ErrUnknownPlanType        = domain.Validation("UNKNOWN_PLAN_TYPE", "plan type does not exist")
	ErrSelfComponent          = domain.Validation("COMPOSITION_SELF_REFERENCE", "an item cannot be a component of itself")
	ErrUnknownComponent       = domain.Validation("UNKNOWN_COMPONENT", "composition references a non-existent item")
	ErrDuplicateComponent     = domain.Validation("DUPLICATE_COMPONENT", "component listed more than once")
	ErrInvalidComponentQty    = domain.Validation("INVALID_COMPONENT_QUANTITY", "component quantity must be greater than zero")
	ErrContradictoryStockFlag = domain.Validation("CONTRADICTORY_STOCK_FLAG", "service with generates_stock requires components")
	ErrCompositionNotAllowed  = domain.Validation("COMPOSITION_NOT_ALLOWED", "only service, package or plan items can have a composition")
	ErrPlanTypeRequired       = domain.Validation("PLAN_TYPE_REQUIRED", "plan items require a plan type")
)

// UseCase mantiene el registro canónico de ítems y su composición.
type UseCase struct {
	tx    ports.TxRunner
	repo  repository.ItemRepository
	audit *audit.Recorder
	clock clock.Clock
}

// NewUseCase construye el caso de uso del catálogo.
func NewUseCase(tx ports.TxRunner, repo repository.ItemRepository, rec *audit.Recorder, c clock.Clock) *UseCase {
	return &UseCase{tx: tx, repo: repo, audit: rec, clock: c}
}

// UpsertItem crea (ID nil) o modifica un ítem. La receta se reemplaza completa cuando viene informada.
func (uc *UseCase) UpsertItem(ctx context.Context, in dto.UpsertItemRequest) (*dto.ItemResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	ctx = audit.BeginCommand(ctx)
	var out *dto.ItemResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		itemType, err := r.Items.GetItemType(ctx, in.TypeID)
		if err != nil {
			return err
		}
		if itemType == nil {
			return ErrUnknownItemType.WithMessage("item type %d does not exist", in.TypeID)
		}
		if in.PlanTypeID != nil {
			pt, err := r.Items.GetPlanType(ctx, *in.PlanTypeID)
			if err != nil {
				return err
			}
			if pt == nil {
				return ErrUnknownPlanType.WithMessage("plan type %d does not exist", *in.PlanTypeID)
			}
		}
		if itemType.Kind == entity.ItemKindPlan && in.PlanTypeID == nil {
			return ErrPlanTypeRequired
		}

		now := uc.clock.Now()
		var (
			item       *entity.Item
			before     *dto.ItemResponse
			prevComp   []entity.CompositionLine
			isCreation = in.ID == nil
		)
		if isCreation {
			item = &entity.Item{Active: true, CreatedAt: now}
		} else {
			item, err = r.Items.GetForUpdate(ctx, *in.ID)
			if err != nil {
				return err
			}
			if item == nil {
				return domain.ErrNotFound.WithMessage("item %d not found", *in.ID)
			}
			prevComp, err = r.Items.GetComposition(ctx, item.ID)
			if err != nil {
				return err
			}
			b := toItemResponse(item, prevComp)
			before = &b
		}

		if in.Barcode != nil && *in.Barcode != "" {
			other, err := r.Items.GetByBarcode(ctx, *in.Barcode)
			if err != nil {
				return err
			}
			if other != nil && (isCreation || other.ID != item.ID) {
				return ErrBarcodeDuplicated.WithMessage("barcode %q is used by item %d", *in.Barcode, other.ID)
			}
		}

		item.Name = strings.TrimSpace(in.Name)
		item.SearchKey = textnorm.Key(in.Name)
		item.Barcode = normalizeBarcode(in.Barcode)
		item.TypeID = itemType.ID
		item.Kind = itemType.Kind
		item.UnitPrice = in.UnitPrice
		item.GeneratesStock = in.GeneratesStock
		item.PlanTypeID = in.PlanTypeID
		item.SessionsIncluded = in.SessionsIncluded
		if in.Active != nil {
			item.Active = *in.Active
		}
		item.UpdatedAt = now

		comp := prevComp
		if in.Composition != nil {
			comp = toCompositionLines(item.ID, in.Composition)
		}
		if err := uc.checkComposition(ctx, r.Items, item, comp); err != nil {
			return err
		}

		if isCreation {
			if err := r.Items.Create(ctx, item); err != nil {
				return err
			}
			for i := range comp {
				comp[i].ParentID = item.ID
			}
		} else if err := r.Items.Update(ctx, item); err != nil {
			return err
		}
		if in.Composition != nil {
			if err := r.Items.ReplaceComposition(ctx, item.ID, comp); err != nil {
				return err
			}
		}

		after := toItemResponse(item, comp)
		if isCreation {
			err = uc.audit.Created(ctx, r.Audit, audit.ModuleCatalog, "item", item.ID, after)
		} else {
			err = uc.audit.Updated(ctx, r.Audit, audit.ModuleCatalog, "item", item.ID, before, after)
		}
		if err != nil {
			return err
		}
		out = &after
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetComposition reemplaza atómicamente la receta bajo bloqueo de la fila del ítem padre.
func (uc *UseCase) SetComposition(ctx context.Context, itemID int64, in dto.SetCompositionRequest) (*dto.ItemResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	ctx = audit.BeginCommand(ctx)
	var out *dto.ItemResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		item, err := r.Items.GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound.WithMessage("item %d not found", itemID)
		}
		prev, err := r.Items.GetComposition(ctx, itemID)
		if err != nil {
			return err
		}
		comp := toCompositionLines(itemID, in.Components)
		if err := uc.checkComposition(ctx, r.Items, item, comp); err != nil {
			return err
		}
		if err := r.Items.ReplaceComposition(ctx, itemID, comp); err != nil {
			return err
		}
		before, after := toItemResponse(item, prev), toItemResponse(item, comp)
		if err := uc.audit.Updated(ctx, r.Audit, audit.ModuleCatalog, "item", itemID, before, after); err != nil {
			return err
		}
		out = &after
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Deactivate baja lógica: el ítem deja de poder venderse pero conserva su historia.
func (uc *UseCase) Deactivate(ctx context.Context, itemID int64) error {
	ctx = audit.BeginCommand(ctx)
	return uc.tx.Run(ctx, func(r repository.Repos) error {
		item, err := r.Items.GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound.WithMessage("item %d not found", itemID)
		}
		if !item.Active {
			return nil
		}
		comp, err := r.Items.GetComposition(ctx, itemID)
		if err != nil {
			return err
		}
		before := toItemResponse(item, comp)
		item.Active = false
		item.UpdatedAt = uc.clock.Now()
		if err := r.Items.Update(ctx, item); err != nil {
			return err
		}
		return uc.audit.Updated(ctx, r.Audit, audit.ModuleCatalog, "item", itemID, before, toItemResponse(item, comp))
	})
}

// Delete borrado físico; rechazado si movimientos, líneas de venta/compra o recetas lo referencian.
func (uc *UseCase) Delete(ctx context.Context, itemID int64) error {
	ctx = audit.BeginCommand(ctx)
	return uc.tx.Run(ctx, func(r repository.Repos) error {
		item, err := r.Items.GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound.WithMessage("item %d not found", itemID)
		}
		referenced, err := r.Items.IsReferenced(ctx, itemID)
		if err != nil {
			return err
		}
		if referenced {
			return domain.ErrItemReferenced.WithMessage("item %d is referenced; deactivate it instead", itemID)
		}
		comp, err := r.Items.GetComposition(ctx, itemID)
		if err != nil {
			return err
		}
		if err := r.Items.ReplaceComposition(ctx, itemID, nil); err != nil {
			return err
		}
		if err := r.Items.Delete(ctx, itemID); err != nil {
			return err
		}
		return uc.audit.Deleted(ctx, r.Audit, audit.ModuleCatalog, "item", itemID, toItemResponse(item, comp))
	})
}

// GetByID devuelve el ítem con su receta.
func (uc *UseCase) GetByID(ctx context.Context, itemID int64) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound.WithMessage("item %d not found", itemID)
	}
	comp, err := uc.repo.GetComposition(ctx, itemID)
	if err != nil {
		return nil, err
	}
	out := toItemResponse(item, comp)
	return &out, nil
}

// List lista ítems con búsqueda insensible a acentos.
func (uc *UseCase) List(ctx context.Context, in dto.ItemFilterRequest) (*dto.ItemListResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	in.DefaultPage()
	list, err := uc.repo.List(ctx, repository.ItemFilter{
		Search:     textnorm.Key(in.Search),
		Kind:       in.Kind,
		OnlyActive: in.OnlyActive,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		comp, err := uc.repo.GetComposition(ctx, it.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, toItemResponse(it, comp))
	}
	return &dto.ItemListResponse{Items: items, Page: dto.PageResponse{Limit: in.Limit, Offset: in.Offset}}, nil
}

// checkComposition valida la receta final del ítem.
func (uc *UseCase) checkComposition(ctx context.Context, items repository.ItemRepository, item *entity.Item, comp []entity.CompositionLine) error {
	if len(comp) > 0 {
		switch item.Kind {
		case entity.ItemKindService, entity.ItemKindPackage, entity.ItemKindPlan:
		default:
			return ErrCompositionNotAllowed
		}
	}
	if item.Kind == entity.ItemKindService && item.GeneratesStock && len(comp) == 0 {
		return ErrContradictoryStockFlag
	}
	seen := make(map[int64]bool, len(comp))
	for _, c := range comp {
		if !c.Quantity.IsPositive() {
			return ErrInvalidComponentQty.WithMessage("component %d: quantity must be greater than zero", c.ComponentID)
		}
		if item.ID != 0 && c.ComponentID == item.ID {
			return ErrSelfComponent
		}
		if seen[c.ComponentID] {
			return ErrDuplicateComponent.WithMessage("component %d listed more than once", c.ComponentID)
		}
		seen[c.ComponentID] = true
		component, err := items.GetByID(ctx, c.ComponentID)
		if err != nil {
			return err
		}
		if component == nil {
			return ErrUnknownComponent.WithMessage("component %d does not exist", c.ComponentID)
		}
	}
	return nil
}

func normalizeBarcode(b *string) *string {
	if b == nil || *b == "" {
		return nil
	}
	v := *b
	return &v
}

func toCompositionLines(parentID int64, in []dto.CompositionLineRequest) []entity.CompositionLine {
	out := make([]entity.CompositionLine, 0, len(in))
	for _, c := range in {
		out = append(out, entity.CompositionLine{ParentID: parentID, ComponentID: c.ComponentID, Quantity: c.Quantity})
	}
	return out
}

func toItemResponse(it *entity.Item, comp []entity.CompositionLine) dto.ItemResponse {
	lines := make([]dto.CompositionLineResponse, 0, len(comp))
	for _, c := range comp {
		lines = append(lines, dto.CompositionLineResponse{ComponentID: c.ComponentID, Quantity: c.Quantity})
	}
	return dto.ItemResponse{
		ID:               it.ID,
		Name:             it.Name,
		Barcode:          it.Barcode,
		TypeID:           it.TypeID,
		Kind:             it.Kind,
		UnitPrice:        it.UnitPrice,
		Cost:             it.Cost,
		GeneratesStock:   it.GeneratesStock,
		PlanTypeID:       it.PlanTypeID,
		SessionsIncluded: it.SessionsIncluded,
		Active:           it.Active,
		Composition:      lines,
		CreatedAt:        it.CreatedAt,
		UpdatedAt:        it.UpdatedAt,
	}
}
