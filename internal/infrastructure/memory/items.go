package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
)

type itemRepo struct{ *base }

func (r *itemRepo) checkItem(st *state, item *entity.Item) error {
	if !st.itemTypes.has(item.TypeID) {
		return fk("item_type", item.TypeID)
	}
	if item.PlanTypeID != nil && !st.planTypes.has(*item.PlanTypeID) {
		return fk("plan_type", *item.PlanTypeID)
	}
	if item.Barcode != nil && *item.Barcode != "" {
		for _, other := range st.items.rows {
			if other.ID != item.ID && other.Barcode != nil && *other.Barcode == *item.Barcode {
				return integrity("unique violation: barcode %q", *item.Barcode)
			}
		}
	}
	return nil
}

func (r *itemRepo) Create(_ context.Context, item *entity.Item) error {
	return r.write(func(st *state) error {
		if err := r.checkItem(st, item); err != nil {
			return err
		}
		item.ID = st.items.next()
		st.items.put(item.ID, item)
		return nil
	})
}

func (r *itemRepo) Update(_ context.Context, item *entity.Item) error {
	return r.write(func(st *state) error {
		if !st.items.has(item.ID) {
			return missing("item", item.ID)
		}
		if err := r.checkItem(st, item); err != nil {
			return err
		}
		st.items.put(item.ID, item)
		return nil
	})
}

func (r *itemRepo) GetByID(_ context.Context, id int64) (*entity.Item, error) {
	var out *entity.Item
	err := r.read(func(st *state) error {
		out = st.items.get(id)
		return nil
	})
	return out, err
}

func (r *itemRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Item, error) {
	return r.GetByID(ctx, id)
}

func (r *itemRepo) GetByBarcode(_ context.Context, barcode string) (*entity.Item, error) {
	var out *entity.Item
	err := r.read(func(st *state) error {
		for _, it := range st.items.all() {
			if it.Barcode != nil && *it.Barcode == barcode {
				out = it
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *itemRepo) List(_ context.Context, f repository.ItemFilter) ([]*entity.Item, error) {
	var out []*entity.Item
	err := r.read(func(st *state) error {
		out = st.items.filter(func(it *entity.Item) bool {
			if f.OnlyActive && !it.Active {
				return false
			}
			if f.Kind != "" && it.Kind != f.Kind {
				return false
			}
			return f.Search == "" || strings.Contains(it.SearchKey, f.Search)
		})
		sort.SliceStable(out, func(i, j int) bool { return out[i].SearchKey < out[j].SearchKey })
		out = page(out, f.Limit, f.Offset)
		return nil
	})
	return out, err
}

func (r *itemRepo) UpdateCost(_ context.Context, id int64, cost decimal.Decimal) error {
	return r.write(func(st *state) error {
		it, ok := st.items.rows[id]
		if !ok {
			return missing("item", id)
		}
		it.Cost = cost
		return nil
	})
}

func (r *itemRepo) Delete(_ context.Context, id int64) error {
	return r.write(func(st *state) error {
		if !st.items.has(id) {
			return missing("item", id)
		}
		if referenced(st, id) {
			return integrity("foreign key violation: item %d is referenced", id)
		}
		delete(st.items.rows, id)
		delete(st.compositions, id)
		return nil
	})
}

func (r *itemRepo) IsReferenced(_ context.Context, id int64) (bool, error) {
	var out bool
	err := r.read(func(st *state) error {
		out = referenced(st, id)
		return nil
	})
	return out, err
}

func referenced(st *state, id int64) bool {
	for _, m := range st.movements.rows {
		if m.ItemID == id {
			return true
		}
	}
	for _, l := range st.saleLines.rows {
		if l.ItemID == id {
			return true
		}
	}
	for _, l := range st.purchaseLines.rows {
		if l.ItemID == id {
			return true
		}
	}
	for parent, lines := range st.compositions {
		if parent == id {
			continue
		}
		for _, l := range lines {
			if l.ComponentID == id {
				return true
			}
		}
	}
	for _, a := range st.appointments.rows {
		if a.ItemID != nil && *a.ItemID == id {
			return true
		}
	}
	for _, p := range st.plans.rows {
		if p.ItemID == id {
			return true
		}
	}
	return false
}

func (r *itemRepo) GetComposition(_ context.Context, parentID int64) ([]entity.CompositionLine, error) {
	var out []entity.CompositionLine
	err := r.read(func(st *state) error {
		out = append([]entity.CompositionLine(nil), st.compositions[parentID]...)
		return nil
	})
	return out, err
}

func (r *itemRepo) ReplaceComposition(_ context.Context, parentID int64, lines []entity.CompositionLine) error {
	return r.write(func(st *state) error {
		if !st.items.has(parentID) {
			return fk("item", parentID)
		}
		seen := make(map[int64]bool, len(lines))
		for _, l := range lines {
			if !st.items.has(l.ComponentID) {
				return fk("item", l.ComponentID)
			}
			if seen[l.ComponentID] {
				return integrity("unique violation: composition (%d, %d)", parentID, l.ComponentID)
			}
			if !l.Quantity.IsPositive() {
				return integrity("check violation: composition quantity must be positive")
			}
			seen[l.ComponentID] = true
		}
		if len(lines) == 0 {
			delete(st.compositions, parentID)
			return nil
		}
		cp := make([]entity.CompositionLine, len(lines))
		for i, l := range lines {
			l.ParentID = parentID
			cp[i] = l
		}
		st.compositions[parentID] = cp
		return nil
	})
}

func (r *itemRepo) CreateItemType(_ context.Context, t *entity.ItemType) error {
	return r.write(func(st *state) error {
		for _, other := range st.itemTypes.rows {
			if strings.EqualFold(other.Name, t.Name) {
				return integrity("unique violation: item type %q", t.Name)
			}
		}
		t.ID = st.itemTypes.next()
		st.itemTypes.put(t.ID, t)
		return nil
	})
}

func (r *itemRepo) GetItemType(_ context.Context, id int64) (*entity.ItemType, error) {
	var out *entity.ItemType
	err := r.read(func(st *state) error {
		out = st.itemTypes.get(id)
		return nil
	})
	return out, err
}

func (r *itemRepo) ListItemTypes(_ context.Context) ([]*entity.ItemType, error) {
	var out []*entity.ItemType
	err := r.read(func(st *state) error {
		out = st.itemTypes.all()
		return nil
	})
	return out, err
}

func (r *itemRepo) CreatePlanType(_ context.Context, t *entity.PlanType) error {
	return r.write(func(st *state) error {
		for _, other := range st.planTypes.rows {
			if strings.EqualFold(other.Name, t.Name) {
				return integrity("unique violation: plan type %q", t.Name)
			}
		}
		t.ID = st.planTypes.next()
		st.planTypes.put(t.ID, t)
		return nil
	})
}

func (r *itemRepo) GetPlanType(_ context.Context, id int64) (*entity.PlanType, error) {
	var out *entity.PlanType
	err := r.read(func(st *state) error {
		out = st.planTypes.get(id)
		return nil
	})
	return out, err
}

func (r *itemRepo) ListPlanTypes(_ context.Context) ([]*entity.PlanType, error) {
	var out []*entity.PlanType
	err := r.read(func(st *state) error {
		out = st.planTypes.all()
		return nil
	})
	return out, err
}
