package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
)

type stockRepo struct{ *base }

func (r *stockRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.write(func(st *state) error {
		if !st.items.has(m.ItemID) {
			return fk("item", m.ItemID)
		}
		if !m.Quantity.IsPositive() {
			return integrity("check violation: movement quantity must be positive")
		}
		if m.ReversalOf != nil {
			if !st.movements.has(*m.ReversalOf) {
				return fk("stock_movement", *m.ReversalOf)
			}
			for _, other := range st.movements.rows {
				if other.ReversalOf != nil && *other.ReversalOf == *m.ReversalOf {
					return integrity("unique violation: movement %d already reversed", *m.ReversalOf)
				}
			}
		}
		m.ID = st.movements.next()
		st.movements.put(m.ID, m)
		return nil
	})
}

func (r *stockRepo) GetByID(_ context.Context, id int64) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := r.read(func(st *state) error {
		out = st.movements.get(id)
		return nil
	})
	return out, err
}

func (r *stockRepo) ListByOrigin(_ context.Context, module string, originID int64) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.read(func(st *state) error {
		out = st.movements.filter(func(m *entity.StockMovement) bool {
			return m.Origin.Module == module && m.Origin.ID != nil && *m.Origin.ID == originID
		})
		return nil
	})
	return out, err
}

func (r *stockRepo) ReversedIDs(_ context.Context, ids []int64) (map[int64]bool, error) {
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make(map[int64]bool)
	err := r.read(func(st *state) error {
		for _, m := range st.movements.rows {
			if m.ReversalOf != nil && want[*m.ReversalOf] {
				out[*m.ReversalOf] = true
			}
		}
		return nil
	})
	return out, err
}

func (r *stockRepo) OnHand(_ context.Context, itemID int64, asOf time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.read(func(st *state) error {
		for _, m := range st.movements.rows {
			if m.ItemID == itemID && !m.OccurredAt.After(asOf) {
				total = total.Add(m.Signed())
			}
		}
		return nil
	})
	return total, err
}

func (r *stockRepo) OnHandBefore(_ context.Context, before time.Time) (map[int64]decimal.Decimal, error) {
	out := make(map[int64]decimal.Decimal)
	err := r.read(func(st *state) error {
		for _, m := range st.movements.rows {
			if m.OccurredAt.Before(before) {
				out[m.ItemID] = out[m.ItemID].Add(m.Signed())
			}
		}
		return nil
	})
	return out, err
}

func (r *stockRepo) ListBetween(_ context.Context, from, to time.Time) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.read(func(st *state) error {
		out = st.movements.filter(func(m *entity.StockMovement) bool {
			return !m.OccurredAt.Before(from) && m.OccurredAt.Before(to)
		})
		sort.SliceStable(out, func(i, j int) bool {
			if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
				return out[i].OccurredAt.Before(out[j].OccurredAt)
			}
			return out[i].ID < out[j].ID
		})
		return nil
	})
	return out, err
}

func (r *stockRepo) ListByItem(_ context.Context, itemID int64, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.read(func(st *state) error {
		out = st.movements.filter(func(m *entity.StockMovement) bool {
			if m.ItemID != itemID {
				return false
			}
			if from != nil && m.OccurredAt.Before(*from) {
				return false
			}
			return to == nil || m.OccurredAt.Before(*to)
		})
		sort.SliceStable(out, func(i, j int) bool {
			if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
				return out[i].OccurredAt.After(out[j].OccurredAt)
			}
			return out[i].ID > out[j].ID
		})
		out = page(out, limit, offset)
		return nil
	})
	return out, err
}
