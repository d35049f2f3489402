package memory

import (
	"context"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
)

type cashRepo struct{ *base }

// checkOpen aplica UNIQUE (state) WHERE state = 'Open'.
func checkOpen(st *state, s *entity.CashSession) error {
	if s.State != entity.CashSessionOpen {
		return nil
	}
	for _, other := range st.cashSessions.rows {
		if other.ID != s.ID && other.State == entity.CashSessionOpen {
			return integrity("unique violation: cash session %d is already open", other.ID)
		}
	}
	return nil
}

func (r *cashRepo) CreateSession(_ context.Context, s *entity.CashSession) error {
	return r.write(func(st *state) error {
		s.ID = 0
		if err := checkOpen(st, s); err != nil {
			return err
		}
		s.ID = st.cashSessions.next()
		st.cashSessions.put(s.ID, s)
		return nil
	})
}

func (r *cashRepo) GetSession(_ context.Context, id int64) (*entity.CashSession, error) {
	var out *entity.CashSession
	err := r.read(func(st *state) error {
		out = st.cashSessions.get(id)
		return nil
	})
	return out, err
}

func (r *cashRepo) GetSessionForUpdate(ctx context.Context, id int64) (*entity.CashSession, error) {
	return r.GetSession(ctx, id)
}

func (r *cashRepo) GetOpenSessionForUpdate(ctx context.Context) (*entity.CashSession, error) {
	return r.GetOpenSession(ctx)
}

func (r *cashRepo) GetOpenSession(_ context.Context) (*entity.CashSession, error) {
	var out *entity.CashSession
	err := r.read(func(st *state) error {
		for _, s := range st.cashSessions.all() {
			if s.State == entity.CashSessionOpen {
				out = s
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *cashRepo) UpdateSession(_ context.Context, s *entity.CashSession) error {
	return r.write(func(st *state) error {
		if !st.cashSessions.has(s.ID) {
			return missing("cash session", s.ID)
		}
		if err := checkOpen(st, s); err != nil {
			return err
		}
		st.cashSessions.put(s.ID, s)
		return nil
	})
}

func (r *cashRepo) CreateMovement(_ context.Context, m *entity.CashMovement) error {
	return r.write(func(st *state) error {
		if !st.cashSessions.has(m.SessionID) {
			return fk("cash session", m.SessionID)
		}
		if !m.Amount.IsPositive() {
			return integrity("check violation: cash movement amount must be positive")
		}
		if (m.Kind == entity.CashMovementPurchasePayment) != (m.PurchaseID != nil) {
			return integrity("check violation: purchase_id is required only for purchase payments")
		}
		if m.PurchaseID != nil {
			if !st.purchases.has(*m.PurchaseID) {
				return fk("purchase", *m.PurchaseID)
			}
			for _, other := range st.cashMovements.rows {
				if other.PurchaseID != nil && *other.PurchaseID == *m.PurchaseID {
					return integrity("unique violation: purchase %d already paid by movement %d", *m.PurchaseID, other.ID)
				}
			}
		}
		m.ID = st.cashMovements.next()
		st.cashMovements.put(m.ID, m)
		return nil
	})
}

func (r *cashRepo) ListMovements(_ context.Context, sessionID int64) ([]*entity.CashMovement, error) {
	var out []*entity.CashMovement
	err := r.read(func(st *state) error {
		out = st.cashMovements.filter(func(m *entity.CashMovement) bool { return m.SessionID == sessionID })
		return nil
	})
	return out, err
}

func (r *cashRepo) PurchasePaid(_ context.Context, purchaseID int64) (bool, error) {
	var out bool
	err := r.read(func(st *state) error {
		for _, m := range st.cashMovements.rows {
			if m.PurchaseID != nil && *m.PurchaseID == purchaseID {
				out = true
				return nil
			}
		}
		return nil
	})
	return out, err
}
