package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
)

var _ repository.CashRepository = (*CashRepo)(nil)

// CashRepo caja chica sobre PostgreSQL. El índice único parcial uq_cash_sessions_single_open
// garantiza a lo sumo una sesión abierta.
type CashRepo struct {
	q Querier
}

// NewCashRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashRepository(q Querier) *CashRepo {
	return &CashRepo{q: q}
}

const cashSessionSelect = `
	SELECT id, opened_at, closed_at, opened_by, closed_by, initial_amount, computed_final, declared_final,
	       difference, state, observations
	FROM cash_sessions`

func scanCashSession(row pgx.Row) (*entity.CashSession, error) {
	var s entity.CashSession
	err := row.Scan(
		&s.ID, &s.OpenedAt, &s.ClosedAt, &s.OpenedBy, &s.ClosedBy, &s.InitialAmount, &s.ComputedFinal,
		&s.DeclaredFinal, &s.Difference, &s.State, &s.Observations,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSession abre una sesión de caja.
func (r *CashRepo) CreateSession(ctx context.Context, s *entity.CashSession) error {
	query := `
		INSERT INTO cash_sessions (opened_at, closed_at, opened_by, closed_by, initial_amount, computed_final,
		                           declared_final, difference, state, observations)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		s.OpenedAt, s.ClosedAt, s.OpenedBy, s.ClosedBy, s.InitialAmount, s.ComputedFinal,
		s.DeclaredFinal, s.Difference, s.State, s.Observations,
	).Scan(&s.ID)
	return mapError("insert cash session", err)
}

// GetSession obtiene una sesión por ID.
func (r *CashRepo) GetSession(ctx context.Context, id int64) (*entity.CashSession, error) {
	s, err := scanCashSession(r.q.QueryRow(ctx, cashSessionSelect+` WHERE id = $1`, id))
	return noRows(s, "get cash session", err)
}

// GetSessionForUpdate obtiene la sesión bloqueando su fila.
func (r *CashRepo) GetSessionForUpdate(ctx context.Context, id int64) (*entity.CashSession, error) {
	s, err := scanCashSession(r.q.QueryRow(ctx, cashSessionSelect+` WHERE id = $1 FOR UPDATE`, id))
	return noRows(s, "get cash session for update", err)
}

// GetOpenSession sesión abierta; nil si no hay.
func (r *CashRepo) GetOpenSession(ctx context.Context) (*entity.CashSession, error) {
	s, err := scanCashSession(r.q.QueryRow(ctx, cashSessionSelect+` WHERE state = 'Open'`))
	return noRows(s, "get open cash session", err)
}

// GetOpenSessionForUpdate sesión abierta, bloqueada; nil si no hay.
func (r *CashRepo) GetOpenSessionForUpdate(ctx context.Context) (*entity.CashSession, error) {
	s, err := scanCashSession(r.q.QueryRow(ctx, cashSessionSelect+` WHERE state = 'Open' FOR UPDATE`))
	return noRows(s, "get open cash session", err)
}

// UpdateSession guarda el cierre (arqueo) de la sesión.
func (r *CashRepo) UpdateSession(ctx context.Context, s *entity.CashSession) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE cash_sessions SET closed_at = $2, closed_by = $3, computed_final = $4, declared_final = $5,
		       difference = $6, state = $7, observations = $8
		WHERE id = $1`,
		s.ID, s.ClosedAt, s.ClosedBy, s.ComputedFinal, s.DeclaredFinal, s.Difference, s.State, s.Observations)
	if err != nil {
		return mapError("update cash session", err)
	}
	return affected(tag, "cash session", s.ID)
}

// CreateMovement persiste un movimiento de caja. UNIQUE purchase_id impide pagar dos veces la misma compra.
func (r *CashRepo) CreateMovement(ctx context.Context, m *entity.CashMovement) error {
	query := `
		INSERT INTO cash_movements (session_id, occurred_at, kind, description, amount, purchase_id, recorded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		m.SessionID, m.OccurredAt, m.Kind, m.Description, m.Amount, m.PurchaseID, m.RecordedBy,
	).Scan(&m.ID)
	return mapError("insert cash movement", err)
}

// ListMovements movimientos de la sesión en orden de registro.
func (r *CashRepo) ListMovements(ctx context.Context, sessionID int64) ([]*entity.CashMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, session_id, occurred_at, kind, description, amount, purchase_id, recorded_by
		FROM cash_movements WHERE session_id = $1 ORDER BY id`, sessionID)
	if err != nil {
		return nil, mapError("list cash movements", err)
	}
	defer rows.Close()
	var list []*entity.CashMovement
	for rows.Next() {
		var m entity.CashMovement
		if err := rows.Scan(&m.ID, &m.SessionID, &m.OccurredAt, &m.Kind, &m.Description, &m.Amount, &m.PurchaseID, &m.RecordedBy); err != nil {
			return nil, fmt.Errorf("scan cash movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, mapError("list cash movements", rows.Err())
}

// PurchasePaid indica si la compra ya tiene un pago de caja.
func (r *CashRepo) PurchasePaid(ctx context.Context, purchaseID int64) (bool, error) {
	var paid bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM cash_movements WHERE purchase_id = $1)`, purchaseID,
	).Scan(&paid)
	if err != nil {
		return false, mapError("purchase paid", err)
	}
	return paid, nil
}
