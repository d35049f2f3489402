package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo ledger de stock sobre PostgreSQL. Solo INSERT: no hay UPDATE ni DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementSelect = `
	SELECT id, item_id, quantity, kind, motive, origin_module, origin_id, reversal_of, occurred_at, note, created_by
	FROM stock_movements`

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(
		&m.ID, &m.ItemID, &m.Quantity, &m.Kind, &m.Motive, &m.Origin.Module, &m.Origin.ID,
		&m.ReversalOf, &m.OccurredAt, &m.Note, &m.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *StockMovementRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, mapError(op, rows.Err())
}

// Create persiste un movimiento del ledger.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (item_id, quantity, kind, motive, origin_module, origin_id, reversal_of,
		                             occurred_at, note, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		m.ItemID, m.Quantity, m.Kind, m.Motive, m.Origin.Module, m.Origin.ID, m.ReversalOf,
		m.OccurredAt, m.Note, m.CreatedBy,
	).Scan(&m.ID)
	return mapError("insert stock movement", err)
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(ctx context.Context, id int64) (*entity.StockMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, movementSelect+` WHERE id = $1`, id))
	return noRows(m, "get stock movement", err)
}

// ListByOrigin movimientos de un documento en orden de id.
func (r *StockMovementRepo) ListByOrigin(ctx context.Context, module string, originID int64) ([]*entity.StockMovement, error) {
	return r.list(ctx, "list movements by origin",
		movementSelect+` WHERE origin_module = $1 AND origin_id = $2 ORDER BY id`, module, originID)
}

// ReversedIDs ids (entre los dados) que ya tienen movimiento compensatorio.
func (r *StockMovementRepo) ReversedIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	out := make(map[int64]bool)
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `SELECT reversal_of FROM stock_movements WHERE reversal_of = ANY($1)`, ids)
	if err != nil {
		return nil, mapError("reversed movements", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan reversal: %w", err)
		}
		out[id] = true
	}
	return out, mapError("reversed movements", rows.Err())
}

// OnHand suma con signo de los movimientos del ítem hasta asOf inclusive.
func (r *StockMovementRepo) OnHand(ctx context.Context, itemID int64, asOf time.Time) (decimal.Decimal, error) {
	var qty decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN kind = 'EGRESO' THEN -quantity ELSE quantity END), 0)
		FROM stock_movements WHERE item_id = $1 AND occurred_at <= $2`, itemID, asOf,
	).Scan(&qty)
	if err != nil {
		return decimal.Zero, mapError("on hand", err)
	}
	return qty, nil
}

// OnHandBefore saldo por ítem de los movimientos anteriores a before.
func (r *StockMovementRepo) OnHandBefore(ctx context.Context, before time.Time) (map[int64]decimal.Decimal, error) {
	rows, err := r.q.Query(ctx, `
		SELECT item_id, SUM(CASE WHEN kind = 'EGRESO' THEN -quantity ELSE quantity END)
		FROM stock_movements WHERE occurred_at < $1
		GROUP BY item_id`, before)
	if err != nil {
		return nil, mapError("on hand before", err)
	}
	defer rows.Close()
	out := make(map[int64]decimal.Decimal)
	for rows.Next() {
		var id int64
		var qty decimal.Decimal
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, fmt.Errorf("scan on hand: %w", err)
		}
		out[id] = qty
	}
	return out, mapError("on hand before", rows.Err())
}

// ListBetween movimientos con from <= occurred_at < to.
func (r *StockMovementRepo) ListBetween(ctx context.Context, from, to time.Time) ([]*entity.StockMovement, error) {
	return r.list(ctx, "list movements between",
		movementSelect+` WHERE occurred_at >= $1 AND occurred_at < $2 ORDER BY occurred_at, id`, from, to)
}

// ListByItem kardex del ítem, más recientes primero.
func (r *StockMovementRepo) ListByItem(ctx context.Context, itemID int64, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return r.list(ctx, "list movements by item", movementSelect+`
		WHERE item_id = $1
		  AND ($2::timestamptz IS NULL OR occurred_at >= $2)
		  AND ($3::timestamptz IS NULL OR occurred_at < $3)
		ORDER BY occurred_at DESC, id DESC
		LIMIT $4 OFFSET $5`, itemID, from, to, limitArg(limit), offset)
}
