package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo log de auditoría append-only sobre PostgreSQL (before/after en JSONB).
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// nullJSON guarda NULL en lugar de un snapshot vacío.
func nullJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

// Create agrega una entrada al log.
func (r *AuditRepo) Create(ctx context.Context, e *entity.AuditEntry) error {
	query := `
		INSERT INTO audit_log (command_id, occurred_at, user_id, module, action, entity, entity_id, before, after)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9::jsonb)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		e.CommandID, e.OccurredAt, e.UserID, e.Module, e.Action, e.Entity, e.EntityID,
		nullJSON(e.Before), nullJSON(e.After),
	).Scan(&e.ID)
	return mapError("insert audit entry", err)
}

// List entradas más recientes primero.
func (r *AuditRepo) List(ctx context.Context, f repository.AuditFilter) ([]*entity.AuditEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, command_id, occurred_at, user_id, module, action, entity, entity_id, before, after
		FROM audit_log
		WHERE ($1 = '' OR module = $1)
		  AND ($2 = '' OR entity = $2)
		  AND ($3::bigint IS NULL OR entity_id = $3)
		  AND ($4::timestamptz IS NULL OR occurred_at >= $4)
		  AND ($5::timestamptz IS NULL OR occurred_at < $5)
		ORDER BY id DESC
		LIMIT $6 OFFSET $7`,
		f.Module, f.Entity, f.EntityID, f.From, f.To, limitArg(f.Limit), f.Offset)
	if err != nil {
		return nil, mapError("list audit", err)
	}
	defer rows.Close()
	var list []*entity.AuditEntry
	for rows.Next() {
		var e entity.AuditEntry
		var before, after []byte
		if err := rows.Scan(&e.ID, &e.CommandID, &e.OccurredAt, &e.UserID, &e.Module, &e.Action,
			&e.Entity, &e.EntityID, &before, &after); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Before, e.After = before, after
		list = append(list, &e)
	}
	return list, mapError("list audit", rows.Err())
}
