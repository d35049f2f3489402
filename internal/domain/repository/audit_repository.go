package repository

import (
	"context"
	"time"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
)

// AuditFilter filtros de consulta del log de auditoría.
type AuditFilter struct {
	Module   string
	Entity   string
	EntityID *int64
	From, To *time.Time
	Limit    int
	Offset   int
}

// AuditRepository puerto append-only del log de auditoría.
type AuditRepository interface {
	Create(ctx context.Context, e *entity.AuditEntry) error
	List(ctx context.Context, f AuditFilter) ([]*entity.AuditEntry, error)
}
