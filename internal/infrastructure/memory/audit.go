package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
)

type auditRepo struct{ *base }

func (r *auditRepo) Create(_ context.Context, e *entity.AuditEntry) error {
	return r.write(func(st *state) error {
		e.ID = st.audit.next()
		st.audit.put(e.ID, e)
		return nil
	})
}

// List entradas más recientes primero.
func (r *auditRepo) List(_ context.Context, f repository.AuditFilter) ([]*entity.AuditEntry, error) {
	var out []*entity.AuditEntry
	err := r.read(func(st *state) error {
		out = st.audit.filter(func(e *entity.AuditEntry) bool {
			if f.Module != "" && e.Module != f.Module {
				return false
			}
			if f.Entity != "" && e.Entity != f.Entity {
				return false
			}
			if f.EntityID != nil && e.EntityID != *f.EntityID {
				return false
			}
			if f.From != nil && e.OccurredAt.Before(*f.From) {
				return false
			}
			return f.To == nil || e.OccurredAt.Before(*f.To)
		})
		sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
		out = page(out, f.Limit, f.Offset)
		return nil
	})
	return out, err
}
