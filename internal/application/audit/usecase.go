package audit

import (
	"context"

	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
)

// UseCase consulta del log de auditoría.
type UseCase struct {
	repo repository.AuditRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.AuditRepository) *UseCase {
	return &UseCase{repo: repo}
}

// List entradas filtradas, más recientes primero.
func (uc *UseCase) List(ctx context.Context, in dto.AuditFilterRequest) ([]dto.AuditEntryResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	in.DefaultPage()
	list, err := uc.repo.List(ctx, repository.AuditFilter{
		Module:   in.Module,
		Entity:   in.Entity,
		EntityID: in.EntityID,
		From:     in.From,
		To:       in.To,
		Limit:    in.Limit,
		Offset:   in.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.AuditEntryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toResponse(e))
	}
	return out, nil
}

func toResponse(e *entity.AuditEntry) dto.AuditEntryResponse {
	return dto.AuditEntryResponse{
		ID:         e.ID,
		CommandID:  e.CommandID,
		OccurredAt: e.OccurredAt,
		UserID:     e.UserID,
		Module:     e.Module,
		Action:     e.Action,
		Entity:     e.Entity,
		EntityID:   e.EntityID,
		Before:     e.Before,
		After:      e.After,
	}
}
