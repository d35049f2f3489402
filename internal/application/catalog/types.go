package catalog

import (
	"context"
	"strings"

	"github.com/jhoicas/clinica-api/internal/application/audit"
	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
)

// CreateItemType alta de un tipo de ítem (iditemtipo).
func (uc *UseCase) CreateItemType(ctx context.Context, in dto.CreateItemTypeRequest) (*dto.ItemTypeResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	ctx = audit.BeginCommand(ctx)
	t := &entity.ItemType{Name: strings.TrimSpace(in.Name), Kind: in.Kind}
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := r.Items.CreateItemType(ctx, t); err != nil {
			return err
		}
		return uc.audit.Created(ctx, r.Audit, audit.ModuleCatalog, "item_type", t.ID, toItemTypeResponse(t))
	})
	if err != nil {
		return nil, err
	}
	out := toItemTypeResponse(t)
	return &out, nil
}

// ListItemTypes lista los tipos de ítem.
func (uc *UseCase) ListItemTypes(ctx context.Context) ([]dto.ItemTypeResponse, error) {
	list, err := uc.repo.ListItemTypes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ItemTypeResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toItemTypeResponse(t))
	}
	return out, nil
}

// CreatePlanType alta de un tipo de plan de sesiones.
func (uc *UseCase) CreatePlanType(ctx context.Context, in dto.CreatePlanTypeRequest) (*dto.PlanTypeResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	ctx = audit.BeginCommand(ctx)
	t := &entity.PlanType{Name: strings.TrimSpace(in.Name), DefaultSessions: in.DefaultSessions, Active: true}
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := r.Items.CreatePlanType(ctx, t); err != nil {
			return err
		}
		return uc.audit.Created(ctx, r.Audit, audit.ModuleCatalog, "plan_type", t.ID, toPlanTypeResponse(t))
	})
	if err != nil {
		return nil, err
	}
	out := toPlanTypeResponse(t)
	return &out, nil
}

// ListPlanTypes lista los tipos de plan.
func (uc *UseCase) ListPlanTypes(ctx context.Context) ([]dto.PlanTypeResponse, error) {
	list, err := uc.repo.ListPlanTypes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PlanTypeResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toPlanTypeResponse(t))
	}
	return out, nil
}

func toItemTypeResponse(t *entity.ItemType) dto.ItemTypeResponse {
	return dto.ItemTypeResponse{ID: t.ID, Name: t.Name, Kind: t.Kind}
}

func toPlanTypeResponse(t *entity.PlanType) dto.PlanTypeResponse {
	return dto.PlanTypeResponse{ID: t.ID, Name: t.Name, DefaultSessions: t.DefaultSessions, Active: t.Active}
}
