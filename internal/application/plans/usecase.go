package plans

import (
	"context"

	"github.com/jhoicas/clinica-api/internal/application/audit"
	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/application/ports"
	"github.com/jhoicas/clinica-api/internal/domain"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
	"github.com/jhoicas/clinica-api/pkg/clock"
)

// UseCase consulta de planes de sesiones y registro de sesiones realizadas.
type UseCase struct {
	tx     ports.TxRunner
	repo   repository.SessionPlanRepository
	linker *Linker
	clock  clock.Clock
}

// NewUseCase construye el caso de uso de planes.
func NewUseCase(tx ports.TxRunner, repo repository.SessionPlanRepository, linker *Linker, c clock.Clock) *UseCase {
	return &UseCase{tx: tx, repo: repo, linker: linker, clock: c}
}

// GetByID devuelve el plan con sus sesiones.
func (uc *UseCase) GetByID(ctx context.Context, planID int64) (*dto.PlanResponse, error) {
	plan, err := uc.repo.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrNotFound.WithMessage("session plan %d not found", planID)
	}
	sessions, err := uc.repo.ListSessions(ctx, planID)
	if err != nil {
		return nil, err
	}
	out := toPlanResponse(plan, sessions)
	return &out, nil
}

// ListByPatient planes del paciente (sin sesiones), más antiguos primero.
func (uc *UseCase) ListByPatient(ctx context.Context, patientID int64) ([]dto.PlanResponse, error) {
	list, err := uc.repo.ListPlansByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PlanResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPlanResponse(p, nil))
	}
	return out, nil
}

// CompleteSession registra la realización de una sesión. Es irreversible.
func (uc *UseCase) CompleteSession(ctx context.Context, sessionID int64, in dto.CompleteSessionRequest) (*dto.PlanSessionResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	actual := uc.clock.Now()
	if in.ActualAt != nil {
		actual = *in.ActualAt
	}
	ctx = audit.BeginCommand(ctx)
	var out *dto.PlanSessionResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		s, err := uc.linker.OnSessionCompleted(ctx, r, sessionID, CompleteInput{
			ActualAt:       actual,
			ProfessionalID: in.ProfessionalID,
			ApparatusID:    in.ApparatusID,
			Notes:          in.Notes,
		})
		if err != nil {
			return err
		}
		resp := toSessionResponse(s)
		out = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ToPlanResponse mapea un plan y sus sesiones (puede ser nil) a su salida.
func ToPlanResponse(p *entity.SessionPlan, sessions []*entity.PlanSession) dto.PlanResponse {
	return toPlanResponse(p, sessions)
}

func toPlanResponse(p *entity.SessionPlan, sessions []*entity.PlanSession) dto.PlanResponse {
	out := dto.PlanResponse{
		ID:                p.ID,
		PatientID:         p.PatientID,
		OriginSaleID:      p.OriginSaleID,
		OriginSaleLineID:  p.OriginSaleLineID,
		PlanTypeID:        p.PlanTypeID,
		ItemID:            p.ItemID,
		TotalSessions:     p.TotalSessions,
		CompletedSessions: p.CompletedSessions,
		State:             p.State,
		StartDate:         p.StartDate,
		Notes:             p.Notes,
	}
	for _, s := range sessions {
		out.Sessions = append(out.Sessions, toSessionResponse(s))
	}
	return out
}

func toSessionResponse(s *entity.PlanSession) dto.PlanSessionResponse {
	return dto.PlanSessionResponse{
		ID:             s.ID,
		Number:         s.Number,
		State:          s.State,
		ScheduledAt:    s.ScheduledAt,
		ActualAt:       s.ActualAt,
		AppointmentID:  s.AppointmentID,
		ProfessionalID: s.ProfessionalID,
		ApparatusID:    s.ApparatusID,
		Notes:          s.Notes,
	}
}
