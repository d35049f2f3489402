package repository

import (
	"context"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
)

// SessionPlanRepository puerto de persistencia de planes y sesiones.
type SessionPlanRepository interface {
	CreatePlan(ctx context.Context, p *entity.SessionPlan) error
	GetPlan(ctx context.Context, id int64) (*entity.SessionPlan, error)
	GetPlanForUpdate(ctx context.Context, id int64) (*entity.SessionPlan, error)
	UpdatePlan(ctx context.Context, p *entity.SessionPlan) error
	ListPlansBySale(ctx context.Context, saleID int64) ([]*entity.SessionPlan, error)
	ListPlansByPatient(ctx context.Context, patientID int64) ([]*entity.SessionPlan, error)
	// ListActivePlans planes Active del paciente para el tipo de plan, más antiguos primero
	// (start_date asc, id asc).
	ListActivePlans(ctx context.Context, patientID, planTypeID int64) ([]*entity.SessionPlan, error)

	CreateSession(ctx context.Context, s *entity.PlanSession) error
	GetSession(ctx context.Context, id int64) (*entity.PlanSession, error)
	GetSessionForUpdate(ctx context.Context, id int64) (*entity.PlanSession, error)
	UpdateSession(ctx context.Context, s *entity.PlanSession) error
	// ListSessions sesiones del plan ordenadas por número.
	ListSessions(ctx context.Context, planID int64) ([]*entity.PlanSession, error)
}
