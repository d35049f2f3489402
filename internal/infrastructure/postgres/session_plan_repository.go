package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
)

var _ repository.SessionPlanRepository = (*SessionPlanRepo)(nil)

// SessionPlanRepo planes de sesiones y sus sesiones sobre PostgreSQL.
type SessionPlanRepo struct {
	q Querier
}

// NewSessionPlanRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSessionPlanRepository(q Querier) *SessionPlanRepo {
	return &SessionPlanRepo{q: q}
}

const planSelect = `
	SELECT id, patient_id, origin_sale_id, origin_sale_line_id, plan_type_id, item_id, total_sessions,
	       completed_sessions, state, start_date, notes, created_at, updated_at
	FROM session_plans`

const sessionSelect = `
	SELECT id, plan_id, number, state, scheduled_at, actual_at, appointment_id, professional_id, apparatus_id, notes
	FROM plan_sessions`

func scanPlan(row pgx.Row) (*entity.SessionPlan, error) {
	var p entity.SessionPlan
	err := row.Scan(
		&p.ID, &p.PatientID, &p.OriginSaleID, &p.OriginSaleLineID, &p.PlanTypeID, &p.ItemID, &p.TotalSessions,
		&p.CompletedSessions, &p.State, &p.StartDate, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanSession(row pgx.Row) (*entity.PlanSession, error) {
	var s entity.PlanSession
	err := row.Scan(
		&s.ID, &s.PlanID, &s.Number, &s.State, &s.ScheduledAt, &s.ActualAt, &s.AppointmentID,
		&s.ProfessionalID, &s.ApparatusID, &s.Notes,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionPlanRepo) listPlans(ctx context.Context, op, query string, args ...any) ([]*entity.SessionPlan, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()
	var list []*entity.SessionPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session plan: %w", err)
		}
		list = append(list, p)
	}
	return list, mapError(op, rows.Err())
}

// CreatePlan persiste un plan.
func (r *SessionPlanRepo) CreatePlan(ctx context.Context, p *entity.SessionPlan) error {
	query := `
		INSERT INTO session_plans (patient_id, origin_sale_id, origin_sale_line_id, plan_type_id, item_id,
		                           total_sessions, completed_sessions, state, start_date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		p.PatientID, p.OriginSaleID, p.OriginSaleLineID, p.PlanTypeID, p.ItemID,
		p.TotalSessions, p.CompletedSessions, p.State, p.StartDate, p.Notes, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	return mapError("insert session plan", err)
}

// GetPlan obtiene un plan por ID.
func (r *SessionPlanRepo) GetPlan(ctx context.Context, id int64) (*entity.SessionPlan, error) {
	p, err := scanPlan(r.q.QueryRow(ctx, planSelect+` WHERE id = $1`, id))
	return noRows(p, "get session plan", err)
}

// GetPlanForUpdate obtiene el plan bloqueando su fila.
func (r *SessionPlanRepo) GetPlanForUpdate(ctx context.Context, id int64) (*entity.SessionPlan, error) {
	p, err := scanPlan(r.q.QueryRow(ctx, planSelect+` WHERE id = $1 FOR UPDATE`, id))
	return noRows(p, "get session plan for update", err)
}

// UpdatePlan actualiza progreso y estado del plan.
func (r *SessionPlanRepo) UpdatePlan(ctx context.Context, p *entity.SessionPlan) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE session_plans SET total_sessions = $2, completed_sessions = $3, state = $4, notes = $5, updated_at = $6
		WHERE id = $1`, p.ID, p.TotalSessions, p.CompletedSessions, p.State, p.Notes, p.UpdatedAt)
	if err != nil {
		return mapError("update session plan", err)
	}
	return affected(tag, "session plan", p.ID)
}

// ListPlansBySale planes generados por la venta.
func (r *SessionPlanRepo) ListPlansBySale(ctx context.Context, saleID int64) ([]*entity.SessionPlan, error) {
	return r.listPlans(ctx, "list plans by sale", planSelect+` WHERE origin_sale_id = $1 ORDER BY id`, saleID)
}

// ListPlansByPatient planes del paciente.
func (r *SessionPlanRepo) ListPlansByPatient(ctx context.Context, patientID int64) ([]*entity.SessionPlan, error) {
	return r.listPlans(ctx, "list plans by patient", planSelect+` WHERE patient_id = $1 ORDER BY id`, patientID)
}

// ListActivePlans planes activos del paciente para el tipo, más antiguos primero.
func (r *SessionPlanRepo) ListActivePlans(ctx context.Context, patientID, planTypeID int64) ([]*entity.SessionPlan, error) {
	return r.listPlans(ctx, "list active plans", planSelect+`
		WHERE patient_id = $1 AND plan_type_id = $2 AND state = 'Active'
		ORDER BY start_date, id`, patientID, planTypeID)
}

// CreateSession persiste una sesión. UNIQUE (plan_id, number) impide numeración duplicada.
func (r *SessionPlanRepo) CreateSession(ctx context.Context, s *entity.PlanSession) error {
	query := `
		INSERT INTO plan_sessions (plan_id, number, state, scheduled_at, actual_at, appointment_id,
		                           professional_id, apparatus_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		s.PlanID, s.Number, s.State, s.ScheduledAt, s.ActualAt, s.AppointmentID,
		s.ProfessionalID, s.ApparatusID, s.Notes,
	).Scan(&s.ID)
	return mapError("insert plan session", err)
}

// GetSession obtiene una sesión por ID.
func (r *SessionPlanRepo) GetSession(ctx context.Context, id int64) (*entity.PlanSession, error) {
	s, err := scanSession(r.q.QueryRow(ctx, sessionSelect+` WHERE id = $1`, id))
	return noRows(s, "get plan session", err)
}

// GetSessionForUpdate obtiene la sesión bloqueando su fila.
func (r *SessionPlanRepo) GetSessionForUpdate(ctx context.Context, id int64) (*entity.PlanSession, error) {
	s, err := scanSession(r.q.QueryRow(ctx, sessionSelect+` WHERE id = $1 FOR UPDATE`, id))
	return noRows(s, "get plan session for update", err)
}

// UpdateSession actualiza estado, vínculo con turno y datos de ejecución.
func (r *SessionPlanRepo) UpdateSession(ctx context.Context, s *entity.PlanSession) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE plan_sessions SET state = $2, scheduled_at = $3, actual_at = $4, appointment_id = $5,
		       professional_id = $6, apparatus_id = $7, notes = $8
		WHERE id = $1`,
		s.ID, s.State, s.ScheduledAt, s.ActualAt, s.AppointmentID, s.ProfessionalID, s.ApparatusID, s.Notes)
	if err != nil {
		return mapError("update plan session", err)
	}
	return affected(tag, "plan session", s.ID)
}

// ListSessions sesiones del plan ordenadas por número.
func (r *SessionPlanRepo) ListSessions(ctx context.Context, planID int64) ([]*entity.PlanSession, error) {
	rows, err := r.q.Query(ctx, sessionSelect+` WHERE plan_id = $1 ORDER BY number`, planID)
	if err != nil {
		return nil, mapError("list plan sessions", err)
	}
	defer rows.Close()
	var list []*entity.PlanSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan session: %w", err)
		}
		list = append(list, s)
	}
	return list, mapError("list plan sessions", rows.Err())
}
