package plans

import (
	"context"
	"time"

	"github.com/jhoicas/clinica-api/internal/application/audit"
	"github.com/jhoicas/clinica-api/internal/domain"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
	"github.com/jhoicas/clinica-api/pkg/clock"
)

// Linker es el único componente que modifica ambos lados del vínculo turno ↔ sesión de plan.
// Todos sus métodos operan con los repos de la transacción del llamador.
type Linker struct {
	audit *audit.Recorder
	clock clock.Clock
}

// NewLinker construye el linker.
func NewLinker(rec *audit.Recorder, c clock.Clock) *Linker {
	return &Linker{audit: rec, clock: c}
}

// OnAppointmentSaved sincroniza la sesión vinculada con el turno (fecha y profesional) o,
// si el turno no tiene vínculo, lo vincula a la sesión libre de menor número del plan Active
// más antiguo del paciente para el tipo de plan del turno. Devuelve nil si no hay sesión disponible.
func (l *Linker) OnAppointmentSaved(ctx context.Context, r repository.Repos, app *entity.Appointment) (*entity.PlanSession, error) {
	if app.SessionID != nil {
		s, err := r.Plans.GetSessionForUpdate(ctx, *app.SessionID)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, domain.ErrIntegrity.WithMessage("appointment %d links missing session %d", app.ID, *app.SessionID)
		}
		if s.State == entity.SessionStateCompleted {
			return s, nil
		}
		before := toSessionResponse(s)
		start, prof := app.Start, app.ProfessionalID
		s.ScheduledAt = &start
		s.ProfessionalID = &prof
		if err := r.Plans.UpdateSession(ctx, s); err != nil {
			return nil, err
		}
		if err := l.audit.Updated(ctx, r.Audit, audit.ModulePlans, "plan_session", s.ID, before, toSessionResponse(s)); err != nil {
			return nil, err
		}
		return s, nil
	}

	planTypeID, err := l.targetPlanType(ctx, r, app)
	if err != nil || planTypeID == nil {
		return nil, err
	}
	plans, err := r.Plans.ListActivePlans(ctx, app.PatientID, *planTypeID)
	if err != nil {
		return nil, err
	}
	for _, candidate := range plans {
		plan, err := r.Plans.GetPlanForUpdate(ctx, candidate.ID)
		if err != nil {
			return nil, err
		}
		if plan == nil || plan.State != entity.PlanStateActive {
			continue
		}
		sessions, err := r.Plans.ListSessions(ctx, plan.ID)
		if err != nil {
			return nil, err
		}
		for _, cs := range sessions {
			if !cs.Available() {
				continue
			}
			s, err := r.Plans.GetSessionForUpdate(ctx, cs.ID)
			if err != nil {
				return nil, err
			}
			if s == nil || !s.Available() {
				continue
			}
			if err := l.link(ctx, r, s, app); err != nil {
				return nil, err
			}
			return s, nil
		}
	}
	return nil, nil
}

// LinkExplicit vincula el turno a una sesión concreta (elección manual desde la agenda).
func (l *Linker) LinkExplicit(ctx context.Context, r repository.Repos, app *entity.Appointment, sessionID int64) (*entity.PlanSession, error) {
	if app.SessionID != nil {
		if *app.SessionID == sessionID {
			return r.Plans.GetSession(ctx, sessionID)
		}
		return nil, domain.ErrSessionAlreadyLinked.WithMessage("appointment %d is already linked to session %d", app.ID, *app.SessionID)
	}
	peek, err := r.Plans.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if peek == nil {
		return nil, domain.ErrNotFound.WithMessage("plan session %d not found", sessionID)
	}
	plan, err := r.Plans.GetPlanForUpdate(ctx, peek.PlanID)
	if err != nil {
		return nil, err
	}
	if plan.State != entity.PlanStateActive {
		return nil, domain.ErrPlanNotActive
	}
	if plan.PatientID != app.PatientID {
		return nil, domain.ErrValidation.WithMessage("session %d belongs to another patient", sessionID)
	}
	s, err := r.Plans.GetSessionForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	switch {
	case s.State == entity.SessionStateCompleted:
		return nil, domain.ErrSessionAlreadyComplete
	case s.State == entity.SessionStateCancelled:
		return nil, domain.ErrSessionCancelled
	case s.AppointmentID != nil:
		return nil, domain.ErrSessionAlreadyLinked.WithMessage("session %d is already linked to appointment %d", s.ID, *s.AppointmentID)
	}
	if err := l.link(ctx, r, s, app); err != nil {
		return nil, err
	}
	return s, nil
}

// OnAppointmentCancelled libera la sesión vinculada (si no fue realizada) y limpia ambos lados.
// Una sesión realizada conserva fecha y profesional; solo pierde el vínculo.
func (l *Linker) OnAppointmentCancelled(ctx context.Context, r repository.Repos, app *entity.Appointment) error {
	if app.SessionID == nil {
		return nil
	}
	s, err := r.Plans.GetSessionForUpdate(ctx, *app.SessionID)
	if err != nil {
		return err
	}
	if s != nil && s.AppointmentID != nil && *s.AppointmentID == app.ID {
		before := toSessionResponse(s)
		s.AppointmentID = nil
		if s.State != entity.SessionStateCompleted {
			s.ScheduledAt = nil
			s.ProfessionalID = nil
		}
		if err := r.Plans.UpdateSession(ctx, s); err != nil {
			return err
		}
		if err := l.audit.Updated(ctx, r.Audit, audit.ModulePlans, "plan_session", s.ID, before, toSessionResponse(s)); err != nil {
			return err
		}
	}
	app.SessionID = nil
	app.UpdatedAt = l.clock.Now()
	return r.Appointments.Update(ctx, app)
}

// CompleteInput datos de realización de una sesión.
type CompleteInput struct {
	ActualAt       time.Time
	ProfessionalID *int64
	ApparatusID    *int64
	Notes          string
}

// OnSessionCompleted marca la sesión realizada, completa el turno vinculado si sigue abierto,
// incrementa el progreso del plan y lo cierra al llegar al total. Orden de bloqueo: plan, sesión, turno.
func (l *Linker) OnSessionCompleted(ctx context.Context, r repository.Repos, sessionID int64, in CompleteInput) (*entity.PlanSession, error) {
	peek, err := r.Plans.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if peek == nil {
		return nil, domain.ErrNotFound.WithMessage("plan session %d not found", sessionID)
	}
	plan, err := r.Plans.GetPlanForUpdate(ctx, peek.PlanID)
	if err != nil {
		return nil, err
	}
	s, err := r.Plans.GetSessionForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	switch s.State {
	case entity.SessionStateCompleted:
		return nil, domain.ErrSessionAlreadyComplete
	case entity.SessionStateCancelled:
		return nil, domain.ErrSessionCancelled
	}
	if plan.State != entity.PlanStateActive {
		return nil, domain.ErrPlanNotActive
	}

	before := toSessionResponse(s)
	actual := in.ActualAt.UTC()
	s.State = entity.SessionStateCompleted
	s.ActualAt = &actual
	if in.ProfessionalID != nil {
		s.ProfessionalID = in.ProfessionalID
	}
	if in.ApparatusID != nil {
		s.ApparatusID = in.ApparatusID
	}
	if in.Notes != "" {
		s.Notes = in.Notes
	}
	if err := r.Plans.UpdateSession(ctx, s); err != nil {
		return nil, err
	}
	if err := l.audit.Updated(ctx, r.Audit, audit.ModulePlans, "plan_session", s.ID, before, toSessionResponse(s)); err != nil {
		return nil, err
	}

	if s.AppointmentID != nil {
		app, err := r.Appointments.GetForUpdate(ctx, *s.AppointmentID)
		if err != nil {
			return nil, err
		}
		if app != nil && app.IsOpen() {
			appBefore := *app
			app.State = entity.AppointmentStateCompleted
			app.UpdatedAt = l.clock.Now()
			if err := r.Appointments.Update(ctx, app); err != nil {
				return nil, err
			}
			if err := l.audit.Updated(ctx, r.Audit, audit.ModuleAgenda, "appointment", app.ID, appointmentSnapshot(&appBefore), appointmentSnapshot(app)); err != nil {
				return nil, err
			}
		}
	}

	planBefore := toPlanResponse(plan, nil)
	plan.CompletedSessions++
	if plan.CompletedSessions >= plan.TotalSessions {
		plan.State = entity.PlanStateCompleted
	}
	plan.UpdatedAt = l.clock.Now()
	if err := r.Plans.UpdatePlan(ctx, plan); err != nil {
		return nil, err
	}
	if err := l.audit.Updated(ctx, r.Audit, audit.ModulePlans, "session_plan", plan.ID, planBefore, toPlanResponse(plan, nil)); err != nil {
		return nil, err
	}
	return s, nil
}

// link fija el vínculo en ambos lados y replica fecha y profesional en la sesión.
func (l *Linker) link(ctx context.Context, r repository.Repos, s *entity.PlanSession, app *entity.Appointment) error {
	before := toSessionResponse(s)
	appID, start, prof := app.ID, app.Start, app.ProfessionalID
	s.AppointmentID = &appID
	s.ScheduledAt = &start
	s.ProfessionalID = &prof
	if err := r.Plans.UpdateSession(ctx, s); err != nil {
		return err
	}
	sid := s.ID
	app.SessionID = &sid
	app.UpdatedAt = l.clock.Now()
	if err := r.Appointments.Update(ctx, app); err != nil {
		return err
	}
	return l.audit.Updated(ctx, r.Audit, audit.ModulePlans, "plan_session", s.ID, before, toSessionResponse(s))
}

// targetPlanType resuelve el tipo de plan del turno: directo o a través del ítem.
func (l *Linker) targetPlanType(ctx context.Context, r repository.Repos, app *entity.Appointment) (*int64, error) {
	if app.PlanTypeID != nil {
		return app.PlanTypeID, nil
	}
	if app.ItemID == nil {
		return nil, nil
	}
	item, err := r.Items.GetByID(ctx, *app.ItemID)
	if err != nil || item == nil {
		return nil, err
	}
	return item.PlanTypeID, nil
}

// appointmentSnapshot payload de auditoría de un turno.
func appointmentSnapshot(a *entity.Appointment) map[string]interface{} {
	return map[string]interface{}{
		"id":              a.ID,
		"patient_id":      a.PatientID,
		"professional_id": a.ProfessionalID,
		"start":           a.Start,
		"state":           a.State,
		"session_id":      a.SessionID,
	}
}
