package agenda

import (
	"context"

	"github.com/jhoicas/clinica-api/internal/application/audit"
	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/application/plans"
	"github.com/jhoicas/clinica-api/internal/application/ports"
	"github.com/jhoicas/clinica-api/internal/domain"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
	"github.com/jhoicas/clinica-api/pkg/clock"
)

// DefaultDurationMinutes duración de un turno cuando no se informa.
const DefaultDurationMinutes = 30

var (
	ErrInvalidTarget         = domain.Validation("INVALID_APPOINTMENT_TARGET", "exactly one of item_id, plan_type_id, legacy_product_id is required")
	ErrPatientInactive       = domain.Validation("PATIENT_INACTIVE", "patient is inactive")
	ErrProfessionalInactive  = domain.Validation("PROFESSIONAL_INACTIVE", "professional is inactive")
	ErrAppointmentNotPending = domain.Conflict("APPOINTMENT_NOT_PENDING", "appointment is not scheduled")
)

// UseCase agenda de turnos. Toda sincronización con sesiones de plan pasa por el Linker.
type UseCase struct {
	tx     ports.TxRunner
	repo   repository.AppointmentRepository
	linker *plans.Linker
	audit  *audit.Recorder
	clock  clock.Clock
}

// NewUseCase construye el caso de uso de agenda.
func NewUseCase(tx ports.TxRunner, repo repository.AppointmentRepository, linker *plans.Linker, rec *audit.Recorder, c clock.Clock) *UseCase {
	return &UseCase{tx: tx, repo: repo, linker: linker, audit: rec, clock: c}
}

// Create registra un turno y lo vincula a la primera sesión libre del plan activo más antiguo.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	app := &entity.Appointment{
		PatientID:       in.PatientID,
		ProfessionalID:  in.ProfessionalID,
		Start:           in.Start.UTC(),
		DurationMinutes: in.DurationMinutes,
		State:           entity.AppointmentStateScheduled,
		ItemID:          in.ItemID,
		PlanTypeID:      in.PlanTypeID,
		LegacyProductID: in.LegacyProductID,
		Observations:    in.Observations,
	}
	if app.TargetCount() != 1 {
		return nil, ErrInvalidTarget
	}
	if app.DurationMinutes == 0 {
		app.DurationMinutes = DefaultDurationMinutes
	}
	ctx = audit.BeginCommand(ctx)

	var out *dto.AppointmentResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := uc.checkRefs(ctx, r, app); err != nil {
			return err
		}
		now := uc.clock.Now()
		app.CreatedAt, app.UpdatedAt = now, now
		if err := r.Appointments.Create(ctx, app); err != nil {
			return err
		}
		if _, err := uc.linker.OnAppointmentSaved(ctx, r, app); err != nil {
			return err
		}
		resp := toResponse(app)
		if err := uc.audit.Created(ctx, r.Audit, audit.ModuleAgenda, "appointment", app.ID, resp); err != nil {
			return err
		}
		out = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *UseCase) checkRefs(ctx context.Context, r repository.Repos, app *entity.Appointment) error {
	patient, err := r.Accounts.GetPatient(ctx, app.PatientID)
	if err != nil {
		return err
	}
	if patient == nil {
		return domain.ErrNotFound.WithMessage("patient %d not found", app.PatientID)
	}
	if !patient.Active {
		return ErrPatientInactive.WithMessage("patient %d is inactive", patient.ID)
	}
	prof, err := r.Accounts.GetProfessional(ctx, app.ProfessionalID)
	if err != nil {
		return err
	}
	if prof == nil {
		return domain.ErrNotFound.WithMessage("professional %d not found", app.ProfessionalID)
	}
	if !prof.Active {
		return ErrProfessionalInactive.WithMessage("professional %d is inactive", prof.ID)
	}
	if app.ItemID != nil {
		item, err := r.Items.GetByID(ctx, *app.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound.WithMessage("item %d not found", *app.ItemID)
		}
	}
	if app.PlanTypeID != nil {
		pt, err := r.Items.GetPlanType(ctx, *app.PlanTypeID)
		if err != nil {
			return err
		}
		if pt == nil {
			return domain.ErrNotFound.WithMessage("plan type %d not found", *app.PlanTypeID)
		}
	}
	return nil
}

// lockLinked bloquea respetando el orden plan → sesión → turno: lee el turno sin bloqueo,
// bloquea el plan de la sesión vinculada y recién después el turno.
func (uc *UseCase) lockLinked(ctx context.Context, r repository.Repos, id int64) (*entity.Appointment, error) {
	peek, err := r.Appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if peek == nil {
		return nil, domain.ErrNotFound.WithMessage("appointment %d not found", id)
	}
	if peek.SessionID != nil {
		s, err := r.Plans.GetSession(ctx, *peek.SessionID)
		if err != nil {
			return nil, err
		}
		if s != nil {
			if _, err := r.Plans.GetPlanForUpdate(ctx, s.PlanID); err != nil {
				return nil, err
			}
			if _, err := r.Plans.GetSessionForUpdate(ctx, s.ID); err != nil {
				return nil, err
			}
		}
	}
	app, err := r.Appointments.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, domain.ErrNotFound.WithMessage("appointment %d not found", id)
	}
	return app, nil
}

// Update reprograma o edita un turno abierto; la sesión vinculada replica fecha y profesional.
func (uc *UseCase) Update(ctx context.Context, id int64, in dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	ctx = audit.BeginCommand(ctx)
	var out *dto.AppointmentResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		app, err := uc.lockLinked(ctx, r, id)
		if err != nil {
			return err
		}
		if !app.IsOpen() {
			return domain.ErrAppointmentClosed.WithMessage("appointment %d is %s", id, app.State)
		}
		before := toResponse(app)
		if in.ProfessionalID != nil && *in.ProfessionalID != app.ProfessionalID {
			prof, err := r.Accounts.GetProfessional(ctx, *in.ProfessionalID)
			if err != nil {
				return err
			}
			if prof == nil {
				return domain.ErrNotFound.WithMessage("professional %d not found", *in.ProfessionalID)
			}
			if !prof.Active {
				return ErrProfessionalInactive.WithMessage("professional %d is inactive", prof.ID)
			}
			app.ProfessionalID = prof.ID
		}
		if in.Start != nil {
			app.Start = in.Start.UTC()
		}
		if in.DurationMinutes != nil {
			app.DurationMinutes = *in.DurationMinutes
		}
		if in.Observations != nil {
			app.Observations = *in.Observations
		}
		app.UpdatedAt = uc.clock.Now()
		if err := r.Appointments.Update(ctx, app); err != nil {
			return err
		}
		if _, err := uc.linker.OnAppointmentSaved(ctx, r, app); err != nil {
			return err
		}
		after := toResponse(app)
		if err := uc.audit.Updated(ctx, r.Audit, audit.ModuleAgenda, "appointment", id, before, after); err != nil {
			return err
		}
		out = &after
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Confirm pasa un turno Scheduled a Confirmed. Confirmar uno ya confirmado no cambia nada.
func (uc *UseCase) Confirm(ctx context.Context, id int64) (*dto.AppointmentResponse, error) {
	return uc.transition(ctx, id, func(r repository.Repos, app *entity.Appointment) error {
		switch app.State {
		case entity.AppointmentStateConfirmed:
			return nil
		case entity.AppointmentStateScheduled:
			app.State = entity.AppointmentStateConfirmed
			return nil
		}
		return ErrAppointmentNotPending.WithMessage("appointment %d is %s", app.ID, app.State)
	})
}

// Cancel cancela un turno abierto y libera la sesión vinculada.
func (uc *UseCase) Cancel(ctx context.Context, id int64) (*dto.AppointmentResponse, error) {
	return uc.release(ctx, id, entity.AppointmentStateCancelled)
}

// MarkNoShow registra la inasistencia; la sesión vinculada queda libre para otro turno.
func (uc *UseCase) MarkNoShow(ctx context.Context, id int64) (*dto.AppointmentResponse, error) {
	return uc.release(ctx, id, entity.AppointmentStateNoShow)
}

func (uc *UseCase) release(ctx context.Context, id int64, state string) (*dto.AppointmentResponse, error) {
	return uc.transition(ctx, id, func(r repository.Repos, app *entity.Appointment) error {
		if !app.IsOpen() {
			return domain.ErrAppointmentClosed.WithMessage("appointment %d is %s", app.ID, app.State)
		}
		if err := uc.linker.OnAppointmentCancelled(ctx, r, app); err != nil {
			return err
		}
		app.State = state
		return nil
	})
}

// transition bloquea el turno, aplica fn y persiste con auditoría.
func (uc *UseCase) transition(ctx context.Context, id int64, fn func(r repository.Repos, app *entity.Appointment) error) (*dto.AppointmentResponse, error) {
	ctx = audit.BeginCommand(ctx)
	var out *dto.AppointmentResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		app, err := uc.lockLinked(ctx, r, id)
		if err != nil {
			return err
		}
		before := toResponse(app)
		if err := fn(r, app); err != nil {
			return err
		}
		after := toResponse(app)
		if after == before {
			out = &after
			return nil
		}
		app.UpdatedAt = uc.clock.Now()
		if err := r.Appointments.Update(ctx, app); err != nil {
			return err
		}
		if err := uc.audit.Updated(ctx, r.Audit, audit.ModuleAgenda, "appointment", id, before, after); err != nil {
			return err
		}
		out = &after
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Complete marca el turno realizado. Si está vinculado, completa la sesión a través del
// linker (que a su vez completa el turno y avanza el plan).
func (uc *UseCase) Complete(ctx context.Context, id int64) (*dto.AppointmentResponse, error) {
	ctx = audit.BeginCommand(ctx)
	var out *dto.AppointmentResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		app, err := uc.lockLinked(ctx, r, id)
		if err != nil {
			return err
		}
		if !app.IsOpen() {
			return domain.ErrAppointmentClosed.WithMessage("appointment %d is %s", id, app.State)
		}
		if app.SessionID != nil {
			prof := app.ProfessionalID
			if _, err := uc.linker.OnSessionCompleted(ctx, r, *app.SessionID, plans.CompleteInput{
				ActualAt:       app.Start,
				ProfessionalID: &prof,
			}); err != nil {
				return err
			}
			fresh, err := r.Appointments.GetByID(ctx, id)
			if err != nil {
				return err
			}
			resp := toResponse(fresh)
			out = &resp
			return nil
		}
		before := toResponse(app)
		app.State = entity.AppointmentStateCompleted
		app.UpdatedAt = uc.clock.Now()
		if err := r.Appointments.Update(ctx, app); err != nil {
			return err
		}
		after := toResponse(app)
		if err := uc.audit.Updated(ctx, r.Audit, audit.ModuleAgenda, "appointment", id, before, after); err != nil {
			return err
		}
		out = &after
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LinkSession vincula manualmente un turno abierto a una sesión concreta.
func (uc *UseCase) LinkSession(ctx context.Context, id, sessionID int64) (*dto.AppointmentResponse, error) {
	ctx = audit.BeginCommand(ctx)
	var out *dto.AppointmentResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		app, err := r.Appointments.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if app == nil {
			return domain.ErrNotFound.WithMessage("appointment %d not found", id)
		}
		if !app.IsOpen() {
			return domain.ErrAppointmentClosed.WithMessage("appointment %d is %s", id, app.State)
		}
		before := toResponse(app)
		if _, err := uc.linker.LinkExplicit(ctx, r, app, sessionID); err != nil {
			return err
		}
		after := toResponse(app)
		if err := uc.audit.Updated(ctx, r.Audit, audit.ModuleAgenda, "appointment", id, before, after); err != nil {
			return err
		}
		out = &after
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete borra el turno tras liberar su sesión vinculada.
func (uc *UseCase) Delete(ctx context.Context, id int64) error {
	ctx = audit.BeginCommand(ctx)
	return uc.tx.Run(ctx, func(r repository.Repos) error {
		app, err := uc.lockLinked(ctx, r, id)
		if err != nil {
			return err
		}
		before := toResponse(app)
		if err := uc.linker.OnAppointmentCancelled(ctx, r, app); err != nil {
			return err
		}
		if err := r.Appointments.Delete(ctx, id); err != nil {
			return err
		}
		return uc.audit.Deleted(ctx, r.Audit, audit.ModuleAgenda, "appointment", id, before)
	})
}

// GetByID devuelve un turno.
func (uc *UseCase) GetByID(ctx context.Context, id int64) (*dto.AppointmentResponse, error) {
	app, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, domain.ErrNotFound.WithMessage("appointment %d not found", id)
	}
	out := toResponse(app)
	return &out, nil
}

// List lista turnos por paciente, profesional o rango de fechas (orden por inicio).
func (uc *UseCase) List(ctx context.Context, in dto.AppointmentFilterRequest) ([]dto.AppointmentResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	in.DefaultPage()
	list, err := uc.repo.List(ctx, repository.AppointmentFilter{
		PatientID:      in.PatientID,
		ProfessionalID: in.ProfessionalID,
		From:           in.From,
		To:             in.To,
		Limit:          in.Limit,
		Offset:         in.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.AppointmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toResponse(a))
	}
	return out, nil
}

func toResponse(a *entity.Appointment) dto.AppointmentResponse {
	return dto.AppointmentResponse{
		ID:              a.ID,
		PatientID:       a.PatientID,
		ProfessionalID:  a.ProfessionalID,
		Start:           a.Start,
		DurationMinutes: a.DurationMinutes,
		State:           a.State,
		ItemID:          a.ItemID,
		PlanTypeID:      a.PlanTypeID,
		LegacyProductID: a.LegacyProductID,
		SessionID:       a.SessionID,
		Observations:    a.Observations,
	}
}
