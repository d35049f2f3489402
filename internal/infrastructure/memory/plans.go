package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
)

type planRepo struct{ *base }

func (r *planRepo) CreatePlan(_ context.Context, p *entity.SessionPlan) error {
	return r.write(func(st *state) error {
		if !st.patients.has(p.PatientID) {
			return fk("patient", p.PatientID)
		}
		if !st.sales.has(p.OriginSaleID) {
			return fk("sale", p.OriginSaleID)
		}
		if !st.planTypes.has(p.PlanTypeID) {
			return fk("plan_type", p.PlanTypeID)
		}
		if err := checkPlanCounts(p); err != nil {
			return err
		}
		p.ID = st.plans.next()
		st.plans.put(p.ID, p)
		return nil
	})
}

func checkPlanCounts(p *entity.SessionPlan) error {
	if p.CompletedSessions < 0 || p.CompletedSessions > p.TotalSessions {
		return integrity("check violation: plan %d completed %d of %d", p.ID, p.CompletedSessions, p.TotalSessions)
	}
	return nil
}

func (r *planRepo) GetPlan(_ context.Context, id int64) (*entity.SessionPlan, error) {
	var out *entity.SessionPlan
	err := r.read(func(st *state) error {
		out = st.plans.get(id)
		return nil
	})
	return out, err
}

func (r *planRepo) GetPlanForUpdate(ctx context.Context, id int64) (*entity.SessionPlan, error) {
	return r.GetPlan(ctx, id)
}

func (r *planRepo) UpdatePlan(_ context.Context, p *entity.SessionPlan) error {
	return r.write(func(st *state) error {
		if !st.plans.has(p.ID) {
			return missing("session plan", p.ID)
		}
		if err := checkPlanCounts(p); err != nil {
			return err
		}
		st.plans.put(p.ID, p)
		return nil
	})
}

func (r *planRepo) listPlans(keep func(*entity.SessionPlan) bool) ([]*entity.SessionPlan, error) {
	var out []*entity.SessionPlan
	err := r.read(func(st *state) error {
		out = st.plans.filter(keep)
		return nil
	})
	return out, err
}

func (r *planRepo) ListPlansBySale(_ context.Context, saleID int64) ([]*entity.SessionPlan, error) {
	return r.listPlans(func(p *entity.SessionPlan) bool { return p.OriginSaleID == saleID })
}

func (r *planRepo) ListPlansByPatient(_ context.Context, patientID int64) ([]*entity.SessionPlan, error) {
	return r.listPlans(func(p *entity.SessionPlan) bool { return p.PatientID == patientID })
}

func (r *planRepo) ListActivePlans(_ context.Context, patientID, planTypeID int64) ([]*entity.SessionPlan, error) {
	out, err := r.listPlans(func(p *entity.SessionPlan) bool {
		return p.PatientID == patientID && p.PlanTypeID == planTypeID && p.State == entity.PlanStateActive
	})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

// checkSession aplica UNIQUE (plan_id, nro) y UNIQUE linked_appointment_id.
func checkSession(st *state, s *entity.PlanSession) error {
	if !st.plans.has(s.PlanID) {
		return fk("session plan", s.PlanID)
	}
	for _, other := range st.sessions.rows {
		if other.ID == s.ID {
			continue
		}
		if other.PlanID == s.PlanID && other.Number == s.Number {
			return integrity("unique violation: plan %d session number %d", s.PlanID, s.Number)
		}
		if s.AppointmentID != nil && other.AppointmentID != nil && *other.AppointmentID == *s.AppointmentID {
			return integrity("unique violation: appointment %d already linked to session %d", *s.AppointmentID, other.ID)
		}
	}
	if s.AppointmentID != nil && !st.appointments.has(*s.AppointmentID) {
		return fk("appointment", *s.AppointmentID)
	}
	return nil
}

func (r *planRepo) CreateSession(_ context.Context, s *entity.PlanSession) error {
	return r.write(func(st *state) error {
		s.ID = 0
		if err := checkSession(st, s); err != nil {
			return err
		}
		s.ID = st.sessions.next()
		st.sessions.put(s.ID, s)
		return nil
	})
}

func (r *planRepo) GetSession(_ context.Context, id int64) (*entity.PlanSession, error) {
	var out *entity.PlanSession
	err := r.read(func(st *state) error {
		out = st.sessions.get(id)
		return nil
	})
	return out, err
}

func (r *planRepo) GetSessionForUpdate(ctx context.Context, id int64) (*entity.PlanSession, error) {
	return r.GetSession(ctx, id)
}

func (r *planRepo) UpdateSession(_ context.Context, s *entity.PlanSession) error {
	return r.write(func(st *state) error {
		if !st.sessions.has(s.ID) {
			return missing("plan session", s.ID)
		}
		if err := checkSession(st, s); err != nil {
			return err
		}
		st.sessions.put(s.ID, s)
		return nil
	})
}

func (r *planRepo) ListSessions(_ context.Context, planID int64) ([]*entity.PlanSession, error) {
	var out []*entity.PlanSession
	err := r.read(func(st *state) error {
		out = st.sessions.filter(func(s *entity.PlanSession) bool { return s.PlanID == planID })
		sort.SliceStable(out, func(i, j int) bool { return out[i].Number < out[j].Number })
		return nil
	})
	return out, err
}

type appointmentRepo struct{ *base }

// checkAppointment aplica el XOR de destinos y UNIQUE linked_session_id.
func checkAppointment(st *state, a *entity.Appointment) error {
	if a.TargetCount() != 1 {
		return integrity("check violation: appointment needs exactly one of item, plan type, legacy product")
	}
	if !st.patients.has(a.PatientID) {
		return fk("patient", a.PatientID)
	}
	if !st.professionals.has(a.ProfessionalID) {
		return fk("professional", a.ProfessionalID)
	}
	if a.ItemID != nil && !st.items.has(*a.ItemID) {
		return fk("item", *a.ItemID)
	}
	if a.PlanTypeID != nil && !st.planTypes.has(*a.PlanTypeID) {
		return fk("plan_type", *a.PlanTypeID)
	}
	if a.SessionID == nil {
		return nil
	}
	if !st.sessions.has(*a.SessionID) {
		return fk("plan session", *a.SessionID)
	}
	for _, other := range st.appointments.rows {
		if other.ID != a.ID && other.SessionID != nil && *other.SessionID == *a.SessionID {
			return integrity("unique violation: session %d already linked to appointment %d", *a.SessionID, other.ID)
		}
	}
	return nil
}

func (r *appointmentRepo) Create(_ context.Context, a *entity.Appointment) error {
	return r.write(func(st *state) error {
		a.ID = 0
		if err := checkAppointment(st, a); err != nil {
			return err
		}
		a.ID = st.appointments.next()
		st.appointments.put(a.ID, a)
		return nil
	})
}

func (r *appointmentRepo) GetByID(_ context.Context, id int64) (*entity.Appointment, error) {
	var out *entity.Appointment
	err := r.read(func(st *state) error {
		out = st.appointments.get(id)
		return nil
	})
	return out, err
}

func (r *appointmentRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Appointment, error) {
	return r.GetByID(ctx, id)
}

func (r *appointmentRepo) Update(_ context.Context, a *entity.Appointment) error {
	return r.write(func(st *state) error {
		if !st.appointments.has(a.ID) {
			return missing("appointment", a.ID)
		}
		if err := checkAppointment(st, a); err != nil {
			return err
		}
		st.appointments.put(a.ID, a)
		return nil
	})
}

func (r *appointmentRepo) Delete(_ context.Context, id int64) error {
	return r.write(func(st *state) error {
		if !st.appointments.has(id) {
			return missing("appointment", id)
		}
		for _, s := range st.sessions.rows {
			if s.AppointmentID != nil && *s.AppointmentID == id {
				return integrity("foreign key violation: appointment %d is linked to session %d", id, s.ID)
			}
		}
		delete(st.appointments.rows, id)
		return nil
	})
}

func (r *appointmentRepo) List(_ context.Context, f repository.AppointmentFilter) ([]*entity.Appointment, error) {
	var out []*entity.Appointment
	err := r.read(func(st *state) error {
		out = st.appointments.filter(func(a *entity.Appointment) bool {
			if f.PatientID != nil && a.PatientID != *f.PatientID {
				return false
			}
			if f.ProfessionalID != nil && a.ProfessionalID != *f.ProfessionalID {
				return false
			}
			if f.From != nil && a.Start.Before(*f.From) {
				return false
			}
			return f.To == nil || a.Start.Before(*f.To)
		})
		sort.SliceStable(out, func(i, j int) bool {
			if !out[i].Start.Equal(out[j].Start) {
				return out[i].Start.Before(out[j].Start)
			}
			return out[i].ID < out[j].ID
		})
		out = page(out, f.Limit, f.Offset)
		return nil
	})
	return out, err
}
