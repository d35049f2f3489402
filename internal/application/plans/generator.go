package plans

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/clinica-api/internal/application/audit"
	"github.com/jhoicas/clinica-api/internal/domain"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
)

// ErrFractionalPlanQuantity un ítem que genera plan solo se vende en unidades enteras.
var ErrFractionalPlanQuantity = domain.Validation("FRACTIONAL_PLAN_QUANTITY", "plan items must be sold in whole units")

// SessionsFor total de sesiones que genera una línea: qty × (sessions_included del ítem o default del tipo).
func SessionsFor(item *entity.Item, pt *entity.PlanType, qty decimal.Decimal) (int, error) {
	if !qty.Equal(qty.Truncate(0)) || !qty.IsPositive() {
		return 0, ErrFractionalPlanQuantity.WithMessage("item %d: quantity %s is not a whole number", item.ID, qty)
	}
	per := pt.DefaultSessions
	if item.SessionsIncluded != nil {
		per = *item.SessionsIncluded
	}
	total := int(qty.IntPart()) * per
	if total < 1 {
		return 0, domain.ErrValidation.WithMessage("item %d generates no sessions", item.ID)
	}
	return total, nil
}

// GenerateInTx crea el plan de la línea de venta con N sesiones Scheduled numeradas 1..N.
func (l *Linker) GenerateInTx(ctx context.Context, r repository.Repos, sale *entity.Sale, line *entity.SaleLine, item *entity.Item, pt *entity.PlanType) (*entity.SessionPlan, []*entity.PlanSession, error) {
	total, err := SessionsFor(item, pt, line.Quantity)
	if err != nil {
		return nil, nil, err
	}
	now := l.clock.Now()
	plan := &entity.SessionPlan{
		PatientID:        sale.PatientID,
		OriginSaleID:     sale.ID,
		OriginSaleLineID: line.ID,
		PlanTypeID:       pt.ID,
		ItemID:           item.ID,
		TotalSessions:    total,
		State:            entity.PlanStateActive,
		StartDate:        sale.Date,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := r.Plans.CreatePlan(ctx, plan); err != nil {
		return nil, nil, err
	}
	sessions := make([]*entity.PlanSession, 0, total)
	for n := 1; n <= total; n++ {
		s := &entity.PlanSession{PlanID: plan.ID, Number: n, State: entity.SessionStateScheduled}
		if err := r.Plans.CreateSession(ctx, s); err != nil {
			return nil, nil, err
		}
		sessions = append(sessions, s)
	}
	if err := l.audit.Created(ctx, r.Audit, audit.ModulePlans, "session_plan", plan.ID, toPlanResponse(plan, sessions)); err != nil {
		return nil, nil, err
	}
	return plan, sessions, nil
}

// CancelForSaleInTx aplica la anulación de la venta a sus planes: cancela las sesiones no
// realizadas (liberando sus turnos) y deja intactas las realizadas. El plan queda Cancelled si
// no tenía sesiones realizadas y Completed en caso contrario; total_sessions no se modifica.
func (l *Linker) CancelForSaleInTx(ctx context.Context, r repository.Repos, saleID int64) ([]*entity.SessionPlan, error) {
	list, err := r.Plans.ListPlansBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	now := l.clock.Now()
	out := make([]*entity.SessionPlan, 0, len(list))
	for _, p := range list {
		plan, err := r.Plans.GetPlanForUpdate(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		sessions, err := r.Plans.ListSessions(ctx, plan.ID)
		if err != nil {
			return nil, err
		}
		planBefore := toPlanResponse(plan, sessions)
		for _, cs := range sessions {
			if cs.State == entity.SessionStateCompleted || cs.State == entity.SessionStateCancelled {
				continue
			}
			s, err := r.Plans.GetSessionForUpdate(ctx, cs.ID)
			if err != nil {
				return nil, err
			}
			if s.AppointmentID != nil {
				app, err := r.Appointments.GetForUpdate(ctx, *s.AppointmentID)
				if err != nil {
					return nil, err
				}
				if app != nil {
					app.SessionID = nil
					app.UpdatedAt = now
					if err := r.Appointments.Update(ctx, app); err != nil {
						return nil, err
					}
				}
				s.AppointmentID = nil
			}
			s.State = entity.SessionStateCancelled
			if err := r.Plans.UpdateSession(ctx, s); err != nil {
				return nil, err
			}
			*cs = *s
		}
		if plan.CompletedSessions == 0 {
			plan.State = entity.PlanStateCancelled
		} else {
			plan.State = entity.PlanStateCompleted
		}
		plan.UpdatedAt = now
		if err := r.Plans.UpdatePlan(ctx, plan); err != nil {
			return nil, err
		}
		if err := l.audit.Updated(ctx, r.Audit, audit.ModulePlans, "session_plan", plan.ID, planBefore, toPlanResponse(plan, sessions)); err != nil {
			return nil, err
		}
		out = append(out, plan)
	}
	return out, nil
}
