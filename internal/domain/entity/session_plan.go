package entity

import "time"

// Estados de plan de sesiones.
const (
	PlanStateActive    = "Active"
	PlanStateCompleted = "Completed"
	PlanStateCancelled = "Cancelled"
)

// Estados de sesión de plan.
const (
	SessionStateScheduled = "Scheduled"
	SessionStateCompleted = "Completed"
	SessionStateCancelled = "Cancelled"
	SessionStateNoShow    = "NoShow"
)

// SessionPlan curso de N sesiones generado desde una línea de venta.
type SessionPlan struct {
	ID                int64
	PatientID         int64
	OriginSaleID      int64
	OriginSaleLineID  int64
	PlanTypeID        int64
	ItemID            int64
	TotalSessions     int
	CompletedSessions int
	State             string
	StartDate         time.Time
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PlanSession sesión numerada 1..N de un plan. AppointmentID es exclusivo (1:1).
type PlanSession struct {
	ID             int64
	PlanID         int64
	Number         int
	State          string
	ScheduledAt    *time.Time
	ActualAt       *time.Time
	AppointmentID  *int64
	ProfessionalID *int64
	ApparatusID    *int64
	Notes          string
}

// Available indica si la sesión puede vincularse a un turno nuevo.
func (s *PlanSession) Available() bool {
	return s.State == SessionStateScheduled && s.AppointmentID == nil && s.ActualAt == nil
}
