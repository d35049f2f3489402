package entity

import "time"

// Estados de turno.
const (
	AppointmentStateScheduled = "Scheduled"
	AppointmentStateConfirmed = "Confirmed"
	AppointmentStateCompleted = "Completed"
	AppointmentStateCancelled = "Cancelled"
	AppointmentStateNoShow    = "NoShow"
)

// Appointment turno de agenda. Exactamente uno de ItemID, PlanTypeID, LegacyProductID es no nulo.
type Appointment struct {
	ID              int64
	PatientID       int64
	ProfessionalID  int64
	Start           time.Time
	DurationMinutes int
	State           string
	ItemID          *int64
	PlanTypeID      *int64
	LegacyProductID *int64
	SessionID       *int64
	Observations    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsOpen indica si el turno todavía puede modificarse.
func (a *Appointment) IsOpen() bool {
	return a.State == AppointmentStateScheduled || a.State == AppointmentStateConfirmed
}

// TargetCount cuántos de los tres destinos están informados (debe ser 1).
func (a *Appointment) TargetCount() int {
	n := 0
	for _, p := range []*int64{a.ItemID, a.PlanTypeID, a.LegacyProductID} {
		if p != nil {
			n++
		}
	}
	return n
}
