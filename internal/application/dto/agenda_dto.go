package dto

import "time"

// CreateAppointmentRequest alta de turno. Exactamente uno de ItemID, PlanTypeID, LegacyProductID.
type CreateAppointmentRequest struct {
	PatientID       int64     `json:"patient_id" validate:"required,gt=0"`
	ProfessionalID  int64     `json:"professional_id" validate:"required,gt=0"`
	Start           time.Time `json:"start" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"omitempty,min=5,max=720"`
	ItemID          *int64    `json:"item_id" validate:"omitempty,gt=0"`
	PlanTypeID      *int64    `json:"plan_type_id" validate:"omitempty,gt=0"`
	LegacyProductID *int64    `json:"legacy_product_id" validate:"omitempty,gt=0"`
	Observations    string    `json:"observations" validate:"max=1000"`
}

// UpdateAppointmentRequest reprogramación o edición de un turno abierto.
type UpdateAppointmentRequest struct {
	ProfessionalID  *int64     `json:"professional_id" validate:"omitempty,gt=0"`
	Start           *time.Time `json:"start"`
	DurationMinutes *int       `json:"duration_minutes" validate:"omitempty,min=5,max=720"`
	Observations    *string    `json:"observations" validate:"omitempty,max=1000"`
}

// AppointmentFilterRequest filtros de agenda.
type AppointmentFilterRequest struct {
	PageRequest
	PatientID      *int64     `query:"patient_id"`
	ProfessionalID *int64     `query:"professional_id"`
	From           *time.Time `query:"from"`
	To             *time.Time `query:"to"`
}

// AppointmentResponse salida de un turno.
type AppointmentResponse struct {
	ID              int64     `json:"id"`
	PatientID       int64     `json:"patient_id"`
	ProfessionalID  int64     `json:"professional_id"`
	Start           time.Time `json:"start"`
	DurationMinutes int       `json:"duration_minutes"`
	State           string    `json:"state"`
	ItemID          *int64    `json:"item_id,omitempty"`
	PlanTypeID      *int64    `json:"plan_type_id,omitempty"`
	LegacyProductID *int64    `json:"legacy_product_id,omitempty"`
	SessionID       *int64    `json:"session_id,omitempty"`
	Observations    string    `json:"observations"`
}
