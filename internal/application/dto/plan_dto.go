package dto

import "time"

// PlanSessionResponse sesión de un plan.
type PlanSessionResponse struct {
	ID             int64      `json:"id"`
	Number         int        `json:"number"`
	State          string     `json:"state"`
	ScheduledAt    *time.Time `json:"scheduled_at,omitempty"`
	ActualAt       *time.Time `json:"actual_at,omitempty"`
	AppointmentID  *int64     `json:"appointment_id,omitempty"`
	ProfessionalID *int64     `json:"professional_id,omitempty"`
	ApparatusID    *int64     `json:"apparatus_id,omitempty"`
	Notes          string     `json:"notes"`
}

// PlanResponse plan de sesiones con su progreso.
type PlanResponse struct {
	ID                int64                 `json:"id"`
	PatientID         int64                 `json:"patient_id"`
	OriginSaleID      int64                 `json:"origin_sale_id"`
	OriginSaleLineID  int64                 `json:"origin_sale_line_id"`
	PlanTypeID        int64                 `json:"plan_type_id"`
	ItemID            int64                 `json:"item_id"`
	TotalSessions     int                   `json:"total_sessions"`
	CompletedSessions int                   `json:"completed_sessions"`
	State             string                `json:"state"`
	StartDate         time.Time             `json:"start_date"`
	Notes             string                `json:"notes"`
	Sessions          []PlanSessionResponse `json:"sessions,omitempty"`
}

// CompleteSessionRequest marca una sesión como realizada.
type CompleteSessionRequest struct {
	ActualAt       *time.Time `json:"actual_at"`
	ProfessionalID *int64     `json:"professional_id" validate:"omitempty,gt=0"`
	ApparatusID    *int64     `json:"apparatus_id" validate:"omitempty,gt=0"`
	Notes          string     `json:"notes" validate:"max=1000"`
}
