package repository

import (
	"context"
	"time"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
)

// AppointmentFilter filtros de agenda.
type AppointmentFilter struct {
	PatientID      *int64
	ProfessionalID *int64
	From, To       *time.Time
	Limit          int
	Offset         int
}

// AppointmentRepository puerto de persistencia de turnos.
type AppointmentRepository interface {
	Create(ctx context.Context, a *entity.Appointment) error
	GetByID(ctx context.Context, id int64) (*entity.Appointment, error)
	GetForUpdate(ctx context.Context, id int64) (*entity.Appointment, error)
	Update(ctx context.Context, a *entity.Appointment) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f AppointmentFilter) ([]*entity.Appointment, error)
}
