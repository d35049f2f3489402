package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
)

var _ repository.AppointmentRepository = (*AppointmentRepo)(nil)

// AppointmentRepo turnos de agenda sobre PostgreSQL. El CHECK appointments_single_target exige
// exactamente uno de item_id, plan_type_id, legacy_product_id.
type AppointmentRepo struct {
	q Querier
}

// NewAppointmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAppointmentRepository(q Querier) *AppointmentRepo {
	return &AppointmentRepo{q: q}
}

const appointmentSelect = `
	SELECT id, patient_id, professional_id, start_at, duration_minutes, state, item_id, plan_type_id,
	       legacy_product_id, session_id, observations, created_at, updated_at
	FROM appointments`

func scanAppointment(row pgx.Row) (*entity.Appointment, error) {
	var a entity.Appointment
	err := row.Scan(
		&a.ID, &a.PatientID, &a.ProfessionalID, &a.Start, &a.DurationMinutes, &a.State, &a.ItemID, &a.PlanTypeID,
		&a.LegacyProductID, &a.SessionID, &a.Observations, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create persiste un turno.
func (r *AppointmentRepo) Create(ctx context.Context, a *entity.Appointment) error {
	query := `
		INSERT INTO appointments (patient_id, professional_id, start_at, duration_minutes, state, item_id,
		                          plan_type_id, legacy_product_id, session_id, observations, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		a.PatientID, a.ProfessionalID, a.Start, a.DurationMinutes, a.State, a.ItemID,
		a.PlanTypeID, a.LegacyProductID, a.SessionID, a.Observations, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
	return mapError("insert appointment", err)
}

// GetByID obtiene un turno por ID.
func (r *AppointmentRepo) GetByID(ctx context.Context, id int64) (*entity.Appointment, error) {
	a, err := scanAppointment(r.q.QueryRow(ctx, appointmentSelect+` WHERE id = $1`, id))
	return noRows(a, "get appointment", err)
}

// GetForUpdate obtiene el turno bloqueando su fila.
func (r *AppointmentRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Appointment, error) {
	a, err := scanAppointment(r.q.QueryRow(ctx, appointmentSelect+` WHERE id = $1 FOR UPDATE`, id))
	return noRows(a, "get appointment for update", err)
}

// Update modifica el turno completo.
func (r *AppointmentRepo) Update(ctx context.Context, a *entity.Appointment) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE appointments SET patient_id = $2, professional_id = $3, start_at = $4, duration_minutes = $5,
		       state = $6, item_id = $7, plan_type_id = $8, legacy_product_id = $9, session_id = $10,
		       observations = $11, updated_at = $12
		WHERE id = $1`,
		a.ID, a.PatientID, a.ProfessionalID, a.Start, a.DurationMinutes, a.State, a.ItemID, a.PlanTypeID,
		a.LegacyProductID, a.SessionID, a.Observations, a.UpdatedAt)
	if err != nil {
		return mapError("update appointment", err)
	}
	return affected(tag, "appointment", a.ID)
}

// Delete borra el turno. Falla por FK si una sesión todavía lo referencia.
func (r *AppointmentRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return mapError("delete appointment", err)
	}
	return affected(tag, "appointment", id)
}

// List agenda ordenada por inicio.
func (r *AppointmentRepo) List(ctx context.Context, f repository.AppointmentFilter) ([]*entity.Appointment, error) {
	rows, err := r.q.Query(ctx, appointmentSelect+`
		WHERE ($1::bigint IS NULL OR patient_id = $1)
		  AND ($2::bigint IS NULL OR professional_id = $2)
		  AND ($3::timestamptz IS NULL OR start_at >= $3)
		  AND ($4::timestamptz IS NULL OR start_at < $4)
		ORDER BY start_at, id
		LIMIT $5 OFFSET $6`,
		f.PatientID, f.ProfessionalID, f.From, f.To, limitArg(f.Limit), f.Offset)
	if err != nil {
		return nil, mapError("list appointments", err)
	}
	defer rows.Close()
	var list []*entity.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		list = append(list, a)
	}
	return list, mapError("list appointments", rows.Err())
}
