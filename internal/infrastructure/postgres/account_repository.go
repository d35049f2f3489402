package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
	"github.com/jhoicas/clinica-api/pkg/textnorm"
)

var _ repository.AccountRepository = (*AccountRepo)(nil)

// AccountRepo pacientes, profesionales, proveedores, clínicas y geografía sobre PostgreSQL.
type AccountRepo struct {
	q Querier
}

// NewAccountRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAccountRepository(q Querier) *AccountRepo {
	return &AccountRepo{q: q}
}

// ── Pacientes ──────────────────────────────────────────────────────────────

const patientSelect = `
	SELECT id, first_name, last_name, search_key, document, phone, email, birth_date, city_id, active,
	       created_at, updated_at
	FROM patients`

func scanPatient(row pgx.Row) (*entity.Patient, error) {
	var p entity.Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.SearchKey, &p.Document, &p.Phone, &p.Email,
		&p.BirthDate, &p.CityID, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *AccountRepo) CreatePatient(ctx context.Context, p *entity.Patient) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO patients (first_name, last_name, search_key, document, phone, email, birth_date, city_id,
		                      active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		p.FirstName, p.LastName, p.SearchKey, p.Document, p.Phone, p.Email, p.BirthDate, p.CityID,
		p.Active, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	return mapError("insert patient", err)
}

func (r *AccountRepo) UpdatePatient(ctx context.Context, p *entity.Patient) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE patients SET first_name = $2, last_name = $3, search_key = $4, document = $5, phone = $6,
		       email = $7, birth_date = $8, city_id = $9, active = $10, updated_at = $11
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.SearchKey, p.Document, p.Phone, p.Email, p.BirthDate, p.CityID,
		p.Active, p.UpdatedAt)
	if err != nil {
		return mapError("update patient", err)
	}
	return affected(tag, "patient", p.ID)
}

func (r *AccountRepo) GetPatient(ctx context.Context, id int64) (*entity.Patient, error) {
	p, err := scanPatient(r.q.QueryRow(ctx, patientSelect+` WHERE id = $1`, id))
	return noRows(p, "get patient", err)
}

func (r *AccountRepo) ListPatients(ctx context.Context, f repository.AccountFilter) ([]*entity.Patient, error) {
	rows, err := r.q.Query(ctx, patientSelect+`
		WHERE ($1 = '' OR search_key LIKE '%' || $1 || '%')
		  AND (NOT $2 OR active)
		ORDER BY search_key, id
		LIMIT $3 OFFSET $4`, f.Search, f.OnlyActive, limitArg(f.Limit), f.Offset)
	if err != nil {
		return nil, mapError("list patients", err)
	}
	defer rows.Close()
	var list []*entity.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		list = append(list, p)
	}
	return list, mapError("list patients", rows.Err())
}

// pageByName filtra por búsqueda sin acentos, ordena por clave normalizada y pagina. Profesionales
// y proveedores no guardan search_key: son tablas chicas y se filtran en memoria.
func pageByName[T any](rows []T, name func(T) string, f repository.AccountFilter) []T {
	out := rows[:0]
	for _, row := range rows {
		if f.Search == "" || textnorm.Contains(name(row), f.Search) {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return textnorm.Key(name(out[i])) < textnorm.Key(name(out[j])) })
	if f.Offset >= len(out) {
		return []T{}
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// ── Profesionales ──────────────────────────────────────────────────────────

func (r *AccountRepo) CreateProfessional(ctx context.Context, p *entity.Professional) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO professionals (name, specialty, active, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		p.Name, p.Specialty, p.Active, p.CreatedAt,
	).Scan(&p.ID)
	return mapError("insert professional", err)
}

func (r *AccountRepo) UpdateProfessional(ctx context.Context, p *entity.Professional) error {
	tag, err := r.q.Exec(ctx, `UPDATE professionals SET name = $2, specialty = $3, active = $4 WHERE id = $1`,
		p.ID, p.Name, p.Specialty, p.Active)
	if err != nil {
		return mapError("update professional", err)
	}
	return affected(tag, "professional", p.ID)
}

func (r *AccountRepo) GetProfessional(ctx context.Context, id int64) (*entity.Professional, error) {
	var p entity.Professional
	err := r.q.QueryRow(ctx, `SELECT id, name, specialty, active, created_at FROM professionals WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Specialty, &p.Active, &p.CreatedAt)
	return noRows(&p, "get professional", err)
}

func (r *AccountRepo) ListProfessionals(ctx context.Context, f repository.AccountFilter) ([]*entity.Professional, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, specialty, active, created_at FROM professionals
		WHERE (NOT $1 OR active) ORDER BY id`, f.OnlyActive)
	if err != nil {
		return nil, mapError("list professionals", err)
	}
	defer rows.Close()
	var list []*entity.Professional
	for rows.Next() {
		var p entity.Professional
		if err := rows.Scan(&p.ID, &p.Name, &p.Specialty, &p.Active, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan professional: %w", err)
		}
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list professionals", err)
	}
	return pageByName(list, func(p *entity.Professional) string { return p.Name }, f), nil
}

// ── Proveedores ────────────────────────────────────────────────────────────

func (r *AccountRepo) CreateSupplier(ctx context.Context, s *entity.Supplier) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO suppliers (name, tax_id, phone, active, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		s.Name, s.TaxID, s.Phone, s.Active, s.CreatedAt,
	).Scan(&s.ID)
	return mapError("insert supplier", err)
}

func (r *AccountRepo) UpdateSupplier(ctx context.Context, s *entity.Supplier) error {
	tag, err := r.q.Exec(ctx, `UPDATE suppliers SET name = $2, tax_id = $3, phone = $4, active = $5 WHERE id = $1`,
		s.ID, s.Name, s.TaxID, s.Phone, s.Active)
	if err != nil {
		return mapError("update supplier", err)
	}
	return affected(tag, "supplier", s.ID)
}

func (r *AccountRepo) GetSupplier(ctx context.Context, id int64) (*entity.Supplier, error) {
	var s entity.Supplier
	err := r.q.QueryRow(ctx, `SELECT id, name, tax_id, phone, active, created_at FROM suppliers WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.TaxID, &s.Phone, &s.Active, &s.CreatedAt)
	return noRows(&s, "get supplier", err)
}

func (r *AccountRepo) ListSuppliers(ctx context.Context, f repository.AccountFilter) ([]*entity.Supplier, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, tax_id, phone, active, created_at FROM suppliers
		WHERE (NOT $1 OR active) ORDER BY id`, f.OnlyActive)
	if err != nil {
		return nil, mapError("list suppliers", err)
	}
	defer rows.Close()
	var list []*entity.Supplier
	for rows.Next() {
		var s entity.Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.TaxID, &s.Phone, &s.Active, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		list = append(list, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list suppliers", err)
	}
	return pageByName(list, func(s *entity.Supplier) string { return s.Name }, f), nil
}

// ── Clínicas ───────────────────────────────────────────────────────────────

func (r *AccountRepo) CreateClinic(ctx context.Context, c *entity.Clinic) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO clinics (name, address, city_id, active) VALUES ($1, $2, $3, $4) RETURNING id`,
		c.Name, c.Address, c.CityID, c.Active,
	).Scan(&c.ID)
	return mapError("insert clinic", err)
}

func (r *AccountRepo) UpdateClinic(ctx context.Context, c *entity.Clinic) error {
	tag, err := r.q.Exec(ctx, `UPDATE clinics SET name = $2, address = $3, city_id = $4, active = $5 WHERE id = $1`,
		c.ID, c.Name, c.Address, c.CityID, c.Active)
	if err != nil {
		return mapError("update clinic", err)
	}
	return affected(tag, "clinic", c.ID)
}

func (r *AccountRepo) GetClinic(ctx context.Context, id int64) (*entity.Clinic, error) {
	var c entity.Clinic
	err := r.q.QueryRow(ctx, `SELECT id, name, address, city_id, active FROM clinics WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Address, &c.CityID, &c.Active)
	return noRows(&c, "get clinic", err)
}

func (r *AccountRepo) ListClinics(ctx context.Context) ([]*entity.Clinic, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, address, city_id, active FROM clinics ORDER BY id`)
	if err != nil {
		return nil, mapError("list clinics", err)
	}
	defer rows.Close()
	var list []*entity.Clinic
	for rows.Next() {
		var c entity.Clinic
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.CityID, &c.Active); err != nil {
			return nil, fmt.Errorf("scan clinic: %w", err)
		}
		list = append(list, &c)
	}
	return list, mapError("list clinics", rows.Err())
}

// ── Geografía ──────────────────────────────────────────────────────────────

func (r *AccountRepo) CreateDepartment(ctx context.Context, d *entity.Department) error {
	err := r.q.QueryRow(ctx, `INSERT INTO departments (name) VALUES ($1) RETURNING id`, d.Name).Scan(&d.ID)
	return mapError("insert department", err)
}

func (r *AccountRepo) CreateCity(ctx context.Context, c *entity.City) error {
	err := r.q.QueryRow(ctx, `INSERT INTO cities (department_id, name) VALUES ($1, $2) RETURNING id`,
		c.DepartmentID, c.Name,
	).Scan(&c.ID)
	return mapError("insert city", err)
}

func (r *AccountRepo) GetCity(ctx context.Context, id int64) (*entity.City, error) {
	var c entity.City
	err := r.q.QueryRow(ctx, `SELECT id, department_id, name FROM cities WHERE id = $1`, id).
		Scan(&c.ID, &c.DepartmentID, &c.Name)
	return noRows(&c, "get city", err)
}

func (r *AccountRepo) ListCities(ctx context.Context, departmentID *int64) ([]*entity.City, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, department_id, name FROM cities
		WHERE ($1::bigint IS NULL OR department_id = $1)
		ORDER BY name, id`, departmentID)
	if err != nil {
		return nil, mapError("list cities", err)
	}
	defer rows.Close()
	var list []*entity.City
	for rows.Next() {
		var c entity.City
		if err := rows.Scan(&c.ID, &c.DepartmentID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		list = append(list, &c)
	}
	return list, mapError("list cities", rows.Err())
}
