package repository

import (
	"context"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
)

// AccountFilter filtros comunes de los registros de cuentas.
type AccountFilter struct {
	Search     string
	OnlyActive bool
	Limit      int
	Offset     int
}

// AccountRepository puerto de persistencia de pacientes, profesionales, proveedores, clínicas y geografía.
type AccountRepository interface {
	CreatePatient(ctx context.Context, p *entity.Patient) error
	UpdatePatient(ctx context.Context, p *entity.Patient) error
	GetPatient(ctx context.Context, id int64) (*entity.Patient, error)
	ListPatients(ctx context.Context, f AccountFilter) ([]*entity.Patient, error)

	CreateProfessional(ctx context.Context, p *entity.Professional) error
	UpdateProfessional(ctx context.Context, p *entity.Professional) error
	GetProfessional(ctx context.Context, id int64) (*entity.Professional, error)
	ListProfessionals(ctx context.Context, f AccountFilter) ([]*entity.Professional, error)

	CreateSupplier(ctx context.Context, s *entity.Supplier) error
	UpdateSupplier(ctx context.Context, s *entity.Supplier) error
	GetSupplier(ctx context.Context, id int64) (*entity.Supplier, error)
	ListSuppliers(ctx context.Context, f AccountFilter) ([]*entity.Supplier, error)

	CreateClinic(ctx context.Context, c *entity.Clinic) error
	UpdateClinic(ctx context.Context, c *entity.Clinic) error
	GetClinic(ctx context.Context, id int64) (*entity.Clinic, error)
	ListClinics(ctx context.Context) ([]*entity.Clinic, error)

	CreateDepartment(ctx context.Context, d *entity.Department) error
	CreateCity(ctx context.Context, c *entity.City) error
	GetCity(ctx context.Context, id int64) (*entity.City, error)
	ListCities(ctx context.Context, departmentID *int64) ([]*entity.City, error)
}
