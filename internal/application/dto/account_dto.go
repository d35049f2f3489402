package dto

import "time"

// PatientRequest alta/modificación de paciente.
type PatientRequest struct {
	FirstName string     `json:"first_name" validate:"required,notblank,max=100"`
	LastName  string     `json:"last_name" validate:"max=100"`
	Document  string     `json:"document" validate:"max=30"`
	Phone     string     `json:"phone" validate:"max=40"`
	Email     string     `json:"email" validate:"omitempty,email,max=150"`
	BirthDate *time.Time `json:"birth_date"`
	CityID    *int64     `json:"city_id" validate:"omitempty,gt=0"`
	Active    *bool      `json:"active"`
}

// PatientResponse salida de paciente.
type PatientResponse struct {
	ID        int64      `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	FullName  string     `json:"full_name"`
	Document  string     `json:"document"`
	Phone     string     `json:"phone"`
	Email     string     `json:"email"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	CityID    *int64     `json:"city_id,omitempty"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
}

// ProfessionalRequest alta/modificación de profesional.
type ProfessionalRequest struct {
	Name      string `json:"name" validate:"required,notblank,max=150"`
	Specialty string `json:"specialty" validate:"max=100"`
	Active    *bool  `json:"active"`
}

// ProfessionalResponse salida de profesional.
type ProfessionalResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Active    bool   `json:"active"`
}

// SupplierRequest alta/modificación de proveedor.
type SupplierRequest struct {
	Name   string `json:"name" validate:"required,notblank,max=150"`
	TaxID  string `json:"tax_id" validate:"max=30"`
	Phone  string `json:"phone" validate:"max=40"`
	Active *bool  `json:"active"`
}

// SupplierResponse salida de proveedor.
type SupplierResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	TaxID  string `json:"tax_id"`
	Phone  string `json:"phone"`
	Active bool   `json:"active"`
}

// ClinicRequest alta/modificación de clínica.
type ClinicRequest struct {
	Name    string `json:"name" validate:"required,notblank,max=150"`
	Address string `json:"address" validate:"max=250"`
	CityID  *int64 `json:"city_id" validate:"omitempty,gt=0"`
	Active  *bool  `json:"active"`
}

// ClinicResponse salida de clínica.
type ClinicResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	CityID  *int64 `json:"city_id,omitempty"`
	Active  bool   `json:"active"`
}

// AccountFilterRequest filtros comunes de listados de cuentas.
type AccountFilterRequest struct {
	PageRequest
	Search     string `query:"search"`
	OnlyActive bool   `query:"only_active"`
}

// DepartmentRequest alta de departamento.
type DepartmentRequest struct {
	Name string `json:"name" validate:"required,notblank,max=100"`
}

// CityRequest alta de ciudad.
type CityRequest struct {
	DepartmentID int64  `json:"department_id" validate:"required,gt=0"`
	Name         string `json:"name" validate:"required,notblank,max=100"`
}

// GeoResponse salida de departamento o ciudad.
type GeoResponse struct {
	ID           int64  `json:"id"`
	DepartmentID int64  `json:"department_id,omitempty"`
	Name         string `json:"name"`
}
