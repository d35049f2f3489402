package entity

import "time"

// Patient paciente de la clínica.
type Patient struct {
	ID        int64
	FirstName string
	LastName  string
	SearchKey string
	Document  string
	Phone     string
	Email     string
	BirthDate *time.Time
	CityID    *int64
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName nombre para mostrar.
func (p *Patient) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// Professional profesional que atiende turnos y ventas.
type Professional struct {
	ID        int64
	Name      string
	Specialty string
	Active    bool
	CreatedAt time.Time
}

// Supplier proveedor de compras.
type Supplier struct {
	ID        int64
	Name      string
	TaxID     string
	Phone     string
	Active    bool
	CreatedAt time.Time
}

// Clinic sede de la clínica.
type Clinic struct {
	ID      int64
	Name    string
	Address string
	CityID  *int64
	Active  bool
}

// Department catálogo geográfico (departamento).
type Department struct {
	ID   int64
	Name string
}

// City catálogo geográfico (ciudad).
type City struct {
	ID           int64
	DepartmentID int64
	Name         string
}
