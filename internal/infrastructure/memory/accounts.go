package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
	"github.com/jhoicas/clinica-api/pkg/textnorm"
)

type accountRepo struct{ *base }

func checkCityRef(st *state, cityID *int64) error {
	if cityID != nil && !st.cities.has(*cityID) {
		return fk("city", *cityID)
	}
	return nil
}

func (r *accountRepo) CreatePatient(_ context.Context, p *entity.Patient) error {
	return r.write(func(st *state) error {
		if err := checkCityRef(st, p.CityID); err != nil {
			return err
		}
		p.ID = st.patients.next()
		st.patients.put(p.ID, p)
		return nil
	})
}

func (r *accountRepo) UpdatePatient(_ context.Context, p *entity.Patient) error {
	return r.write(func(st *state) error {
		if !st.patients.has(p.ID) {
			return missing("patient", p.ID)
		}
		if err := checkCityRef(st, p.CityID); err != nil {
			return err
		}
		st.patients.put(p.ID, p)
		return nil
	})
}

func (r *accountRepo) GetPatient(_ context.Context, id int64) (*entity.Patient, error) {
	var out *entity.Patient
	err := r.read(func(st *state) error {
		out = st.patients.get(id)
		return nil
	})
	return out, err
}

func (r *accountRepo) ListPatients(_ context.Context, f repository.AccountFilter) ([]*entity.Patient, error) {
	var out []*entity.Patient
	err := r.read(func(st *state) error {
		out = st.patients.filter(func(p *entity.Patient) bool {
			if f.OnlyActive && !p.Active {
				return false
			}
			return f.Search == "" || strings.Contains(p.SearchKey, f.Search)
		})
		sort.SliceStable(out, func(i, j int) bool { return out[i].SearchKey < out[j].SearchKey })
		out = page(out, f.Limit, f.Offset)
		return nil
	})
	return out, err
}

func (r *accountRepo) CreateProfessional(_ context.Context, p *entity.Professional) error {
	return r.write(func(st *state) error {
		p.ID = st.professionals.next()
		st.professionals.put(p.ID, p)
		return nil
	})
}

func (r *accountRepo) UpdateProfessional(_ context.Context, p *entity.Professional) error {
	return r.write(func(st *state) error {
		if !st.professionals.has(p.ID) {
			return missing("professional", p.ID)
		}
		st.professionals.put(p.ID, p)
		return nil
	})
}

func (r *accountRepo) GetProfessional(_ context.Context, id int64) (*entity.Professional, error) {
	var out *entity.Professional
	err := r.read(func(st *state) error {
		out = st.professionals.get(id)
		return nil
	})
	return out, err
}

func (r *accountRepo) ListProfessionals(_ context.Context, f repository.AccountFilter) ([]*entity.Professional, error) {
	var out []*entity.Professional
	err := r.read(func(st *state) error {
		out = st.professionals.filter(func(p *entity.Professional) bool {
			if f.OnlyActive && !p.Active {
				return false
			}
			return f.Search == "" || textnorm.Contains(p.Name, f.Search)
		})
		sort.SliceStable(out, func(i, j int) bool { return textnorm.Key(out[i].Name) < textnorm.Key(out[j].Name) })
		out = page(out, f.Limit, f.Offset)
		return nil
	})
	return out, err
}

func (r *accountRepo) CreateSupplier(_ context.Context, s *entity.Supplier) error {
	return r.write(func(st *state) error {
		s.ID = st.suppliers.next()
		st.suppliers.put(s.ID, s)
		return nil
	})
}

func (r *accountRepo) UpdateSupplier(_ context.Context, s *entity.Supplier) error {
	return r.write(func(st *state) error {
		if !st.suppliers.has(s.ID) {
			return missing("supplier", s.ID)
		}
		st.suppliers.put(s.ID, s)
		return nil
	})
}

func (r *accountRepo) GetSupplier(_ context.Context, id int64) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.read(func(st *state) error {
		out = st.suppliers.get(id)
		return nil
	})
	return out, err
}

func (r *accountRepo) ListSuppliers(_ context.Context, f repository.AccountFilter) ([]*entity.Supplier, error) {
	var out []*entity.Supplier
	err := r.read(func(st *state) error {
		out = st.suppliers.filter(func(s *entity.Supplier) bool {
			if f.OnlyActive && !s.Active {
				return false
			}
			return f.Search == "" || textnorm.Contains(s.Name, f.Search)
		})
		sort.SliceStable(out, func(i, j int) bool { return textnorm.Key(out[i].Name) < textnorm.Key(out[j].Name) })
		out = page(out, f.Limit, f.Offset)
		return nil
	})
	return out, err
}

func (r *accountRepo) CreateClinic(_ context.Context, c *entity.Clinic) error {
	return r.write(func(st *state) error {
		if err := checkCityRef(st, c.CityID); err != nil {
			return err
		}
		c.ID = st.clinics.next()
		st.clinics.put(c.ID, c)
		return nil
	})
}

func (r *accountRepo) UpdateClinic(_ context.Context, c *entity.Clinic) error {
	return r.write(func(st *state) error {
		if !st.clinics.has(c.ID) {
			return missing("clinic", c.ID)
		}
		if err := checkCityRef(st, c.CityID); err != nil {
			return err
		}
		st.clinics.put(c.ID, c)
		return nil
	})
}

func (r *accountRepo) GetClinic(_ context.Context, id int64) (*entity.Clinic, error) {
	var out *entity.Clinic
	err := r.read(func(st *state) error {
		out = st.clinics.get(id)
		return nil
	})
	return out, err
}

func (r *accountRepo) ListClinics(_ context.Context) ([]*entity.Clinic, error) {
	var out []*entity.Clinic
	err := r.read(func(st *state) error {
		out = st.clinics.all()
		return nil
	})
	return out, err
}

func (r *accountRepo) CreateDepartment(_ context.Context, d *entity.Department) error {
	return r.write(func(st *state) error {
		d.ID = st.departments.next()
		st.departments.put(d.ID, d)
		return nil
	})
}

func (r *accountRepo) CreateCity(_ context.Context, c *entity.City) error {
	return r.write(func(st *state) error {
		if !st.departments.has(c.DepartmentID) {
			return fk("department", c.DepartmentID)
		}
		c.ID = st.cities.next()
		st.cities.put(c.ID, c)
		return nil
	})
}

func (r *accountRepo) GetCity(_ context.Context, id int64) (*entity.City, error) {
	var out *entity.City
	err := r.read(func(st *state) error {
		out = st.cities.get(id)
		return nil
	})
	return out, err
}

func (r *accountRepo) ListCities(_ context.Context, departmentID *int64) ([]*entity.City, error) {
	var out []*entity.City
	err := r.read(func(st *state) error {
		out = st.cities.filter(func(c *entity.City) bool {
			return departmentID == nil || c.DepartmentID == *departmentID
		})
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return nil
	})
	return out, err
}

type userRepo struct{ *base }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	return r.write(func(st *state) error {
		for _, other := range st.users.rows {
			if other.Username == u.Username {
				return integrity("unique violation: username %q", u.Username)
			}
		}
		u.ID = st.users.next()
		st.users.put(u.ID, u)
		return nil
	})
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	var out *entity.User
	err := r.read(func(st *state) error {
		out = st.users.get(id)
		return nil
	})
	return out, err
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	var out *entity.User
	err := r.read(func(st *state) error {
		for _, u := range st.users.all() {
			if u.Username == username {
				out = u
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *userRepo) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	return r.write(func(st *state) error {
		u, ok := st.users.rows[id]
		if !ok {
			return missing("user", id)
		}
		u.PasswordHash = hash
		return nil
	})
}

func (r *userRepo) List(_ context.Context) ([]*entity.User, error) {
	var out []*entity.User
	err := r.read(func(st *state) error {
		out = st.users.all()
		sort.SliceStable(out, func(i, j int) bool { return out[i].Username < out[j].Username })
		return nil
	})
	return out, err
}
