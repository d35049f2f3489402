package accounts

import (
	"context"

	"github.com/jhoicas/clinica-api/internal/application/audit"
	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/domain"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
)

// SaveProfessional crea (id == 0) o actualiza un profesional.
func (uc *UseCase) SaveProfessional(ctx context.Context, id int64, in dto.ProfessionalRequest) (*dto.ProfessionalResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	ctx = audit.BeginCommand(ctx)
	var out *dto.ProfessionalResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		p := &entity.Professional{Active: true, CreatedAt: uc.clock.Now()}
		var before interface{}
		if id != 0 {
			cur, err := r.Accounts.GetProfessional(ctx, id)
			if err != nil {
				return err
			}
			if cur == nil {
				return domain.ErrNotFound.WithMessage("professional %d not found", id)
			}
			before = toProfessionalResponse(cur)
			p = cur
		}
		p.Name = in.Name
		p.Specialty = in.Specialty
		if in.Active != nil {
			p.Active = *in.Active
		}
		if id == 0 {
			if err := r.Accounts.CreateProfessional(ctx, p); err != nil {
				return err
			}
		} else if err := r.Accounts.UpdateProfessional(ctx, p); err != nil {
			return err
		}
		resp := toProfessionalResponse(p)
		if err := uc.audit.Record(ctx, r.Audit, audit.ModuleAccounts, actionFor(id), "professional", p.ID, before, resp); err != nil {
			return err
		}
		out = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetProfessional devuelve un profesional.
func (uc *UseCase) GetProfessional(ctx context.Context, id int64) (*dto.ProfessionalResponse, error) {
	p, err := uc.repo.GetProfessional(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound.WithMessage("professional %d not found", id)
	}
	out := toProfessionalResponse(p)
	return &out, nil
}

// ListProfessionals lista profesionales por nombre.
func (uc *UseCase) ListProfessionals(ctx context.Context, in dto.AccountFilterRequest) ([]dto.ProfessionalResponse, error) {
	f, err := toFilter(in)
	if err != nil {
		return nil, err
	}
	list, err := uc.repo.ListProfessionals(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProfessionalResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toProfessionalResponse(p))
	}
	return out, nil
}

// SaveSupplier crea (id == 0) o actualiza un proveedor.
func (uc *UseCase) SaveSupplier(ctx context.Context, id int64, in dto.SupplierRequest) (*dto.SupplierResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	ctx = audit.BeginCommand(ctx)
	var out *dto.SupplierResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		s := &entity.Supplier{Active: true, CreatedAt: uc.clock.Now()}
		var before interface{}
		if id != 0 {
			cur, err := r.Accounts.GetSupplier(ctx, id)
			if err != nil {
				return err
			}
			if cur == nil {
				return domain.ErrNotFound.WithMessage("supplier %d not found", id)
			}
			before = toSupplierResponse(cur)
			s = cur
		}
		s.Name = in.Name
		s.TaxID = in.TaxID
		s.Phone = in.Phone
		if in.Active != nil {
			s.Active = *in.Active
		}
		if id == 0 {
			if err := r.Accounts.CreateSupplier(ctx, s); err != nil {
				return err
			}
		} else if err := r.Accounts.UpdateSupplier(ctx, s); err != nil {
			return err
		}
		resp := toSupplierResponse(s)
		if err := uc.audit.Record(ctx, r.Audit, audit.ModuleAccounts, actionFor(id), "supplier", s.ID, before, resp); err != nil {
			return err
		}
		out = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetSupplier devuelve un proveedor.
func (uc *UseCase) GetSupplier(ctx context.Context, id int64) (*dto.SupplierResponse, error) {
	s, err := uc.repo.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound.WithMessage("supplier %d not found", id)
	}
	out := toSupplierResponse(s)
	return &out, nil
}

// ListSuppliers lista proveedores por nombre.
func (uc *UseCase) ListSuppliers(ctx context.Context, in dto.AccountFilterRequest) ([]dto.SupplierResponse, error) {
	f, err := toFilter(in)
	if err != nil {
		return nil, err
	}
	list, err := uc.repo.ListSuppliers(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSupplierResponse(s))
	}
	return out, nil
}

// SaveClinic crea (id == 0) o actualiza una clínica.
func (uc *UseCase) SaveClinic(ctx context.Context, id int64, in dto.ClinicRequest) (*dto.ClinicResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	ctx = audit.BeginCommand(ctx)
	var out *dto.ClinicResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := checkCity(ctx, r, in.CityID); err != nil {
			return err
		}
		c := &entity.Clinic{Active: true}
		var before interface{}
		if id != 0 {
			cur, err := r.Accounts.GetClinic(ctx, id)
			if err != nil {
				return err
			}
			if cur == nil {
				return domain.ErrNotFound.WithMessage("clinic %d not found", id)
			}
			before = toClinicResponse(cur)
			c = cur
		}
		c.Name = in.Name
		c.Address = in.Address
		c.CityID = in.CityID
		if in.Active != nil {
			c.Active = *in.Active
		}
		if id == 0 {
			if err := r.Accounts.CreateClinic(ctx, c); err != nil {
				return err
			}
		} else if err := r.Accounts.UpdateClinic(ctx, c); err != nil {
			return err
		}
		resp := toClinicResponse(c)
		if err := uc.audit.Record(ctx, r.Audit, audit.ModuleAccounts, actionFor(id), "clinic", c.ID, before, resp); err != nil {
			return err
		}
		out = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListClinics lista las sedes.
func (uc *UseCase) ListClinics(ctx context.Context) ([]dto.ClinicResponse, error) {
	list, err := uc.repo.ListClinics(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ClinicResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toClinicResponse(c))
	}
	return out, nil
}

func actionFor(id int64) string {
	if id == 0 {
		return entity.AuditCreate
	}
	return entity.AuditUpdate
}

func toProfessionalResponse(p *entity.Professional) dto.ProfessionalResponse {
	return dto.ProfessionalResponse{ID: p.ID, Name: p.Name, Specialty: p.Specialty, Active: p.Active}
}

func toSupplierResponse(s *entity.Supplier) dto.SupplierResponse {
	return dto.SupplierResponse{ID: s.ID, Name: s.Name, TaxID: s.TaxID, Phone: s.Phone, Active: s.Active}
}

func toClinicResponse(c *entity.Clinic) dto.ClinicResponse {
	return dto.ClinicResponse{ID: c.ID, Name: c.Name, Address: c.Address, CityID: c.CityID, Active: c.Active}
}
