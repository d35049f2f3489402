package accounts

import (
	"context"

	"github.com/jhoicas/clinica-api/internal/application/audit"
	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/application/ports"
	"github.com/jhoicas/clinica-api/internal/domain"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
	"github.com/jhoicas/clinica-api/pkg/clock"
	"github.com/jhoicas/clinica-api/pkg/textnorm"
)

// UseCase registro de cuentas: pacientes, profesionales, proveedores, clínicas y geografía.
// No hay borrado físico; la baja es Active=false.
type UseCase struct {
	tx    ports.TxRunner
	repo  repository.AccountRepository
	audit *audit.Recorder
	clock clock.Clock
}

// NewUseCase construye el caso de uso de cuentas.
func NewUseCase(tx ports.TxRunner, repo repository.AccountRepository, rec *audit.Recorder, c clock.Clock) *UseCase {
	return &UseCase{tx: tx, repo: repo, audit: rec, clock: c}
}

// CreatePatient da de alta un paciente (activo salvo que se indique lo contrario).
func (uc *UseCase) CreatePatient(ctx context.Context, in dto.PatientRequest) (*dto.PatientResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	ctx = audit.BeginCommand(ctx)
	var out *dto.PatientResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := checkCity(ctx, r, in.CityID); err != nil {
			return err
		}
		now := uc.clock.Now()
		p := &entity.Patient{Active: true, CreatedAt: now}
		applyPatient(p, in)
		p.UpdatedAt = now
		if err := r.Accounts.CreatePatient(ctx, p); err != nil {
			return err
		}
		resp := toPatientResponse(p)
		if err := uc.audit.Created(ctx, r.Audit, audit.ModuleAccounts, "patient", p.ID, resp); err != nil {
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

// UpdatePatient reemplaza los datos del paciente.
func (uc *UseCase) UpdatePatient(ctx context.Context, id int64, in dto.PatientRequest) (*dto.PatientResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	return uc.mutatePatient(ctx, id, func(r repository.Repos, p *entity.Patient) error {
		if err := checkCity(ctx, r, in.CityID); err != nil {
			return err
		}
		applyPatient(p, in)
		return nil
	})
}

// DeactivatePatient baja lógica del paciente.
func (uc *UseCase) DeactivatePatient(ctx context.Context, id int64) (*dto.PatientResponse, error) {
	return uc.mutatePatient(ctx, id, func(_ repository.Repos, p *entity.Patient) error {
		p.Active = false
		return nil
	})
}

func (uc *UseCase) mutatePatient(ctx context.Context, id int64, fn func(r repository.Repos, p *entity.Patient) error) (*dto.PatientResponse, error) {
	ctx = audit.BeginCommand(ctx)
	var out *dto.PatientResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		p, err := r.Accounts.GetPatient(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound.WithMessage("patient %d not found", id)
		}
		before := toPatientResponse(p)
		if err := fn(r, p); err != nil {
			return err
		}
		p.UpdatedAt = uc.clock.Now()
		if err := r.Accounts.UpdatePatient(ctx, p); err != nil {
			return err
		}
		after := toPatientResponse(p)
		if err := uc.audit.Updated(ctx, r.Audit, audit.ModuleAccounts, "patient", id, before, after); err != nil {
			return err
		}
		out = &after
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetPatient devuelve un paciente.
func (uc *UseCase) GetPatient(ctx context.Context, id int64) (*dto.PatientResponse, error) {
	p, err := uc.repo.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound.WithMessage("patient %d not found", id)
	}
	out := toPatientResponse(p)
	return &out, nil
}

// ListPatients busca pacientes por nombre o documento sin distinguir acentos.
func (uc *UseCase) ListPatients(ctx context.Context, in dto.AccountFilterRequest) ([]dto.PatientResponse, error) {
	f, err := toFilter(in)
	if err != nil {
		return nil, err
	}
	list, err := uc.repo.ListPatients(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PatientResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPatientResponse(p))
	}
	return out, nil
}

func applyPatient(p *entity.Patient, in dto.PatientRequest) {
	p.FirstName = in.FirstName
	p.LastName = in.LastName
	p.Document = in.Document
	p.Phone = in.Phone
	p.Email = in.Email
	p.BirthDate = in.BirthDate
	p.CityID = in.CityID
	if in.Active != nil {
		p.Active = *in.Active
	}
	p.SearchKey = textnorm.Key(p.FullName() + " " + p.Document)
}

func checkCity(ctx context.Context, r repository.Repos, cityID *int64) error {
	if cityID == nil {
		return nil
	}
	c, err := r.Accounts.GetCity(ctx, *cityID)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrNotFound.WithMessage("city %d not found", *cityID)
	}
	return nil
}

func toFilter(in dto.AccountFilterRequest) (repository.AccountFilter, error) {
	if err := dto.Validate(in); err != nil {
		return repository.AccountFilter{}, err
	}
	in.DefaultPage()
	return repository.AccountFilter{
		Search:     textnorm.Key(in.Search),
		OnlyActive: in.OnlyActive,
		Limit:      in.Limit,
		Offset:     in.Offset,
	}, nil
}

func toPatientResponse(p *entity.Patient) dto.PatientResponse {
	return dto.PatientResponse{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		FullName:  p.FullName(),
		Document:  p.Document,
		Phone:     p.Phone,
		Email:     p.Email,
		BirthDate: p.BirthDate,
		CityID:    p.CityID,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
	}
}
