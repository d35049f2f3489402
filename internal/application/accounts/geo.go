package accounts

import (
	"context"

	"github.com/jhoicas/clinica-api/internal/application/audit"
	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/domain/repository"
)

// CreateDepartment alta de departamento del catálogo geográfico.
func (uc *UseCase) CreateDepartment(ctx context.Context, in dto.DepartmentRequest) (*dto.GeoResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	ctx = audit.BeginCommand(ctx)
	var out *dto.GeoResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		d := &entity.Department{Name: in.Name}
		if err := r.Accounts.CreateDepartment(ctx, d); err != nil {
			return err
		}
		out = &dto.GeoResponse{ID: d.ID, Name: d.Name}
		return uc.audit.Created(ctx, r.Audit, audit.ModuleAccounts, "department", d.ID, out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCity alta de ciudad; el departamento debe existir (FK).
func (uc *UseCase) CreateCity(ctx context.Context, in dto.CityRequest) (*dto.GeoResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	ctx = audit.BeginCommand(ctx)
	var out *dto.GeoResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		c := &entity.City{DepartmentID: in.DepartmentID, Name: in.Name}
		if err := r.Accounts.CreateCity(ctx, c); err != nil {
			return err
		}
		out = &dto.GeoResponse{ID: c.ID, DepartmentID: c.DepartmentID, Name: c.Name}
		return uc.audit.Created(ctx, r.Audit, audit.ModuleAccounts, "city", c.ID, out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListCities lista ciudades, opcionalmente de un departamento.
func (uc *UseCase) ListCities(ctx context.Context, departmentID *int64) ([]dto.GeoResponse, error) {
	list, err := uc.repo.ListCities(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.GeoResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.GeoResponse{ID: c.ID, DepartmentID: c.DepartmentID, Name: c.Name})
	}
	return out, nil
}
