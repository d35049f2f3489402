package engine

import (
	"context"
	"fmt"

	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
)

// SeedOptions datos iniciales de una instalación nueva.
type SeedOptions struct {
	AdminUsername string
	AdminPassword string
	Geography     []GeoDepartment
}

// GeoDepartment departamento a cargar con sus ciudades.
type GeoDepartment struct {
	Name   string
	Cities []string
}

// SeedReport cuántos registros creó Seed.
type SeedReport struct {
	ItemTypes   int
	Admin       bool
	Departments int
	Cities      int
}

var defaultItemTypes = []dto.CreateItemTypeRequest{
	{Name: "Productos", Kind: entity.ItemKindProduct},
	{Name: "Servicios", Kind: entity.ItemKindService},
	{Name: "Insumos", Kind: entity.ItemKindConsumable},
	{Name: "Paquetes", Kind: entity.ItemKindPackage},
	{Name: "Planes", Kind: entity.ItemKindPlan},
}

// Seed carga los tipos de ítem por defecto, el usuario admin y la geografía.
// Cada bloque se salta si ya hay datos, así que se puede ejecutar en cada despliegue.
func (e *Engine) Seed(ctx context.Context, opt SeedOptions) (SeedReport, error) {
	var rep SeedReport

	types, err := e.Catalog.ListItemTypes(ctx)
	if err != nil {
		return rep, err
	}
	if len(types) == 0 {
		for _, t := range defaultItemTypes {
			if _, err := e.Catalog.CreateItemType(ctx, t); err != nil {
				return rep, fmt.Errorf("tipo de ítem %q: %w", t.Name, err)
			}
			rep.ItemTypes++
		}
	}

	if opt.AdminUsername != "" && opt.AdminPassword != "" {
		users, err := e.Auth.List(ctx)
		if err != nil {
			return rep, err
		}
		if len(users) == 0 {
			_, err := e.Auth.CreateUser(ctx, dto.CreateUserRequest{
				Username: opt.AdminUsername,
				Password: opt.AdminPassword,
				Name:     "Administrador",
				Role:     entity.RoleAdmin,
			})
			if err != nil {
				return rep, fmt.Errorf("usuario admin: %w", err)
			}
			rep.Admin = true
		}
	}

	if len(opt.Geography) > 0 {
		cities, err := e.Accounts.ListCities(ctx, nil)
		if err != nil {
			return rep, err
		}
		if len(cities) > 0 {
			return rep, nil
		}
		for _, d := range opt.Geography {
			dep, err := e.Accounts.CreateDepartment(ctx, dto.DepartmentRequest{Name: d.Name})
			if err != nil {
				return rep, fmt.Errorf("departamento %q: %w", d.Name, err)
			}
			rep.Departments++
			for _, name := range d.Cities {
				if _, err := e.Accounts.CreateCity(ctx, dto.CityRequest{DepartmentID: dep.ID, Name: name}); err != nil {
					return rep, fmt.Errorf("ciudad %q: %w", name, err)
				}
				rep.Cities++
			}
		}
	}
	return rep, nil
}
