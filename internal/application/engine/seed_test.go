package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/application/engine"
)

func TestSeed_InstalacionNuevaEsIdempotente(t *testing.T) {
	f := newFixture(t, true)
	opt := engine.SeedOptions{
		AdminUsername: "admin",
		AdminPassword: "cambiar-esto",
		Geography: []engine.GeoDepartment{
			{Name: "Antioquia", Cities: []string{"Abejorral", "Medellín"}},
		},
	}

	rep, err := f.eng.Seed(f.ctx, opt)
	require.NoError(t, err)
	assert.Equal(t, engine.SeedReport{ItemTypes: 5, Admin: true, Departments: 1, Cities: 2}, rep)

	login, err := f.eng.Auth.Login(f.ctx, dto.LoginRequest{Username: "admin", Password: "cambiar-esto"})
	require.NoError(t, err)
	assert.Equal(t, "admin", login.User.Role)

	again, err := f.eng.Seed(f.ctx, opt)
	require.NoError(t, err)
	assert.Equal(t, engine.SeedReport{}, again, "una segunda ejecución no crea nada")

	types, err := f.eng.Catalog.ListItemTypes(f.ctx)
	require.NoError(t, err)
	assert.Len(t, types, 5)
}
