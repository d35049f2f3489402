package geoimport_test

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinica-api/internal/infrastructure/geoimport"
)

func TestParse_AgrupaPorDepartamentoYDecodificaLatin1(t *testing.T) {
	f, err := os.Open("testdata/municipios.xml")
	require.NoError(t, err)
	defer f.Close()

	deps, err := geoimport.Parse(f)
	require.NoError(t, err)
	require.Len(t, deps, 2, "el registro sin código se descarta")

	assert.Equal(t, "05", deps[0].Code)
	assert.Equal(t, "Antioquia", deps[0].Name)
	assert.Equal(t, []string{"Abejorral", "Medellín"}, deps[0].Cities, "ciudades ordenadas y sin duplicados")

	assert.Equal(t, "11", deps[1].Code)
	assert.Equal(t, "Bogotá", deps[1].Name, "los acentos se decodifican desde ISO-8859-1")
	assert.Equal(t, []string{"Bogotá, D.C."}, deps[1].Cities)
}

func TestParse_XMLInvalido(t *testing.T) {
	_, err := geoimport.Parse(strings.NewReader("<parametros><tabla>"))
	assert.Error(t, err)
}
