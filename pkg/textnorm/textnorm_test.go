package textnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/clinica-api/pkg/textnorm"
)

func TestKey_QuitaAcentosYNormalizaEspacios(t *testing.T) {
	assert.Equal(t, "depilacion laser", textnorm.Key("  Depilación   Láser "))
	assert.Equal(t, "nunez", textnorm.Key("NÚÑEZ"), "la eñe se reduce a n en la clave de búsqueda")
	assert.Equal(t, "", textnorm.Key("   "))
}

func TestContains_IgnoraMayusculasYAcentos(t *testing.T) {
	assert.True(t, textnorm.Contains("Limpieza Facial Profunda", "facial"))
	assert.True(t, textnorm.Contains("Peeling químico", "QUIMICO"))
	assert.False(t, textnorm.Contains("Masaje", "laser"))
}
