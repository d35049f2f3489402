package logger_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinica-api/pkg/logger"
)

func TestWithComponent_AgregaElCampo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWriter(&buf, "info").WithComponent("migrate")
	log.Info().Int("applied", 2).Msg("migraciones al día")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "migrate", line["component"])
	assert.Equal(t, "info", line["level"])
	assert.EqualValues(t, 2, line["applied"])
	assert.Contains(t, line, "time")
}

func TestNivel_FiltraEventosInferiores(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWriter(&buf, "warn")
	log.Info().Msg("descartado")
	log.Warn().Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "descartado")
	assert.Contains(t, out, "visible")
}

func TestNivelInvalido_UsaInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWriter(&buf, "ruidoso")
	log.Debug().Msg("debug")
	log.Info().Msg("info")
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestNew_ConsolaEnDesarrollo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "development", Level: "info", Output: &buf})
	log.Info().Msg("hola")
	assert.Contains(t, buf.String(), "hola")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())), "en desarrollo la salida no es JSON")
}
