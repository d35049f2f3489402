package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinica-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "America/Asuncion", cfg.App.Timezone)
	assert.Equal(t, 30*time.Second, cfg.DB.StatementTimeout)
	assert.Equal(t, 10*time.Second, cfg.DB.LockTimeout)
	assert.Equal(t, 12, cfg.Engine.BcryptCost)
	assert.False(t, cfg.Engine.StrictStock)
}

func TestLoad_LeeVariablesDeEntorno(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("STOCK_STRICT", "true")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("DB_STATEMENT_TIMEOUT", "45")
	t.Setenv("DB_LOCK_TIMEOUT", "2s")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StorageMemory, cfg.Storage.Driver)
	assert.True(t, cfg.Engine.StrictStock)
	assert.Equal(t, 10, cfg.Engine.BcryptCost)
	assert.Equal(t, 45*time.Second, cfg.DB.StatementTimeout)
	assert.Equal(t, 2*time.Second, cfg.DB.LockTimeout)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
}

func TestLoad_RechazaDriverDesconocido(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "clinica", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/clinica?sslmode=disable", c.DSN())
}
