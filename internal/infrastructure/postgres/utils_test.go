package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/clinica-api/internal/domain"
)

// ──────────────────────────────────────────────────────────────────────────────
// Traducción de SQLSTATE a la taxonomía del dominio
// ──────────────────────────────────────────────────────────────────────────────

func TestMapError_SQLState(t *testing.T) {
	cases := []struct {
		name string
		code string
		kind domain.Kind
	}{
		{"único", codeUniqueViolation, domain.KindIntegrity},
		{"clave foránea", codeForeignKeyViolation, domain.KindIntegrity},
		{"check", codeCheckViolation, domain.KindIntegrity},
		{"deadlock", codeDeadlockDetected, domain.KindIntegrity},
		{"serialización", codeSerialization, domain.KindIntegrity},
		{"statement timeout", codeQueryCanceled, domain.KindTimeout},
		{"lock timeout", codeLockNotAvailable, domain.KindTimeout},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cause := &pgconn.PgError{Code: tc.code, Message: "boom"}
			err := mapError("update sale", fmt.Errorf("exec: %w", cause))

			assert.Equal(t, tc.kind, domain.KindOf(err))
			var pgErr *pgconn.PgError
			assert.True(t, errors.As(err, &pgErr), "la causa del driver se conserva")
		})
	}
}

func TestMapError_ContextoYDesconocidos(t *testing.T) {
	assert.NoError(t, mapError("noop", nil))
	assert.Equal(t, domain.KindTimeout, domain.KindOf(mapError("list", context.DeadlineExceeded)))

	err := mapError("list", &pgconn.PgError{Code: "XX000"})
	assert.Error(t, err)
	assert.NotEqual(t, domain.KindIntegrity, domain.KindOf(err), "un SQLSTATE no mapeado no es un error de integridad")
}
