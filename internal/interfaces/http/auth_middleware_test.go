package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinica-api/internal/domain/entity"
	apphttp "github.com/jhoicas/clinica-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/clinica-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = int64(42)
	testIssuer    = "clinica-api-test"
	testExpMin    = 60
)

// protectedApp ruta GET /protected con AuthMiddleware + RequireRole(allowed...).
func protectedApp(allowed ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowed...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"user_id": apphttp.GetUserID(c), "role": apphttp.GetRole(c)})
		},
	)
	return app
}

func bearer(t *testing.T, userID int64, role string, expMin int) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, role, testIssuer, expMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func get(t *testing.T, app *fiber.App, authHeader string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireRole: matriz de roles de la clínica
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_Matriz(t *testing.T) {
	cases := []struct {
		name    string
		allowed []string
		role    string
		status  int
		code    string
	}{
		{"admin en ruta de admin", []string{entity.RoleAdmin}, entity.RoleAdmin, http.StatusOK, ""},
		{"recepción en ruta de mostrador", []string{entity.RoleAdmin, entity.RoleRecepcion}, entity.RoleRecepcion, http.StatusOK, ""},
		{"profesional en ruta de admin", []string{entity.RoleAdmin}, entity.RoleProfesional, http.StatusForbidden, "FORBIDDEN"},
		{"administración en ruta clínica", []string{entity.RoleProfesional}, entity.RoleAdministracion, http.StatusForbidden, "FORBIDDEN"},
		{"token sin rol", []string{entity.RoleAdmin}, "", http.StatusUnauthorized, "MISSING_ROLE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := get(t, protectedApp(tc.allowed...), bearer(t, testUserID, tc.role, testExpMin))
			assert.Equal(t, tc.status, status)
			if tc.code != "" {
				assert.Contains(t, body, tc.code, "la respuesta debe incluir el código %s", tc.code)
			}
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware: header y token
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_RechazaCredencialesMalFormadas(t *testing.T) {
	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"esquema distinto de Bearer", "Basic dXNlcjpwYXNz", "INVALID_TOKEN"},
		{"token basura", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
		{"token vencido", bearer(t, testUserID, entity.RoleAdmin, -1), "INVALID_TOKEN"},
	}
	app := protectedApp(entity.RoleAdmin)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := get(t, app, tc.header)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Contains(t, body, tc.code)
		})
	}
}

func TestAuthMiddleware_ExtraeUsuarioYRol(t *testing.T) {
	status, raw := get(t, protectedApp(entity.RoleProfesional), bearer(t, testUserID, entity.RoleProfesional, testExpMin))
	require.Equal(t, http.StatusOK, status)

	var body struct {
		UserID int64  `json:"user_id"`
		Role   string `json:"role"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &body))
	assert.Equal(t, testUserID, body.UserID)
	assert.Equal(t, entity.RoleProfesional, body.Role)
}

func TestAuthMiddleware_SecretDistintoInvalidaElToken(t *testing.T) {
	tok, err := pkgjwt.Generate("otro-secret-completamente-distinto", testUserID, entity.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)

	status, _ := get(t, protectedApp(entity.RoleAdmin), "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, status)
}
