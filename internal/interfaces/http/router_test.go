package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinica-api/internal/application/auth"
	"github.com/jhoicas/clinica-api/internal/application/dto"
	"github.com/jhoicas/clinica-api/internal/application/engine"
	"github.com/jhoicas/clinica-api/internal/domain/entity"
	"github.com/jhoicas/clinica-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/clinica-api/internal/interfaces/http"
	"github.com/jhoicas/clinica-api/pkg/clock"
	"github.com/jhoicas/clinica-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers: API completa sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

type apiFixture struct {
	t   *testing.T
	app *fiber.App
	eng *engine.Engine
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.New()
	eng := engine.New(store, store.Repos(), engine.Options{
		Clock:      clock.NewFixed(time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)),
		BcryptCost: 4,
		JWT:        auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer},
	})
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{Engine: eng, JWTSecret: testJWTSecret, Log: logger.Nop()})
	return &apiFixture{t: t, app: app, eng: eng}
}

// login crea un usuario con el rol indicado y devuelve el header Authorization.
func (f *apiFixture) login(username, role string) string {
	f.t.Helper()
	_, err := f.eng.Auth.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: username, Password: "secreto-123", Name: username, Role: role,
	})
	require.NoError(f.t, err)

	resp := f.do(http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: username, Password: "secreto-123"})
	require.Equal(f.t, http.StatusOK, resp.StatusCode, "el login debe responder 200")
	var out dto.LoginResponse
	decode(f.t, resp, &out)
	require.NotEmpty(f.t, out.Token)
	return "Bearer " + out.Token
}

func (f *apiFixture) do(method, path, authHeader string, body interface{}) *http.Response {
	f.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(f.t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_CredencialesInvalidas_Retorna401(t *testing.T) {
	f := newAPI(t)
	f.login("admin", entity.RoleAdmin)

	resp := f.do(http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "admin", Password: "incorrecta"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "INVALID_CREDENTIALS", body.Code)
}

func TestMe_DevuelveElUsuarioDelToken(t *testing.T) {
	f := newAPI(t)
	token := f.login("recepcion1", entity.RoleRecepcion)

	resp := f.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me dto.UserResponse
	decode(t, resp, &me)
	assert.Equal(t, "recepcion1", me.Username)
	assert.Equal(t, entity.RoleRecepcion, me.Role)
}

// ──────────────────────────────────────────────────────────────────────────────
// Mapeo de errores del motor a HTTP
// ──────────────────────────────────────────────────────────────────────────────

func TestErrores_ValidacionIncluyeCampos(t *testing.T) {
	f := newAPI(t)
	token := f.login("admin", entity.RoleAdmin)

	resp := f.do(http.MethodPost, "/api/item-types", token, dto.CreateItemTypeRequest{Name: "", Kind: "otro"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Fields, "name", "el detalle debe nombrar el campo inválido")
	assert.Contains(t, body.Fields, "kind")
}

func TestErrores_NoEncontradoRetorna404(t *testing.T) {
	f := newAPI(t)
	token := f.login("admin", entity.RoleAdmin)

	resp := f.do(http.MethodGet, "/api/sales/999", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestErrores_IdMalFormadoRetorna400(t *testing.T) {
	f := newAPI(t)
	token := f.login("admin", entity.RoleAdmin)

	resp := f.do(http.MethodGet, "/api/sales/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "INVALID_PARAM", body.Code)
}

func TestErrores_ConflictoRetorna409(t *testing.T) {
	f := newAPI(t)
	token := f.login("admin", entity.RoleAdmin)

	resp := f.do(http.MethodPost, "/api/cash/sessions", token, dto.OpenCashSessionRequest{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(http.MethodPost, "/api/cash/sessions", token, dto.OpenCashSessionRequest{})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "CASH_SESSION_ALREADY_OPEN", body.Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Permisos por rol
// ──────────────────────────────────────────────────────────────────────────────

func TestRoles_ProfesionalNoRegistraCompras(t *testing.T) {
	f := newAPI(t)
	token := f.login("dra", entity.RoleProfesional)

	resp := f.do(http.MethodGet, "/api/purchases", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRoles_SoloAdminConsultaAuditoria(t *testing.T) {
	f := newAPI(t)
	token := f.login("caja", entity.RoleAdministracion)

	resp := f.do(http.MethodGet, "/api/audit", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo: catálogo → paciente → venta → cobro
// ──────────────────────────────────────────────────────────────────────────────

func TestFlujo_VentaYCobroPorHTTP(t *testing.T) {
	f := newAPI(t)
	token := f.login("admin", entity.RoleAdmin)

	var itemType dto.ItemTypeResponse
	resp := f.do(http.MethodPost, "/api/item-types", token, dto.CreateItemTypeRequest{Name: "Servicios", Kind: entity.ItemKindService})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decode(t, resp, &itemType)

	var item dto.ItemResponse
	resp = f.do(http.MethodPost, "/api/items", token, map[string]interface{}{
		"name": "Limpieza facial", "type_id": itemType.ID, "unit_price": "100",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &item)

	var patient dto.PatientResponse
	resp = f.do(http.MethodPost, "/api/patients", token, dto.PatientRequest{FirstName: "Ana", LastName: "Benítez"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decode(t, resp, &patient)

	var sale dto.SaleResponse
	resp = f.do(http.MethodPost, "/api/sales", token, map[string]interface{}{
		"patient_id": patient.ID,
		"lines":      []map[string]interface{}{{"item_id": item.ID, "quantity": "2"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decode(t, resp, &sale)
	assert.True(t, sale.Total.Equal(decimal.NewFromInt(200)), "2 x 100")

	resp = f.do(http.MethodPost, "/api/receipts", token, map[string]interface{}{
		"patient_id": patient.ID, "amount": "150", "method": entity.PaymentCash, "auto_fifo": true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	var balances []dto.PatientBalanceResponse
	resp = f.do(http.MethodGet, "/api/reports/patient-balances?with_debt=true", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &balances)
	require.Len(t, balances, 1)
	assert.True(t, balances[0].Balance.Equal(decimal.NewFromInt(50)), "quedan 50 por cobrar")

	// La venta con cobro activo no se anula.
	resp = f.do(http.MethodPost, "/api/sales/"+strconv.FormatInt(sale.ID, 10)+"/void", token, dto.VoidRequest{Reason: "error"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "HAS_ACTIVE_RECEIPTS", body.Code)

	var entries []dto.AuditEntryResponse
	resp = f.do(http.MethodGet, "/api/audit?entity=sale&entity_id="+strconv.FormatInt(sale.ID, 10), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &entries)
	require.NotEmpty(t, entries)
	assert.NotNil(t, entries[0].UserID, "la auditoría debe registrar al actor del token")
}

func TestReportes_RangoObligatorio(t *testing.T) {
	f := newAPI(t)
	token := f.login("admin", entity.RoleAdmin)

	resp := f.do(http.MethodGet, "/api/reports/sales-by-item?from=2024-01-01", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(http.MethodGet, "/api/reports/sales-by-item?from=2024-01-01&to=2024-02-01&top=5", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
