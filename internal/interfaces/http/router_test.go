package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/erp-pos/internal/application/analytics"
	"github.com/jhoicas/erp-pos/internal/application/audit"
	"github.com/jhoicas/erp-pos/internal/application/auth"
	"github.com/jhoicas/erp-pos/internal/application/purchases"
	"github.com/jhoicas/erp-pos/internal/application/storage"
	"github.com/jhoicas/erp-pos/internal/domain/repository"
	"github.com/jhoicas/erp-pos/internal/infrastructure/kv"
	"github.com/jhoicas/erp-pos/internal/infrastructure/sqlite"
	apphttp "github.com/jhoicas/erp-pos/internal/interfaces/http"
	"github.com/jhoicas/erp-pos/pkg/metrics"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func newServer(t *testing.T, sub repository.Substrate) *fiber.App {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := storage.NewManager(sub, storage.Options{Metrics: metrics.NewStorageMetrics(reg)})
	_, err := storage.NewSeeder(m, nil, storage.SeedConfig{}).Bootstrap(context.Background())
	require.NoError(t, err)

	auditSvc := audit.NewService(m, nil)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Storage: m,
		AuthUC: auth.NewAuthUseCase(m, auditSvc, auth.JWTConfig{
			Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
		}),
		Audit:       auditSvc,
		PurchasesUC: purchases.NewUseCase(m, auditSvc, nil, purchases.Config{}),
		DashboardUC: appanalytics.NewDashboardUseCase(m),
		ReportsUC:   appanalytics.NewReportsUseCase(m, nil),
		JWTSecret:   testJWTSecret,
		ServiceName: "erp-pos-test",
		Gatherer:    reg,
	})
	return app
}

func newLocalServer(t *testing.T) *fiber.App {
	return newServer(t, kv.NewSubstrate(kv.NewMemoryStore(), "erp_pos_system"))
}

func newSQLiteServer(t *testing.T) *fiber.App {
	sub, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "erp.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Close() })
	return newServer(t, sub)
}

// call ejecuta la petición y decodifica el cuerpo JSON (nil si está vacío).
func call(t *testing.T, app *fiber.App, method, path, authHeader string, body any) (int, any) {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out any
	if len(raw) > 0 && (raw[0] == '{' || raw[0] == '[') {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	} else if len(raw) > 0 {
		out = string(raw)
	}
	return resp.StatusCode, out
}

func login(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "admin", "password": "admin123"})
	require.Equal(t, http.StatusOK, status, body)
	tok, _ := body.(map[string]any)["token"].(string)
	require.NotEmpty(t, tok)
	return "Bearer " + tok
}

func field(v any, key string) any {
	m, _ := v.(map[string]any)
	return m[key]
}

// ──────────────────────────────────────────────────────────────────────────────
// Health / métricas / login
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	app := newLocalServer(t)
	status, body := call(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", field(body, "status"))
	assert.Equal(t, "local", field(body, "substrate"))
}

func TestMetrics_ExponeOperaciones(t *testing.T) {
	app := newLocalServer(t)
	login(t, app)

	status, body := call(t, app, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "storage_operations_total")
}

func TestLogin(t *testing.T) {
	app := newLocalServer(t)

	status, body := call(t, app, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "ADMIN@company.com", "password": "admin123"})
	assert.Equal(t, http.StatusOK, status)
	user, _ := field(body, "user").(map[string]any)
	assert.Equal(t, "super_admin", user["role"])
	assert.NotContains(t, user, "password_hash")

	status, body = call(t, app, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "admin", "password": "otra"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", field(body, "code"))

	status, _ = call(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Almacenes
// ──────────────────────────────────────────────────────────────────────────────

func TestStores_CRUD(t *testing.T) {
	app := newLocalServer(t)
	tok := login(t, app)

	status, body := call(t, app, http.MethodPost, "/api/stores/customers", tok, map[string]any{"name": "Ana"})
	require.Equal(t, http.StatusCreated, status, body)
	id, _ := field(body, "id").(string)
	require.NotEmpty(t, id)
	assert.NotEmpty(t, field(body, "created_at"))

	status, body = call(t, app, http.MethodGet, "/api/stores/customers/"+id, tok, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Ana", field(body, "name"))

	status, body = call(t, app, http.MethodPost, "/api/stores/customers", tok,
		[]map[string]any{{"id": id, "phone": "555"}, {"name": "Luis"}})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Len(t, body, 2)

	status, body = call(t, app, http.MethodGet, "/api/stores/customers/"+id, tok, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Ana", field(body, "name"), "merge conserva campos previos")
	assert.Equal(t, "555", field(body, "phone"))

	status, body = call(t, app, http.MethodGet, "/api/stores/customers", tok, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body, 2)

	status, body = call(t, app, http.MethodDelete, "/api/stores/customers/"+id, tok, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, field(body, "deleted"))

	status, _ = call(t, app, http.MethodDelete, "/api/stores/customers/"+id, tok, nil)
	assert.Equal(t, http.StatusOK, status, "borrar dos veces es idempotente")

	status, body = call(t, app, http.MethodGet, "/api/stores/customers/"+id, tok, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", field(body, "code"))
}

func TestStores_AlmacenDesconocido404(t *testing.T) {
	app := newLocalServer(t)
	tok := login(t, app)

	status, body := call(t, app, http.MethodGet, "/api/stores/ghosts", tok, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "UNKNOWN_STORE", field(body, "code"))
}

func TestStores_CuerpoInvalido(t *testing.T) {
	app := newLocalServer(t)
	tok := login(t, app)

	status, body := call(t, app, http.MethodPost, "/api/stores/customers", tok, "{no-json")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_BODY", field(body, "code"))
}

func TestStores_SKUDuplicado409EnSQLite(t *testing.T) {
	app := newSQLiteServer(t)
	tok := login(t, app)

	status, body := call(t, app, http.MethodPost, "/api/stores/products", tok,
		map[string]any{"id": "p-dup", "sku": "SKU-1001"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", field(body, "code"))

	status, body = call(t, app, http.MethodGet, "/api/stores/products/"+storage.SeedProductID, tok, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "SKU-1001", field(body, "sku"))
}

func TestStores_PermisosPorAlmacen(t *testing.T) {
	app := newLocalServer(t)

	status, body := call(t, app, http.MethodGet, "/api/stores/products", tokenForRole(t, "viewer"), nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", field(body, "code"))

	status, _ = call(t, app, http.MethodGet, "/api/stores/products", tokenForRole(t, "cashier"), nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, app, http.MethodDelete, "/api/stores/products/x", tokenForRole(t, "cashier"), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, app, http.MethodGet, "/api/stores/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacciones
// ──────────────────────────────────────────────────────────────────────────────

func TestTransaction_ResultadosEnOrden(t *testing.T) {
	app := newLocalServer(t)
	tok := login(t, app)

	ops := `[
		{"type": "save", "store": "customers", "data": {"id": "c1", "name": "Ana"}},
		{"type": "get", "store": "customers", "id": "c1"},
		{"type": "delete", "store": "customers", "id": "c1"},
		{"type": "get", "store": "customers", "id": "c1"}
	]`
	status, body := call(t, app, http.MethodPost, "/api/transaction", tok, ops)
	require.Equal(t, http.StatusOK, status, body)
	results, _ := field(body, "results").([]any)
	require.Len(t, results, 4)
	assert.Equal(t, "Ana", field(results[1], "name"))
	assert.Equal(t, true, results[2])
	assert.Nil(t, results[3])
}

func TestTransaction_OperacionDesconocidaSinRollback(t *testing.T) {
	app := newLocalServer(t)
	tok := login(t, app)

	ops := map[string]any{"operations": []map[string]any{
		{"type": "save", "store": "customers", "data": map[string]any{"id": "c1", "name": "Ana"}},
		{"type": "update", "store": "customers", "id": "c1"},
		{"type": "save", "store": "customers", "data": map[string]any{"id": "c2"}},
	}}
	status, body := call(t, app, http.MethodPost, "/api/transaction", tok, ops)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Len(t, field(body, "results"), 1)
	assert.Equal(t, "UNKNOWN_OPERATION", field(field(body, "error"), "code"))

	status, _ = call(t, app, http.MethodGet, "/api/stores/customers/c1", tok, nil)
	assert.Equal(t, http.StatusOK, status, "la operación previa queda aplicada")
	status, _ = call(t, app, http.MethodGet, "/api/stores/customers/c2", tok, nil)
	assert.Equal(t, http.StatusNotFound, status, "las posteriores no se ejecutan")
}

func TestTransaction_AtomicRevierteEnSQLite(t *testing.T) {
	app := newSQLiteServer(t)
	tok := login(t, app)

	ops := `{"atomic": true, "operations": [
		{"type": "save", "store": "customers", "data": {"id": "c1", "name": "Ana"}},
		{"type": "save", "store": "products", "data": {"id": "p-dup", "sku": "SKU-1001"}}
	]}`
	status, body := call(t, app, http.MethodPost, "/api/transaction", tok, ops)
	assert.Equal(t, http.StatusConflict, status, body)

	status, _ = call(t, app, http.MethodGet, "/api/stores/customers/c1", tok, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestTransaction_PermisoPorOperacion(t *testing.T) {
	app := newLocalServer(t)

	ops := `[{"type": "get", "store": "products"}, {"type": "delete", "store": "users", "id": "user_001"}]`
	status, _ := call(t, app, http.MethodPost, "/api/transaction", tokenForRole(t, "admin"), ops)
	assert.Equal(t, http.StatusForbidden, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Exportación / importación
// ──────────────────────────────────────────────────────────────────────────────

func TestExportImport(t *testing.T) {
	app := newLocalServer(t)
	tok := login(t, app)

	status, snap := call(t, app, http.MethodGet, "/api/export", tok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, field(snap, "users"), 1)
	assert.NotEmpty(t, field(snap, "exported_at"))

	other := newLocalServer(t)
	otherTok := login(t, other)
	status, body := call(t, other, http.MethodPost, "/api/import", otherTok, snap)
	require.Equal(t, http.StatusOK, status, body)
	assert.GreaterOrEqual(t, field(body, "imported"), float64(3))

	status, body = call(t, other, http.MethodGet, "/api/audit?action=IMPORT", otherTok, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body, 1)
}

func TestImport_AlmacenDesconocido(t *testing.T) {
	app := newLocalServer(t)
	tok := login(t, app)

	status, body := call(t, app, http.MethodPost, "/api/import", tok,
		`{"exported_at": "2025-01-01T00:00:00.000Z", "version": 1, "ghosts": [{"id": "g1"}]}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "UNKNOWN_STORE", field(body, "code"))
}

func TestExport_SoloSuperAdmin(t *testing.T) {
	app := newLocalServer(t)

	status, _ := call(t, app, http.MethodGet, "/api/export", tokenForRole(t, "admin"), nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = call(t, app, http.MethodPost, "/api/import", tokenForRole(t, "auditor"), `{}`)
	assert.Equal(t, http.StatusForbidden, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Compras, dashboard, usuarios
// ──────────────────────────────────────────────────────────────────────────────

func TestPurchases_CrearYRecibir(t *testing.T) {
	app := newSQLiteServer(t)
	tok := login(t, app)

	status, sup := call(t, app, http.MethodPost, "/api/suppliers", tok, map[string]any{"name": "Distribuidora Andina"})
	require.Equal(t, http.StatusCreated, status, sup)

	status, po := call(t, app, http.MethodPost, "/api/purchases", tok, map[string]any{
		"supplier_id": field(sup, "id"),
		"order_date":  "2025-07-01",
		"items":       []map[string]any{{"product_id": storage.SeedProductID, "quantity": 10, "unit_price": 480}},
	})
	require.Equal(t, http.StatusCreated, status, po)
	assert.Equal(t, "pending", field(po, "status"))
	id, _ := field(po, "id").(string)

	status, po = call(t, app, http.MethodPost, "/api/purchases/"+id+"/receive", tok, nil)
	require.Equal(t, http.StatusOK, status, po)
	assert.Equal(t, "received", field(po, "status"))

	status, body := call(t, app, http.MethodPost, "/api/purchases/"+id+"/receive", tok, nil)
	assert.Equal(t, http.StatusConflict, status, body)

	_, product := call(t, app, http.MethodGet, "/api/stores/products/"+storage.SeedProductID, tok, nil)
	assert.Equal(t, float64(35), field(field(product, "stock"), storage.SeedWarehouseID))

	_, movements := call(t, app, http.MethodGet, "/api/stores/stock_movements", tok, nil)
	assert.Len(t, movements, 1)

	status, _ = call(t, app, http.MethodGet, "/api/purchases/no-existe", tok, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDashboardYReportes(t *testing.T) {
	app := newLocalServer(t)
	tok := login(t, app)

	status, body := call(t, app, http.MethodGet, "/api/dashboard/summary", tok, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), field(body, "total_products"))

	status, body = call(t, app, http.MethodGet, "/api/reports/inventory", tok, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "12500", field(body, "total_value")) // 25 × 500

	status, body = call(t, app, http.MethodGet, "/api/reports/sales?from=ayer", tok, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", field(body, "code"))

	status, _ = call(t, app, http.MethodGet, "/api/reports/sales", tokenForRole(t, "inventory_manager"), nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestUsers_CrearYDesactivar(t *testing.T) {
	app := newLocalServer(t)
	tok := login(t, app)

	status, user := call(t, app, http.MethodPost, "/api/users", tok, map[string]any{
		"username": "caja1", "email": "caja1@company.com", "password": "secreto1", "role": "cashier",
	})
	require.Equal(t, http.StatusCreated, status, user)
	id, _ := field(user, "id").(string)

	status, _ = call(t, app, http.MethodPost, "/api/users", tok, map[string]any{
		"username": "CAJA1", "email": "otro@company.com", "password": "secreto1",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, body := call(t, app, http.MethodPut, "/api/users/"+id+"/status", tok, map[string]any{"status": "inactive"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "inactive", field(body, "status"))

	status, _ = call(t, app, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "caja1", "password": "secreto1"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = call(t, app, http.MethodGet, "/api/users", tok, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body, 2)
}

// ──────────────────────────────────────────────────────────────────────────────
// Almacenes protegidos: users, audit_logs, settings
// ──────────────────────────────────────────────────────────────────────────────

func TestStores_AdminNoEscalaPorRutaGenerica(t *testing.T) {
	app := newLocalServer(t)
	root := login(t, app)

	status, user := call(t, app, http.MethodPost, "/api/users", root, map[string]any{
		"username": "ana", "email": "ana@company.com", "password": "secreto1", "role": "admin",
	})
	require.Equal(t, http.StatusCreated, status, user)
	anaID, _ := field(user, "id").(string)

	status, body := call(t, app, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "ana", "password": "secreto1"})
	require.Equal(t, http.StatusOK, status, body)
	ana := "Bearer " + field(body, "token").(string)

	status, body = call(t, app, http.MethodGet, "/api/stores/users", ana, nil)
	require.Equal(t, http.StatusOK, status)
	users, _ := body.([]any)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.NotContains(t, u, "password_hash")
		assert.NotEmpty(t, field(u, "username"))
	}
	status, body = call(t, app, http.MethodGet, "/api/stores/users/"+anaID, ana, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, body, "password_hash")

	status, body = call(t, app, http.MethodPost, "/api/stores/users", ana, map[string]any{"id": anaID, "role": "super_admin"})
	assert.Equal(t, http.StatusForbidden, status, body)
	ops := []map[string]any{{"type": "save", "store": "users", "data": map[string]any{"id": anaID, "role": "super_admin"}}}
	status, _ = call(t, app, http.MethodPost, "/api/transaction", ana, ops)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = call(t, app, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "ana", "password": "secreto1"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "admin", field(field(body, "user"), "role"))

	status, _ = call(t, app, http.MethodGet, "/api/export", ana, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, app, http.MethodPost, "/api/users", ana, map[string]any{
		"username": "root2", "email": "root2@company.com", "password": "secreto1", "role": "super_admin",
	})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = call(t, app, http.MethodPut, "/api/users/user_001/status", ana, map[string]any{"status": "inactive"})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestStores_TransaccionGetUsersSinPasswordHash(t *testing.T) {
	app := newLocalServer(t)
	tok := login(t, app)

	ops := `[{"type": "get", "store": "users", "id": "user_001"}, {"type": "get", "store": "users"}]`
	status, body := call(t, app, http.MethodPost, "/api/transaction", tok, ops)
	require.Equal(t, http.StatusOK, status, body)
	results, _ := field(body, "results").([]any)
	require.Len(t, results, 2)
	assert.Equal(t, "admin", field(results[0], "username"))
	assert.NotContains(t, results[0], "password_hash")
	all, _ := results[1].([]any)
	require.Len(t, all, 1)
	assert.NotContains(t, all[0], "password_hash")
}

func TestStores_AuditLogsSoloLectura(t *testing.T) {
	app := newLocalServer(t)
	auditor := tokenForRole(t, "auditor")

	status, _ := call(t, app, http.MethodGet, "/api/stores/audit_logs", auditor, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = call(t, app, http.MethodPost, "/api/stores/audit_logs", auditor, map[string]any{"action": "LOGIN"})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = call(t, app, http.MethodDelete, "/api/stores/audit_logs/x", auditor, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, app, http.MethodPost, "/api/stores/settings", tokenForRole(t, "admin"), map[string]any{"id": "tax"})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = call(t, app, http.MethodPost, "/api/stores/settings", login(t, app), map[string]any{"id": "tax"})
	assert.Equal(t, http.StatusCreated, status)
}
