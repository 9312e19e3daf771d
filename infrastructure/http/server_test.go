package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"fichaflow/api/auth"
	"fichaflow/infrastructure/audit"
	"fichaflow/infrastructure/cache"
	"fichaflow/infrastructure/rbac"
	"fichaflow/infrastructure/sqlite"
)

const testPassword = "Planta2024!Segura"

func setupTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := sqlite.ApplyMigrations(context.Background(), db, ""); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	ctx := context.Background()
	if err := auth.UpsertUser(ctx, db, "Jefe Test", "jefe@test.local", rbac.RoleJefeProduccion, "", testPassword); err != nil {
		t.Fatalf("seed jefe: %v", err)
	}
	if err := auth.UpsertUser(ctx, db, "Operario Corte", "corte@test.local", rbac.RoleOperarioCorte, "corte", testPassword); err != nil {
		t.Fatalf("seed operario: %v", err)
	}

	return NewServer("127.0.0.1:0", db,
		cache.NewSessionCache(),
		cache.NewUserCache(),
		rbac.New(cache.NewRbacRolesCache()),
		audit.NewService(),
	)
}

func login(t *testing.T, s *Server, email string) string {
	t.Helper()
	body := strings.NewReader(`{"email":"` + email + `","password":"` + testPassword + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("login returned empty token")
	}
	return resp.Token
}

func doAuthed(s *Server, method, path, token string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpointIsOpen(t *testing.T) {
	s := setupTestServer(t)
	rec := doAuthed(s, http.MethodGet, "/api/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status field = %q", resp["status"])
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := setupTestServer(t)
	body := strings.NewReader(`{"email":"jefe@test.local","password":"equivocada"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthenticatedRequestsRequireToken(t *testing.T) {
	s := setupTestServer(t)

	if rec := doAuthed(s, http.MethodGet, "/api/fichas", "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rec.Code)
	}
	if rec := doAuthed(s, http.MethodGet, "/api/fichas", "deadbeef", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("bogus token: status = %d, want 401", rec.Code)
	}
}

func TestVerifyReturnsAuthenticatedUser(t *testing.T) {
	s := setupTestServer(t)
	token := login(t, s, "jefe@test.local")

	rec := doAuthed(s, http.MethodGet, "/api/auth/verify", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		User struct {
			Email string `json:"email"`
			Rol   string `json:"rol"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode verify: %v", err)
	}
	if resp.User.Email != "jefe@test.local" || resp.User.Rol != rbac.RoleJefeProduccion {
		t.Errorf("unexpected user: %+v", resp.User)
	}
}

func TestRoleGateBlocksOperarioFromManagerRoutes(t *testing.T) {
	s := setupTestServer(t)
	token := login(t, s, "corte@test.local")

	// Only the production manager creates fichas and pulls reports.
	if rec := doAuthed(s, http.MethodPost, "/api/fichas", token, `{}`); rec.Code != http.StatusForbidden {
		t.Errorf("create ficha: status = %d, want 403", rec.Code)
	}
	if rec := doAuthed(s, http.MethodGet, "/api/reportes/fichas.csv", token, ""); rec.Code != http.StatusForbidden {
		t.Errorf("reportes: status = %d, want 403", rec.Code)
	}

	// An operator may not record advances for a different area.
	if rec := doAuthed(s, http.MethodPut, "/api/fichas/1/avance/extrusion", token, `{}`); rec.Code != http.StatusForbidden {
		t.Errorf("cross-area avance: status = %d, want 403", rec.Code)
	}

	// Shared listings remain reachable.
	if rec := doAuthed(s, http.MethodGet, "/api/fichas", token, ""); rec.Code != http.StatusOK {
		t.Errorf("list fichas: status = %d, want 200", rec.Code)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	s := setupTestServer(t)
	token := login(t, s, "jefe@test.local")

	if rec := doAuthed(s, http.MethodPost, "/api/auth/logout", token, ""); rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}
	if rec := doAuthed(s, http.MethodGet, "/api/auth/verify", token, ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("verify after logout: status = %d, want 401", rec.Code)
	}
}

func TestManagerCreatesClientePedidoFicha(t *testing.T) {
	s := setupTestServer(t)
	token := login(t, s, "jefe@test.local")

	rec := doAuthed(s, http.MethodPost, "/api/clientes", token, `{"nombre":"Cliente Uno","email":"uno@test.local"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create cliente: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doAuthed(s, http.MethodPost, "/api/pedidos", token, `{"clienteId":1,"descripcion":"Bolsas","cantidad":500,"fechaEntrega":"2026-09-30"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create pedido: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doAuthed(s, http.MethodPost, "/api/fichas", token, `{
		"pedidoId": 1,
		"especificaciones": {
			"tipoEnvoltura": "bolsa",
			"material": "polietileno",
			"dimensiones": {"largo": 30, "ancho": 20, "grosor": 0.05},
			"cantidadTotal": 500
		}
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create ficha: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		NumeroFicha string `json:"numeroFicha"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create ficha: %v", err)
	}
	if !strings.HasPrefix(resp.NumeroFicha, "FT-") {
		t.Errorf("numeroFicha = %q", resp.NumeroFicha)
	}
}
