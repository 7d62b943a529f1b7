package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gastos/internal/config"
	"gastos/internal/logger"
	"gastos/internal/middleware"
	"gastos/internal/notify"
	"gastos/internal/testutil"
	"gastos/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T, perMinute, burst int) *testServer {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	limiter := middleware.NewRateLimiter(perMinute, burst)
	t.Cleanup(limiter.Stop)

	cfg := &config.Config{Debug: true, ResetCodeTTL: 30 * time.Minute}
	svc := NewServices(db, cfg, notify.NewLogNotifier())
	return &testServer{router: NewRouter(cfg, svc, limiter), db: db}
}

func (s *testServer) call(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, "/api"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// expect performs the call and fails the test unless it answers with want.
func (s *testServer) expect(t *testing.T, want int, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	rec := s.call(t, method, path, token, body)
	if rec.Code != want {
		t.Fatalf("%s %s: expected %d, got %d: %s", method, path, want, rec.Code, rec.Body.String())
	}
	return rec
}

func (s *testServer) register(t *testing.T, username string) string {
	t.Helper()

	rec := s.call(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "s3guro-pass",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", username, rec.Code, rec.Body.String())
	}
	return s.login(t, username, "s3guro-pass")
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()

	rec := s.call(t, http.MethodPost, "/auth/token", "", map[string]string{
		"username": username,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", username, rec.Code, rec.Body.String())
	}
	return decodeObject(t, rec)["access"].(string)
}

func decodeObject(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to parse object %q: %v", rec.Body.String(), err)
	}
	return out
}

func decodeArray(t *testing.T, rec *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to parse array %q: %v", rec.Body.String(), err)
	}
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errBody, _ := decodeObject(t, rec)["error"].(map[string]interface{})
	code, _ := errBody["code"].(string)
	return code
}

func errorFields(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	errBody, _ := decodeObject(t, rec)["error"].(map[string]interface{})
	fields, _ := errBody["fields"].(map[string]interface{})
	return fields
}

func categoryID(t *testing.T, categories []map[string]interface{}, name string) string {
	t.Helper()
	for _, c := range categories {
		if c["name"] == name {
			return c["id"].(string)
		}
	}
	t.Fatalf("category %q not listed", name)
	return ""
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, 60, 10)

	rec := s.call(t, http.MethodGet, "/health", "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if decodeObject(t, rec)["status"] != "ok" {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, 60, 10)
	token := s.register(t, "ana")

	rec := s.call(t, http.MethodGet, "/auth/profile", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	profile := decodeObject(t, rec)
	if profile["username"] != "ana" || profile["is_admin"] != false || profile["role_name"] != "Usuario Regular" {
		t.Errorf("unexpected profile: %v", profile)
	}

	rec = s.call(t, http.MethodGet, "/auth/profile", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	rec = s.call(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "otra",
		"email":    "ANA@example.com",
		"password": "s3guro-pass",
	})
	if rec.Code != http.StatusConflict || errorCode(t, rec) != "DUPLICATE_EMAIL" {
		t.Errorf("expected 409 DUPLICATE_EMAIL, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCategoryVisibility(t *testing.T) {
	s := newTestServer(t, 60, 10)
	ana := s.register(t, "ana")
	beto := s.register(t, "beto")

	rec := s.call(t, http.MethodGet, "/categories", ana, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := len(decodeArray(t, rec)); got != 6 {
		t.Fatalf("expected the 6 default categories, got %d", got)
	}

	rec = s.call(t, http.MethodPost, "/categories", ana, map[string]string{"name": "Salud", "color": "#000000"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	ownID := decodeObject(t, rec)["id"].(string)

	rec = s.call(t, http.MethodGet, "/categories", ana, nil)
	categories := decodeArray(t, rec)
	if len(categories) != 6 {
		t.Fatalf("own category must shadow the global one, got %d categories", len(categories))
	}
	if categoryID(t, categories, "Salud") != ownID {
		t.Error("expected the own Salud to replace the global one")
	}

	rec = s.call(t, http.MethodGet, "/categories/"+ownID, beto, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for another user's category, got %d", rec.Code)
	}

	rec = s.call(t, http.MethodGet, "/categories", beto, nil)
	betoSalud := categoryID(t, decodeArray(t, rec), "Salud")
	if betoSalud == ownID {
		t.Error("another user's category leaked into the listing")
	}
}

func TestMovementsAndReports(t *testing.T) {
	s := newTestServer(t, 60, 10)
	ana := s.register(t, "ana")
	beto := s.register(t, "beto")

	categories := decodeArray(t, s.expect(t, http.StatusOK, http.MethodGet, "/categories", ana, nil))
	salud := categoryID(t, categories, "Salud")

	rec := s.expect(t, http.StatusCreated, http.MethodPost, "/movements", ana, map[string]interface{}{
		"amount": "100.00", "type": "INCOME", "date": "2024-01-01", "category_id": salud,
	})
	incomeID := decodeObject(t, rec)["id"].(string)

	rec = s.expect(t, http.StatusCreated, http.MethodPost, "/movements", ana, map[string]interface{}{
		"amount": 40, "type": "EXPENSE", "date": "2024-01-15", "category_id": salud,
	})
	if decodeObject(t, rec)["amount"] != "40.00" {
		t.Errorf("expected amount as fixed-point string: %s", rec.Body.String())
	}

	rec = s.call(t, http.MethodGet, "/movements/"+incomeID, beto, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for another user's movement, got %d", rec.Code)
	}
	if got := len(decodeArray(t, s.expect(t, http.StatusOK, http.MethodGet, "/movements", beto, nil))); got != 0 {
		t.Errorf("expected no movements for beto, got %d", got)
	}

	rec = s.call(t, http.MethodGet, "/reports/summary", ana, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	summary := decodeObject(t, rec)
	if summary["income"] != "100.00" || summary["expense"] != "40.00" || summary["balance"] != "60.00" {
		t.Errorf("unexpected summary: %v", summary)
	}

	rec = s.call(t, http.MethodDelete, "/categories/"+salud, ana, nil)
	if rec.Code == http.StatusNoContent {
		t.Error("global categories must not be deletable through the owner routes")
	}
}

func TestBudgetProgress(t *testing.T) {
	s := newTestServer(t, 60, 10)
	ana := s.register(t, "ana")
	salud := categoryID(t, decodeArray(t, s.expect(t, http.StatusOK, http.MethodGet, "/categories", ana, nil)), "Salud")

	rec := s.expect(t, http.StatusCreated, http.MethodPost, "/budgets", ana, map[string]interface{}{
		"category_id": salud, "month": "2024-03", "max_amount": "200.00",
	})
	budgetID := decodeObject(t, rec)["id"].(string)

	rec = s.call(t, http.MethodPost, "/budgets", ana, map[string]interface{}{
		"category_id": salud, "month": "2024-03", "max_amount": "50.00",
	})
	if rec.Code != http.StatusConflict || errorCode(t, rec) != "DUPLICATE_BUDGET" {
		t.Errorf("expected 409 for a second budget in the same month, got %d: %s", rec.Code, rec.Body.String())
	}
	s.expect(t, http.StatusCreated, http.MethodPost, "/budgets", ana, map[string]interface{}{
		"category_id": salud, "month": "2024-04", "max_amount": "50.00",
	})

	s.expect(t, http.StatusCreated, http.MethodPost, "/movements", ana, map[string]interface{}{
		"amount": "50.00", "type": "EXPENSE", "date": "2024-03-10", "category_id": salud,
	})
	s.expect(t, http.StatusCreated, http.MethodPost, "/movements", ana, map[string]interface{}{
		"amount": "70.00", "type": "EXPENSE", "date": "2024-04-01", "category_id": salud,
	})

	rec = s.call(t, http.MethodGet, "/budgets/"+budgetID+"/progress", ana, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	progress := decodeObject(t, rec)
	if progress["spent"] != "50.00" || progress["remaining"] != "150.00" || progress["percentage"] != float64(25) {
		t.Errorf("unexpected progress: %v", progress)
	}
}

func TestAmountsOutsideTheColumnAreRejected(t *testing.T) {
	s := newTestServer(t, 60, 10)
	ana := s.register(t, "ana")
	salud := categoryID(t, decodeArray(t, s.expect(t, http.StatusOK, http.MethodGet, "/categories", ana, nil)), "Salud")

	bodies := []map[string]interface{}{
		{"amount": "123456789012.50", "type": "EXPENSE", "date": "2024-01-01", "category_id": salud},
		{"amount": "10.005", "type": "EXPENSE", "date": "2024-01-01", "category_id": salud},
	}
	for _, body := range bodies {
		rec := s.expect(t, http.StatusBadRequest, http.MethodPost, "/movements", ana, body)
		if _, ok := errorFields(t, rec)["amount"]; !ok {
			t.Errorf("amount %v: expected an amount field error, got %s", body["amount"], rec.Body.String())
		}
	}

	rec := s.expect(t, http.StatusBadRequest, http.MethodPost, "/budgets", ana, map[string]interface{}{
		"category_id": salud, "month": "2024-03", "max_amount": "99999999999",
	})
	if errorCode(t, rec) != "INVALID_INPUT" {
		t.Errorf("expected INVALID_INPUT, got %s", rec.Body.String())
	}

	if got := len(decodeArray(t, s.expect(t, http.StatusOK, http.MethodGet, "/movements", ana, nil))); got != 0 {
		t.Errorf("expected no stored movements, got %d", got)
	}
}

func TestAdminEndpointsRequireAdmin(t *testing.T) {
	s := newTestServer(t, 60, 10)
	userToken := s.register(t, "ana")
	admin := testutil.CreateTestAdmin(t, s.db)
	adminToken := s.login(t, admin.Username, testutil.TestPassword)

	endpoints := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodGet, "/admin/users", nil},
		{http.MethodGet, "/admin/users/" + admin.ID, nil},
		{http.MethodGet, "/admin/dashboard", nil},
		{http.MethodPost, "/categories/global", map[string]string{"name": "Viajes"}},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			rec := s.call(t, ep.method, ep.path, userToken, ep.body)
			if rec.Code != http.StatusForbidden || errorCode(t, rec) != "FORBIDDEN" {
				t.Errorf("regular user: expected 403 FORBIDDEN, got %d: %s", rec.Code, rec.Body.String())
			}

			rec = s.call(t, ep.method, ep.path, adminToken, ep.body)
			if rec.Code != http.StatusOK && rec.Code != http.StatusCreated {
				t.Errorf("admin: expected success, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}

	t.Run("read only routes stay open", func(t *testing.T) {
		for _, path := range []string{"/categories/global", "/roles"} {
			if rec := s.call(t, http.MethodGet, path, userToken, nil); rec.Code != http.StatusOK {
				t.Errorf("GET %s: expected 200, got %d", path, rec.Code)
			}
		}
	})
}

func TestPasswordResetFlow(t *testing.T) {
	s := newTestServer(t, 60, 10)
	s.register(t, "ana")

	rec := s.call(t, http.MethodPost, "/auth/password-reset/request", "", map[string]string{"email": "ana@example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	code, _ := decodeObject(t, rec)["code"].(string)
	if len(code) != 6 {
		t.Fatalf("expected a six digit code in debug mode, got %q", code)
	}

	unknown := s.call(t, http.MethodPost, "/auth/password-reset/request", "", map[string]string{"email": "nobody@example.com"})
	if unknown.Code != http.StatusOK || decodeObject(t, unknown)["message"] != decodeObject(t, rec)["message"] {
		t.Errorf("unknown emails must get the same acknowledgment, got %d: %s", unknown.Code, unknown.Body.String())
	}

	confirm := map[string]string{"email": "ana@example.com", "code": code, "new_password": "otra-clave-1"}
	if rec := s.call(t, http.MethodPost, "/auth/password-reset/confirm", "", confirm); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = s.call(t, http.MethodPost, "/auth/password-reset/confirm", "", confirm)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "INVALID_RESET_CODE" {
		t.Errorf("expected a used code to be rejected, got %d: %s", rec.Code, rec.Body.String())
	}

	s.login(t, "ana", "otra-clave-1")
	rec = s.call(t, http.MethodPost, "/auth/token", "", map[string]string{"username": "ana", "password": "s3guro-pass"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected the old password to fail, got %d", rec.Code)
	}
}

func TestTokenEndpointIsRateLimited(t *testing.T) {
	s := newTestServer(t, 1, 2)
	body := map[string]string{"username": "nobody", "password": "wrong-password"}

	for i := 0; i < 2; i++ {
		if rec := s.call(t, http.MethodPost, "/auth/token", "", body); rec.Code != http.StatusUnauthorized {
			t.Fatalf("request %d: expected 401, got %d", i+1, rec.Code)
		}
	}

	rec := s.call(t, http.MethodPost, "/auth/token", "", body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected a Retry-After header")
	}

	if rec := s.call(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "ana", "email": "ana@example.com", "password": "s3guro-pass",
	}); rec.Code != http.StatusCreated {
		t.Errorf("registration must not share the token limit, got %d", rec.Code)
	}
}

func TestSwaggerDocIsServed(t *testing.T) {
	s := newTestServer(t, 60, 10)

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", http.NoBody)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("/budgets/{id}/progress")) {
		t.Error("expected the budget progress route in the swagger document")
	}
}
