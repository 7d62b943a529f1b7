package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "gastos/internal/errors"
	"gastos/internal/models"
	"gastos/internal/money"
	"gastos/internal/pagination"
	"gastos/internal/services"
	"gastos/internal/validator"
)

const (
	testUserID     = "0190a7b2-0000-7000-8000-000000000001"
	testCategoryID = "0190a7b2-0000-7000-8000-0000000000c1"
	testMovementID = "0190a7b2-0000-7000-8000-0000000000d1"
	testBudgetID   = "0190a7b2-0000-7000-8000-0000000000b1"
	testRoleID     = "0190a7b2-0000-7000-8000-0000000000e1"
)

// --- mock user service ---

type mockUserService struct {
	createUserFn    func(input services.RegisterInput) (*models.User, error)
	getUserByIDFn   func(id string) (*models.User, error)
	attemptLoginFn  func(login, password string) (*models.User, error)
	updateProfileFn func(userID string, input services.ProfileUpdate) (*models.User, error)
}

func (m *mockUserService) CreateUser(input services.RegisterInput) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(input)
	}
	return testUser(models.RoleUser), nil
}

func (m *mockUserService) GetUserByEmail(_ string) (*models.User, error) {
	return nil, apperrors.ErrUserNotFound
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return testUser(models.RoleUser), nil
}

func (m *mockUserService) VerifyPassword(_ *models.User, _ string) bool { return false }

func (m *mockUserService) AttemptLogin(login, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(login, password)
	}
	return testUser(models.RoleUser), nil
}

func (m *mockUserService) UpdateProfile(userID string, input services.ProfileUpdate) (*models.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(userID, input)
	}
	return testUser(models.RoleUser), nil
}

var _ services.UserServicer = (*mockUserService)(nil)

// --- mock role service ---

type mockRoleService struct {
	updateRoleDescriptionFn func(id, description string) (*models.Role, error)
}

func (m *mockRoleService) EnsureDefaultRoles() error { return nil }

func (m *mockRoleService) ListRoles() ([]models.Role, error) {
	return []models.Role{testRole(models.RoleAdmin), testRole(models.RoleUser)}, nil
}

func (m *mockRoleService) GetRoleByID(id string) (*models.Role, error) {
	if id != testRoleID {
		return nil, apperrors.ErrRoleNotFound
	}
	r := testRole(models.RoleUser)
	return &r, nil
}

func (m *mockRoleService) UpdateRoleDescription(id, description string) (*models.Role, error) {
	if m.updateRoleDescriptionFn != nil {
		return m.updateRoleDescriptionFn(id, description)
	}
	r := testRole(models.RoleUser)
	r.Description = description
	return &r, nil
}

var _ services.RoleServicer = (*mockRoleService)(nil)

// --- mock category service ---

type mockCategoryService struct {
	resolveFn      func(userID string) ([]models.Category, error)
	getVisibleFn   func(userID, categoryID string) (*models.Category, error)
	createFn       func(userID, name, color string) (*models.Category, error)
	updateFn       func(userID, categoryID string, name, color *string) (*models.Category, error)
	deleteFn       func(userID, categoryID string) error
	createGlobalFn func(name, color string) (*models.Category, error)
}

func (m *mockCategoryService) ResolveUserCategories(userID string) ([]models.Category, error) {
	if m.resolveFn != nil {
		return m.resolveFn(userID)
	}
	return []models.Category{}, nil
}

func (m *mockCategoryService) GetVisibleCategory(userID, categoryID string) (*models.Category, error) {
	if m.getVisibleFn != nil {
		return m.getVisibleFn(userID, categoryID)
	}
	return testCategory("Gym", &userID), nil
}

func (m *mockCategoryService) CreateCategory(userID, name, color string) (*models.Category, error) {
	if m.createFn != nil {
		return m.createFn(userID, name, color)
	}
	c := testCategory(name, &userID)
	c.Color = color
	return c, nil
}

func (m *mockCategoryService) UpdateCategory(userID, categoryID string, name, color *string) (*models.Category, error) {
	if m.updateFn != nil {
		return m.updateFn(userID, categoryID, name, color)
	}
	return testCategory("Gym", &userID), nil
}

func (m *mockCategoryService) DeleteCategory(userID, categoryID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(userID, categoryID)
	}
	return nil
}

func (m *mockCategoryService) EnsureDefaultCategories() error { return nil }

func (m *mockCategoryService) ListGlobalCategories() ([]models.Category, error) {
	return []models.Category{*testCategory("Salud", nil)}, nil
}

func (m *mockCategoryService) CreateGlobalCategory(name, color string) (*models.Category, error) {
	if m.createGlobalFn != nil {
		return m.createGlobalFn(name, color)
	}
	return testCategory(name, nil), nil
}

func (m *mockCategoryService) UpdateGlobalCategory(_ string, _, _ *string) (*models.Category, error) {
	return testCategory("Salud", nil), nil
}

func (m *mockCategoryService) DeleteGlobalCategory(_ string) error { return nil }

var _ services.CategoryServicer = (*mockCategoryService)(nil)

// --- mock movement service ---

type mockMovementService struct {
	createFn func(userID string, input services.MovementInput) (*models.Movement, error)
	listFn   func(userID string, filter services.MovementFilter) ([]models.Movement, error)
	getFn    func(userID, movementID string) (*models.Movement, error)
	updateFn func(userID, movementID string, input services.MovementUpdate) (*models.Movement, error)
	deleteFn func(userID, movementID string) error
}

func (m *mockMovementService) CreateMovement(userID string, input services.MovementInput) (*models.Movement, error) {
	if m.createFn != nil {
		return m.createFn(userID, input)
	}
	return testMovement(), nil
}

func (m *mockMovementService) ListMovements(userID string, filter services.MovementFilter) ([]models.Movement, error) {
	if m.listFn != nil {
		return m.listFn(userID, filter)
	}
	return []models.Movement{}, nil
}

func (m *mockMovementService) GetMovementByID(userID, movementID string) (*models.Movement, error) {
	if m.getFn != nil {
		return m.getFn(userID, movementID)
	}
	return testMovement(), nil
}

func (m *mockMovementService) UpdateMovement(userID, movementID string, input services.MovementUpdate) (*models.Movement, error) {
	if m.updateFn != nil {
		return m.updateFn(userID, movementID, input)
	}
	return testMovement(), nil
}

func (m *mockMovementService) DeleteMovement(userID, movementID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(userID, movementID)
	}
	return nil
}

var _ services.MovementServicer = (*mockMovementService)(nil)

// --- mock budget service ---

type mockBudgetService struct {
	createBudgetFn      func(userID, categoryID, month string, maxAmount money.Amount) (*models.Budget, error)
	getBudgetByIDFn     func(userID, budgetID string) (*models.Budget, error)
	updateBudgetFn      func(userID, budgetID string, input services.BudgetUpdate) (*models.Budget, error)
	deleteBudgetFn      func(userID, budgetID string) error
	getBudgetProgressFn func(userID, budgetID string) (*services.BudgetProgress, error)
}

func (m *mockBudgetService) CreateBudget(userID, categoryID, month string, maxAmount money.Amount) (*models.Budget, error) {
	if m.createBudgetFn != nil {
		return m.createBudgetFn(userID, categoryID, month, maxAmount)
	}
	return testBudget(), nil
}

func (m *mockBudgetService) ListBudgets(_ string) ([]models.Budget, error) {
	return []models.Budget{*testBudget()}, nil
}

func (m *mockBudgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	if m.getBudgetByIDFn != nil {
		return m.getBudgetByIDFn(userID, budgetID)
	}
	return testBudget(), nil
}

func (m *mockBudgetService) UpdateBudget(userID, budgetID string, input services.BudgetUpdate) (*models.Budget, error) {
	if m.updateBudgetFn != nil {
		return m.updateBudgetFn(userID, budgetID, input)
	}
	return testBudget(), nil
}

func (m *mockBudgetService) DeleteBudget(userID, budgetID string) error {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(userID, budgetID)
	}
	return nil
}

func (m *mockBudgetService) GetBudgetProgress(userID, budgetID string) (*services.BudgetProgress, error) {
	if m.getBudgetProgressFn != nil {
		return m.getBudgetProgressFn(userID, budgetID)
	}
	return &services.BudgetProgress{}, nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

// --- mock report, admin and reset services ---

type mockReportService struct {
	summaryFn func(userID string, start, end *time.Time) (*services.Summary, error)
}

func (m *mockReportService) Summary(userID string, start, end *time.Time) (*services.Summary, error) {
	if m.summaryFn != nil {
		return m.summaryFn(userID, start, end)
	}
	return &services.Summary{}, nil
}

type mockAdminService struct {
	listUsersFn     func(page pagination.PageRequest) (*pagination.PageResponse[services.UserSummary], error)
	getUserDetailFn func(userID string) (*services.UserDetail, error)
}

func (m *mockAdminService) ListUsers(page pagination.PageRequest) (*pagination.PageResponse[services.UserSummary], error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(page)
	}
	resp := pagination.NewPageResponse([]services.UserSummary{}, pagination.PageRequest{}, 0)
	return &resp, nil
}

func (m *mockAdminService) GetUserDetail(userID string) (*services.UserDetail, error) {
	if m.getUserDetailFn != nil {
		return m.getUserDetailFn(userID)
	}
	return &services.UserDetail{ID: userID}, nil
}

func (m *mockAdminService) Dashboard() (*services.Dashboard, error) {
	return &services.Dashboard{TotalUsers: 3, AdminUsers: 1, RegularUsers: 2}, nil
}

type mockResetService struct {
	requestFn func(email string) (string, error)
	confirmFn func(email, code, newPassword string) error
}

func (m *mockResetService) RequestReset(_ context.Context, email string) (string, error) {
	if m.requestFn != nil {
		return m.requestFn(email)
	}
	return "", nil
}

func (m *mockResetService) ConfirmReset(_ context.Context, email, code, newPassword string) error {
	if m.confirmFn != nil {
		return m.confirmFn(email, code, newPassword)
	}
	return nil
}

type auditEntry struct {
	userID, action, resourceType, resourceID string
}

type mockAuditService struct {
	entries []auditEntry
}

func (m *mockAuditService) Log(entry services.AuditEntry) {
	m.entries = append(m.entries, auditEntry{entry.UserID, string(entry.Action), entry.Resource.Type, entry.Resource.ID})
}

// --- fixtures ---

func testRole(name models.RoleName) models.Role {
	r := models.Role{Name: name}
	r.ID = testRoleID
	return r
}

func testUser(role models.RoleName) *models.User {
	r := testRole(role)
	u := &models.User{
		Username:          "ana",
		Email:             "ana@example.com",
		FirstName:         "Ana",
		PreferredCurrency: "USD",
		IsActive:          true,
		RoleID:            &r.ID,
		Role:              &r,
	}
	u.ID = testUserID
	u.CreatedAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return u
}

func testCategory(name string, owner *string) *models.Category {
	c := &models.Category{Name: name, Color: "#ef4444", UserID: owner, IsDefault: owner == nil}
	c.ID = testCategoryID
	return c
}

func testMovement() *models.Movement {
	m := &models.Movement{
		Amount:     money.MustParse("40"),
		Type:       models.MovementTypeExpense,
		Date:       time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		CategoryID: testCategoryID,
		UserID:     testUserID,
		Category:   testCategory("Salud", nil),
	}
	m.ID = testMovementID
	return m
}

func testBudget() *models.Budget {
	b := &models.Budget{
		UserID:     testUserID,
		CategoryID: testCategoryID,
		Month:      "2024-03",
		MaxAmount:  money.MustParse("250"),
		Category:   testCategory("Salud", nil),
	}
	b.ID = testBudgetID
	return b
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func parseJSONArray(t *testing.T, rec *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	var result []interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON array: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func assertErrorField(t *testing.T, result map[string]interface{}, field string) {
	t.Helper()
	errObj, _ := result["error"].(map[string]interface{})
	fields, ok := errObj["fields"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected field errors, got: %v", result)
	}
	if _, ok := fields[field]; !ok {
		t.Errorf("expected field error for %q, got %v", field, fields)
	}
}

var (
	_ services.ReportServicer        = (*mockReportService)(nil)
	_ services.AdminServicer         = (*mockAdminService)(nil)
	_ services.PasswordResetServicer = (*mockResetService)(nil)
	_ services.AuditServicer         = (*mockAuditService)(nil)
)
