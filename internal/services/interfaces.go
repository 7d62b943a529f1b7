package services

import (
	"context"
	"time"

	"gastos/internal/models"
	"gastos/internal/money"
	"gastos/internal/pagination"
	"gastos/internal/reports"
)

// RegisterInput holds the fields accepted at registration.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// ProfileUpdate holds the editable profile fields. Nil fields are left untouched.
type ProfileUpdate struct {
	Username          *string
	Email             *string
	FirstName         *string
	LastName          *string
	PreferredCurrency *string
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(input RegisterInput) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(login, password string) (*models.User, error)
	UpdateProfile(userID string, input ProfileUpdate) (*models.User, error)
}

// RoleServicer defines the contract for role management.
type RoleServicer interface {
	EnsureDefaultRoles() error
	ListRoles() ([]models.Role, error)
	GetRoleByID(id string) (*models.Role, error)
	UpdateRoleDescription(id, description string) (*models.Role, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	ResolveUserCategories(userID string) ([]models.Category, error)
	GetVisibleCategory(userID, categoryID string) (*models.Category, error)
	CreateCategory(userID, name, color string) (*models.Category, error)
	UpdateCategory(userID, categoryID string, name, color *string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error

	EnsureDefaultCategories() error
	ListGlobalCategories() ([]models.Category, error)
	CreateGlobalCategory(name, color string) (*models.Category, error)
	UpdateGlobalCategory(categoryID string, name, color *string) (*models.Category, error)
	DeleteGlobalCategory(categoryID string) error
}

// MovementFilter holds optional filter parameters for listing movements.
type MovementFilter struct {
	Start      *time.Time
	End        *time.Time
	CategoryID *string
	Type       *models.MovementType
}

// MovementInput holds the fields of a new movement.
type MovementInput struct {
	Amount      money.Amount
	Type        models.MovementType
	Date        time.Time
	Description string
	CategoryID  string
}

// MovementUpdate holds the editable movement fields. Nil fields are left untouched.
type MovementUpdate struct {
	Amount      *money.Amount
	Type        *models.MovementType
	Date        *time.Time
	Description *string
	CategoryID  *string
}

// MovementServicer defines the contract for movement-related business logic.
type MovementServicer interface {
	CreateMovement(userID string, input MovementInput) (*models.Movement, error)
	ListMovements(userID string, filter MovementFilter) ([]models.Movement, error)
	GetMovementByID(userID, movementID string) (*models.Movement, error)
	UpdateMovement(userID, movementID string, input MovementUpdate) (*models.Movement, error)
	DeleteMovement(userID, movementID string) error
}

// BudgetUpdate holds the editable budget fields. Nil fields are left untouched.
type BudgetUpdate struct {
	CategoryID *string
	Month      *string
	MaxAmount  *money.Amount
}

// BudgetProgress contains spending vs budget data for a budget's month.
type BudgetProgress struct {
	BudgetID   string       `json:"budget_id"`
	Month      string       `json:"month"`
	Budgeted   money.Amount `json:"budgeted"`
	Spent      money.Amount `json:"spent"`
	Remaining  money.Amount `json:"remaining"`
	Percentage float64      `json:"percentage"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID, categoryID, month string, maxAmount money.Amount) (*models.Budget, error)
	ListBudgets(userID string) ([]models.Budget, error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	UpdateBudget(userID, budgetID string, input BudgetUpdate) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	GetBudgetProgress(userID, budgetID string) (*BudgetProgress, error)
}

// Summary is the single-user report.
type Summary struct {
	Income            money.Amount            `json:"income"`
	Expense           money.Amount            `json:"expense"`
	Balance           money.Amount            `json:"balance"`
	CategoryBreakdown []reports.CategoryTotal `json:"category_breakdown"`
	Monthly           []reports.MonthlyTotal  `json:"monthly"`
}

// ReportServicer defines the contract for per-user reports.
type ReportServicer interface {
	Summary(userID string, start, end *time.Time) (*Summary, error)
}

// UserSummary is one row of the admin user list.
type UserSummary struct {
	ID             string       `json:"id"`
	Username       string       `json:"username"`
	Email          string       `json:"email"`
	FirstName      string       `json:"first_name"`
	LastName       string       `json:"last_name"`
	Role           string       `json:"role"`
	RegisteredAt   time.Time    `json:"registered_at"`
	TotalMovements int64        `json:"total_movements"`
	TotalIncome    money.Amount `json:"total_income"`
	TotalExpense   money.Amount `json:"total_expense"`
	Balance        money.Amount `json:"balance"`
}

// UserStatistics holds the per-user rollup shown to admins.
type UserStatistics struct {
	TotalMovements  int64        `json:"total_movements"`
	TotalIncome     money.Amount `json:"total_income"`
	TotalExpense    money.Amount `json:"total_expense"`
	Balance         money.Amount `json:"balance"`
	TotalCategories int64        `json:"total_categories"`
	TotalBudgets    int64        `json:"total_budgets"`
}

// UserDetail is the full admin view of one user.
type UserDetail struct {
	ID                string                  `json:"id"`
	Username          string                  `json:"username"`
	Email             string                  `json:"email"`
	FirstName         string                  `json:"first_name"`
	LastName          string                  `json:"last_name"`
	PreferredCurrency string                  `json:"preferred_currency"`
	Role              string                  `json:"role"`
	RegisteredAt      time.Time               `json:"registered_at"`
	Statistics        UserStatistics          `json:"statistics"`
	CategoryBreakdown []reports.CategoryTotal `json:"category_breakdown"`
	Monthly           []reports.MonthlyTotal  `json:"monthly"`
}

// Dashboard holds system-wide statistics.
type Dashboard struct {
	TotalUsers     int64                   `json:"total_users"`
	AdminUsers     int64                   `json:"admin_users"`
	RegularUsers   int64                   `json:"regular_users"`
	TotalMovements int64                   `json:"total_movements"`
	TotalIncome    money.Amount            `json:"total_income"`
	TotalExpense   money.Amount            `json:"total_expense"`
	TotalBalance   money.Amount            `json:"total_balance"`
	TopUsers       []reports.UserActivity  `json:"top_users"`
	TopCategories  []reports.CategoryTotal `json:"top_categories"`
}

// AdminServicer defines the contract for admin rollups over all users.
type AdminServicer interface {
	ListUsers(page pagination.PageRequest) (*pagination.PageResponse[UserSummary], error)
	GetUserDetail(userID string) (*UserDetail, error)
	Dashboard() (*Dashboard, error)
}

// PasswordResetServicer defines the contract for the password reset flow.
type PasswordResetServicer interface {
	RequestReset(ctx context.Context, email string) (string, error)
	ConfirmReset(ctx context.Context, email, code, newPassword string) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(entry AuditEntry)
}
