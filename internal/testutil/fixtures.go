package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gastos/internal/models"
	"gastos/internal/money"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// GetRole loads one of the seeded roles.
func GetRole(t *testing.T, db *gorm.DB, name models.RoleName) *models.Role {
	t.Helper()

	var role models.Role
	if err := db.Where("name = ?", name).First(&role).Error; err != nil {
		t.Fatalf("failed to load role %s: %v", name, err)
	}
	return &role
}

// CreateTestUser creates a regular user with a hashed password and unique
// username and email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return createUser(t, db, models.RoleUser)
}

// CreateTestAdmin creates a user holding the admin role.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return createUser(t, db, models.RoleAdmin)
}

// CreateTestUserWithEmail creates a regular user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := newUser(t, db, models.RoleUser)
	user.Email = email
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createUser(t *testing.T, db *gorm.DB, role models.RoleName) *models.User {
	t.Helper()

	user := newUser(t, db, role)
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func newUser(t *testing.T, db *gorm.DB, roleName models.RoleName) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	role := GetRole(t, db, roleName)
	n := nextID()
	return &models.User{
		Username:          fmt.Sprintf("user%d", n),
		Email:             fmt.Sprintf("user%d@test.com", n),
		Password:          string(hash),
		PreferredCurrency: "USD",
		IsActive:          true,
		RoleID:            &role.ID,
		Role:              role,
	}
}

// CreateTestCategory creates a category owned by userID.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string) *models.Category {
	t.Helper()
	return CreateTestNamedCategory(t, db, &userID, fmt.Sprintf("Test Category %d", nextID()))
}

// CreateTestGlobalCategory creates a category without owner.
func CreateTestGlobalCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	return CreateTestNamedCategory(t, db, nil, name)
}

// CreateTestNamedCategory creates a category with the given owner and name.
func CreateTestNamedCategory(t *testing.T, db *gorm.DB, userID *string, name string) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:      name,
		Color:     models.DefaultCategoryColor,
		UserID:    userID,
		IsDefault: userID == nil,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestMovement creates a movement dated date with the given amount ("12.50").
func CreateTestMovement(t *testing.T, db *gorm.DB, userID, categoryID string, movementType models.MovementType, amount string, date time.Time) *models.Movement {
	t.Helper()

	movement := &models.Movement{
		UserID:      userID,
		CategoryID:  categoryID,
		Type:        movementType,
		Amount:      money.MustParse(amount),
		Date:        date,
		Description: fmt.Sprintf("Test movement %d", nextID()),
	}
	if err := db.Create(movement).Error; err != nil {
		t.Fatalf("failed to create test movement: %v", err)
	}
	return movement
}

// CreateTestBudget creates a budget for the given category and month (YYYY-MM).
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, categoryID, month string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Month:      month,
		MaxAmount:  money.MustParse("100.00"),
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestResetCode creates an unused reset code issued at createdAt.
func CreateTestResetCode(t *testing.T, db *gorm.DB, userID, code string, createdAt time.Time) *models.PasswordResetCode {
	t.Helper()

	reset := &models.PasswordResetCode{UserID: userID, Code: code}
	reset.CreatedAt = createdAt
	reset.UpdatedAt = createdAt
	if err := db.Create(reset).Error; err != nil {
		t.Fatalf("failed to create test reset code: %v", err)
	}
	return reset
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
