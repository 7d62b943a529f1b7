package handlers

import (
	"time"

	"gastos/internal/models"
	"gastos/internal/money"
)

// UserResponse is the public representation of a user.
type UserResponse struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	PreferredCurrency string    `json:"preferred_currency"`
	RegisteredAt      time.Time `json:"registered_at"`
	Role              *string   `json:"role"`
	RoleName          string    `json:"role_name"`
	IsAdmin           bool      `json:"is_admin"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		PreferredCurrency: u.PreferredCurrency,
		RegisteredAt:      u.CreatedAt,
		Role:              u.RoleID,
		RoleName:          u.RoleDisplayName(),
		IsAdmin:           u.IsAdmin(),
	}
}

// RoleResponse is the public representation of a role.
type RoleResponse struct {
	ID          string          `json:"id"`
	Name        models.RoleName `json:"name"`
	DisplayName string          `json:"display_name"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

func newRoleResponse(r *models.Role) RoleResponse {
	return RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		DisplayName: r.Name.DisplayName(),
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}
}

// CategoryResponse is the public representation of a category.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	IsDefault bool      `json:"is_default"`
	IsGlobal  bool      `json:"is_global"`
	CreatedAt time.Time `json:"created_at"`
}

func newCategoryResponse(c *models.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Color:     c.Color,
		IsDefault: c.IsDefault,
		IsGlobal:  c.IsGlobal(),
		CreatedAt: c.CreatedAt,
	}
}

func newCategoryResponses(categories []models.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, newCategoryResponse(&categories[i]))
	}
	return out
}

// MovementResponse is the public representation of a movement.
type MovementResponse struct {
	ID            string              `json:"id"`
	Amount        money.Amount        `json:"amount"`
	Type          models.MovementType `json:"type"`
	Date          string              `json:"date"`
	Description   string              `json:"description"`
	CategoryID    string              `json:"category_id"`
	CategoryName  string              `json:"category_name"`
	CategoryColor string              `json:"category_color"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func newMovementResponse(m *models.Movement) MovementResponse {
	resp := MovementResponse{
		ID:          m.ID,
		Amount:      m.Amount,
		Type:        m.Type,
		Date:        m.Date.Format(dateLayout),
		Description: m.Description,
		CategoryID:  m.CategoryID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Category != nil {
		resp.CategoryName = m.Category.Name
		resp.CategoryColor = m.Category.Color
	}
	return resp
}

// BudgetResponse is the public representation of a budget.
type BudgetResponse struct {
	ID           string       `json:"id"`
	Month        string       `json:"month"`
	MaxAmount    money.Amount `json:"max_amount"`
	CategoryID   string       `json:"category_id"`
	CategoryName string       `json:"category_name"`
	CreatedAt    time.Time    `json:"created_at"`
}

func newBudgetResponse(b *models.Budget) BudgetResponse {
	resp := BudgetResponse{
		ID:         b.ID,
		Month:      b.Month,
		MaxAmount:  b.MaxAmount,
		CategoryID: b.CategoryID,
		CreatedAt:  b.CreatedAt,
	}
	if b.Category != nil {
		resp.CategoryName = b.Category.Name
	}
	return resp
}
