package services

import (
	"encoding/json"

	"gorm.io/gorm"

	"gastos/internal/logger"
	"gastos/internal/models"
	"gastos/internal/money"
)

// AuditAction names an audited operation.
type AuditAction string

const (
	ActionRegister             AuditAction = "REGISTER"
	ActionLogin                AuditAction = "LOGIN"
	ActionUpdateProfile        AuditAction = "UPDATE_PROFILE"
	ActionCreateCategory       AuditAction = "CREATE_CATEGORY"
	ActionUpdateCategory       AuditAction = "UPDATE_CATEGORY"
	ActionDeleteCategory       AuditAction = "DELETE_CATEGORY"
	ActionCreateGlobalCategory AuditAction = "CREATE_GLOBAL_CATEGORY"
	ActionUpdateGlobalCategory AuditAction = "UPDATE_GLOBAL_CATEGORY"
	ActionDeleteGlobalCategory AuditAction = "DELETE_GLOBAL_CATEGORY"
	ActionCreateMovement       AuditAction = "CREATE_MOVEMENT"
	ActionUpdateMovement       AuditAction = "UPDATE_MOVEMENT"
	ActionDeleteMovement       AuditAction = "DELETE_MOVEMENT"
	ActionCreateBudget         AuditAction = "CREATE_BUDGET"
	ActionUpdateBudget         AuditAction = "UPDATE_BUDGET"
	ActionDeleteBudget         AuditAction = "DELETE_BUDGET"
	ActionUpdateRole           AuditAction = "UPDATE_ROLE"
)

// AuditResource identifies the row an audited operation touched. State is the
// row after the change and stays nil for deletions.
type AuditResource struct {
	Type  string
	ID    string
	State interface{}
}

// AuditEntry is one audited operation performed by UserID.
type AuditEntry struct {
	UserID    string
	Action    AuditAction
	IPAddress string
	Resource  AuditResource
}

type movementState struct {
	Amount     money.Amount        `json:"amount"`
	Type       models.MovementType `json:"type"`
	Date       string              `json:"date"`
	CategoryID string              `json:"category_id"`
}

type budgetState struct {
	Month      string       `json:"month"`
	MaxAmount  money.Amount `json:"max_amount"`
	CategoryID string       `json:"category_id"`
}

type categoryState struct {
	Name   string `json:"name"`
	Color  string `json:"color"`
	Global bool   `json:"global"`
}

type roleState struct {
	Name        models.RoleName `json:"name"`
	Description string          `json:"description"`
}

// MovementResource records a movement's amount, type, day and category.
func MovementResource(m *models.Movement) AuditResource {
	return AuditResource{Type: "movement", ID: m.ID, State: movementState{
		Amount:     m.Amount,
		Type:       m.Type,
		Date:       m.Date.Format("2006-01-02"),
		CategoryID: m.CategoryID,
	}}
}

// BudgetResource records a budget's month, limit and category.
func BudgetResource(b *models.Budget) AuditResource {
	return AuditResource{Type: "budget", ID: b.ID, State: budgetState{
		Month:      b.Month,
		MaxAmount:  b.MaxAmount,
		CategoryID: b.CategoryID,
	}}
}

// CategoryResource records a category's name and color.
func CategoryResource(c *models.Category) AuditResource {
	return AuditResource{Type: "category", ID: c.ID, State: categoryState{
		Name:   c.Name,
		Color:  c.Color,
		Global: c.IsGlobal(),
	}}
}

// RoleResource records a role's description.
func RoleResource(r *models.Role) AuditResource {
	return AuditResource{Type: "role", ID: r.ID, State: roleState{Name: r.Name, Description: r.Description}}
}

// UserResource points at a user account without recording its fields.
func UserResource(userID string) AuditResource {
	return AuditResource{Type: "user", ID: userID}
}

// DeletedResource points at a row that no longer exists.
func DeletedResource(resourceType, id string) AuditResource {
	return AuditResource{Type: resourceType, ID: id}
}

// auditService handles audit log recording.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log stores the entry. Failures are logged and never reach the caller.
func (s *auditService) Log(entry AuditEntry) {
	log := logger.Get().With(
		"user_id", entry.UserID,
		"action", entry.Action,
		"resource_type", entry.Resource.Type,
		"resource_id", entry.Resource.ID,
	)

	row := &models.AuditLog{
		UserID:       entry.UserID,
		Action:       string(entry.Action),
		ResourceType: entry.Resource.Type,
		ResourceID:   entry.Resource.ID,
		IPAddress:    entry.IPAddress,
	}
	if entry.Resource.State != nil {
		data, err := json.Marshal(entry.Resource.State)
		if err != nil {
			log.Errorw("failed to marshal audit state", "error", err)
		} else {
			row.Changes = string(data)
		}
	}

	if err := s.db.Create(row).Error; err != nil {
		log.Errorw("failed to create audit log entry", "error", err)
	}
}
