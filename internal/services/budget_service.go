package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gastos/internal/database"
	apperrors "gastos/internal/errors"
	"gastos/internal/models"
	"gastos/internal/money"
	"gastos/internal/reports"
	"gastos/internal/validator"
)

var hundred = decimal.NewFromInt(100)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateBudget creates a monthly budget for a category the user can use.
// One budget per user, category and month is allowed.
func (s *budgetService) CreateBudget(userID, categoryID, month string, maxAmount money.Amount) (*models.Budget, error) {
	if err := validateMonth(month); err != nil {
		return nil, err
	}
	if err := validateAmount("max_amount", maxAmount); err != nil {
		return nil, err
	}
	if _, err := assignableCategory(s.db, userID, categoryID); err != nil {
		return nil, err
	}

	budget := &models.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Month:      month,
		MaxAmount:  maxAmount,
	}
	if err := s.db.Create(budget).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateBudget
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetBudgetByID(userID, budget.ID)
}

// ListBudgets returns the user's budgets, latest month first.
func (s *budgetService) ListBudgets(userID string) ([]models.Budget, error) {
	budgets := []models.Budget{}
	err := s.db.Preload("Category").
		Where("user_id = ?", userID).
		Order("month DESC, created_at DESC").
		Find(&budgets).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Preload("Category").Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget updates an existing budget's fields.
func (s *budgetService) UpdateBudget(userID, budgetID string, input BudgetUpdate) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.CategoryID != nil {
		if _, err := assignableCategory(s.db, userID, *input.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *input.CategoryID
	}
	if input.Month != nil {
		if err := validateMonth(*input.Month); err != nil {
			return nil, err
		}
		updates["month"] = *input.Month
	}
	if input.MaxAmount != nil {
		if err := validateAmount("max_amount", *input.MaxAmount); err != nil {
			return nil, err
		}
		updates["max_amount"] = *input.MaxAmount
	}

	if len(updates) > 0 {
		err := s.db.Model(&models.Budget{}).
			Where("id = ? AND user_id = ?", budget.ID, userID).
			Updates(updates).Error
		if err != nil {
			if database.IsUniqueViolation(err) {
				return nil, apperrors.ErrDuplicateBudget
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetBudgetByID(userID, budget.ID)
}

// DeleteBudget deletes a budget the user owns.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(&models.Budget{}, "id = ?", budget.ID).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetBudgetProgress compares the budget with the user's expenses in its
// category during its month.
func (s *budgetService) GetBudgetProgress(userID, budgetID string) (*BudgetProgress, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	monthStart, err := time.Parse("2006-01", budget.Month)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	monthEnd := monthStart.AddDate(0, 1, -1)

	totals, err := reports.ComputeTotals(s.db,
		reports.ForUser(userID),
		reports.DateRange(&monthStart, &monthEnd),
		func(db *gorm.DB) *gorm.DB { return db.Where("movements.category_id = ?", budget.CategoryID) },
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	spent := totals.Expense
	var percentage float64
	if budget.MaxAmount.IsPositive() {
		percentage, _ = spent.Div(budget.MaxAmount.Decimal).Mul(hundred).Round(2).Float64()
	}

	return &BudgetProgress{
		BudgetID:   budget.ID,
		Month:      budget.Month,
		Budgeted:   budget.MaxAmount,
		Spent:      spent,
		Remaining:  budget.MaxAmount.Sub(spent),
		Percentage: percentage,
	}, nil
}

func validateMonth(month string) error {
	if !validator.IsYearMonth(month) {
		return apperrors.WithField(apperrors.ErrInvalidInput, "month", "Formato inválido. Use YYYY-MM.")
	}
	return nil
}
