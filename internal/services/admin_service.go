package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "gastos/internal/errors"
	"gastos/internal/models"
	"gastos/internal/pagination"
	"gastos/internal/reports"
)

// dashboardTopN bounds the top users and top categories of the dashboard.
const dashboardTopN = 10

// adminService computes rollups over every user.
type adminService struct {
	db *gorm.DB
}

// NewAdminService creates a new AdminServicer.
func NewAdminService(db *gorm.DB) AdminServicer {
	return &adminService{db: db}
}

// ListUsers returns a page of users with their movement totals.
func (s *adminService) ListUsers(page pagination.PageRequest) (*pagination.PageResponse[UserSummary], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.User{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var users []models.User
	err := s.db.Preload("Role").
		Order("created_at ASC, username ASC").
		Scopes(pagination.Paginate(page)).
		Find(&users).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	totals, err := reports.TotalsByUser(s.db, ids)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summaries := make([]UserSummary, len(users))
	for i := range users {
		u := &users[i]
		t := totals[u.ID]
		summaries[i] = UserSummary{
			ID:             u.ID,
			Username:       u.Username,
			Email:          u.Email,
			FirstName:      u.FirstName,
			LastName:       u.LastName,
			Role:           u.RoleDisplayName(),
			RegisteredAt:   u.CreatedAt,
			TotalMovements: t.Count,
			TotalIncome:    t.Income,
			TotalExpense:   t.Expense,
			Balance:        t.Balance,
		}
	}

	result := pagination.NewPageResponse(summaries, page, totalItems)
	return &result, nil
}

// GetUserDetail returns the full rollup of one user.
func (s *adminService) GetUserDetail(userID string) (*UserDetail, error) {
	var user models.User
	if err := s.db.Preload("Role").Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	scope := reports.ForUser(user.ID)
	totals, err := reports.ComputeTotals(s.db, scope)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	breakdown, err := reports.CategoryBreakdown(s.db, 0, scope)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	monthly, err := reports.MonthlySeries(s.db, scope)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categoryCount, budgetCount int64
	if err := s.db.Model(&models.Category{}).Where("user_id = ?", user.ID).Count(&categoryCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.Budget{}).Where("user_id = ?", user.ID).Count(&budgetCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &UserDetail{
		ID:                user.ID,
		Username:          user.Username,
		Email:             user.Email,
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		PreferredCurrency: user.PreferredCurrency,
		Role:              user.RoleDisplayName(),
		RegisteredAt:      user.CreatedAt,
		Statistics: UserStatistics{
			TotalMovements:  totals.Count,
			TotalIncome:     totals.Income,
			TotalExpense:    totals.Expense,
			Balance:         totals.Balance,
			TotalCategories: categoryCount,
			TotalBudgets:    budgetCount,
		},
		CategoryBreakdown: breakdown,
		Monthly:           monthly,
	}, nil
}

// Dashboard returns system-wide statistics.
func (s *adminService) Dashboard() (*Dashboard, error) {
	var d Dashboard

	if err := s.db.Model(&models.User{}).Count(&d.TotalUsers).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	var err error
	if d.AdminUsers, err = s.countUsersWithRole(models.RoleAdmin); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if d.RegularUsers, err = s.countUsersWithRole(models.RoleUser); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totals, err := reports.ComputeTotals(s.db)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	d.TotalMovements = totals.Count
	d.TotalIncome = totals.Income
	d.TotalExpense = totals.Expense
	d.TotalBalance = totals.Balance

	if d.TopUsers, err = reports.TopUsersByActivity(s.db, dashboardTopN); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if d.TopCategories, err = reports.CategoryBreakdown(s.db, dashboardTopN); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &d, nil
}

func (s *adminService) countUsersWithRole(name models.RoleName) (int64, error) {
	var count int64
	err := s.db.Model(&models.User{}).
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("roles.name = ?", name).
		Count(&count).Error
	return count, err
}
