package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "gastos/internal/errors"
	"gastos/internal/reports"
)

// reportService builds per-user reports.
type reportService struct {
	db *gorm.DB
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB) ReportServicer {
	return &reportService{db: db}
}

// Summary aggregates the user's movements dated within [start, end].
func (s *reportService) Summary(userID string, start, end *time.Time) (*Summary, error) {
	scopes := []reports.Scope{
		reports.ForUser(userID),
		reports.DateRange(dayPtr(start), dayPtr(end)),
	}

	totals, err := reports.ComputeTotals(s.db, scopes...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	breakdown, err := reports.CategoryBreakdown(s.db, 0, scopes...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	monthly, err := reports.MonthlySeries(s.db, scopes...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &Summary{
		Income:            totals.Income,
		Expense:           totals.Expense,
		Balance:           totals.Balance,
		CategoryBreakdown: breakdown,
		Monthly:           monthly,
	}, nil
}

func dayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := calendarDay(*t)
	return &d
}
