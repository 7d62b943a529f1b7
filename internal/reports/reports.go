// Package reports aggregates movements into totals, per-category expense
// breakdowns and monthly series. Every query works on postgres and sqlite.
package reports

import (
	"sort"
	"time"

	"gastos/internal/models"
	"gastos/internal/money"

	"gorm.io/gorm"
)

// MonthLayout is the format of the month key in monthly series.
const MonthLayout = "2006-01-02"

// Scope narrows the set of movements being aggregated.
type Scope = func(*gorm.DB) *gorm.DB

// ForUser restricts aggregation to the movements of one owner.
func ForUser(userID string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("movements.user_id = ?", userID)
	}
}

// DateRange restricts aggregation to movements dated within [start, end].
// Nil bounds are open.
func DateRange(start, end *time.Time) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if start != nil {
			db = db.Where("movements.date >= ?", *start)
		}
		if end != nil {
			db = db.Where("movements.date <= ?", *end)
		}
		return db
	}
}

// Totals holds income, expense and their difference.
type Totals struct {
	Count   int64        `json:"total_movements"`
	Income  money.Amount `json:"income"`
	Expense money.Amount `json:"expense"`
	Balance money.Amount `json:"balance"`
}

// CategoryTotal is the expense sum of one category.
type CategoryTotal struct {
	Name  string       `json:"category_name"`
	Color string       `json:"category_color"`
	Total money.Amount `json:"total"`
}

// MonthlyTotal is the sum of one movement type within one calendar month.
// Month is the first day of the month formatted as YYYY-MM-01.
type MonthlyTotal struct {
	Month string              `json:"month"`
	Type  models.MovementType `json:"type"`
	Total money.Amount        `json:"total"`
}

// Row is a single movement reduced to the columns monthly grouping needs.
type Row struct {
	Date   time.Time
	Type   models.MovementType
	Amount money.Amount
}

type typeTotal struct {
	Type  models.MovementType
	Count int64
	Total money.Amount
}

// ComputeTotals sums income and expense over the scoped movements. Missing
// types count as zero.
func ComputeTotals(db *gorm.DB, scopes ...Scope) (Totals, error) {
	var rows []typeTotal
	err := db.Model(&models.Movement{}).
		Scopes(scopes...).
		Select("movements.type AS type, COUNT(*) AS count, COALESCE(SUM(movements.amount), 0) AS total").
		Group("movements.type").
		Scan(&rows).Error
	if err != nil {
		return Totals{}, err
	}
	return totalsFromRows(rows), nil
}

func totalsFromRows(rows []typeTotal) Totals {
	t := Totals{Income: money.Zero(), Expense: money.Zero()}
	for _, r := range rows {
		t.Count += r.Count
		switch r.Type {
		case models.MovementTypeIncome:
			t.Income = t.Income.Add(r.Total)
		case models.MovementTypeExpense:
			t.Expense = t.Expense.Add(r.Total)
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	return t
}

// CategoryBreakdown sums expenses per category ordered by total descending,
// then name ascending. A limit of zero returns every category.
func CategoryBreakdown(db *gorm.DB, limit int, scopes ...Scope) ([]CategoryTotal, error) {
	q := db.Model(&models.Movement{}).
		Scopes(scopes...).
		Joins("JOIN categories ON categories.id = movements.category_id").
		Where("movements.type = ?", models.MovementTypeExpense).
		Select("categories.name AS name, categories.color AS color, SUM(movements.amount) AS total").
		Group("categories.name, categories.color").
		Order("total DESC, categories.name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	result := []CategoryTotal{}
	if err := q.Scan(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// MonthlySeries sums the scoped movements per calendar month and type.
func MonthlySeries(db *gorm.DB, scopes ...Scope) ([]MonthlyTotal, error) {
	var rows []Row
	err := db.Model(&models.Movement{}).
		Scopes(scopes...).
		Select("movements.date AS date, movements.type AS type, movements.amount AS amount").
		Order("movements.date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return GroupMonthly(rows), nil
}

// GroupMonthly buckets rows by the first day of their month and type,
// ordered by month ascending then type ascending.
func GroupMonthly(rows []Row) []MonthlyTotal {
	type key struct {
		month string
		typ   models.MovementType
	}

	sums := make(map[key]money.Amount)
	for _, r := range rows {
		d := r.Date.UTC()
		k := key{
			month: time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).Format(MonthLayout),
			typ:   r.Type,
		}
		if cur, ok := sums[k]; ok {
			sums[k] = cur.Add(r.Amount)
		} else {
			sums[k] = money.Zero().Add(r.Amount)
		}
	}

	result := make([]MonthlyTotal, 0, len(sums))
	for k, total := range sums {
		result = append(result, MonthlyTotal{Month: k.month, Type: k.typ, Total: total})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Month != result[j].Month {
			return result[i].Month < result[j].Month
		}
		return result[i].Type < result[j].Type
	})
	return result
}
