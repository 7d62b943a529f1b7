package models

import "gastos/internal/money"

// Budget caps spending on a category for one calendar month.
type Budget struct {
	Base
	UserID     string       `gorm:"type:uuid;not null;uniqueIndex:idx_budgets_user_category_month,priority:1" json:"user_id"`
	CategoryID string       `gorm:"type:uuid;not null;index;uniqueIndex:idx_budgets_user_category_month,priority:2" json:"category_id"`
	Month      string       `gorm:"size:7;not null;uniqueIndex:idx_budgets_user_category_month,priority:3" json:"month"`
	MaxAmount  money.Amount `gorm:"type:numeric(12,2);not null" json:"max_amount"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"-"`
	User     *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
