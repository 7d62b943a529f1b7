package models

import (
	"time"

	"gastos/internal/money"
)

// MovementType represents the direction of a movement
type MovementType string

const (
	MovementTypeIncome  MovementType = "INCOME"
	MovementTypeExpense MovementType = "EXPENSE"
)

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	return t == MovementTypeIncome || t == MovementTypeExpense
}

// Movement represents a single income or expense.
type Movement struct {
	Base
	Amount      money.Amount `gorm:"type:numeric(12,2);not null" json:"amount"`
	Type        MovementType `gorm:"size:10;not null" json:"type"`
	Date        time.Time    `gorm:"type:date;not null;index" json:"date"`
	Description string       `gorm:"type:text" json:"description"`
	CategoryID  string       `gorm:"type:uuid;not null;index" json:"category_id"`
	UserID      string       `gorm:"type:uuid;not null;index" json:"user_id"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"-"`
	User     *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
