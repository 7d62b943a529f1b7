package models

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#4f46e5"

// Category represents a movement category. Categories without an owner are
// global defaults shared by every user.
type Category struct {
	Base
	Name      string  `gorm:"size:100;not null;uniqueIndex:idx_categories_name_user,priority:1;uniqueIndex:idx_categories_global_name,where:user_id IS NULL" json:"name"`
	Color     string  `gorm:"size:20;not null;default:'#4f46e5'" json:"color"`
	UserID    *string `gorm:"type:uuid;index;uniqueIndex:idx_categories_name_user,priority:2" json:"user_id"`
	IsDefault bool    `gorm:"not null;default:false" json:"is_default"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsGlobal reports whether the category is a shared default.
func (c *Category) IsGlobal() bool {
	return c.UserID == nil
}

// UsableBy reports whether userID may attach the category to a movement or budget.
func (c *Category) UsableBy(userID string) bool {
	return c.UserID == nil || *c.UserID == userID
}

// DefaultCategory describes one of the seeded global categories.
type DefaultCategory struct {
	Name  string
	Color string
}

// DefaultCategories are created once and shared by all users.
var DefaultCategories = []DefaultCategory{
	{Name: "Alimentación", Color: "#f59e0b"},
	{Name: "Transporte", Color: "#3b82f6"},
	{Name: "Vivienda", Color: "#10b981"},
	{Name: "Entretenimiento", Color: "#8b5cf6"},
	{Name: "Salud", Color: "#ef4444"},
	{Name: "Educación", Color: "#6366f1"},
}
