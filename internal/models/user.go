package models

// User represents the user model in the database
type User struct {
	Base
	Username          string  `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email             string  `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Password          string  `gorm:"not null" json:"-"`
	FirstName         string  `gorm:"size:150" json:"first_name"`
	LastName          string  `gorm:"size:150" json:"last_name"`
	PreferredCurrency string  `gorm:"size:10;not null;default:USD" json:"preferred_currency"`
	IsActive          bool    `gorm:"default:true" json:"is_active"`
	RoleID            *string `gorm:"type:uuid;index" json:"role_id"`

	Role *Role `gorm:"foreignKey:RoleID;constraint:OnDelete:RESTRICT" json:"-"`
}

// IsAdmin reports whether the user's resolved role is admin.
func (u *User) IsAdmin() bool {
	return u != nil && IsAdmin(u.Role)
}

// RoleDisplayName returns the label of the user's role, or "" when unassigned.
func (u *User) RoleDisplayName() string {
	if u == nil || u.Role == nil {
		return ""
	}
	return u.Role.Name.DisplayName()
}
