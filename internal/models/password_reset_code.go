package models

// PasswordResetCode is a single-use numeric code that authorizes a password
// change without the old password.
type PasswordResetCode struct {
	Base
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	Code   string `gorm:"size:6;not null" json:"-"`
	IsUsed bool   `gorm:"not null;default:false" json:"is_used"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
