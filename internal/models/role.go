package models

// RoleName enumerates the roles a user can hold.
type RoleName string

const (
	RoleAdmin RoleName = "admin"
	RoleUser  RoleName = "user"
)

// DisplayName returns the human-readable label of the role.
func (n RoleName) DisplayName() string {
	switch n {
	case RoleAdmin:
		return "Administrador"
	case RoleUser:
		return "Usuario Regular"
	}
	return string(n)
}

// Role groups users by the capabilities they have.
type Role struct {
	Base
	Name        RoleName `gorm:"size:20;uniqueIndex;not null" json:"name"`
	Description string   `gorm:"type:text;not null" json:"description"`
}

// DefaultRoles are created by the initial migration and on startup.
var DefaultRoles = []Role{
	{Name: RoleAdmin, Description: "Administrador del sistema. Puede ver todos los usuarios y estadísticas generales."},
	{Name: RoleUser, Description: "Usuario regular. Solo puede ver y gestionar sus propios datos."},
}

// IsAdmin reports whether role grants administrator capabilities.
// A missing role is never admin.
func IsAdmin(role *Role) bool {
	return role != nil && role.Name == RoleAdmin
}
