package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "gastos/internal/errors"
	"gastos/internal/models"
)

// roleService handles role lookup and maintenance.
type roleService struct {
	db *gorm.DB
}

// NewRoleService creates a new RoleServicer.
func NewRoleService(db *gorm.DB) RoleServicer {
	return &roleService{db: db}
}

// EnsureDefaultRoles creates the admin and user roles when missing.
func (s *roleService) EnsureDefaultRoles() error {
	for _, def := range models.DefaultRoles {
		role := def
		if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&role).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

// ListRoles returns every role ordered by name.
func (s *roleService) ListRoles() ([]models.Role, error) {
	roles := []models.Role{}
	if err := s.db.Order("name ASC").Find(&roles).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return roles, nil
}

// GetRoleByID returns a role by ID.
func (s *roleService) GetRoleByID(id string) (*models.Role, error) {
	var role models.Role
	if err := s.db.Where("id = ?", id).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRoleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &role, nil
}

// UpdateRoleDescription changes the description of a role. Names are fixed.
func (s *roleService) UpdateRoleDescription(id, description string) (*models.Role, error) {
	role, err := s.GetRoleByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(role).Update("description", description).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return role, nil
}
