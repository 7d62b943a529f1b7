package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gastos/internal/database"
	apperrors "gastos/internal/errors"
	"gastos/internal/models"
)

const maxCategoryNameLength = 100

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// visibleTo scopes categories to those the user owns plus the global ones
// not shadowed by an owned category of the same name.
func visibleTo(userID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"categories.user_id = ? OR (categories.user_id IS NULL AND NOT EXISTS (SELECT 1 FROM categories own WHERE own.user_id = ? AND own.name = categories.name))",
			userID, userID,
		)
	}
}

// seedDefaultCategories inserts the global defaults, skipping existing names.
func seedDefaultCategories(tx *gorm.DB) error {
	for _, def := range models.DefaultCategories {
		category := &models.Category{Name: def.Name, Color: def.Color, IsDefault: true}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(category).Error; err != nil {
			return err
		}
	}
	return nil
}

// ResolveUserCategories returns the categories a user can see, ordered by name.
func (s *categoryService) ResolveUserCategories(userID string) ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.db.Scopes(visibleTo(userID)).Order("categories.name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetVisibleCategory returns a category from the user's resolved set.
func (s *categoryService) GetVisibleCategory(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	err := s.db.Scopes(visibleTo(userID)).Where("categories.id = ?", categoryID).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// CreateCategory creates a category owned by the user.
func (s *categoryService) CreateCategory(userID, name, color string) (*models.Category, error) {
	return s.create(&userID, name, color)
}

// UpdateCategory updates a category the user owns.
func (s *categoryService) UpdateCategory(userID, categoryID string, name, color *string) (*models.Category, error) {
	category, err := s.findOwned(&userID, categoryID)
	if err != nil {
		return nil, err
	}
	return s.update(category, name, color)
}

// DeleteCategory deletes a category the user owns. Categories still used by
// movements cannot be deleted; their budgets are removed with them.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.findOwned(&userID, categoryID)
	if err != nil {
		return err
	}
	return s.delete(category)
}

// EnsureDefaultCategories seeds the global defaults.
func (s *categoryService) EnsureDefaultCategories() error {
	if err := seedDefaultCategories(s.db); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ListGlobalCategories returns the categories without owner.
func (s *categoryService) ListGlobalCategories() ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.db.Where("user_id IS NULL").Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// CreateGlobalCategory creates a category shared by every user.
func (s *categoryService) CreateGlobalCategory(name, color string) (*models.Category, error) {
	return s.create(nil, name, color)
}

// UpdateGlobalCategory updates a global category.
func (s *categoryService) UpdateGlobalCategory(categoryID string, name, color *string) (*models.Category, error) {
	category, err := s.findOwned(nil, categoryID)
	if err != nil {
		return nil, err
	}
	return s.update(category, name, color)
}

// DeleteGlobalCategory deletes a global category no movement references.
func (s *categoryService) DeleteGlobalCategory(categoryID string) error {
	category, err := s.findOwned(nil, categoryID)
	if err != nil {
		return err
	}
	return s.delete(category)
}

// findOwned loads a category by owner. A nil owner selects global categories.
func (s *categoryService) findOwned(userID *string, categoryID string) (*models.Category, error) {
	q := s.db.Where("id = ?", categoryID)
	if userID == nil {
		q = q.Where("user_id IS NULL")
	} else {
		q = q.Where("user_id = ?", *userID)
	}

	var category models.Category
	if err := q.First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

func (s *categoryService) create(userID *string, name, color string) (*models.Category, error) {
	name, err := validateCategoryName(name)
	if err != nil {
		return nil, err
	}
	if color == "" {
		color = models.DefaultCategoryColor
	}

	category := &models.Category{
		Name:   name,
		Color:  color,
		UserID: userID,
	}
	if err := s.db.Create(category).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateCategory
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

func (s *categoryService) update(category *models.Category, name, color *string) (*models.Category, error) {
	updates := make(map[string]interface{})
	if name != nil {
		validated, err := validateCategoryName(*name)
		if err != nil {
			return nil, err
		}
		updates["name"] = validated
	}
	if color != nil && *color != "" {
		updates["color"] = *color
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return nil, apperrors.ErrDuplicateCategory
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return category, nil
}

func (s *categoryService) delete(category *models.Category) error {
	var count int64
	if err := s.db.Model(&models.Movement{}).Where("category_id = ?", category.ID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrCategoryInUse
	}

	if err := s.db.Delete(category).Error; err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.Wrap(apperrors.ErrCategoryInUse, err)
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func validateCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.WithField(apperrors.ErrInvalidInput, "name", "Este campo es requerido.")
	}
	if len([]rune(name)) > maxCategoryNameLength {
		return "", apperrors.WithField(apperrors.ErrInvalidInput, "name", "Asegúrese de que este campo no tenga más de 100 caracteres.")
	}
	return name, nil
}
