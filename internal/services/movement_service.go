package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "gastos/internal/errors"
	"gastos/internal/models"
	"gastos/internal/money"
	"gastos/internal/uuid"
)

// movementService handles movement-related business logic.
type movementService struct {
	db *gorm.DB
}

// NewMovementService creates a new MovementServicer.
func NewMovementService(db *gorm.DB) MovementServicer {
	return &movementService{db: db}
}

// CreateMovement records a movement owned by the user.
func (s *movementService) CreateMovement(userID string, input MovementInput) (*models.Movement, error) {
	if err := validateAmount("amount", input.Amount); err != nil {
		return nil, err
	}
	if !input.Type.Valid() {
		return nil, apperrors.WithField(apperrors.ErrInvalidMovementType, "type", apperrors.ErrInvalidMovementType.Message)
	}
	if input.Date.IsZero() {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "date", "Este campo es requerido.")
	}
	if _, err := assignableCategory(s.db, userID, input.CategoryID); err != nil {
		return nil, err
	}

	movement := &models.Movement{
		UserID:      userID,
		CategoryID:  input.CategoryID,
		Type:        input.Type,
		Amount:      input.Amount,
		Date:        calendarDay(input.Date),
		Description: input.Description,
	}
	if err := s.db.Create(movement).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetMovementByID(userID, movement.ID)
}

// ListMovements returns the user's movements, newest first.
func (s *movementService) ListMovements(userID string, filter MovementFilter) ([]models.Movement, error) {
	q := s.db.Preload("Category").Where("user_id = ?", userID)
	if filter.Start != nil {
		q = q.Where("date >= ?", calendarDay(*filter.Start))
	}
	if filter.End != nil {
		q = q.Where("date <= ?", calendarDay(*filter.End))
	}
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}

	movements := []models.Movement{}
	if err := q.Order("date DESC, created_at DESC, id DESC").Find(&movements).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return movements, nil
}

// GetMovementByID returns a movement if it belongs to the user.
func (s *movementService) GetMovementByID(userID, movementID string) (*models.Movement, error) {
	var movement models.Movement
	err := s.db.Preload("Category").
		Where("id = ? AND user_id = ?", movementID, userID).
		First(&movement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMovementNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &movement, nil
}

// UpdateMovement applies a partial update. The owner never changes.
func (s *movementService) UpdateMovement(userID, movementID string, input MovementUpdate) (*models.Movement, error) {
	movement, err := s.GetMovementByID(userID, movementID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.Amount != nil {
		if err := validateAmount("amount", *input.Amount); err != nil {
			return nil, err
		}
		updates["amount"] = *input.Amount
	}
	if input.Type != nil {
		if !input.Type.Valid() {
			return nil, apperrors.WithField(apperrors.ErrInvalidMovementType, "type", apperrors.ErrInvalidMovementType.Message)
		}
		updates["type"] = *input.Type
	}
	if input.Date != nil {
		updates["date"] = calendarDay(*input.Date)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.CategoryID != nil {
		if _, err := assignableCategory(s.db, userID, *input.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *input.CategoryID
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.Movement{}).
			Where("id = ? AND user_id = ?", movement.ID, userID).
			Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetMovementByID(userID, movement.ID)
}

// DeleteMovement deletes a movement the user owns.
func (s *movementService) DeleteMovement(userID, movementID string) error {
	movement, err := s.GetMovementByID(userID, movementID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(&models.Movement{}, "id = ?", movement.ID).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// assignableCategory loads a category the user may attach to a movement or
// budget: one they own or a global one. Anything else is a field error on
// category_id.
func assignableCategory(db *gorm.DB, userID, categoryID string) (*models.Category, error) {
	if !uuid.IsValid(categoryID) {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "category_id", "La categoría no existe.")
	}

	var category models.Category
	if err := db.Where("id = ?", categoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithField(apperrors.ErrInvalidInput, "category_id", "La categoría no existe.")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if !category.UsableBy(userID) {
		return nil, apperrors.WithField(apperrors.ErrInvalidCategory, "category_id", apperrors.ErrInvalidCategory.Message)
	}
	return &category, nil
}

// validateAmount checks that amount is positive and fits numeric(12,2).
func validateAmount(field string, amount money.Amount) error {
	switch {
	case !amount.IsPositive():
		return apperrors.WithField(apperrors.ErrInvalidInput, field, "Asegúrese de que este valor sea mayor que 0.")
	case amount.HasExtraPlaces():
		return apperrors.WithField(apperrors.ErrInvalidInput, field, "Asegúrese de que no haya más de 2 decimales.")
	case amount.ExceedsIntegerDigits():
		return apperrors.WithField(apperrors.ErrInvalidInput, field, "Asegúrese de que no haya más de 10 dígitos antes del punto decimal.")
	}
	return nil
}

// calendarDay truncates t to midnight UTC of its calendar date.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
