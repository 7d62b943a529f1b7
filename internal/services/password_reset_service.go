package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "gastos/internal/errors"
	"gastos/internal/logger"
	"gastos/internal/models"
	"gastos/internal/notify"
)

// resetCodeSpace is the number of distinct six-digit codes.
var resetCodeSpace = big.NewInt(1000000)

// passwordResetService issues and redeems password reset codes.
type passwordResetService struct {
	db       *gorm.DB
	notifier notify.Notifier
	ttl      time.Duration
	now      func() time.Time
}

// NewPasswordResetService creates a new PasswordResetServicer. Codes older
// than ttl are rejected.
func NewPasswordResetService(db *gorm.DB, notifier notify.Notifier, ttl time.Duration) PasswordResetServicer {
	return &passwordResetService{
		db:       db,
		notifier: notifier,
		ttl:      ttl,
		now:      time.Now,
	}
}

// RequestReset issues a new code when email belongs to a user and returns it.
// An unknown email returns an empty code and no error. Earlier unused codes of
// the user are invalidated.
func (s *passwordResetService) RequestReset(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", nil
	}
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	code, err := generateResetCode()
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	issuedAt := s.now().UTC()
	reset := &models.PasswordResetCode{UserID: user.ID, Code: code}
	reset.CreatedAt = issuedAt
	reset.UpdatedAt = issuedAt

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PasswordResetCode{}).
			Where("user_id = ? AND is_used = ?", user.ID, false).
			Update("is_used", true).Error; err != nil {
			return err
		}
		return tx.Create(reset).Error
	})
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	msg := notify.PasswordResetMessage{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		Code:     code,
		IssuedAt: issuedAt,
	}
	if err := s.notifier.PasswordResetIssued(ctx, msg); err != nil {
		logger.Get().Errorw("failed to deliver password reset code", "error", err, "user_id", user.ID)
	}

	return code, nil
}

// ConfirmReset sets a new password when code is the user's latest matching
// unused code and is still within its validity window.
func (s *passwordResetService) ConfirmReset(ctx context.Context, email, code, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidResetCode
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var reset models.PasswordResetCode
	err := db.Where("user_id = ? AND code = ? AND is_used = ?", user.ID, code, false).
		Order("created_at DESC, id DESC").
		First(&reset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidResetCode
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if reset.CreatedAt.Before(s.now().Add(-s.ttl)) {
		return apperrors.ErrResetCodeExpired
	}

	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		// Only one confirm can flip the flag.
		res := tx.Model(&models.PasswordResetCode{}).
			Where("id = ? AND is_used = ?", reset.ID, false).
			Update("is_used", true)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected != 1 {
			return apperrors.ErrInvalidResetCode
		}

		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Update("password", hashed).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// generateResetCode returns a uniformly random zero-padded six-digit code.
func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, resetCodeSpace)
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
