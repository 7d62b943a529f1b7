// Package notify delivers password reset codes to users out of band.
package notify

import (
	"context"
	"time"

	"gastos/internal/logger"
)

// PasswordResetMessage is emitted every time a reset code is issued.
type PasswordResetMessage struct {
	UserID   string    `json:"user_id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
	Code     string    `json:"code"`
	IssuedAt time.Time `json:"issued_at"`
}

// Notifier hands reset codes to whatever delivers them to the user.
type Notifier interface {
	PasswordResetIssued(ctx context.Context, msg PasswordResetMessage) error
}

// LogNotifier records that a code was issued without revealing it.
type LogNotifier struct{}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// PasswordResetIssued logs the event. The code itself is never logged.
func (n *LogNotifier) PasswordResetIssued(_ context.Context, msg PasswordResetMessage) error {
	logger.Get().Infow("password reset code issued",
		"user_id", msg.UserID,
		"email", msg.Email,
		"issued_at", msg.IssuedAt,
	)
	return nil
}
