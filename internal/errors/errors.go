// Package errors provides custom error types for the gastos API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, optional field-level details
// and an optional internal error.
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Fields     map[string]string `json:"fields,omitempty"`
	StatusCode int               `json:"-"`
	Internal   error             `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Fields:     sentinel.Fields,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		Fields:     sentinel.Fields,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// WithField creates a new AppError carrying a single field-level detail.
func WithField(sentinel *AppError, field, detail string) *AppError {
	return WithFields(sentinel, map[string]string{field: detail})
}

// WithFields creates a new AppError carrying field-level details.
func WithFields(sentinel *AppError, fields map[string]string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Fields:     fields,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Las credenciales de autenticación no se proveyeron.", StatusCode: http.StatusUnauthorized}
	ErrInvalidToken       = &AppError{Code: "INVALID_TOKEN", Message: "El token es inválido o ha expirado.", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "No se encontró una cuenta activa con las credenciales dadas.", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "No tiene permiso para realizar esta acción.", StatusCode: http.StatusForbidden}
	ErrTooManyRequests    = &AppError{Code: "TOO_MANY_REQUESTS", Message: "Demasiadas solicitudes. Intente de nuevo más tarde.", StatusCode: http.StatusTooManyRequests}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Datos inválidos.", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "No encontrado.", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "Ocurrió un error interno.", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound      = &AppError{Code: "USER_NOT_FOUND", Message: "Usuario no encontrado.", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail    = &AppError{Code: "DUPLICATE_EMAIL", Message: "Ya existe un usuario con este correo.", StatusCode: http.StatusConflict}
	ErrDuplicateUsername = &AppError{Code: "DUPLICATE_USERNAME", Message: "Ya existe un usuario con este nombre de usuario.", StatusCode: http.StatusConflict}
)

// Role errors.
var (
	ErrRoleNotFound = &AppError{Code: "ROLE_NOT_FOUND", Message: "Rol no encontrado.", StatusCode: http.StatusNotFound}
)

// Category errors.
var (
	ErrCategoryNotFound  = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Categoría no encontrada.", StatusCode: http.StatusNotFound}
	ErrCategoryInUse     = &AppError{Code: "CATEGORY_IN_USE", Message: "La categoría tiene movimientos asociados y no puede eliminarse.", StatusCode: http.StatusConflict}
	ErrDuplicateCategory = &AppError{Code: "DUPLICATE_CATEGORY", Message: "Ya existe una categoría con este nombre.", StatusCode: http.StatusConflict}
	ErrInvalidCategory   = &AppError{Code: "INVALID_INPUT", Message: "No puedes usar esta categoría.", StatusCode: http.StatusBadRequest}
)

// Movement errors.
var (
	ErrMovementNotFound    = &AppError{Code: "MOVEMENT_NOT_FOUND", Message: "Movimiento no encontrado.", StatusCode: http.StatusNotFound}
	ErrInvalidMovementType = &AppError{Code: "INVALID_MOVEMENT_TYPE", Message: "Tipo de movimiento inválido.", StatusCode: http.StatusBadRequest}
)

// Budget errors.
var (
	ErrBudgetNotFound  = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Presupuesto no encontrado.", StatusCode: http.StatusNotFound}
	ErrDuplicateBudget = &AppError{Code: "DUPLICATE_BUDGET", Message: "Ya existe un presupuesto para esta categoría y mes.", StatusCode: http.StatusConflict}
)

// Password reset errors.
var (
	ErrInvalidResetCode = &AppError{Code: "INVALID_RESET_CODE", Message: "Código inválido o expirado.", StatusCode: http.StatusBadRequest}
	ErrResetCodeExpired = &AppError{Code: "RESET_CODE_EXPIRED", Message: "Código expirado.", StatusCode: http.StatusBadRequest}
)
