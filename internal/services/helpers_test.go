package services

import (
	"errors"
	"testing"

	apperrors "gastos/internal/errors"
)

// assertField checks that err carries a detail for field. An empty want only
// checks presence.
func assertField(t *testing.T, err error, field, want string) {
	t.Helper()

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T", err)
	}
	got, ok := appErr.Fields[field]
	if !ok {
		t.Fatalf("expected field %q in %v", field, appErr.Fields)
	}
	if want != "" && got != want {
		t.Errorf("field %q: expected %q, got %q", field, want, got)
	}
}
