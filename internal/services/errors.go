package services

import (
	"errors"
	"fmt"

	"github.com/anonto42/threadboard/backend/internal/repositories"
)

// Error kinds surfaced by ContentService. Match them with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("secret key does not match")
	ErrNotFound     = errors.New("not found")
	ErrStore        = errors.New("store unavailable")
)

// storeError classifies a repository error. Missing rows become ErrNotFound;
// everything else is an ErrStore that keeps the underlying cause.
func storeError(op string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}
