package links

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every "absent" error: missing links and missing owners.
	ErrNotFound = errors.New("not found")

	ErrLinkNotFound  = fmt.Errorf("link %w", ErrNotFound)
	ErrOwnerNotFound = fmt.Errorf("owner %w", ErrNotFound)

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrStoreFailure marks errors of the backing store: unavailable, timed out, or an
	// append that was not confirmed.
	ErrStoreFailure = errors.New("store failure")
)

// ValidationError names the field that made a create or update request invalid.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// storeFailure classifies an error returned by a repository. Not-found and validation errors
// pass through; everything else is wrapped as ErrStoreFailure.
func storeFailure(op string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) {
		return err
	}

	return fmt.Errorf("%s: %w: %w", op, ErrStoreFailure, err)
}
