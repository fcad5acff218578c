package domain

import (
	"errors"
	"fmt"
)

// Store-level error taxonomy. Storage adapters translate driver errors into
// these so callers can branch with errors.Is regardless of backend.
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrNotFound           = errors.New("not found")
	ErrCanceled           = errors.New("operation canceled")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Account-level errors returned by the services built on top of the stores.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
	ErrUserExists         = fmt.Errorf("%w: user", ErrDuplicateKey)
	ErrRoleExists         = fmt.Errorf("%w: role", ErrDuplicateKey)
	ErrUserNotFound       = fmt.Errorf("%w: user", ErrNotFound)
	ErrRoleNotFound       = fmt.Errorf("%w: role", ErrNotFound)
	ErrForbidden          = errors.New("access forbidden")
)

// InvalidArgument wraps ErrInvalidArgument with the offending parameter name.
func InvalidArgument(name string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, name)
}
