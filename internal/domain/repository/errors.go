package repository

import "errors"

var (
	// ErrNotFound: the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict: a uniqueness constraint was violated (email, role name).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput: the adapter rejected the input before touching storage.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRoleInUse: a restrict delete hit a role that still has members.
	ErrRoleInUse = errors.New("role in use")
)

// IsNotFound reports whether err is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err is ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
