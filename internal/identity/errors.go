package identity

import "github.com/dropDatabas3/rolbazli/internal/domain/errs"

var (
	ErrRoleNameRequired = errs.New("Role name is required", errs.ErrValidation)
	ErrRoleNameInvalid  = errs.New("Role name is invalid", errs.ErrValidation)
	ErrRoleIDRequired   = errs.New("Role ID is required.", errs.ErrValidation)
	ErrUserIDRequired   = errs.New("User ID is required.", errs.ErrValidation)
	ErrRoleExists       = errs.New("Role already exist", errs.ErrConflict)
	ErrRoleNameTaken    = errs.New("Role with this name already exists.", errs.ErrConflict)
	ErrRoleHasMembers   = errs.New("Role still has members.", errs.ErrConflict)
	ErrRoleNotFound     = errs.New("Role not found.", errs.ErrNotFound)
	ErrUserNotFound     = errs.New("User not found.", errs.ErrNotFound)
	ErrEmailTaken       = errs.New("An account with this email already exists.", errs.ErrConflict)

	// ErrAccountNotFound matches both NotFound and Credential so callers that
	// only care about "login failed" need a single check.
	ErrAccountNotFound = errs.New("No account found for this email!", errs.ErrNotFound, errs.ErrCredential)
	ErrBadCredential   = errs.New("Invalid password!", errs.ErrCredential)
)
