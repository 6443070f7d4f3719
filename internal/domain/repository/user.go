package repository

import (
	"context"
	"time"
)

// User is an account as stored. The password hash never leaves the adapter.
type User struct {
	ID                   string
	Email                string
	Name                 string
	PhoneNumber          string
	PhoneNumberConfirmed bool
	TwoFactorEnabled     bool
	AccessFailedCount    int
	CreatedAt            time.Time
}

// CreateUserInput carries a new account. Password is plain text; the adapter
// hashes it with the configured password hasher before it is persisted.
type CreateUserInput struct {
	Email       string
	Name        string
	Password    string
	PhoneNumber string
}

// UserRepository stores accounts and verifies their passwords.
type UserRepository interface {
	// GetByEmail looks the account up by login handle, case-insensitively.
	GetByEmail(ctx context.Context, email string) (*User, error)

	GetByID(ctx context.Context, id string) (*User, error)

	// Create persists a new account. ErrConflict when the email is taken.
	Create(ctx context.Context, input CreateUserInput) (*User, error)

	// CheckPassword compares password against the stored hash.
	// ErrNotFound when the user does not exist.
	CheckPassword(ctx context.Context, userID, password string) (bool, error)

	// CheckDecoyPassword does the hashing work of CheckPassword for an email
	// that has no account, so both lookups take the same time.
	CheckDecoyPassword(ctx context.Context, password string)

	// List returns every account ordered by email.
	List(ctx context.Context) ([]User, error)

	// RecordLoginFailure increments the failed-access counter.
	RecordLoginFailure(ctx context.Context, userID string) error

	// ResetLoginFailures sets the failed-access counter back to zero.
	ResetLoginFailures(ctx context.Context, userID string) error
}
