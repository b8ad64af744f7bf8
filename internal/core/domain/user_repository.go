package domain

import "context"

// UserRow represents a user record returned from the database.
// It includes the password hash so the Logic layer can verify credentials.
type UserRow struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	ResetToken   *string
}

// UserRepository defines the data-access contract for user operations.
// Implementations live in internal/core/repository (Core layer).
// The Logic layer depends on this interface only, never on SQL or pgx directly.
type UserRepository interface {
	// GetByEmail returns the user matching the given email.
	// Returns (nil, nil) when no user is found.
	GetByEmail(ctx context.Context, email string) (*UserRow, error)

	// GetByID returns the user with the given id.
	// Returns (nil, nil) when no user is found.
	GetByID(ctx context.Context, id int64) (*UserRow, error)

	// ExistsByEmail returns true when a user with the given email already exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create inserts a new user and returns the generated user ID.
	Create(ctx context.Context, name, email, passwordHash string) (int64, error)

	// SetResetToken stores an outstanding password-reset token on the user row.
	SetResetToken(ctx context.Context, email, token string) error

	// ResetPassword replaces the password hash and clears any outstanding
	// reset token for the given email.
	ResetPassword(ctx context.Context, email, passwordHash string) error
}
