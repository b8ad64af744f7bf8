package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kreasi-ai/backend/internal/core/domain"
)

// PgxUserRepository implements domain.UserRepository using pgx.
type PgxUserRepository struct {
	pool PgxPool
}

// NewUserRepository creates a new PgxUserRepository.
func NewUserRepository(pool PgxPool) *PgxUserRepository {
	return &PgxUserRepository{pool: pool}
}

// GetByEmail returns the user matching the given email.
// Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) GetByEmail(ctx context.Context, email string) (*domain.UserRow, error) {
	query := `SELECT id, name, email, password_hash, reset_token FROM users WHERE email = $1`

	var row domain.UserRow
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&row.ID, &row.Name, &row.Email, &row.PasswordHash, &row.ResetToken,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &row, nil
}

// GetByID returns the user with the given id.
// Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) GetByID(ctx context.Context, id int64) (*domain.UserRow, error) {
	query := `SELECT id, name, email, password_hash, reset_token FROM users WHERE id = $1`

	var row domain.UserRow
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&row.ID, &row.Name, &row.Email, &row.PasswordHash, &row.ResetToken,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &row, nil
}

// ExistsByEmail returns true when a user with the given email already exists.
func (r *PgxUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, email).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// Create inserts a new user and returns the generated user ID.
// A concurrent register with the same email surfaces as a duplicate error.
func (r *PgxUserRepository) Create(ctx context.Context, name, email, passwordHash string) (int64, error) {
	query := `INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3) RETURNING id`

	var userID int64
	err := r.pool.QueryRow(ctx, query, name, email, passwordHash).Scan(&userID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("email %q already registered: %w", email, err)
		}
		return 0, err
	}

	return userID, nil
}

// SetResetToken stores an outstanding password-reset token on the user row.
func (r *PgxUserRepository) SetResetToken(ctx context.Context, email, token string) error {
	query := `UPDATE users SET reset_token = $1 WHERE email = $2`
	_, err := r.pool.Exec(ctx, query, token, email)
	return err
}

// ResetPassword replaces the password hash and clears the reset token.
func (r *PgxUserRepository) ResetPassword(ctx context.Context, email, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, reset_token = NULL WHERE email = $2`
	_, err := r.pool.Exec(ctx, query, passwordHash, email)
	return err
}
