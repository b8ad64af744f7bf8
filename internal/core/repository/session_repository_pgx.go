package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/kreasi-ai/backend/internal/core/domain"
)

// PgxSessionRepository implements domain.SessionRepository using pgx.
type PgxSessionRepository struct {
	pool PgxPool
}

// NewSessionRepository creates a new PgxSessionRepository.
func NewSessionRepository(pool PgxPool) *PgxSessionRepository {
	return &PgxSessionRepository{pool: pool}
}

// Create inserts a new session owned by userID and returns its id.
func (r *PgxSessionRepository) Create(ctx context.Context, name string, userID int64) (int64, error) {
	query := `INSERT INTO sessions (name, user_id) VALUES ($1, $2) RETURNING id`

	var sessionID int64
	err := r.pool.QueryRow(ctx, query, name, userID).Scan(&sessionID)
	if err != nil {
		return 0, err
	}

	return sessionID, nil
}

// GetOwned returns the session only when it exists and belongs to userID.
// Returns (nil, nil) when the session is absent or owned by someone else.
func (r *PgxSessionRepository) GetOwned(ctx context.Context, id, userID int64) (*domain.SessionRow, error) {
	query := `SELECT id, user_id, name, created_at FROM sessions WHERE id = $1 AND user_id = $2`

	var row domain.SessionRow
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&row.ID, &row.UserID, &row.Name, &row.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &row, nil
}

// Rename updates the session name scoped to (id, userID) and reports how many
// rows were affected; zero means the session is absent or foreign-owned.
func (r *PgxSessionRepository) Rename(ctx context.Context, id, userID int64, name string) (int64, error) {
	query := `UPDATE sessions SET name = $1 WHERE id = $2 AND user_id = $3`

	tag, err := r.pool.Exec(ctx, query, name, id, userID)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
