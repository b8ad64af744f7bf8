package domain

import (
	"context"
	"time"
)

// SessionRow represents a session record returned from the database.
type SessionRow struct {
	ID        int64
	UserID    int64
	Name      string
	CreatedAt time.Time
}

// SessionRepository defines the data-access contract for the session registry.
// Every session has exactly one owner; all lookups are owner-scoped so that a
// guessed or stale session id never grants access to another user's session.
type SessionRepository interface {
	// Create inserts a new session owned by userID and returns its id.
	Create(ctx context.Context, name string, userID int64) (int64, error)

	// GetOwned returns the session only when it exists and belongs to userID.
	// Returns (nil, nil) when the session is absent or owned by someone else;
	// the two cases are intentionally indistinguishable.
	GetOwned(ctx context.Context, id, userID int64) (*SessionRow, error)

	// Rename updates the display name of the session scoped to (id, userID)
	// and returns the number of rows affected.
	Rename(ctx context.Context, id, userID int64, name string) (int64, error)
}
