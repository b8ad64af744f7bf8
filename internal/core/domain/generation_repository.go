package domain

import (
	"context"
	"time"
)

// GenerationRow represents a generation artifact record returned from the
// database. Result holds the generated text or the image URI.
type GenerationRow struct {
	ID        int64
	UserID    int64
	SessionID int64
	Prompt    string
	Result    string
	CreatedAt time.Time
}

// CascadeResult reports the outcome of an artifact delete: the session the
// artifact belonged to and whether that session was removed as an orphan.
type CascadeResult struct {
	SessionID      int64
	SessionDeleted bool
}

// GenerationRepository defines the data-access contract for one generation
// ledger (there are two instances, text and image, backed by separate tables).
// Artifacts attach to exactly one session and one owner; mutating operations
// are owner-scoped on every call, not just at creation.
type GenerationRepository interface {
	// Insert appends a new artifact and returns its id. Session ownership is
	// verified by the caller before this point.
	Insert(ctx context.Context, userID, sessionID int64, prompt, result string) (int64, error)

	// ListBySession returns the session's artifacts scoped to userID,
	// newest-first (id descending). Empty slice when there are none.
	ListBySession(ctx context.Context, sessionID, userID int64) ([]GenerationRow, error)

	// Update replaces prompt and result in place, scoped to (id, userID),
	// and returns the number of rows affected.
	Update(ctx context.Context, id, userID int64, prompt, result string) (int64, error)

	// DeleteCascade removes the artifact scoped to (id, userID) and, in the
	// same transaction, removes its session when no artifacts of this kind
	// reference it anymore. The orphan check and the session delete are a
	// single conditional statement, so a concurrent append cannot be orphaned.
	// Returns (nil, nil) when the artifact is absent or owned by someone else.
	DeleteCascade(ctx context.Context, id, userID int64) (*CascadeResult, error)

	// DeleteSessionCascade removes the session scoped to (sessionID, userID)
	// together with all of its artifacts of this kind, in one transaction.
	// No-op when the session is not owned by userID.
	DeleteSessionCascade(ctx context.Context, sessionID, userID int64) error

	// ListSessions returns the user's sessions that still hold at least one
	// artifact of this kind, newest-first by creation time.
	ListSessions(ctx context.Context, userID int64) ([]SessionRow, error)
}
