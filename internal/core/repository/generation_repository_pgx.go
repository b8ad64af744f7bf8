package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kreasi-ai/backend/internal/core/domain"
)

// Generation ledger tables. Text and image artifacts share the sessions table
// but live in separate ledgers with identical shape.
const (
	TableTextGenerations  = "text_generations"
	TableImageGenerations = "image_generations"
)

// PgxGenerationRepository implements domain.GenerationRepository for one
// artifact kind. The table name comes from the constants above, never from
// user input.
type PgxGenerationRepository struct {
	pool  PgxPool
	table string
}

// NewGenerationRepository creates a generation repository over the given table.
func NewGenerationRepository(pool PgxPool, table string) *PgxGenerationRepository {
	return &PgxGenerationRepository{pool: pool, table: table}
}

// Insert appends a new artifact and returns its id.
func (r *PgxGenerationRepository) Insert(ctx context.Context, userID, sessionID int64, prompt, result string) (int64, error) {
	query := fmt.Sprintf(
		`INSERT INTO %s (user_id, session_id, prompt, result) VALUES ($1, $2, $3, $4) RETURNING id`,
		r.table,
	)

	var id int64
	err := r.pool.QueryRow(ctx, query, userID, sessionID, prompt, result).Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

// ListBySession returns the session's artifacts scoped to userID, newest-first.
func (r *PgxGenerationRepository) ListBySession(ctx context.Context, sessionID, userID int64) ([]domain.GenerationRow, error) {
	query := fmt.Sprintf(
		`SELECT id, user_id, session_id, prompt, result, created_at FROM %s
		 WHERE session_id = $1 AND user_id = $2 ORDER BY id DESC`,
		r.table,
	)

	rows, err := r.pool.Query(ctx, query, sessionID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.GenerationRow, 0)
	for rows.Next() {
		var g domain.GenerationRow
		if err := rows.Scan(&g.ID, &g.UserID, &g.SessionID, &g.Prompt, &g.Result, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Update replaces prompt and result scoped to (id, userID) and reports how
// many rows were affected; zero means the artifact is absent or foreign-owned.
func (r *PgxGenerationRepository) Update(ctx context.Context, id, userID int64, prompt, result string) (int64, error) {
	query := fmt.Sprintf(
		`UPDATE %s SET prompt = $1, result = $2, updated_at = now() WHERE id = $3 AND user_id = $4`,
		r.table,
	)

	tag, err := r.pool.Exec(ctx, query, prompt, result, id, userID)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// DeleteCascade removes the artifact scoped to (id, userID) and reaps its
// session when this ledger holds no more artifacts for it. Both statements run
// in one transaction; the reap is a single conditional delete, so an append
// committed before it cannot be orphaned.
// Returns (nil, nil) when the artifact is absent or owned by someone else.
func (r *PgxGenerationRepository) DeleteCascade(ctx context.Context, id, userID int64) (res *domain.CascadeResult, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
			res = nil
		}
	}()

	delArtifact := fmt.Sprintf(
		`DELETE FROM %s WHERE id = $1 AND user_id = $2 RETURNING session_id`,
		r.table,
	)

	var sessionID int64
	if scanErr := tx.QueryRow(ctx, delArtifact, id, userID).Scan(&sessionID); scanErr != nil {
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, scanErr
	}

	reapSession := fmt.Sprintf(
		`DELETE FROM sessions WHERE id = $1 AND NOT EXISTS (SELECT 1 FROM %s WHERE session_id = $1)`,
		r.table,
	)

	tag, execErr := tx.Exec(ctx, reapSession, sessionID)
	if execErr != nil {
		return nil, execErr
	}

	return &domain.CascadeResult{SessionID: sessionID, SessionDeleted: tag.RowsAffected() > 0}, nil
}

// DeleteSessionCascade removes the session scoped to (sessionID, userID) and
// all of this ledger's artifacts under it, in one transaction. No-op when the
// session is not owned by userID.
func (r *PgxGenerationRepository) DeleteSessionCascade(ctx context.Context, sessionID, userID int64) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	delSession := `DELETE FROM sessions WHERE id = $1 AND user_id = $2`
	if _, err = tx.Exec(ctx, delSession, sessionID, userID); err != nil {
		return err
	}

	delArtifacts := fmt.Sprintf(
		`DELETE FROM %s WHERE session_id = $1 AND user_id = $2`,
		r.table,
	)
	if _, err = tx.Exec(ctx, delArtifacts, sessionID, userID); err != nil {
		return err
	}

	return nil
}

// ListSessions returns the user's sessions that still hold at least one
// artifact of this kind, newest-first by creation time.
func (r *PgxGenerationRepository) ListSessions(ctx context.Context, userID int64) ([]domain.SessionRow, error) {
	query := fmt.Sprintf(
		`SELECT s.id, s.user_id, s.name, s.created_at
		 FROM sessions s
		 WHERE s.user_id = $1
		 AND EXISTS (SELECT 1 FROM %s g WHERE g.session_id = s.id)
		 ORDER BY s.created_at DESC`,
		r.table,
	)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.SessionRow, 0)
	for rows.Next() {
		var s domain.SessionRow
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
