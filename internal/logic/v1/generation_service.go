package v1

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kreasi-ai/backend/internal/core/domain"
	"github.com/kreasi-ai/backend/internal/provider"
	"github.com/kreasi-ai/backend/middleware"
)

// GenerationService orchestrates one artifact kind (text or image): it turns a
// prompt into a persisted artifact attached to a caller-owned session, and it
// owns the deletion cascades. Two instances are wired at startup, one per kind,
// each with its own provider and ledger.
type GenerationService struct {
	kind        string // "text" or "image", for spans and logs
	provider    provider.Provider
	sessions    domain.SessionRepository
	generations domain.GenerationRepository
}

// NewGenerationService creates a GenerationService for one artifact kind.
func NewGenerationService(kind string, p provider.Provider, sessions domain.SessionRepository, generations domain.GenerationRepository) *GenerationService {
	return &GenerationService{kind: kind, provider: p, sessions: sessions, generations: generations}
}

// GenerateResult is the outcome of a successful generation.
type GenerateResult struct {
	ID        int64
	SessionID int64
	Prompt    string
	Result    string
}

// Generate runs the full pipeline for one request: validate the prompt, call
// the provider, resolve or create the session, persist the artifact. The
// provider is called before any write, so a provider failure leaves no trace;
// session creation only ever happens for a successfully generated payload.
func (s *GenerationService) Generate(ctx context.Context, userID int64, sessionID *int64, prompt string) (*GenerateResult, error) {
	ctx, span := middleware.StartSpan(ctx, "generation.generate", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("generation.kind", s.kind),
	))
	defer span.End()

	if prompt == "" {
		return nil, fmt.Errorf("generate %s: prompt is required: %w", s.kind, ErrValidation)
	}

	result, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		zerolog.Ctx(ctx).Error().Err(err).Str("kind", s.kind).Msg("Provider call failed")
		return nil, fmt.Errorf("call %s provider: %w: %w", s.kind, ErrProvider, err)
	}

	sid, err := s.resolveOrCreateSession(ctx, sessionID, prompt, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	id, err := s.generations.Insert(ctx, userID, sid, prompt, result)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("persist %s generation: %w", s.kind, err)
	}

	span.SetAttributes(
		attribute.Int64("session.id", sid),
		attribute.Int64("generation.id", id),
	)

	return &GenerateResult{ID: id, SessionID: sid, Prompt: prompt, Result: result}, nil
}

// resolveOrCreateSession returns the id of the session this generation attaches
// to. A nil sessionID creates a new session named after the prompt. A given
// sessionID must exist and belong to userID; ownership is re-verified on every
// call so a guessed or stale id is rejected with ErrInvalidSession.
func (s *GenerationService) resolveOrCreateSession(ctx context.Context, sessionID *int64, seedName string, userID int64) (int64, error) {
	if sessionID == nil {
		id, err := s.sessions.Create(ctx, seedName, userID)
		if err != nil {
			return 0, fmt.Errorf("create session: %w", err)
		}
		return id, nil
	}

	row, err := s.sessions.GetOwned(ctx, *sessionID, userID)
	if err != nil {
		return 0, fmt.Errorf("query session %d: %w", *sessionID, err)
	}
	if row == nil {
		return 0, fmt.Errorf("resolve session %d: %w", *sessionID, ErrInvalidSession)
	}
	return row.ID, nil
}

// Regenerate replaces an artifact's prompt and payload in place. The provider
// is called first; when the owner-scoped update then matches no row, the fresh
// payload is discarded and ErrNotFound is returned.
func (s *GenerationService) Regenerate(ctx context.Context, userID, id int64, prompt string) (string, error) {
	ctx, span := middleware.StartSpan(ctx, "generation.regenerate", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("generation.kind", s.kind),
		attribute.Int64("generation.id", id),
	))
	defer span.End()

	if prompt == "" {
		return "", fmt.Errorf("regenerate %s %d: prompt is required: %w", s.kind, id, ErrValidation)
	}

	result, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		zerolog.Ctx(ctx).Error().Err(err).Str("kind", s.kind).Msg("Provider call failed")
		return "", fmt.Errorf("call %s provider: %w: %w", s.kind, ErrProvider, err)
	}

	rows, err := s.generations.Update(ctx, id, userID, prompt, result)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("update %s generation %d: %w", s.kind, id, err)
	}
	if rows == 0 {
		return "", fmt.Errorf("update %s generation %d: %w", s.kind, id, ErrNotFound)
	}

	return result, nil
}

// ListSession returns the artifacts of one session, newest-first. A session
// that is absent or foreign-owned yields an empty list, never an error, so
// nothing leaks about other users' sessions.
func (s *GenerationService) ListSession(ctx context.Context, userID, sessionID int64) ([]domain.Generation, error) {
	ctx, span := middleware.StartSpan(ctx, "generation.list_session", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("generation.kind", s.kind),
		attribute.Int64("session.id", sessionID),
	))
	defer span.End()

	rows, err := s.generations.ListBySession(ctx, sessionID, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list %s generations: %w", s.kind, err)
	}

	out := make([]domain.Generation, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Generation{ID: r.ID, Prompt: r.Prompt, Result: r.Result})
	}
	return out, nil
}

// ListSessions returns the caller's sessions that hold at least one artifact
// of this kind, newest-first.
func (s *GenerationService) ListSessions(ctx context.Context, userID int64) ([]domain.Session, error) {
	ctx, span := middleware.StartSpan(ctx, "generation.list_sessions", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("generation.kind", s.kind),
	))
	defer span.End()

	rows, err := s.generations.ListSessions(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	out := make([]domain.Session, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Session{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

// RenameSession renames a session owned by the caller. An empty name fails
// validation; a session that is absent or foreign-owned fails with ErrNotFound.
func (s *GenerationService) RenameSession(ctx context.Context, userID, sessionID int64, name string) error {
	ctx, span := middleware.StartSpan(ctx, "generation.rename_session", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("generation.kind", s.kind),
		attribute.Int64("session.id", sessionID),
	))
	defer span.End()

	if name == "" {
		return fmt.Errorf("rename session %d: name is required: %w", sessionID, ErrValidation)
	}

	rows, err := s.sessions.Rename(ctx, sessionID, userID, name)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("rename session %d: %w", sessionID, err)
	}
	if rows == 0 {
		return fmt.Errorf("rename session %d: %w", sessionID, ErrNotFound)
	}

	return nil
}

// DeleteSession removes a session and all of its artifacts of this kind in one
// transaction. Deleting a session the caller does not own is a silent no-op.
func (s *GenerationService) DeleteSession(ctx context.Context, userID, sessionID int64) error {
	ctx, span := middleware.StartSpan(ctx, "generation.delete_session", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("generation.kind", s.kind),
		attribute.Int64("session.id", sessionID),
	))
	defer span.End()

	if err := s.generations.DeleteSessionCascade(ctx, sessionID, userID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete session %d: %w", sessionID, err)
	}

	zerolog.Ctx(ctx).Info().
		Str("kind", s.kind).
		Int64("session_id", sessionID).
		Msg("Session deleted")
	return nil
}

// DeleteGeneration removes one artifact and reports whether its session was
// reaped as an orphan (a session survives only as long as at least one
// artifact references it).
func (s *GenerationService) DeleteGeneration(ctx context.Context, userID, id int64) (sessionDeleted bool, err error) {
	ctx, span := middleware.StartSpan(ctx, "generation.delete", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("generation.kind", s.kind),
		attribute.Int64("generation.id", id),
	))
	defer span.End()

	res, err := s.generations.DeleteCascade(ctx, id, userID)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("delete %s generation %d: %w", s.kind, id, err)
	}
	if res == nil {
		return false, fmt.Errorf("delete %s generation %d: %w", s.kind, id, ErrNotFound)
	}

	span.SetAttributes(
		attribute.Int64("session.id", res.SessionID),
		attribute.Bool("session.deleted", res.SessionDeleted),
	)
	if res.SessionDeleted {
		zerolog.Ctx(ctx).Info().
			Str("kind", s.kind).
			Int64("session_id", res.SessionID).
			Msg("Orphaned session removed")
	}

	return res.SessionDeleted, nil
}
