package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kreasi-ai/backend/internal/core/domain"
	logicv1 "github.com/kreasi-ai/backend/internal/logic/v1"
	"github.com/kreasi-ai/backend/middleware"
)

// GenerationHandler serves one artifact kind over HTTP. The same handler code
// backs both /text-generation and /text-to-image; only the wording of messages
// and the JSON field names differ between the two instances.
type GenerationHandler struct {
	svc *logicv1.GenerationService

	label        string // "Text" or "Image", used in response messages
	plural       string // "texts" or "images", used in messages and list payloads
	payloadField string // field carrying the payload on generate: "result" or "imageUrl"
	updatedField string // field carrying the payload on regenerate: "newResult" or "imageUrl"
}

// NewTextGenerationHandler creates the handler for the text generation routes.
func NewTextGenerationHandler(svc *logicv1.GenerationService) *GenerationHandler {
	return &GenerationHandler{
		svc:          svc,
		label:        "Text",
		plural:       "texts",
		payloadField: "result",
		updatedField: "newResult",
	}
}

// NewImageGenerationHandler creates the handler for the image generation routes.
func NewImageGenerationHandler(svc *logicv1.GenerationService) *GenerationHandler {
	return &GenerationHandler{
		svc:          svc,
		label:        "Image",
		plural:       "images",
		payloadField: "imageUrl",
		updatedField: "imageUrl",
	}
}

// RegisterRoutes registers the generation routes on the given router group.
// The group is expected to carry the auth middleware already.
func (h *GenerationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Generate)
	rg.GET("/sessions", h.ListSessions)
	rg.GET("/session/:sessionId", h.ListSession)
	rg.PUT("/rename-session/:sessionId", h.RenameSession)
	rg.DELETE("/delete-session/:sessionId", h.DeleteSession)
	rg.PUT("/update/:id", h.Regenerate)
	rg.DELETE("/:id", h.Delete)
}

// Generate handles HTTP request to generate a new artifact from a prompt.
func (h *GenerationHandler) Generate(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := zerolog.Ctx(ctx)

	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req domain.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prompt is required"})
		return
	}

	span.SetAttributes(attribute.Bool("request.valid", true))

	res, err := h.svc.Generate(ctx, userID, req.SessionID, req.Prompt)
	if err != nil {
		span.RecordError(err)
		logger.Error().Err(err).Int64("user_id", userID).Msg("Generation failed")
		h.writeError(c, err)
		return
	}

	logger.Info().
		Int64("user_id", userID).
		Int64("session_id", res.SessionID).
		Int64("generation_id", res.ID).
		Msg("Generation succeeded")
	c.JSON(http.StatusOK, gin.H{
		"id":           res.ID,
		"sessionId":    res.SessionID,
		"prompt":       res.Prompt,
		h.payloadField: res.Result,
	})
}

// Regenerate handles HTTP request to re-run an existing artifact's prompt and
// replace its payload in place.
func (h *GenerationHandler) Regenerate(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := zerolog.Ctx(ctx)

	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	var req domain.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prompt is required"})
		return
	}

	result, err := h.svc.Regenerate(ctx, userID, id, req.Prompt)
	if err != nil {
		span.RecordError(err)
		logger.Error().Err(err).Int64("user_id", userID).Int64("generation_id", id).Msg("Regeneration failed")
		h.writeError(c, err)
		return
	}

	logger.Info().Int64("user_id", userID).Int64("generation_id", id).Msg("Regeneration succeeded")
	c.JSON(http.StatusOK, gin.H{
		"message":      h.label + " updated successfully",
		h.updatedField: result,
	})
}

// ListSessions handles HTTP request to list the caller's sessions that hold at
// least one artifact of this kind.
func (h *GenerationHandler) ListSessions(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	sessions, err := h.svc.ListSessions(ctx, userID)
	if err != nil {
		span.RecordError(err)
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("Listing sessions failed")
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// ListSession handles HTTP request to list the artifacts of one session,
// newest-first.
func (h *GenerationHandler) ListSession(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	sessionID, err := parseID(c.Param("sessionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session id"})
		return
	}

	items, err := h.svc.ListSession(ctx, userID, sessionID)
	if err != nil {
		span.RecordError(err)
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Int64("session_id", sessionID).Msg("Listing session failed")
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{h.plural: items})
}

// RenameSession handles HTTP request to rename a session owned by the caller.
func (h *GenerationHandler) RenameSession(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := zerolog.Ctx(ctx)

	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	sessionID, err := parseID(c.Param("sessionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session id"})
		return
	}

	var req domain.RenameSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "New name is required"})
		return
	}

	if err := h.svc.RenameSession(ctx, userID, sessionID, req.Name); err != nil {
		span.RecordError(err)
		logger.Error().Err(err).Int64("user_id", userID).Int64("session_id", sessionID).Msg("Renaming session failed")
		h.writeError(c, err)
		return
	}

	logger.Info().Int64("user_id", userID).Int64("session_id", sessionID).Msg("Session renamed")
	c.JSON(http.StatusOK, gin.H{"message": "Session renamed successfully"})
}

// DeleteSession handles HTTP request to delete a session and all of its
// artifacts of this kind.
func (h *GenerationHandler) DeleteSession(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := zerolog.Ctx(ctx)

	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	sessionID, err := parseID(c.Param("sessionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session id"})
		return
	}

	if err := h.svc.DeleteSession(ctx, userID, sessionID); err != nil {
		span.RecordError(err)
		logger.Error().Err(err).Int64("user_id", userID).Int64("session_id", sessionID).Msg("Deleting session failed")
		h.writeError(c, err)
		return
	}

	logger.Info().Int64("user_id", userID).Int64("session_id", sessionID).Msg("Session deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Session and all " + h.plural + " deleted successfully"})
}

// Delete handles HTTP request to delete one artifact. When the artifact was the
// last one in its session, the session is removed too and the message says so.
func (h *GenerationHandler) Delete(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := zerolog.Ctx(ctx)

	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	sessionDeleted, err := h.svc.DeleteGeneration(ctx, userID, id)
	if err != nil {
		span.RecordError(err)
		logger.Error().Err(err).Int64("user_id", userID).Int64("generation_id", id).Msg("Deletion failed")
		h.writeError(c, err)
		return
	}

	logger.Info().
		Int64("user_id", userID).
		Int64("generation_id", id).
		Bool("session_deleted", sessionDeleted).
		Msg("Generation deleted")

	message := h.label + " deleted successfully"
	if sessionDeleted {
		message = h.label + " and session deleted successfully"
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// writeError maps a logic-layer error to an HTTP response.
func (h *GenerationHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, logicv1.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prompt is required"})
	case errors.Is(err, logicv1.ErrInvalidSession):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session"})
	case errors.Is(err, logicv1.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": h.label + " not found"})
	case errors.Is(err, logicv1.ErrProvider):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Generation provider is unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
