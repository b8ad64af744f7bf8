package v1

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/kreasi-ai/backend/internal/core/domain"
	logicv1 "github.com/kreasi-ai/backend/internal/logic/v1"
	"github.com/kreasi-ai/backend/middleware"
)

type stubProvider struct {
	result string
	err    error
}

func (p stubProvider) Generate(_ context.Context, _ string) (string, error) {
	return p.result, p.err
}

type stubSessionRepo struct {
	createdID  int64
	owned      map[int64]*domain.SessionRow
	renameRows int64
}

func (r *stubSessionRepo) Create(_ context.Context, _ string, _ int64) (int64, error) {
	return r.createdID, nil
}

func (r *stubSessionRepo) GetOwned(_ context.Context, id, userID int64) (*domain.SessionRow, error) {
	row, ok := r.owned[id]
	if !ok || row.UserID != userID {
		return nil, nil
	}
	return row, nil
}

func (r *stubSessionRepo) Rename(_ context.Context, _, _ int64, _ string) (int64, error) {
	return r.renameRows, nil
}

type stubGenerationRepo struct {
	insertID   int64
	rows       []domain.GenerationRow
	sessions   []domain.SessionRow
	updateRows int64
	cascade    *domain.CascadeResult
}

func (r *stubGenerationRepo) Insert(_ context.Context, _, _ int64, _, _ string) (int64, error) {
	return r.insertID, nil
}

func (r *stubGenerationRepo) ListBySession(_ context.Context, _, _ int64) ([]domain.GenerationRow, error) {
	return r.rows, nil
}

func (r *stubGenerationRepo) Update(_ context.Context, _, _ int64, _, _ string) (int64, error) {
	return r.updateRows, nil
}

func (r *stubGenerationRepo) DeleteCascade(_ context.Context, _, _ int64) (*domain.CascadeResult, error) {
	return r.cascade, nil
}

func (r *stubGenerationRepo) DeleteSessionCascade(_ context.Context, _, _ int64) error {
	return nil
}

func (r *stubGenerationRepo) ListSessions(_ context.Context, _ int64) ([]domain.SessionRow, error) {
	return r.sessions, nil
}

// injectUser binds a fixed user id the way Authenticate would.
func injectUser(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func newTextRouter(provider stubProvider, sessions *stubSessionRepo, generations *stubGenerationRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := logicv1.NewGenerationService("text", provider, sessions, generations)
	r := gin.New()
	g := r.Group("/api/v1/text-generation", injectUser(1))
	NewTextGenerationHandler(svc).RegisterRoutes(g)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateEndpoint_NewSession(t *testing.T) {
	r := newTextRouter(
		stubProvider{result: "once upon a time"},
		&stubSessionRepo{createdID: 42},
		&stubGenerationRepo{insertID: 7},
	)

	w := doJSON(r, http.MethodPost, "/api/v1/text-generation", `{"prompt":"tell me a story"}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"id":7,"sessionId":42,"prompt":"tell me a story","result":"once upon a time"}`, w.Body.String())
}

func TestGenerateEndpoint_ExistingSession(t *testing.T) {
	r := newTextRouter(
		stubProvider{result: "more story"},
		&stubSessionRepo{owned: map[int64]*domain.SessionRow{42: {ID: 42, UserID: 1}}},
		&stubGenerationRepo{insertID: 8},
	)

	w := doJSON(r, http.MethodPost, "/api/v1/text-generation", `{"sessionId":42,"prompt":"continue"}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"id":8,"sessionId":42,"prompt":"continue","result":"more story"}`, w.Body.String())
}

func TestGenerateEndpoint_EmptyPrompt(t *testing.T) {
	r := newTextRouter(stubProvider{result: "x"}, &stubSessionRepo{}, &stubGenerationRepo{})

	w := doJSON(r, http.MethodPost, "/api/v1/text-generation", `{"prompt":""}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.JSONEq(t, `{"error":"Prompt is required"}`, w.Body.String())
}

func TestGenerateEndpoint_ForeignSession(t *testing.T) {
	r := newTextRouter(
		stubProvider{result: "x"},
		&stubSessionRepo{owned: map[int64]*domain.SessionRow{42: {ID: 42, UserID: 999}}},
		&stubGenerationRepo{},
	)

	w := doJSON(r, http.MethodPost, "/api/v1/text-generation", `{"sessionId":42,"prompt":"hi"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.JSONEq(t, `{"error":"Invalid session"}`, w.Body.String())
}

func TestGenerateEndpoint_ProviderDown(t *testing.T) {
	r := newTextRouter(stubProvider{err: errors.New("upstream 503")}, &stubSessionRepo{}, &stubGenerationRepo{})

	w := doJSON(r, http.MethodPost, "/api/v1/text-generation", `{"prompt":"hi"}`)

	require.Equal(t, http.StatusBadGateway, w.Code)
}

func TestRegenerateEndpoint(t *testing.T) {
	r := newTextRouter(stubProvider{result: "fresh"}, &stubSessionRepo{}, &stubGenerationRepo{updateRows: 1})

	w := doJSON(r, http.MethodPut, "/api/v1/text-generation/update/7", `{"prompt":"again"}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"Text updated successfully","newResult":"fresh"}`, w.Body.String())
}

func TestRegenerateEndpoint_NotFound(t *testing.T) {
	r := newTextRouter(stubProvider{result: "fresh"}, &stubSessionRepo{}, &stubGenerationRepo{updateRows: 0})

	w := doJSON(r, http.MethodPut, "/api/v1/text-generation/update/7", `{"prompt":"again"}`)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, `{"error":"Text not found"}`, w.Body.String())
}

func TestRegenerateEndpoint_BadID(t *testing.T) {
	r := newTextRouter(stubProvider{result: "fresh"}, &stubSessionRepo{}, &stubGenerationRepo{})

	w := doJSON(r, http.MethodPut, "/api/v1/text-generation/update/abc", `{"prompt":"again"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSessionEndpoint(t *testing.T) {
	r := newTextRouter(stubProvider{}, &stubSessionRepo{}, &stubGenerationRepo{
		rows: []domain.GenerationRow{
			{ID: 2, Prompt: "second", Result: "r2"},
			{ID: 1, Prompt: "first", Result: "r1"},
		},
	})

	w := doJSON(r, http.MethodGet, "/api/v1/text-generation/session/42", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"texts":[{"id":2,"prompt":"second","result":"r2"},{"id":1,"prompt":"first","result":"r1"}]}`, w.Body.String())
}

func TestListSessionEndpoint_Empty(t *testing.T) {
	r := newTextRouter(stubProvider{}, &stubSessionRepo{}, &stubGenerationRepo{})

	w := doJSON(r, http.MethodGet, "/api/v1/text-generation/session/42", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"texts":[]}`, w.Body.String())
}

func TestListSessionsEndpoint(t *testing.T) {
	r := newTextRouter(stubProvider{}, &stubSessionRepo{}, &stubGenerationRepo{
		sessions: []domain.SessionRow{{ID: 5, UserID: 1, Name: "stories"}},
	})

	w := doJSON(r, http.MethodGet, "/api/v1/text-generation/sessions", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"stories"`)
}

func TestRenameSessionEndpoint(t *testing.T) {
	r := newTextRouter(stubProvider{}, &stubSessionRepo{renameRows: 1}, &stubGenerationRepo{})

	w := doJSON(r, http.MethodPut, "/api/v1/text-generation/rename-session/42", `{"name":"better name"}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"Session renamed successfully"}`, w.Body.String())
}

func TestRenameSessionEndpoint_NotFound(t *testing.T) {
	r := newTextRouter(stubProvider{}, &stubSessionRepo{renameRows: 0}, &stubGenerationRepo{})

	w := doJSON(r, http.MethodPut, "/api/v1/text-generation/rename-session/42", `{"name":"better name"}`)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteSessionEndpoint(t *testing.T) {
	r := newTextRouter(stubProvider{}, &stubSessionRepo{}, &stubGenerationRepo{})

	w := doJSON(r, http.MethodDelete, "/api/v1/text-generation/delete-session/42", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"Session and all texts deleted successfully"}`, w.Body.String())
}

func TestDeleteEndpoint_SessionSurvives(t *testing.T) {
	r := newTextRouter(stubProvider{}, &stubSessionRepo{}, &stubGenerationRepo{
		cascade: &domain.CascadeResult{SessionID: 42, SessionDeleted: false},
	})

	w := doJSON(r, http.MethodDelete, "/api/v1/text-generation/7", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"Text deleted successfully"}`, w.Body.String())
}

func TestDeleteEndpoint_OrphanReaped(t *testing.T) {
	r := newTextRouter(stubProvider{}, &stubSessionRepo{}, &stubGenerationRepo{
		cascade: &domain.CascadeResult{SessionID: 42, SessionDeleted: true},
	})

	w := doJSON(r, http.MethodDelete, "/api/v1/text-generation/7", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"Text and session deleted successfully"}`, w.Body.String())
}

func TestDeleteEndpoint_NotFound(t *testing.T) {
	r := newTextRouter(stubProvider{}, &stubSessionRepo{}, &stubGenerationRepo{cascade: nil})

	w := doJSON(r, http.MethodDelete, "/api/v1/text-generation/7", "")

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestImageEndpoints_FieldNames(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := logicv1.NewGenerationService("image",
		stubProvider{result: "data:image/png;base64,aW1n"},
		&stubSessionRepo{createdID: 42},
		&stubGenerationRepo{insertID: 7, updateRows: 1},
	)
	r := gin.New()
	g := r.Group("/api/v1/text-to-image", injectUser(1))
	NewImageGenerationHandler(svc).RegisterRoutes(g)

	w := doJSON(r, http.MethodPost, "/api/v1/text-to-image", `{"prompt":"a cat"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"id":7,"sessionId":42,"prompt":"a cat","imageUrl":"data:image/png;base64,aW1n"}`, w.Body.String())

	w = doJSON(r, http.MethodPut, "/api/v1/text-to-image/update/7", `{"prompt":"a dog"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"Image updated successfully","imageUrl":"data:image/png;base64,aW1n"}`, w.Body.String())
}
