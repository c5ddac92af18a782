package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bruce/internal/catalog"
	"bruce/internal/domain"
	"bruce/internal/domain/models"
	domainllm "bruce/internal/domain/services/llm"
	"bruce/internal/httputil"
	"bruce/internal/middleware"
	llmservice "bruce/internal/service/llm"
	"bruce/internal/service/prompts"
	"bruce/internal/service/usage"
)

type stubProvider struct {
	mu       sync.Mutex
	requests []*domainllm.GenerateRequest
	reply    string
	err      error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) SupportsModel(string) bool { return true }

func (p *stubProvider) GenerateResponse(ctx context.Context, req *domainllm.GenerateRequest) (*domainllm.GenerateResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	return &domainllm.GenerateResponse{Text: p.reply, InputTokens: 5, OutputTokens: 9}, nil
}

type stubPromptRepo struct {
	prompts map[string]string
	calls   int
}

func (s *stubPromptRepo) ListPrompts(ctx context.Context, appID string) (map[string]string, error) {
	s.calls++
	return s.prompts, nil
}

type stubUsageRepo struct {
	mu    sync.Mutex
	calls []string
}

func (s *stubUsageRepo) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *stubUsageRepo) FindByEmail(ctx context.Context, appID, email string) (*models.UsageRecord, error) {
	s.record("find " + email)
	return nil, nil
}

func (s *stubUsageRepo) Patch(ctx context.Context, id string, changes map[string]int64) error {
	s.record("patch " + id)
	return nil
}

func (s *stubUsageRepo) Create(ctx context.Context, rec *models.UsageRecord) error {
	s.record("create " + rec.Email)
	return nil
}

type server struct {
	handler   http.Handler
	provider  *stubProvider
	prompts   *stubPromptRepo
	usageRepo *stubUsageRepo
	tracker   *usage.Tracker
	catalog   *catalog.Catalog
}

func newServer(t *testing.T, reply string) *server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cat := catalog.MustNew()

	provider := &stubProvider{reply: reply}
	promptRepo := &stubPromptRepo{prompts: map[string]string{}}
	usageRepo := &stubUsageRepo{}

	source := prompts.NewSource(promptRepo, cat, "bruce", time.Second, nil, logger)
	tracker := usage.NewTracker(usageRepo, "bruce", time.Second, 4, nil, logger)
	assistant := llmservice.NewAssistantService(provider, cat, source, tracker, llmservice.AssistantConfig{
		SmartModel: "claude-sonnet-4-6",
		FastModel:  "claude-haiku-4-5-20251001",
		Timeout:    time.Second,
	}, nil, logger)

	mux := http.NewServeMux()
	Register(mux,
		NewAssistantHandler(assistant, logger),
		NewTrackingHandler(tracker),
		NewPromptsHandler(source, "s3cret", logger),
	)

	return &server{
		handler:   mux,
		provider:  provider,
		prompts:   promptRepo,
		usageRepo: usageRepo,
		tracker:   tracker,
		catalog:   cat,
	}
}

func (s *server) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *server) flush(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.tracker.Close(ctx))
}

func TestHealth(t *testing.T) {
	s := newServer(t, "")

	rec := s.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAskUsesAskPrompt(t *testing.T) {
	s := newServer(t, "Try turning it off and on again.")

	rec := s.do(http.MethodPost, "/api/ask", `{"prompt":"test"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":"Try turning it off and on again."}`, rec.Body.String())

	require.Len(t, s.provider.requests, 1)
	assert.Equal(t, s.catalog.Default(models.RoleAsk), s.provider.requests[0].System)
	assert.Equal(t, "test", s.provider.requests[0].Prompt)
}

func TestAskUsesStoredOverride(t *testing.T) {
	s := newServer(t, "ok")
	s.prompts.prompts = map[string]string{"p-bruce-ask": "You are Bruce."}

	rec := s.do(http.MethodPost, "/api/ask", `{"prompt":"test"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "You are Bruce.", s.provider.requests[0].System)
}

func TestAskReportsTokens(t *testing.T) {
	s := newServer(t, "ok")

	rec := s.do(http.MethodPost, "/api/ask", `{"prompt":"test","user_email":"tech@oriol.org"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	s.flush(t)

	assert.Equal(t, []string{"find tech@oriol.org", "create tech@oriol.org"}, s.usageRepo.calls)
}

type expiredTokenVerifier struct{}

func (expiredTokenVerifier) VerifyToken(string) (*models.SupabaseClaims, error) {
	return nil, errors.New("token has invalid claims: token is expired")
}

func (expiredTokenVerifier) Close() error { return nil }

func TestExpiredTokenDoesNotFailRequests(t *testing.T) {
	s := newServer(t, "fine")
	s.handler = middleware.OptionalAuth(expiredTokenVerifier{}, slog.New(slog.NewTextHandler(io.Discard, nil)))(s.handler)

	rec := s.do(http.MethodPost, "/api/track-click", `{}`, "Authorization", "Bearer stale")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/track-upload", `{"user_email":"tech@oriol.org"}`, "Authorization", "Bearer stale")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/ask", `{"prompt":"test"}`, "Authorization", "Bearer stale")
	assert.Equal(t, http.StatusOK, rec.Code)

	s.flush(t)
	assert.Equal(t, []string{"find tech@oriol.org", "create tech@oriol.org"}, s.usageRepo.calls)
}

func TestAskTakesEmailFromVerifiedToken(t *testing.T) {
	s := newServer(t, "ok")
	inner := s.handler
	s.handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner.ServeHTTP(w, httputil.WithUserEmail(r, "token@oriol.org"))
	})

	rec := s.do(http.MethodPost, "/api/ask", `{"prompt":"test"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	s.flush(t)

	assert.Contains(t, s.usageRepo.calls, "find token@oriol.org")
}

func TestAssistantEndpoints(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		reply    string
		wantBody string
	}{
		{
			name:     "summarize trims",
			path:     "/api/summarize",
			body:     `{"description":"The VPN drops every hour"}`,
			reply:    " VPN drops hourly \n",
			wantBody: `{"title":"VPN drops hourly"}`,
		},
		{
			name:     "generate sql",
			path:     "/api/generate-sql",
			body:     `{"question":"open tasks","target":"tasks"}`,
			reply:    "SELECT * FROM incidents LIMIT 50\n",
			wantBody: `{"sql":"SELECT * FROM incidents LIMIT 50"}`,
		},
		{
			name:     "suggestions",
			path:     "/api/check-suggestions",
			body:     `{"completed_tasks":[{"task_number":1,"title":"t","date_completed":"2025-01-01","note":"redo in 3 months"}]}`,
			reply:    `[{"title":"Redo t","reason":"3 months passed"}]`,
			wantBody: `{"suggestions":[{"title":"Redo t","reason":"3 months passed"}]}`,
		},
		{
			name:     "suggestions with unparseable reply",
			path:     "/api/check-suggestions",
			body:     `{"completed_tasks":[{"task_number":1,"title":"t","date_completed":"2025-01-01"}]}`,
			reply:    `Sorry, I can't help with that.`,
			wantBody: `{"suggestions":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(t, tt.reply)

			rec := s.do(http.MethodPost, tt.path, tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestCheckSuggestionsEmptyListSkipsModel(t *testing.T) {
	s := newServer(t, "unused")

	rec := s.do(http.MethodPost, "/api/check-suggestions", `{"completed_tasks":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"suggestions":[]}`, rec.Body.String())
	assert.Empty(t, s.provider.requests)
}

func TestAssistantErrors(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		body        string
		providerErr error
		wantStatus  int
	}{
		{name: "malformed json", path: "/api/ask", body: `{"prompt":`, wantStatus: http.StatusBadRequest},
		{name: "empty body", path: "/api/ask", body: ``, wantStatus: http.StatusBadRequest},
		{name: "missing prompt", path: "/api/ask", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "bad target", path: "/api/generate-sql", body: `{"question":"q","target":"users"}`, wantStatus: http.StatusBadRequest},
		{
			name:        "upstream failure",
			path:        "/api/summarize",
			body:        `{"description":"d"}`,
			providerErr: &domain.UpstreamError{Provider: "anthropic", Err: errors.New("timeout")},
			wantStatus:  http.StatusBadGateway,
		},
		{
			name:        "not configured",
			path:        "/api/ask",
			body:        `{"prompt":"p"}`,
			providerErr: domain.ErrNotConfigured,
			wantStatus:  http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(t, "")
			s.provider.err = tt.providerErr

			rec := s.do(http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestTrackingWithoutEmailIsNoop(t *testing.T) {
	for _, path := range []string{"/api/track-click", "/api/track-upload", "/api/track-session"} {
		for _, body := range []string{`{}`, ``, `not json`, `{"user_email":""}`} {
			t.Run(path+" "+body, func(t *testing.T) {
				s := newServer(t, "")

				rec := s.do(http.MethodPost, path, body)
				assert.Equal(t, http.StatusOK, rec.Code)
				assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

				s.flush(t)
				assert.Empty(t, s.usageRepo.calls)
			})
		}
	}
}

func TestTrackClickWithEmail(t *testing.T) {
	s := newServer(t, "")

	rec := s.do(http.MethodPost, "/api/track-click", `{"user_email":"tech@oriol.org"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	s.flush(t)
	assert.Equal(t, []string{"find tech@oriol.org", "create tech@oriol.org"}, s.usageRepo.calls)
}

func TestPromptsReload(t *testing.T) {
	s := newServer(t, "ok")
	s.prompts.prompts = map[string]string{"p-bruce-sql": "custom sql"}

	rec := s.do(http.MethodPost, "/api/prompts/reload", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/prompts/reload", "", "X-Admin-Token", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/prompts/reload", "", "X-Admin-Token", "s3cret")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Reloaded   bool     `json:"reloaded"`
		Overridden []string `json:"overridden"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Reloaded)
	assert.Equal(t, []string{"sql"}, body.Overridden)

	// A second reload fetches again.
	s.do(http.MethodPost, "/api/prompts/reload", "", "X-Admin-Token", "s3cret")
	assert.Equal(t, 2, s.prompts.calls)
}

func TestReloadRouteAbsentWithoutHandler(t *testing.T) {
	mux := http.NewServeMux()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	Register(mux, NewAssistantHandler(nil, logger), NewTrackingHandler(nil), nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/prompts/reload", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
