package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bruce/internal/catalog"
	"bruce/internal/domain"
	"bruce/internal/domain/models"
	"bruce/internal/domain/services"
	domainllm "bruce/internal/domain/services/llm"
	"bruce/internal/metrics"
)

// AssistantConfig selects the models behind each tier and bounds each call.
type AssistantConfig struct {
	SmartModel string
	FastModel  string
	Timeout    time.Duration
}

// assistantService implements the model gateway
type assistantService struct {
	provider domainllm.Provider
	catalog  *catalog.Catalog
	prompts  services.PromptSource
	tracker  services.UsageTracker
	config   AssistantConfig
	now      func() time.Time
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewAssistantService creates the model gateway. provider may be nil when no
// model is configured; every operation then fails with ErrNotConfigured.
func NewAssistantService(
	provider domainllm.Provider,
	cat *catalog.Catalog,
	prompts services.PromptSource,
	tracker services.UsageTracker,
	cfg AssistantConfig,
	m *metrics.Metrics,
	logger *slog.Logger,
) domainllm.AssistantService {
	return newAssistantService(provider, cat, prompts, tracker, cfg, m, logger)
}

func newAssistantService(
	provider domainllm.Provider,
	cat *catalog.Catalog,
	prompts services.PromptSource,
	tracker services.UsageTracker,
	cfg AssistantConfig,
	m *metrics.Metrics,
	logger *slog.Logger,
) *assistantService {
	return &assistantService{
		provider: provider,
		catalog:  cat,
		prompts:  prompts,
		tracker:  tracker,
		config:   cfg,
		now:      time.Now,
		metrics:  m,
		logger:   logger,
	}
}

// Ask answers a free-form question. The system instruction is the caller's,
// else the "ask" prompt, else the built-in persona.
func (s *assistantService) Ask(ctx context.Context, req *models.AskRequest) (*models.AskResponse, error) {
	if err := validateAskRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	system := req.System
	if strings.TrimSpace(system) == "" {
		system = s.prompts.Get(ctx, models.RoleAsk)
	}
	if strings.TrimSpace(system) == "" {
		system = s.catalog.Persona()
	}

	resp, err := s.generate(ctx, catalog.OpAsk, system, req.Prompt, req.UserEmail)
	if err != nil {
		return nil, err
	}
	return &models.AskResponse{Text: resp.Text}, nil
}

// Summarize produces a short title for an incident description.
func (s *assistantService) Summarize(ctx context.Context, req *models.SummarizeRequest) (*models.SummarizeResponse, error) {
	if err := validateSummarizeRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	resp, err := s.generate(ctx, catalog.OpSummarize, s.catalog.SummarizeInstruction(), req.Description, req.UserEmail)
	if err != nil {
		return nil, err
	}
	return &models.SummarizeResponse{Title: strings.TrimSpace(resp.Text)}, nil
}

// GenerateSQL turns a question into a read-only query against the target's
// schema. The SQL is returned as text and never executed here.
func (s *assistantService) GenerateSQL(ctx context.Context, req *models.GenerateSQLRequest) (*models.GenerateSQLResponse, error) {
	if err := validateGenerateSQLRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	schema, err := s.catalog.Schema(req.Target)
	if err != nil {
		return nil, err
	}
	system := s.prompts.Get(ctx, models.RoleSQL) + "\n\nDatabase schema:\n" + schema.Text

	resp, err := s.generate(ctx, catalog.OpGenerateSQL, system, req.Question, req.UserEmail)
	if err != nil {
		return nil, err
	}
	return &models.GenerateSQLResponse{SQL: strings.TrimSpace(resp.Text)}, nil
}

// CheckSuggestions scans completed tasks for follow-ups that are due.
// An empty task list short-circuits without a model call, and a reply that
// is not a JSON array yields no suggestions rather than an error.
func (s *assistantService) CheckSuggestions(ctx context.Context, req *models.CheckSuggestionsRequest) (*models.CheckSuggestionsResponse, error) {
	if err := validateCheckSuggestionsRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if len(req.CompletedTasks) == 0 {
		return &models.CheckSuggestionsResponse{Suggestions: []models.Suggestion{}}, nil
	}

	system := s.prompts.Get(ctx, models.RoleSuggestions) +
		"\n\nToday's date: " + s.now().Format(time.DateOnly)

	resp, err := s.generate(ctx, catalog.OpCheckSuggestions, system, TaskLines(req.CompletedTasks), req.UserEmail)
	if err != nil {
		return nil, err
	}

	return &models.CheckSuggestionsResponse{Suggestions: s.parseSuggestions(resp.Text)}, nil
}

// generate runs one model call for an operation and reports its token usage.
func (s *assistantService) generate(ctx context.Context, op, system, prompt, userEmail string) (*domainllm.GenerateResponse, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("%w: no model provider", domain.ErrNotConfigured)
	}

	profile, err := s.catalog.Operation(op)
	if err != nil {
		return nil, err
	}

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	model := s.modelFor(profile.Tier)
	start := time.Now()
	resp, err := s.provider.GenerateResponse(ctx, &domainllm.GenerateRequest{
		Model:     model,
		MaxTokens: profile.MaxTokens,
		System:    system,
		Prompt:    prompt,
	})
	elapsed := time.Since(start)

	if err != nil {
		s.metrics.ObserveModelCall(op, elapsed, 0, 0, err)
		s.logger.Error("model call failed",
			"operation", op,
			"model", model,
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		if errors.Is(err, domain.ErrUpstream) || errors.Is(err, domain.ErrNotConfigured) {
			return nil, err
		}
		return nil, &domain.UpstreamError{Provider: s.provider.Name(), Err: err}
	}

	s.metrics.ObserveModelCall(op, elapsed, resp.InputTokens, resp.OutputTokens, nil)
	s.logger.Debug("model call completed",
		"operation", op,
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"stop_reason", resp.StopReason,
		"duration_ms", elapsed.Milliseconds(),
	)

	s.tracker.TrackTokens(userEmail, resp.InputTokens, resp.OutputTokens)
	return resp, nil
}

func (s *assistantService) modelFor(tier catalog.Tier) string {
	if tier == catalog.TierFast {
		return s.config.FastModel
	}
	return s.config.SmartModel
}

func (s *assistantService) parseSuggestions(text string) []models.Suggestion {
	var suggestions []models.Suggestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &suggestions); err != nil {
		s.logger.Warn("discarding unparseable suggestions", "error", err, "length", len(text))
		return []models.Suggestion{}
	}
	if suggestions == nil {
		return []models.Suggestion{}
	}
	return suggestions
}

// TaskLines renders completed tasks as the user message of a suggestion scan:
//
//	Task #12 (completed 2025-01-10): Replace UPS battery
//	  Note: consider replacing the second unit in 6 months
func TaskLines(tasks []models.CompletedTask) string {
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		line := fmt.Sprintf("Task #%d (completed %s): %s", t.TaskNumber, t.DateCompleted, t.Title)
		if t.Note != nil && *t.Note != "" {
			line += "\n  Note: " + *t.Note
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
