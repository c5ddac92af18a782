package prompts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"bruce/internal/catalog"
	"bruce/internal/domain/models"
	"bruce/internal/domain/repositories"
	"bruce/internal/domain/services"
	"bruce/internal/metrics"
)

// Source serves instruction text per role. Remote overrides are fetched at
// most once until Reload is called; any fetch failure leaves the defaults in
// effect.
type Source struct {
	repo    repositories.PromptRepository
	catalog *catalog.Catalog
	appID   string
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu        sync.Mutex
	loaded    bool
	overrides map[string]string
}

var _ services.PromptSource = (*Source)(nil)

// NewSource creates a prompt source. repo may be nil when no store is
// configured, in which case only the compiled-in defaults are served.
func NewSource(
	repo repositories.PromptRepository,
	cat *catalog.Catalog,
	appID string,
	timeout time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Source {
	return &Source{
		repo:    repo,
		catalog: cat,
		appID:   appID,
		timeout: timeout,
		metrics: m,
		logger:  logger,
	}
}

// Get returns the override for role when one is present and non-blank,
// otherwise the compiled-in default.
func (s *Source) Get(ctx context.Context, role models.Role) string {
	overrides := s.ensureLoaded(ctx)
	if text, ok := overrides[s.catalog.StoreID(role)]; ok && strings.TrimSpace(text) != "" {
		return text
	}
	return s.catalog.Default(role)
}

// Reload forgets the fetched overrides; the next Get fetches again.
func (s *Source) Reload() {
	s.mu.Lock()
	s.loaded = false
	s.overrides = nil
	s.mu.Unlock()

	s.logger.Info("prompt overrides cleared")
}

// Overridden lists the roles currently served from remote overrides.
func (s *Source) Overridden(ctx context.Context) []models.Role {
	overrides := s.ensureLoaded(ctx)

	roles := []models.Role{}
	for _, role := range models.Roles() {
		if text, ok := overrides[s.catalog.StoreID(role)]; ok && strings.TrimSpace(text) != "" {
			roles = append(roles, role)
		}
	}
	return roles
}

// ensureLoaded performs the one-time fetch. The lock is held for the whole
// fetch so concurrent first callers wait for, and share, a single result.
// The returned map is never mutated after publication.
func (s *Source) ensureLoaded(ctx context.Context) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.overrides
	}

	overrides, err := s.fetch(ctx)
	switch {
	case s.repo == nil:
		s.metrics.PromptFetch("disabled")
	case err != nil:
		s.metrics.PromptFetch("error")
		s.logger.Warn("could not fetch prompt overrides, using defaults", "error", err)
	default:
		s.metrics.PromptFetch("ok")
		s.logger.Info("prompt overrides loaded", "count", len(overrides))
	}

	s.overrides = overrides
	s.loaded = true
	return s.overrides
}

// fetch reads the overrides from the store. The caller's cancellation is
// ignored: the result is shared by every later caller.
func (s *Source) fetch(ctx context.Context) (map[string]string, error) {
	if s.repo == nil {
		return map[string]string{}, nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	overrides, err := s.repo.ListPrompts(ctx, s.appID)
	if err != nil {
		return map[string]string{}, fmt.Errorf("list prompts: %w", err)
	}
	if overrides == nil {
		overrides = map[string]string{}
	}
	return overrides, nil
}
