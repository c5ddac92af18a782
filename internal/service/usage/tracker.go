package usage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"bruce/internal/domain/models"
	"bruce/internal/domain/repositories"
	"bruce/internal/domain/services"
	"bruce/internal/metrics"
)

// Outcome classifies a background update.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeFailed  Outcome = "failed"
	OutcomeDropped Outcome = "dropped"
)

// Result is what one background update produced. It is logged and counted
// by the tracker and never returned to callers.
type Result struct {
	Outcome  Outcome
	RecordID string
	Err      error
}

// Tracker accumulates per-user counters in the Headlights user_accounts table.
//
// Every report runs as its own background read-modify-write against the
// store. Reports for the same user are not ordered or serialized; two
// overlapping updates can lose one of the increments.
type Tracker struct {
	repo    repositories.UsageRepository
	appID   string
	timeout time.Duration
	sem     *semaphore.Weighted
	newID   func() string
	metrics *metrics.Metrics
	logger  *slog.Logger

	// mu orders wg.Add in record against wg.Wait in Close.
	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

var _ services.UsageTracker = (*Tracker)(nil)

// NewTracker creates a tracker. repo may be nil, which disables tracking.
// At most maxInflight updates run at once; reports beyond that are dropped.
func NewTracker(
	repo repositories.UsageRepository,
	appID string,
	timeout time.Duration,
	maxInflight int,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Tracker {
	if maxInflight < 1 {
		maxInflight = 1
	}
	return &Tracker{
		repo:    repo,
		appID:   appID,
		timeout: timeout,
		sem:     semaphore.NewWeighted(int64(maxInflight)),
		newID:   func() string { return "br-" + uuid.New().String() },
		metrics: m,
		logger:  logger,
	}
}

// TrackTokens adds model token usage for a user. Non-blocking.
func (t *Tracker) TrackTokens(userEmail string, inputTokens, outputTokens int) {
	t.record(userEmail, models.UsageDelta{
		InputTokens:  int64(inputTokens),
		OutputTokens: int64(outputTokens),
	})
}

// TrackActivity adds session, upload and click counts for a user. Non-blocking.
func (t *Tracker) TrackActivity(userEmail string, sessions, uploads, clicks int) {
	t.record(userEmail, models.UsageDelta{
		Sessions: int64(sessions),
		Uploads:  int64(uploads),
		Clicks:   int64(clicks),
	})
}

// Close stops accepting reports and waits for in-flight updates or ctx.
func (t *Tracker) Close(ctx context.Context) error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("usage tracker: %w", ctx.Err())
	}
}

func (t *Tracker) record(userEmail string, delta models.UsageDelta) {
	userEmail = strings.TrimSpace(userEmail)
	if t.repo == nil || userEmail == "" || delta.IsZero() {
		return
	}
	t.mu.Lock()
	if t.closed || !t.sem.TryAcquire(1) {
		t.mu.Unlock()
		t.report(userEmail, delta, Result{Outcome: OutcomeDropped})
		return
	}
	t.wg.Add(1)
	t.mu.Unlock()

	go func() {
		defer t.wg.Done()
		defer t.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				t.report(userEmail, delta, Result{Outcome: OutcomeFailed, Err: fmt.Errorf("panic: %v", r)})
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()

		t.report(userEmail, delta, t.apply(ctx, userEmail, delta))
	}()
}

// apply reads the user's row, then either patches the changed counters or
// creates a row seeded from the delta.
func (t *Tracker) apply(ctx context.Context, userEmail string, delta models.UsageDelta) Result {
	current, err := t.repo.FindByEmail(ctx, t.appID, userEmail)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("find usage record: %w", err)}
	}

	if current != nil {
		if err := t.repo.Patch(ctx, current.ID, delta.Changes(current)); err != nil {
			return Result{Outcome: OutcomeFailed, RecordID: current.ID, Err: fmt.Errorf("patch usage record: %w", err)}
		}
		return Result{Outcome: OutcomeUpdated, RecordID: current.ID}
	}

	record := delta.Seed(t.newID(), t.appID, userEmail)
	if err := t.repo.Create(ctx, record); err != nil {
		return Result{Outcome: OutcomeFailed, RecordID: record.ID, Err: fmt.Errorf("create usage record: %w", err)}
	}
	return Result{Outcome: OutcomeCreated, RecordID: record.ID}
}

func (t *Tracker) report(userEmail string, delta models.UsageDelta, res Result) {
	t.metrics.UsageUpdate(string(res.Outcome))

	attrs := []any{
		"user_email", userEmail,
		"outcome", res.Outcome,
		"input_tokens", delta.InputTokens,
		"output_tokens", delta.OutputTokens,
		"sessions", delta.Sessions,
		"uploads", delta.Uploads,
		"clicks", delta.Clicks,
	}
	if res.RecordID != "" {
		attrs = append(attrs, "record_id", res.RecordID)
	}

	switch res.Outcome {
	case OutcomeFailed:
		t.logger.Warn("usage update failed", append(attrs, "error", res.Err)...)
	case OutcomeDropped:
		t.logger.Warn("usage update dropped", attrs...)
	default:
		t.logger.Debug("usage updated", attrs...)
	}
}
