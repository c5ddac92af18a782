package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bruce/internal/config"
)

func TestOpen(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name        string
		cfg         *config.Config
		wantBackend string
		wantRepos   bool
	}{
		{name: "nothing configured", cfg: &config.Config{}, wantBackend: "disabled"},
		{name: "url without key", cfg: &config.Config{HeadlightsURL: "https://x.supabase.co"}, wantBackend: "disabled"},
		{
			name:        "rest endpoint",
			cfg:         &config.Config{HeadlightsURL: "https://x.supabase.co", HeadlightsKey: "k", StoreTimeout: time.Second},
			wantBackend: "postgrest",
			wantRepos:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := Open(context.Background(), tt.cfg, logger)
			defer store.Close()

			assert.Equal(t, tt.wantBackend, store.Backend)
			assert.Equal(t, tt.wantRepos, store.Prompts != nil)
			assert.Equal(t, tt.wantRepos, store.Usage != nil)
		})
	}
}

func TestOpenBadDatabaseURLDisablesStore(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := Open(context.Background(), &config.Config{HeadlightsDBURL: "://not a url"}, logger)
	defer store.Close()

	assert.Equal(t, "disabled", store.Backend)
	assert.Nil(t, store.Prompts)
	assert.Nil(t, store.Usage)
}

func TestOpenUnreachableDatabaseKeepsServing(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		HeadlightsDBURL: "postgres://u:p@127.0.0.1:1/db?connect_timeout=1",
		StoreTimeout:    2 * time.Second,
	}

	start := time.Now()
	store := Open(context.Background(), cfg, logger)
	defer store.Close()

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, "postgres", store.Backend)
	require.NotNil(t, store.Usage)
	require.NotNil(t, store.Prompts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := store.Prompts.ListPrompts(ctx, "bruce")
	assert.Error(t, err)
}
