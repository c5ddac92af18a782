// Package repository selects the Headlights store backend from configuration.
package repository

import (
	"context"
	"log/slog"

	"bruce/internal/config"
	"bruce/internal/domain/repositories"
	"bruce/internal/repository/postgres"
	"bruce/internal/repository/postgrest"
)

// Store bundles the repositories backed by the Headlights store.
// Both repositories are nil when no store is configured.
type Store struct {
	Prompts repositories.PromptRepository
	Usage   repositories.UsageRepository
	Backend string

	close func()
}

// Open connects to the configured store. A direct database URL takes
// precedence over the REST endpoint; with neither set the store is disabled.
//
// Open never fails. A database URL that cannot be parsed disables the store,
// and an unreachable database is only logged: the pool keeps dialing on
// demand while prompts fall back to defaults and usage updates fail.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) *Store {
	switch {
	case cfg.HeadlightsDBURL != "":
		pool, err := postgres.CreateConnectionPool(ctx, cfg.HeadlightsDBURL)
		if err != nil {
			logger.Warn("headlights database misconfigured; store disabled", "error", err)
			return &Store{Backend: "disabled"}
		}

		pingCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			logger.Warn("headlights database unreachable; will retry on demand", "error", err)
		}

		tables := postgres.DefaultTableNames()
		return &Store{
			Prompts: postgres.NewPromptRepository(pool, tables),
			Usage:   postgres.NewUsageRepository(pool, tables, logger),
			Backend: "postgres",
			close:   pool.Close,
		}

	case cfg.HeadlightsURL != "" && cfg.HeadlightsKey != "":
		client := postgrest.NewClient(cfg.HeadlightsURL, cfg.HeadlightsKey, cfg.StoreTimeout)
		return &Store{
			Prompts: postgrest.NewPromptRepository(client),
			Usage:   postgrest.NewUsageRepository(client),
			Backend: "postgrest",
		}

	default:
		return &Store{Backend: "disabled"}
	}
}

// Close releases the database pool, if any.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}
