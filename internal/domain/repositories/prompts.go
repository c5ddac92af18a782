package repositories

import "context"

// PromptRepository lists prompt overrides stored remotely for an application.
type PromptRepository interface {
	// ListPrompts returns override text keyed by store id (e.g. "p-bruce-sql").
	ListPrompts(ctx context.Context, appID string) (map[string]string, error)
}
