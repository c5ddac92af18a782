package services

import (
	"context"

	"bruce/internal/domain/models"
)

// PromptSource resolves the instruction text for a role, preferring remote
// overrides and falling back to compiled-in defaults.
type PromptSource interface {
	Get(ctx context.Context, role models.Role) string
	Reload()
}
