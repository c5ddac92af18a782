package repositories

import (
	"context"

	"bruce/internal/domain/models"
)

// UsageRepository reads and writes rows of the remote user_accounts table.
type UsageRepository interface {
	// FindByEmail returns the row for (appID, email), or nil when none exists.
	FindByEmail(ctx context.Context, appID, email string) (*models.UsageRecord, error)

	// Patch writes only the given columns of row id.
	Patch(ctx context.Context, id string, changes map[string]int64) error

	// Create inserts a new row.
	Create(ctx context.Context, record *models.UsageRecord) error
}
