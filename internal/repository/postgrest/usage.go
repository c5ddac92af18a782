package postgrest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"bruce/internal/domain/models"
	"bruce/internal/domain/repositories"
)

const usageTable = "user_accounts"

const usageColumns = "id,app_id,email,input_tokens,output_tokens,sessions,uploads,clicks,credits,revenue,cost"

// UsageRepository stores usage counters in the user_accounts table.
type UsageRepository struct {
	client *Client
}

var _ repositories.UsageRepository = (*UsageRepository)(nil)

func NewUsageRepository(client *Client) *UsageRepository {
	return &UsageRepository{client: client}
}

func (r *UsageRepository) FindByEmail(ctx context.Context, appID, email string) (*models.UsageRecord, error) {
	query := url.Values{}
	query.Set("app_id", eq(appID))
	query.Set("email", eq(email))
	query.Set("select", usageColumns)

	var rows []models.UsageRecord
	if err := r.client.do(ctx, http.MethodGet, usageTable, query, nil, &rows); err != nil {
		return nil, fmt.Errorf("find usage record: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *UsageRepository) Patch(ctx context.Context, id string, changes map[string]int64) error {
	if len(changes) == 0 {
		return nil
	}
	query := url.Values{}
	query.Set("id", eq(id))

	if err := r.client.do(ctx, http.MethodPatch, usageTable, query, changes, nil); err != nil {
		return fmt.Errorf("patch usage record %s: %w", id, err)
	}
	return nil
}

func (r *UsageRepository) Create(ctx context.Context, record *models.UsageRecord) error {
	if err := r.client.do(ctx, http.MethodPost, usageTable, nil, record, nil); err != nil {
		return fmt.Errorf("create usage record: %w", err)
	}
	return nil
}
