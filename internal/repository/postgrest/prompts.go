package postgrest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"bruce/internal/domain/repositories"
)

const promptsTable = "prompts"

// PromptRepository reads prompt overrides from the prompts table.
type PromptRepository struct {
	client *Client
}

var _ repositories.PromptRepository = (*PromptRepository)(nil)

func NewPromptRepository(client *Client) *PromptRepository {
	return &PromptRepository{client: client}
}

func (r *PromptRepository) ListPrompts(ctx context.Context, appID string) (map[string]string, error) {
	query := url.Values{}
	query.Set("app_id", eq(appID))
	query.Set("select", "id,text")

	var rows []struct {
		ID   string  `json:"id"`
		Text *string `json:"text"`
	}
	if err := r.client.do(ctx, http.MethodGet, promptsTable, query, nil, &rows); err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}

	prompts := make(map[string]string, len(rows))
	for _, row := range rows {
		if row.Text != nil {
			prompts[row.ID] = *row.Text
		}
	}
	return prompts, nil
}
