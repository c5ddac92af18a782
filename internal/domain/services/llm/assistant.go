package llm

import (
	"context"

	"bruce/internal/domain/models"
)

// AssistantService is the model gateway used by the HTTP handlers.
// Each method performs at most one model round trip and reports token
// usage for the request's user in the background.
type AssistantService interface {
	Ask(ctx context.Context, req *models.AskRequest) (*models.AskResponse, error)
	Summarize(ctx context.Context, req *models.SummarizeRequest) (*models.SummarizeResponse, error)
	GenerateSQL(ctx context.Context, req *models.GenerateSQLRequest) (*models.GenerateSQLResponse, error)
	CheckSuggestions(ctx context.Context, req *models.CheckSuggestionsRequest) (*models.CheckSuggestionsResponse, error)
}
