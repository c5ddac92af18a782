package handler

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"bruce/internal/domain/models"
	"bruce/internal/httputil"
)

// PromptReloader is implemented by the prompt source
type PromptReloader interface {
	Reload()
	Overridden(ctx context.Context) []models.Role
}

// PromptsHandler lets operators pick up edited prompt overrides without a restart
type PromptsHandler struct {
	prompts    PromptReloader
	adminToken string
	logger     *slog.Logger
}

// NewPromptsHandler creates a prompts handler. The route should only be
// registered when adminToken is non-empty.
func NewPromptsHandler(prompts PromptReloader, adminToken string, logger *slog.Logger) *PromptsHandler {
	return &PromptsHandler{
		prompts:    prompts,
		adminToken: adminToken,
		logger:     logger,
	}
}

type reloadResponse struct {
	Reloaded   bool          `json:"reloaded"`
	Overridden []models.Role `json:"overridden"`
}

// Reload clears the cached overrides and fetches them again
// POST /api/prompts/reload
func (h *PromptsHandler) Reload(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Admin-Token")
	if h.adminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) != 1 {
		httputil.RespondError(w, http.StatusUnauthorized, "invalid admin token")
		return
	}

	h.prompts.Reload()
	overridden := h.prompts.Overridden(r.Context())

	h.logger.Info("prompt overrides reloaded", "overridden", overridden)
	httputil.RespondJSON(w, http.StatusOK, reloadResponse{Reloaded: true, Overridden: overridden})
}
