package handler

import (
	"log/slog"
	"net/http"

	"bruce/internal/domain/models"
	domainllm "bruce/internal/domain/services/llm"
	"bruce/internal/httputil"
)

// AssistantHandler serves the model-backed endpoints
type AssistantHandler struct {
	assistant domainllm.AssistantService
	logger    *slog.Logger
}

// NewAssistantHandler creates a new assistant handler
func NewAssistantHandler(assistant domainllm.AssistantService, logger *slog.Logger) *AssistantHandler {
	return &AssistantHandler{
		assistant: assistant,
		logger:    logger,
	}
}

// Ask answers a free-form question
// POST /api/ask
func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if !parseRequest(w, r, &req) {
		return
	}
	req.UserEmail = userEmail(r, req.UserEmail)

	resp, err := h.assistant.Ask(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

// Summarize titles an incident description
// POST /api/summarize
func (h *AssistantHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req models.SummarizeRequest
	if !parseRequest(w, r, &req) {
		return
	}
	req.UserEmail = userEmail(r, req.UserEmail)

	resp, err := h.assistant.Summarize(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

// GenerateSQL turns a question into advisory SQL text
// POST /api/generate-sql
func (h *AssistantHandler) GenerateSQL(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateSQLRequest
	if !parseRequest(w, r, &req) {
		return
	}
	req.UserEmail = userEmail(r, req.UserEmail)

	resp, err := h.assistant.GenerateSQL(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

// CheckSuggestions scans completed tasks for due follow-ups
// POST /api/check-suggestions
func (h *AssistantHandler) CheckSuggestions(w http.ResponseWriter, r *http.Request) {
	var req models.CheckSuggestionsRequest
	if !parseRequest(w, r, &req) {
		return
	}
	req.UserEmail = userEmail(r, req.UserEmail)

	resp, err := h.assistant.CheckSuggestions(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}
