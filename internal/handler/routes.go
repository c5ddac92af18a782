package handler

import "net/http"

// Register wires the service endpoints onto mux. prompts may be nil, which
// leaves the reload route unregistered.
func Register(mux *http.ServeMux, assistant *AssistantHandler, tracking *TrackingHandler, prompts *PromptsHandler) {
	mux.HandleFunc("GET /health", HealthCheck)

	mux.HandleFunc("POST /api/ask", assistant.Ask)
	mux.HandleFunc("POST /api/summarize", assistant.Summarize)
	mux.HandleFunc("POST /api/generate-sql", assistant.GenerateSQL)
	mux.HandleFunc("POST /api/check-suggestions", assistant.CheckSuggestions)

	mux.HandleFunc("POST /api/track-click", tracking.TrackClick)
	mux.HandleFunc("POST /api/track-upload", tracking.TrackUpload)
	mux.HandleFunc("POST /api/track-session", tracking.TrackSession)

	if prompts != nil {
		mux.HandleFunc("POST /api/prompts/reload", prompts.Reload)
	}
}
