package handler

import (
	"net/http"

	"bruce/internal/httputil"
)

// HealthCheck is a liveness probe
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
