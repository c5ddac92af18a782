package handler

import (
	"net/http"

	"bruce/internal/domain/models"
	"bruce/internal/domain/services"
	"bruce/internal/httputil"
)

// TrackingHandler records front-end activity. Every endpoint answers
// {"ok": true}, whatever the body and whether or not the update lands.
type TrackingHandler struct {
	tracker services.UsageTracker
}

func NewTrackingHandler(tracker services.UsageTracker) *TrackingHandler {
	return &TrackingHandler{tracker: tracker}
}

// TrackClick POST /api/track-click
func (h *TrackingHandler) TrackClick(w http.ResponseWriter, r *http.Request) {
	h.track(w, r, 0, 0, 1)
}

// TrackUpload POST /api/track-upload
func (h *TrackingHandler) TrackUpload(w http.ResponseWriter, r *http.Request) {
	h.track(w, r, 0, 1, 0)
}

// TrackSession POST /api/track-session
func (h *TrackingHandler) TrackSession(w http.ResponseWriter, r *http.Request) {
	h.track(w, r, 1, 0, 0)
}

func (h *TrackingHandler) track(w http.ResponseWriter, r *http.Request, sessions, uploads, clicks int) {
	var req models.TrackRequest
	httputil.ParseOptionalJSON(w, r, &req)

	h.tracker.TrackActivity(userEmail(r, req.UserEmail), sessions, uploads, clicks)
	httputil.RespondJSON(w, http.StatusOK, models.TrackResponse{OK: true})
}
