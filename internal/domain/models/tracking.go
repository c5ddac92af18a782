package models

// TrackRequest is the body of the activity tracking endpoints.
// The body itself is optional; a missing email makes the call a no-op.
type TrackRequest struct {
	UserEmail string `json:"user_email,omitempty"`
}

type TrackResponse struct {
	OK bool `json:"ok"`
}
