package services

// UsageTracker records per-user counters in the remote store.
// Calls never block on the network and never report failure.
type UsageTracker interface {
	TrackTokens(userEmail string, inputTokens, outputTokens int)
	TrackActivity(userEmail string, sessions, uploads, clicks int)
}
