package models

// Column names of the Headlights user_accounts table touched by this service.
const (
	ColumnInputTokens  = "input_tokens"
	ColumnOutputTokens = "output_tokens"
	ColumnSessions     = "sessions"
	ColumnUploads      = "uploads"
	ColumnClicks       = "clicks"
)

// UsageRecord is a row of the remote user_accounts table.
// Credits, Revenue and Cost belong to the store; this service only zeroes them on creation.
type UsageRecord struct {
	ID           string  `json:"id"`
	AppID        string  `json:"app_id"`
	Email        string  `json:"email"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	Sessions     int64   `json:"sessions"`
	Uploads      int64   `json:"uploads"`
	Clicks       int64   `json:"clicks"`
	Credits      int64   `json:"credits"`
	Revenue      float64 `json:"revenue"`
	Cost         float64 `json:"cost"`
}

// UsageDelta holds counter increments for one user.
type UsageDelta struct {
	InputTokens  int64
	OutputTokens int64
	Sessions     int64
	Uploads      int64
	Clicks       int64
}

func (d UsageDelta) IsZero() bool {
	return d == UsageDelta{}
}

// Changes returns the new value of every counter with a non-zero delta,
// keyed by column name. Counters with a zero delta are absent.
func (d UsageDelta) Changes(current *UsageRecord) map[string]int64 {
	changes := make(map[string]int64)
	add := func(column string, old, delta int64) {
		if delta != 0 {
			changes[column] = old + delta
		}
	}
	add(ColumnInputTokens, current.InputTokens, d.InputTokens)
	add(ColumnOutputTokens, current.OutputTokens, d.OutputTokens)
	add(ColumnSessions, current.Sessions, d.Sessions)
	add(ColumnUploads, current.Uploads, d.Uploads)
	add(ColumnClicks, current.Clicks, d.Clicks)
	return changes
}

// Seed builds a fresh record whose counters equal the deltas.
func (d UsageDelta) Seed(id, appID, email string) *UsageRecord {
	return &UsageRecord{
		ID:           id,
		AppID:        appID,
		Email:        email,
		InputTokens:  d.InputTokens,
		OutputTokens: d.OutputTokens,
		Sessions:     d.Sessions,
		Uploads:      d.Uploads,
		Clicks:       d.Clicks,
	}
}
