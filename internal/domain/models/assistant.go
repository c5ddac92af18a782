package models

// Target selects which schema description grounds a SQL-generation request.
type Target string

const (
	TargetTasks  Target = "tasks"
	TargetAssets Target = "assets"
)

// Targets returns every supported target, in a stable order.
func Targets() []Target {
	return []Target{TargetTasks, TargetAssets}
}

// AskRequest is the body of POST /api/ask
type AskRequest struct {
	Prompt    string `json:"prompt"`
	System    string `json:"system,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}

type AskResponse struct {
	Text string `json:"text"`
}

// SummarizeRequest is the body of POST /api/summarize
type SummarizeRequest struct {
	Description string `json:"description"`
	UserEmail   string `json:"user_email,omitempty"`
}

type SummarizeResponse struct {
	Title string `json:"title"`
}

// GenerateSQLRequest is the body of POST /api/generate-sql.
// The returned SQL is advisory text; it is never executed here.
type GenerateSQLRequest struct {
	Question  string `json:"question"`
	Target    Target `json:"target"`
	UserEmail string `json:"user_email,omitempty"`
}

type GenerateSQLResponse struct {
	SQL string `json:"sql"`
}

// CompletedTask is one resolved task handed to the suggestion scan.
type CompletedTask struct {
	TaskNumber    int     `json:"task_number"`
	Title         string  `json:"title"`
	DateCompleted string  `json:"date_completed"`
	Note          *string `json:"note,omitempty"`
}

// CheckSuggestionsRequest is the body of POST /api/check-suggestions
type CheckSuggestionsRequest struct {
	CompletedTasks []CompletedTask `json:"completed_tasks"`
	UserEmail      string          `json:"user_email,omitempty"`
}

// Suggestion is a follow-up task proposed by the model.
type Suggestion struct {
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

type CheckSuggestionsResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}
