package config

const (
	// MaxPromptLength bounds free-form prompts sent to /api/ask.
	// The model's context is far larger, but nothing in the front end
	// sends more than a few pages of text.
	MaxPromptLength = 100_000

	// MaxSystemLength bounds caller-supplied system instructions.
	MaxSystemLength = 20_000

	// MaxDescriptionLength bounds incident descriptions sent for titling.
	MaxDescriptionLength = 10_000

	// MaxQuestionLength bounds natural-language SQL questions.
	MaxQuestionLength = 2_000

	// MaxCompletedTasks bounds a single suggestion scan. A year of resolved
	// tasks stays far below it; in practice the 1MB body cap binds first.
	MaxCompletedTasks = 20_000

	// MaxEmailLength matches the RFC 5321 path limit.
	MaxEmailLength = 254
)
