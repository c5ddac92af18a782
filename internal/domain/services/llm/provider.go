package llm

import (
	"context"
)

// Provider defines the interface that all model providers must implement.
// Every operation in this service is a single-turn request: one system
// instruction and one user message.
type Provider interface {
	// GenerateResponse performs one round trip to the hosted model.
	GenerateResponse(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// Name returns the provider name (e.g., "anthropic", "lorem")
	Name() string

	// SupportsModel returns true if the provider supports the given model.
	SupportsModel(model string) bool
}

// GenerateRequest contains the parameters for a single-turn generation request.
type GenerateRequest struct {
	// Model is the model identifier (e.g., "claude-haiku-4-5-20251001")
	Model string

	// MaxTokens bounds the output length.
	MaxTokens int

	// System is the system instruction. Empty means none.
	System string

	// Prompt is the single user message.
	Prompt string
}

// GenerateResponse contains the provider's response.
type GenerateResponse struct {
	// Text is the concatenation of all text blocks in the reply.
	Text string

	// Model is the model that was used (may differ from request if aliased)
	Model string

	InputTokens  int
	OutputTokens int

	// StopReason indicates why generation stopped (e.g., "end_turn", "max_tokens")
	StopReason string
}
