package lorem

import (
	"context"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"

	domainllm "bruce/internal/domain/services/llm"
)

// Provider is a mock model provider that generates lorem ipsum text.
// Used for local development without an API key. It stands in for every
// configured model, so it accepts any model name.
type Provider struct {
	generator *loremgen.Lorem
	delay     time.Duration
}

var _ domainllm.Provider = (*Provider)(nil)

// NewProvider creates a new lorem ipsum provider that answers after delay.
func NewProvider(delay time.Duration) *Provider {
	return &Provider{
		generator: loremgen.New(),
		delay:     delay,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "lorem"
}

func (p *Provider) SupportsModel(model string) bool {
	return true
}

// GenerateResponse returns placeholder text sized to the token budget.
// Structured operations get a valid empty JSON array so callers can
// exercise their happy path offline.
func (p *Provider) GenerateResponse(ctx context.Context, req *domainllm.GenerateRequest) (*domainllm.GenerateResponse, error) {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	var text string
	switch {
	case strings.Contains(req.System, "JSON array"):
		text = "[]"
	case req.MaxTokens <= 50:
		text = p.generator.Sentence(5, 8)
	default:
		// Estimate: 1 token ≈ 4 characters
		text = p.generateText(req.MaxTokens * 4)
	}

	return &domainllm.GenerateResponse{
		Text:         text,
		Model:        req.Model,
		InputTokens:  estimateTokens(req.System) + estimateTokens(req.Prompt),
		OutputTokens: estimateTokens(text),
		StopReason:   "end_turn",
	}, nil
}

func (p *Provider) generateText(targetChars int) string {
	var sb strings.Builder
	for sb.Len() < targetChars {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(p.generator.Paragraph(3, 5))
	}
	return sb.String()
}

// estimateTokens uses word count as a proxy.
func estimateTokens(s string) int {
	return len(strings.Fields(s))
}
