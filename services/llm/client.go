package llm

import "context"

// GenerationParams carries optional sampling parameters. Zero values mean
// "use the backend default".
type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	MaxTokens   *int     `json:"max_tokens"`
}

// Client defines the standard interface for any generative AI backend.
//
// Implementations must honor ctx cancellation and deadlines, and should wrap
// failures in a *BackendError so callers can map each failure kind to a
// distinct user-facing fallback.
type Client interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}
