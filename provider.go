package parley

import "context"

// Provider is a strategy pattern interface for LLM providers.
type Provider interface {
	// Complete sends a non-streaming request and returns the full text
	// response.
	Complete(ctx context.Context, req Request) (string, error)

	// Stream sends a streaming request and returns a Stream of text
	// fragments.
	Stream(ctx context.Context, req Request) (Stream, error)
}

// Request carries the conversation context and model selection.
// The provider uses its own default when Model is empty.
type Request struct {
	Model    string // model ID, provider-specific; empty = provider default
	Messages []ContextMessage
}
