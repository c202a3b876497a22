// Package llm defines the provider-neutral contracts for language model
// calls. Concrete providers live in internal/gemini and internal/openai;
// which one backs the interfaces is decided once at wiring time from
// configuration.
package llm

import "context"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of model input.
type Message struct {
	Role    string
	Content string
}

// CompleteOptions control a single completion call.
type CompleteOptions struct {
	// System is the system instruction; empty means none.
	System string

	// Temperature is the sampling temperature.
	Temperature float32
}

// Completer produces a single completion for a conversation.
type Completer interface {
	Complete(ctx context.Context, messages []Message, opts CompleteOptions) (string, error)
}

// Embedder turns texts into fixed-dimensionality vectors, one per input,
// in input order. Implementations batch internally to bound request volume.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
