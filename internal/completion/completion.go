package completion

import "context"

// Client defines the interface for the external text-completion provider.
// Implementations can target Groq, OpenAI, or any chat-completions-compatible
// API. Use MockClient in tests.
type Client interface {
	// Complete sends a system instruction and a user prompt to the provider
	// and returns the generated text verbatim.
	Complete(ctx context.Context, system, user string) (string, error)
}
