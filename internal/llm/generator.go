// Package llm wraps the chat-model boundary: a single-attempt generator,
// a retry executor, and a normalizer that turns raw model text into
// validated structured output.
package llm

import "context"

// Request is one generation call.
type Request struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// Generator performs exactly one model call per invocation; retry policy
// lives in RunWithRetry, never inside an implementation.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}
