package extract

import "context"

// CompletionOptions tune one completion request.
type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
}

// Completer abstracts the language-model backend.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}
