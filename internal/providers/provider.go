package providers

import (
	"context"
	"fmt"
)

// Request is one system+user exchange with a model.
type Request struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Response is the text a model returned.
type Response struct {
	Content    string
	TokensUsed int
}

// Model is the boundary to a language model. Implementations must return
// non-empty text or an error.
type Model interface {
	Complete(ctx context.Context, req Request) (Response, error)
	Name() string
}

// Providers lists the accepted provider names.
var Providers = []string{"anthropic", "openai", "gemini", "ollama"}

// New creates a provider by name.
func New(provider, model string) (Model, error) {
	switch provider {
	case "anthropic":
		return NewAnthropic(model)
	case "openai":
		return NewOpenAI(model)
	case "gemini", "google":
		return NewGemini(model)
	case "ollama", "lmstudio":
		return NewOllama(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

func defaultMaxTokens(n int) int {
	if n <= 0 {
		return 4096
	}
	return n
}
