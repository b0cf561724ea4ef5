package providers

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultOllamaURL = "http://localhost:11434"

// Ollama talks to Ollama or LM Studio through their OpenAI-compatible endpoint.
type Ollama struct {
	chat chatCompletions
}

// NewOllama creates a new Ollama provider. No API key is required by default.
func NewOllama(model string) (*Ollama, error) {
	baseURL := os.Getenv("OLLAMA_HOST")
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	baseURL = strings.TrimSuffix(baseURL, "/v1/chat/completions")
	baseURL = strings.TrimSuffix(baseURL, "/v1")

	return &Ollama{chat: chatCompletions{
		apiKey: os.Getenv("CRUCIBLE_OLLAMA_API_KEY"),
		model:  model,
		url:    baseURL + "/v1/chat/completions",
		client: &http.Client{Timeout: 600 * time.Second},
	}}, nil
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) Complete(ctx context.Context, req Request) (Response, error) {
	return o.chat.complete(ctx, req)
}
