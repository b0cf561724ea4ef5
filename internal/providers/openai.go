package providers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"
)

const defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

// OpenAI talks to the OpenAI chat completions API.
type OpenAI struct {
	chat chatCompletions
}

// NewOpenAI creates a new OpenAI provider.
func NewOpenAI(model string) (*OpenAI, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable is not set")
	}
	baseURL := os.Getenv("CRUCIBLE_OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}
	return &OpenAI{chat: chatCompletions{
		apiKey: key,
		model:  model,
		url:    baseURL,
		client: &http.Client{Timeout: 300 * time.Second},
	}}, nil
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Complete(ctx context.Context, req Request) (Response, error) {
	return o.chat.complete(ctx, req)
}

// chatCompletions is the OpenAI-compatible wire protocol shared with Ollama and LM Studio.
type chatCompletions struct {
	apiKey string
	model  string
	url    string
	client *http.Client
}

func (c chatCompletions) complete(ctx context.Context, req Request) (Response, error) {
	temperature := req.Temperature
	body := openaiRequest{
		Model: c.model,
		Messages: []openaiMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		MaxTokens:   defaultMaxTokens(req.MaxTokens),
		Temperature: &temperature,
	}
	api := endpoint{url: c.url, client: c.client}
	if c.apiKey != "" {
		api.headers = map[string]string{"Authorization": "Bearer " + c.apiKey}
	}

	var result openaiResponse
	err := api.call(ctx, body, &result, func() error {
		switch {
		case len(result.Choices) == 0:
			return errors.New("no choices in response")
		case result.Choices[0].Message.Content == "":
			return errors.New("empty text content in API response")
		}
		return nil
	})
	if err != nil {
		return Response{}, err
	}
	return Response{Content: result.Choices[0].Message.Content, TokensUsed: result.Usage.TotalTokens}, nil
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
	Usage   openaiUsage    `json:"usage"`
}

type openaiChoice struct {
	Message openaiMessage `json:"message"`
}

type openaiUsage struct {
	TotalTokens int `json:"total_tokens"`
}
