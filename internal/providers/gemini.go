package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"google.golang.org/genai"
)

// Gemini talks to the Gemini API through the genai SDK.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a new Gemini provider.
func NewGemini(model string) (*Gemini, error) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		key = os.Getenv("GOOGLE_API_KEY")
	}
	if key == "" {
		return nil, errors.New("GEMINI_API_KEY (or GOOGLE_API_KEY) environment variable is not set")
	}
	return newGeminiWithConfig(context.Background(), model, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
}

func newGeminiWithConfig(ctx context.Context, model string, cfg *genai.ClientConfig) (*Gemini, error) {
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Complete(ctx context.Context, req Request) (Response, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		MaxOutputTokens:   int32(defaultMaxTokens(req.MaxTokens)),
		Temperature:       genai.Ptr(float32(req.Temperature)),
	}

	var resp Response
	err := retryWithBackoff(ctx, maxRetries, func() error {
		result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.User), config)
		if err != nil {
			return classifyGenAIError(err)
		}
		text := strings.TrimSpace(result.Text())
		if text == "" {
			return errors.New("no text content in API response")
		}
		resp = Response{Content: result.Text()}
		if result.UsageMetadata != nil {
			resp.TokensUsed = int(result.UsageMetadata.TotalTokenCount)
		}
		return nil
	})
	return resp, err
}

func classifyGenAIError(err error) error {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	default:
		return fmt.Errorf("gemini request: %w", err)
	}
	if code == http.StatusOK {
		return err
	}
	return statusError(code, []byte(err.Error()))
}
