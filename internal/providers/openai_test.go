package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, content string, check func(r *http.Request, body openaiRequest)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body openaiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if check != nil {
			check(r, body)
		}
		json.NewEncoder(w).Encode(openaiResponse{
			Choices: []openaiChoice{{Message: openaiMessage{Role: "assistant", Content: content}}},
			Usage:   openaiUsage{TotalTokens: 42},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOpenAI_Complete(t *testing.T) {
	server := chatServer(t, "## CONFIRMED", func(r *http.Request, body openaiRequest) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "gpt-4.1", body.Model)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "judge", body.Messages[0].Content)
		require.NotNil(t, body.Temperature)
		assert.Equal(t, 0.0, *body.Temperature, "zero temperature is sent explicitly")
	})

	o := &OpenAI{chat: chatCompletions{apiKey: "sk-test", model: "gpt-4.1", url: server.URL, client: server.Client()}}
	resp, err := o.Complete(context.Background(), Request{System: "judge", User: "verdict please"})
	require.NoError(t, err)
	assert.Equal(t, "## CONFIRMED", resp.Content)
	assert.Equal(t, 42, resp.TokensUsed)
	assert.Equal(t, "openai", o.Name())
}

func TestOpenAI_EmptyContent(t *testing.T) {
	server := chatServer(t, "", nil)
	o := &OpenAI{chat: chatCompletions{apiKey: "k", model: "m", url: server.URL, client: server.Client()}}
	_, err := o.Complete(context.Background(), Request{System: "s", User: "u"})
	assert.ErrorContains(t, err, "empty text content")
}

func TestNewOpenAI_MissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewOpenAI("gpt-4.1")
	assert.ErrorContains(t, err, "OPENAI_API_KEY")
}

func TestNewOpenAI_BaseURL(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "k")
	t.Setenv("CRUCIBLE_OPENAI_BASE_URL", "http://proxy.local/v1/chat/completions")
	o, err := NewOpenAI("gpt-4.1")
	require.NoError(t, err)
	assert.Equal(t, "http://proxy.local/v1/chat/completions", o.chat.url)
}
