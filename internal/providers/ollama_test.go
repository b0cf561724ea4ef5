package providers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOllama_URLNormalization(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"", "http://localhost:11434/v1/chat/completions"},
		{"http://gpu-box:11434/", "http://gpu-box:11434/v1/chat/completions"},
		{"http://gpu-box:11434/v1", "http://gpu-box:11434/v1/chat/completions"},
		{"http://localhost:1234/v1/chat/completions", "http://localhost:1234/v1/chat/completions"},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			t.Setenv("OLLAMA_HOST", tt.host)
			o, err := NewOllama("llama3")
			require.NoError(t, err)
			assert.Equal(t, tt.want, o.chat.url)
		})
	}
}

func TestOllama_Complete(t *testing.T) {
	server := chatServer(t, "# Progress Update", func(r *http.Request, body openaiRequest) {
		assert.Empty(t, r.Header.Get("Authorization"), "no key configured")
		assert.Equal(t, "llama3", body.Model)
	})
	o := &Ollama{chat: chatCompletions{model: "llama3", url: server.URL, client: server.Client()}}
	resp, err := o.Complete(context.Background(), Request{System: "s", User: "u"})
	require.NoError(t, err)
	assert.Equal(t, "# Progress Update", resp.Content)
	assert.Equal(t, "ollama", o.Name())
}

func TestOllama_APIKey(t *testing.T) {
	server := chatServer(t, "ok", func(r *http.Request, _ openaiRequest) {
		assert.Equal(t, "Bearer lm-key", r.Header.Get("Authorization"))
	})
	t.Setenv("CRUCIBLE_OLLAMA_API_KEY", "lm-key")
	t.Setenv("OLLAMA_HOST", server.URL)
	o, err := NewOllama("qwen")
	require.NoError(t, err)
	_, err = o.Complete(context.Background(), Request{System: "s", User: "u"})
	require.NoError(t, err)
}
