package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(server *httptest.Server, token string) *Client {
	return &Client{token: token, apiURL: server.URL, httpCli: server.Client()}
}

func TestGetPRDiff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github.v3.diff", r.Header.Get("Accept"))
		assert.Equal(t, "/repos/owner/repo/pulls/42", r.URL.Path)
		w.Write([]byte("diff --git a/file.go b/file.go\n"))
	}))
	defer server.Close()

	diff, err := newTestClient(server, "test-token").GetPRDiff(context.Background(), "owner", "repo", 42)
	require.NoError(t, err)
	assert.Equal(t, "diff --git a/file.go b/file.go\n", diff)
}

func TestGetPRDiff_NoToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte("diff"))
	}))
	defer server.Close()

	_, err := newTestClient(server, "").GetPRDiff(context.Background(), "o", "r", 1)
	require.NoError(t, err)
}

func TestGetPRDiff_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		contains string
		notFound bool
	}{
		{name: "not found", status: http.StatusNotFound, contains: "#99 in owner/repo", notFound: true},
		{name: "unauthorized", status: http.StatusUnauthorized, contains: "authentication failed"},
		{name: "server error", status: http.StatusBadGateway, contains: "status 502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"message":"nope"}`))
			}))
			defer server.Close()

			_, err := newTestClient(server, "t").GetPRDiff(context.Background(), "owner", "repo", 99)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
			assert.Equal(t, tt.notFound, errors.Is(err, ErrNotFound))
		})
	}
}

func TestNewClient_Env(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "tok")
	t.Setenv("GITHUB_API_URL", "https://ghe.example.com/api/v3/")
	c := NewClient()
	assert.Equal(t, "tok", c.token)
	assert.Equal(t, "https://ghe.example.com/api/v3", c.apiURL)
}
