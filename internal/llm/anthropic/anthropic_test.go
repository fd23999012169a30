package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/promptpulse/internal/llm"
)

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))

		var req messageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-test", req.Model)
		assert.Equal(t, defaultMaxTokens, req.MaxTokens)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "best EV?", req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"claude-test","content":[{"type":"text","text":"Tesla leads."}],"usage":{"input_tokens":10,"output_tokens":5}}`))
	}))
	defer server.Close()

	resp, err := New("key", server.URL).Generate(context.Background(), "best EV?", llm.Config{Model: "claude-test"})
	require.NoError(t, err)

	assert.Equal(t, "Tesla leads.", resp.Text)
	assert.Equal(t, 15, resp.TokensUsed)
	assert.Equal(t, "anthropic", resp.Provider)
}

func TestGenerateReturnsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := New("key", server.URL).Generate(context.Background(), "best EV?", llm.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}
