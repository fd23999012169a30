package ollama

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
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)
		assert.False(t, req.Stream)
		assert.Equal(t, 0.2, req.Options["temperature"])

		_, _ = w.Write([]byte(`{"model":"llama3","response":"Rivian is close behind.","done":true,"prompt_eval_count":7,"eval_count":4}`))
	}))
	defer server.Close()

	resp, err := New(server.URL+"/").Generate(context.Background(), "best EV?", llm.Config{Temperature: 0.2})
	require.NoError(t, err)

	assert.Equal(t, "Rivian is close behind.", resp.Text)
	assert.Equal(t, 11, resp.TokensUsed)
	assert.Equal(t, "ollama", resp.Provider)
}

func TestGenerateReturnsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := New(server.URL).Generate(context.Background(), "best EV?", llm.Config{Model: "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}
