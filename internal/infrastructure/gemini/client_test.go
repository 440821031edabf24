package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelcheck/backend/internal/domain"
)

func TestNewClient_EnabledState(t *testing.T) {
	enabled := NewClient("some-key", "https://example.com", "gemini-2.0-flash")
	assert.True(t, enabled.Enabled())

	disabled := NewClient("", "https://example.com", "gemini-2.0-flash")
	assert.False(t, disabled.Enabled())
}

func TestGenerate_DisabledClient(t *testing.T) {
	client := NewClient("", "https://example.com", "gemini-2.0-flash")

	text, err := client.Generate(context.Background(), "any prompt")

	assert.Empty(t, text)
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestGenerate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 1)
		assert.Equal(t, "analyze this", req.Contents[0].Parts[0].Text)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [
				{"content": {"parts": [{"text": "Health rating: 7/10"}]}}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, "gemini-2.0-flash")
	text, err := client.Generate(context.Background(), "analyze this")

	require.NoError(t, err)
	assert.Equal(t, "Health rating: 7/10", text)
}

func TestGenerate_HTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"code": 403, "message": "key invalid"}}`))
	}))
	defer server.Close()

	client := NewClient("bad-key", server.URL, "gemini-2.0-flash")
	text, err := client.Generate(context.Background(), "prompt")

	assert.Empty(t, text)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestGenerate_APIErrorObject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error": {"code": 429, "message": "quota exceeded"}}`))
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, "gemini-2.0-flash")
	text, err := client.Generate(context.Background(), "prompt")

	assert.Empty(t, text)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGenerate_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, "gemini-2.0-flash")
	text, err := client.Generate(context.Background(), "prompt")

	assert.Empty(t, text)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "empty completion")
}

func TestGenerate_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, "gemini-2.0-flash")
	text, err := client.Generate(context.Background(), "prompt")

	assert.Empty(t, text)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
}
