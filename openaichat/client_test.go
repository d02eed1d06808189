package openaichat_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedrocandeias/idaia"
	"github.com/pedrocandeias/idaia/openaichat"
)

func TestClient_Complete(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hello"}}]}`))
	}))
	defer srv.Close()

	c := openaichat.New("sk-test", openaichat.WithBaseURL(srv.URL))
	temp := 0.1
	reply, err := c.Complete(context.Background(), idaia.Request{
		Model:        "gpt-4o-mini",
		SystemPrompt: "You are concise.",
		Turns: []idaia.Turn{
			{Role: idaia.RoleUser, Text: "make a box"},
			{Role: idaia.RoleAssistant, Text: "Created box Box"},
		},
		UserPrompt:  "now a sphere",
		Temperature: &temp,
		MaxTokens:   1024,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)

	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBody["model"])
	assert.Equal(t, false, gotBody["stream"])
	assert.Equal(t, 0.1, gotBody["temperature"])

	// System message first, then the transcript in order.
	msgs := gotBody["messages"].([]any)
	require.Len(t, msgs, 4)
	first := msgs[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
	last := msgs[3].(map[string]any)
	assert.Equal(t, "user", last["role"])
	assert.Equal(t, "now a sphere", last["content"])
}

func TestClient_CompleteNoAuthHeaderWithoutKey(t *testing.T) {
	t.Parallel()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	// Ollama needs no key.
	c := openaichat.New("", openaichat.WithBaseURL(srv.URL))
	_, err := c.Complete(context.Background(), idaia.Request{UserPrompt: "hi"})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_CompleteHTTPErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		kind   idaia.ProviderErrorKind
		msg    string
	}{
		{
			name:   "rate limited",
			status: 429,
			body:   `{"error":{"message":"rate limit exceeded","type":"rate_limit_error"}}`,
			kind:   idaia.ProviderRateLimited,
			msg:    "rate limit exceeded",
		},
		{
			name:   "server error",
			status: 500,
			body:   `{"error":{"message":"internal error","type":"server_error"}}`,
			kind:   idaia.ProviderServerError,
			msg:    "internal error",
		},
		{
			name:   "bad request",
			status: 400,
			body:   `{"error":{"message":"unknown model","type":"invalid_request_error"}}`,
			kind:   idaia.ProviderBadRequest,
			msg:    "unknown model",
		},
		{
			name:   "non-json error body",
			status: 503,
			body:   "upstream unavailable",
			kind:   idaia.ProviderServerError,
			msg:    "upstream unavailable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := openaichat.New("sk-test", openaichat.WithBaseURL(srv.URL))
			_, err := c.Complete(context.Background(), idaia.Request{UserPrompt: "hi"})
			require.Error(t, err)

			var pe *idaia.ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.kind, pe.Kind)
			assert.Equal(t, tt.status, pe.Status)
			assert.Contains(t, pe.Message, tt.msg)
		})
	}
}

func TestClient_CompleteEmptyChoices(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := openaichat.New("sk-test", openaichat.WithBaseURL(srv.URL))
	_, err := c.Complete(context.Background(), idaia.Request{UserPrompt: "hi"})
	assert.Error(t, err)
}

func TestClient_CompleteTransportError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // deliberately closed to force a connection failure

	c := openaichat.New("sk-test", openaichat.WithBaseURL(srv.URL))
	_, err := c.Complete(context.Background(), idaia.Request{UserPrompt: "hi"})
	require.Error(t, err)

	var pe *idaia.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, idaia.ProviderTransport, pe.Kind)
}
