package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"builtwith/internal/builtwith"
	"builtwith/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(config.Config{OllamaHost: srv.URL, OllamaTimeoutMs: 5000}, nil)
	t.Cleanup(c.httpClient.CloseIdleConnections)
	return c
}

func decodeRequest(t *testing.T, r *http.Request) chatRequest {
	t.Helper()
	var req chatRequest
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	return req
}

func TestChat(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		req := decodeRequest(t, r)
		assert.Equal(t, "llama3", req.Model)
		assert.False(t, req.Stream)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "hello", req.Messages[0].Content)
		fmt.Fprint(w, `{"model":"llama3","message":{"role":"assistant","content":"Site runs nginx."},"done":true}`)
	})

	got, err := c.Chat(context.Background(), "llama3", "hello")
	require.NoError(t, err)
	assert.Equal(t, "Site runs nginx.", got)
}

func TestChatStreamMatchesChat(t *testing.T) {
	chunks := []string{"Site ", "runs ", "nginx."}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		if !req.Stream {
			fmt.Fprintf(w, `{"message":{"role":"assistant","content":%q},"done":true}`, strings.Join(chunks, ""))
			return
		}
		for _, chunk := range chunks {
			fmt.Fprintf(w, "{\"message\":{\"role\":\"assistant\",\"content\":%q},\"done\":false}\n", chunk)
		}
		fmt.Fprint(w, "\n{\"message\":{\"role\":\"assistant\",\"content\":\"\"},\"done\":true,\"done_reason\":\"stop\"}\n")
	})

	var tokens []string
	streamed, err := c.ChatStream(context.Background(), "llama3", "hello", func(tok string) {
		tokens = append(tokens, tok)
	})
	require.NoError(t, err)
	assert.Equal(t, chunks, tokens)

	whole, err := c.Chat(context.Background(), "llama3", "hello")
	require.NoError(t, err)
	assert.Equal(t, whole, streamed)
}

func TestChatModelError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"model \"missing\" not found, try pulling it first"}`)
	})

	_, err := c.Chat(context.Background(), "missing", "hello")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModel))
	assert.Contains(t, err.Error(), "try pulling it first")

	_, err = c.ChatStream(context.Background(), "missing", "hello", nil)
	assert.True(t, errors.Is(err, ErrModel))
}

func TestChatStreamErrorChunk(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "{\"message\":{\"content\":\"partial\"},\"done\":false}\n{\"error\":\"out of memory\"}\n")
	})

	got, err := c.ChatStream(context.Background(), "llama3", "hello", nil)
	assert.True(t, errors.Is(err, ErrModel))
	assert.Equal(t, "partial", got)
}

func TestChatUnavailable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	c := NewClient(config.Config{OllamaHost: addr, OllamaTimeoutMs: 2000}, nil)
	_, err = c.Chat(context.Background(), "llama3", "hello")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Contains(t, err.Error(), "model 'llama3'")
}

func TestBuildPrompt(t *testing.T) {
	profile, err := builtwith.Parse([]byte(`{"Results":[{"Technologies":[{"Name":"nginx"}]}]}`))
	require.NoError(t, err)

	prompt := BuildPrompt(profile)
	assert.True(t, strings.HasPrefix(prompt, "Analyze the following BuiltWith result and provide insights:\n\n{\n"))
	assert.True(t, strings.HasSuffix(prompt, "}."))
	assert.Contains(t, prompt, `"Name": "nginx"`)
}

func TestNormalizeHost(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:11434", normalizeHost("127.0.0.1:11434"))
	assert.Equal(t, "https://ollama.internal", normalizeHost("https://ollama.internal/"))
	assert.Equal(t, config.DefaultOllamaHost, normalizeHost(" "))
}
