package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"tajeryar/internal/extraction"
	"tajeryar/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func completionJSON(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "openai/gpt-4o-mini",
		"choices": []map[string]any{
			{"index": 0, "finish_reason": "stop", "message": map[string]any{"role": "assistant", "content": content}},
		},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
	return string(body)
}

func TestOpenRouter_Generate(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionJSON(`{"type":"buy"}`)))
	}))
	defer server.Close()

	o := NewOpenRouter(&config.OpenRouterConfig{
		APIKey:  "test-key",
		BaseURL: server.URL + "/",
		Model:   "openai/gpt-4o-mini",
	}, zaptest.NewLogger(t))

	out, err := o.Generate(context.Background(), "system text", "user text", extraction.Sampling{Temperature: 0.1})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"buy"}`, out)

	assert.Equal(t, "openai/gpt-4o-mini", got.Model)
	assert.InDelta(t, 0.1, got.Temperature, 1e-6)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "system text", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "user text", got.Messages[1].Content)
}

func TestOpenRouter_ZeroTemperatureIsSent(t *testing.T) {
	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionJSON("{}")))
	}))
	defer server.Close()

	o := NewOpenRouter(&config.OpenRouterConfig{BaseURL: server.URL, Model: "openai/gpt-4o-mini"}, zaptest.NewLogger(t))

	_, err := o.Generate(context.Background(), "system", "user", extraction.Sampling{})
	require.NoError(t, err)

	require.Contains(t, raw, "temperature")
	assert.InDelta(t, 0, raw["temperature"], 1e-6)
}

func TestOpenRouter_GenerateFromImage(t *testing.T) {
	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionJSON("{}")))
	}))
	defer server.Close()

	o := NewOpenRouter(&config.OpenRouterConfig{BaseURL: server.URL, Model: "text", VisionModel: "vision"}, zaptest.NewLogger(t))

	_, err := o.GenerateFromImage(context.Background(), "sys", "read this", extraction.Image{Data: []byte("img"), MIMEType: "image/png"}, extraction.Sampling{})
	require.NoError(t, err)

	assert.Equal(t, "vision", raw["model"])
	messages := raw["messages"].([]any)
	parts := messages[1].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	imageURL := parts[1].(map[string]any)["image_url"].(map[string]any)["url"].(string)
	assert.Equal(t, "data:image/png;base64,aW1n", imageURL)
}

func TestOpenRouter_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
	}))
	defer server.Close()

	o := NewOpenRouter(&config.OpenRouterConfig{BaseURL: server.URL, Model: "m"}, zaptest.NewLogger(t))

	_, err := o.Generate(context.Background(), "s", "p", extraction.Sampling{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestOpenRouter_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","choices":[]}`))
	}))
	defer server.Close()

	o := NewOpenRouter(&config.OpenRouterConfig{BaseURL: server.URL, Model: "m"}, zaptest.NewLogger(t))

	_, err := o.Generate(context.Background(), "s", "p", extraction.Sampling{})
	assert.ErrorIs(t, err, errEmptyCompletion)
}

func TestGigaChat_GenerateFromImage(t *testing.T) {
	var oauthCalls, deleteCalls atomic.Int32
	var attachment string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/oauth":
			oauthCalls.Add(1)
			assert.Equal(t, "Basic secret", r.Header.Get("Authorization"))
			assert.NotEmpty(t, r.Header.Get("RqUID"))
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "GIGACHAT_API_PERS", r.PostForm.Get("scope"))
			w.Write([]byte(`{"access_token":"tok","expires_at":4102444800000}`))
		case r.URL.Path == "/files":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "general", r.FormValue("purpose"))
			_, header, err := r.FormFile("file")
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(header.Filename, "receipt"))
			w.Write([]byte(`{"id":"file-1"}`))
		case r.URL.Path == "/chat/completions":
			var body struct {
				Messages []struct {
					Attachments []string `json:"attachments"`
				} `json:"messages"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			attachment = body.Messages[1].Attachments[0]
			w.Write([]byte(completionJSON(`{"type":"sell"}`)))
		case r.URL.Path == "/files/file-1/delete":
			deleteCalls.Add(1)
			w.Write([]byte(`{"deleted":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	g := newGigaChatREST(&config.GigaChatConfig{
		APIKey:  "secret",
		Scope:   "GIGACHAT_API_PERS",
		Model:   "GigaChat-Pro",
		BaseURL: server.URL,
		AuthURL: server.URL + "/oauth",
	}, zaptest.NewLogger(t))

	img := extraction.Image{Data: []byte{0xff, 0xd8, 0xff}, MIMEType: "image/jpeg"}
	for i := 0; i < 2; i++ {
		out, err := g.GenerateFromImage(context.Background(), "sys", "prompt", img, extraction.Sampling{Temperature: 0.1})
		require.NoError(t, err)
		assert.Equal(t, `{"type":"sell"}`, out)
	}

	assert.Equal(t, "file-1", attachment)
	assert.Equal(t, int32(1), oauthCalls.Load(), "token is cached between calls")
	assert.Equal(t, int32(2), deleteCalls.Load())
}

func TestGigaChat_OAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"bad credentials"}`))
	}))
	defer server.Close()

	g := newGigaChatREST(&config.GigaChatConfig{BaseURL: server.URL, AuthURL: server.URL + "/oauth"}, zaptest.NewLogger(t))

	_, err := g.GenerateFromImage(context.Background(), "s", "p", extraction.Image{Data: []byte{1}, MIMEType: "image/png"}, extraction.Sampling{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), &config.Config{LLM: config.LLMConfig{Provider: "llama"}}, zaptest.NewLogger(t))
	assert.Error(t, err)
}
