package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tajeryar/pkg/config"
	"tajeryar/pkg/transcribe"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTranscriptionApp(t *testing.T, proxy http.HandlerFunc) *fiber.App {
	server := httptest.NewServer(proxy)
	t.Cleanup(server.Close)

	client := transcribe.NewClient(&config.TranscriptionConfig{ProxyURL: server.URL, Timeout: 5 * time.Second}, zaptest.NewLogger(t))
	h := NewTranscriptionHandler(client, zaptest.NewLogger(t))
	return newTestApp(uuid.New(), func(app *fiber.App) {
		app.Post("/transcribe", h.Transcribe)
	})
}

func TestTranscribe_Success(t *testing.T) {
	app := newTranscriptionApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"ده کیلو برنج","language":"fa"}`))
	})

	resp, body := doMultipart(t, app, "/transcribe", "audio", "voice.webm", []byte("OggS"), map[string]string{"model": "whisper-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ده کیلو برنج", body["text"])
	assert.Equal(t, []any{}, body["segments"])
}

func TestTranscribe_PassesUpstreamStatus(t *testing.T) {
	app := newTranscriptionApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"busy"}`))
	})

	resp, body := doMultipart(t, app, "/transcribe", "audio", "voice.webm", []byte("OggS"), nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, map[string]any{"error": "busy"}, body["details"])
}

func TestTranscribe_NonJSONIsBadGateway(t *testing.T) {
	app := newTranscriptionApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	})

	resp, _ := doMultipart(t, app, "/transcribe", "audio", "voice.webm", []byte("OggS"), nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestTranscribe_RequiresAudio(t *testing.T) {
	app := newTranscriptionApp(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("proxy must not be called")
	})

	resp, _ := doMultipart(t, app, "/transcribe", "", "", nil, map[string]string{"model": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
