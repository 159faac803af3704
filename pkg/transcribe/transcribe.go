// Package transcribe forwards recorded audio to the speech-to-text proxy.
package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"tajeryar/pkg/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const userAgent = "transcribe-proxy-client/1.0"

// ErrUnexpectedContentType means the proxy answered 2xx with something other than JSON.
var ErrUnexpectedContentType = errors.New("unexpected content type from transcription proxy")

type Request struct {
	Audio       io.Reader
	FileName    string
	Model       string
	Granularity string
}

type Result struct {
	Text              string            `json:"text"`
	Language          *string           `json:"language"`
	DurationInSeconds *float64          `json:"durationInSeconds"`
	Segments          []json.RawMessage `json:"segments"`
	Warnings          []json.RawMessage `json:"warnings"`
}

// UpstreamError carries a non-2xx answer from the proxy.
type UpstreamError struct {
	StatusCode int
	Detail     any
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("transcription proxy returned status %d", e.StatusCode)
}

type Client struct {
	rest   *resty.Client
	logger *zap.Logger
}

func NewClient(cfg *config.TranscriptionConfig, logger *zap.Logger) *Client {
	rest := resty.New().
		SetBaseURL(strings.TrimRight(cfg.ProxyURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", userAgent)

	return &Client{
		rest:   rest,
		logger: logger,
	}
}

func (c *Client) Transcribe(ctx context.Context, req Request) (*Result, error) {
	fileName := req.FileName
	if fileName == "" {
		fileName = "audio.webm"
	}

	form := map[string]string{}
	if req.Model != "" {
		form["model"] = req.Model
	}
	if req.Granularity != "" {
		form["granularity"] = req.Granularity
	}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetFileReader("audio", fileName, req.Audio).
		SetFormData(form).
		Post("/openai/transcribe")
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}

	body := resp.Body()
	if resp.IsError() {
		var detail any = string(body)
		var parsed any
		if json.Unmarshal(body, &parsed) == nil {
			detail = parsed
		}
		c.logger.Warn("Transcription proxy error", zap.Int("status", resp.StatusCode()))
		return nil, &UpstreamError{StatusCode: resp.StatusCode(), Detail: detail}
	}

	contentType := resp.Header().Get("Content-Type")
	if mediaType, _, _ := mime.ParseMediaType(contentType); mediaType != "application/json" {
		return nil, fmt.Errorf("%w: %q", ErrUnexpectedContentType, contentType)
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode transcription: %w", err)
	}
	if result.Segments == nil {
		result.Segments = []json.RawMessage{}
	}
	if result.Warnings == nil {
		result.Warnings = []json.RawMessage{}
	}

	c.logger.Info("Audio transcribed", zap.Int("text_length", len(result.Text)))
	return &result, nil
}
