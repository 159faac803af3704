package llm

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"tajeryar/internal/extraction"
	"tajeryar/pkg/config"

	"github.com/Role1776/gigago"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// tokenSlack renews the OAuth token a little before it actually expires.
const tokenSlack = time.Minute

// GigaChat generates text through the gigago SDK and reads images through the
// REST files API, which the SDK does not cover.
type GigaChat struct {
	client *gigago.Client
	rest   *resty.Client
	config *config.GigaChatConfig
	logger *zap.Logger

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func NewGigaChat(ctx context.Context, cfg *config.GigaChatConfig, logger *zap.Logger) (*GigaChat, error) {
	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	g := newGigaChatREST(cfg, logger)
	g.client = client
	return g, nil
}

func newGigaChatREST(cfg *config.GigaChatConfig, logger *zap.Logger) *GigaChat {
	rest := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json")
	if cfg.InsecureSkipVerify {
		rest.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}

	return &GigaChat{
		rest:   rest,
		config: cfg,
		logger: logger,
	}
}

func (g *GigaChat) Generate(ctx context.Context, system, prompt string, sampling extraction.Sampling) (string, error) {
	// A model value per call keeps concurrent extractions from sharing settings.
	model := g.client.GenerativeModel(g.config.Model)
	model.SystemInstruction = system
	setTemperature(&model.Temperature, temperature(sampling))

	resp, err := model.Generate(ctx, []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}

	return resp.Choices[0].Message.Content, nil
}

func setTemperature[T float32 | float64](dst *T, v float32) {
	*dst = T(v)
}

// GenerateFromImage uploads the image to GigaChat storage, asks the model about
// it as an attachment and removes the upload afterwards.
func (g *GigaChat) GenerateFromImage(ctx context.Context, system, prompt string, img extraction.Image, sampling extraction.Sampling) (string, error) {
	token, err := g.token(ctx)
	if err != nil {
		return "", err
	}

	fileID, err := g.uploadFile(ctx, token, img)
	if err != nil {
		return "", err
	}
	defer g.deleteFile(context.WithoutCancel(ctx), token, fileID)

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	resp, err := g.rest.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(map[string]any{
			"model": g.config.Model,
			"messages": []map[string]any{
				{"role": "system", "content": system},
				{"role": "user", "content": prompt, "attachments": []string{fileID}},
			},
			"temperature": temperature(sampling),
			"stream":      false,
		}).
		SetResult(&completion).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to make vision request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("vision API failed with status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(completion.Choices) == 0 {
		return "", errEmptyCompletion
	}

	g.logger.Info("Image read via GigaChat", zap.String("file_id", fileID))
	return completion.Choices[0].Message.Content, nil
}

func (g *GigaChat) uploadFile(ctx context.Context, token string, img extraction.Image) (string, error) {
	fileName := "receipt"
	if exts, _ := mime.ExtensionsByType(img.MIMEType); len(exts) > 0 {
		fileName += exts[0]
	}

	var uploaded struct {
		ID string `json:"id"`
	}
	resp, err := g.rest.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetFormData(map[string]string{"purpose": "general"}).
		SetMultipartField("file", fileName, img.MIMEType, bytes.NewReader(img.Data)).
		SetResult(&uploaded).
		Post("/files")
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	if resp.IsError() {
		if resp.StatusCode() == http.StatusUnauthorized {
			g.invalidateToken()
		}
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode(), resp.String())
	}
	if uploaded.ID == "" {
		return "", fmt.Errorf("upload response has no file id")
	}
	return uploaded.ID, nil
}

func (g *GigaChat) deleteFile(ctx context.Context, token, fileID string) {
	resp, err := g.rest.R().
		SetContext(ctx).
		SetAuthToken(token).
		Post("/files/" + fileID + "/delete")
	if err != nil || resp.IsError() {
		g.logger.Warn("Failed to delete uploaded file", zap.String("file_id", fileID), zap.Error(err))
	}
}

// token returns a cached OAuth access token, fetching a new one when needed.
func (g *GigaChat) token(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.accessToken != "" && time.Now().Before(g.expiresAt.Add(-tokenSlack)) {
		return g.accessToken, nil
	}

	rqUID := uuid.New().String()
	var oauth struct {
		AccessToken string `json:"access_token"`
		ExpiresAt   int64  `json:"expires_at"`
	}

	// The API key is already Base64-encoded client credentials.
	resp, err := g.rest.R().
		SetContext(ctx).
		SetHeader("RqUID", rqUID).
		SetHeader("Authorization", "Basic "+g.config.APIKey).
		SetFormData(map[string]string{"scope": g.config.Scope}).
		SetResult(&oauth).
		Post(g.config.AuthURL)
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	if resp.IsError() {
		g.logger.Error("OAuth request failed",
			zap.Int("status", resp.StatusCode()),
			zap.String("rq_uid", rqUID),
		)
		return "", fmt.Errorf("OAuth failed with status %d: %s", resp.StatusCode(), resp.String())
	}
	if oauth.AccessToken == "" {
		return "", fmt.Errorf("empty access token in OAuth response")
	}

	g.accessToken = oauth.AccessToken
	g.expiresAt = time.UnixMilli(oauth.ExpiresAt)
	if oauth.ExpiresAt == 0 {
		g.expiresAt = time.Now().Add(30 * time.Minute)
	}
	return g.accessToken, nil
}

func (g *GigaChat) invalidateToken() {
	g.mu.Lock()
	g.accessToken = ""
	g.mu.Unlock()
}

func (g *GigaChat) Close() error {
	if g.client != nil {
		g.client.Close()
	}
	return nil
}
