package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"tajeryar/internal/extraction"
	"tajeryar/pkg/config"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

var errEmptyCompletion = errors.New("no choices in completion response")

// OpenRouter talks to any OpenAI-compatible chat completion endpoint,
// OpenRouter by default.
type OpenRouter struct {
	client      *openai.Client
	model       string
	visionModel string
	logger      *zap.Logger
}

func NewOpenRouter(cfg *config.OpenRouterConfig, logger *zap.Logger) *OpenRouter {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = cfg.Model
	}

	return &OpenRouter{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		visionModel: visionModel,
		logger:      logger,
	}
}

func (o *OpenRouter) Generate(ctx context.Context, system, prompt string, sampling extraction.Sampling) (string, error) {
	return o.complete(ctx, o.model, sampling, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	})
}

// GenerateFromImage sends the image inline as a data URL.
func (o *OpenRouter) GenerateFromImage(ctx context.Context, system, prompt string, img extraction.Image, sampling extraction.Sampling) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", img.MIMEType, base64.StdEncoding.EncodeToString(img.Data))

	return o.complete(ctx, o.visionModel, sampling, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: prompt},
				{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailAuto},
				},
			},
		},
	})
}

func (o *OpenRouter) complete(ctx context.Context, model string, sampling extraction.Sampling, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature(sampling),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}

	o.logger.Debug("Chat completion received",
		zap.String("model", model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return resp.Choices[0].Message.Content, nil
}

func (o *OpenRouter) Close() error {
	return nil
}
