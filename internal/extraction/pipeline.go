// Package extraction turns a transcript into a contract-valid transaction by
// way of a text-generation service.
package extraction

import (
	"context"
	"errors"
	"strings"
	"time"

	"tajeryar/internal/contract"
	"tajeryar/internal/llmjson"
	"tajeryar/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultTimeout     = 60 * time.Second
	DefaultTemperature = 0.1

	createdAtLayout = "2006-01-02T15:04:05.000Z07:00"
)

// ErrVisionUnsupported is wrapped in an upstream-failure when an image is
// submitted but the configured generator only accepts text.
var ErrVisionUnsupported = errors.New("generator does not accept images")

// Sampling controls the randomness of a generation call.
type Sampling struct {
	Temperature float32
}

// Generator is a text-generation service. Transport failures must be returned
// as errors; a garbled answer is still a successful call.
type Generator interface {
	Generate(ctx context.Context, system, prompt string, sampling Sampling) (string, error)
}

type Image struct {
	Data     []byte
	MIMEType string
}

// VisionGenerator is implemented by generators that can read images.
type VisionGenerator interface {
	GenerateFromImage(ctx context.Context, system, prompt string, img Image, sampling Sampling) (string, error)
}

type Config struct {
	// Timeout bounds a whole extraction. Zero means DefaultTimeout.
	Timeout time.Duration
	// Temperature of zero means DefaultTemperature.
	Temperature float32

	Now   func() time.Time
	NewID func() uuid.UUID
}

type Result struct {
	Transaction *models.Transaction
	RawText     string
	// Warnings are advisory arithmetic mismatches; they never fail an extraction.
	Warnings []contract.Violation
}

// Pipeline holds no per-call state and is safe for concurrent use.
type Pipeline struct {
	generator Generator
	cfg       Config
	logger    *zap.Logger
}

func NewPipeline(generator Generator, cfg Config, logger *zap.Logger) *Pipeline {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.New
	}
	return &Pipeline{
		generator: generator,
		cfg:       cfg,
		logger:    logger,
	}
}

func (p *Pipeline) SupportsImages() bool {
	_, ok := p.generator.(VisionGenerator)
	return ok
}

// Extract runs the pipeline on a transcript. Every failure is an *Error.
func (p *Pipeline) Extract(ctx context.Context, transcript string) (*Result, error) {
	return p.ExtractValue(ctx, transcript)
}

// ExtractValue accepts an untyped input, as decoded from a request body.
// Anything other than a non-blank string is rejected as empty input without
// calling the generator.
func (p *Pipeline) ExtractValue(ctx context.Context, input any) (*Result, error) {
	transcript, ok := input.(string)
	if !ok || strings.TrimSpace(transcript) == "" {
		return nil, &Error{Kind: KindEmptyInput}
	}

	return p.run(ctx, transcript, func(ctx context.Context, system string) (string, error) {
		return p.generator.Generate(ctx, system, userPrompt(transcript), p.sampling())
	})
}

// ExtractImage runs the pipeline on a receipt or invoice photo.
func (p *Pipeline) ExtractImage(ctx context.Context, img Image) (*Result, error) {
	if len(img.Data) == 0 {
		return nil, &Error{Kind: KindEmptyInput}
	}
	vision, ok := p.generator.(VisionGenerator)
	if !ok {
		return nil, &Error{Kind: KindUpstreamFailure, Err: ErrVisionUnsupported}
	}

	return p.run(ctx, "", func(ctx context.Context, system string) (string, error) {
		return vision.GenerateFromImage(ctx, system, imagePrompt, img, p.sampling())
	})
}

func (p *Pipeline) sampling() Sampling {
	return Sampling{Temperature: p.cfg.Temperature}
}

func (p *Pipeline) run(ctx context.Context, transcript string, call func(context.Context, string) (string, error)) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	now := p.cfg.Now()
	raw, err := call(ctx, SystemPrompt(now))
	if err != nil {
		p.logger.Warn("Text generation failed", zap.Error(err))
		return nil, &Error{Kind: KindUpstreamFailure, Err: err}
	}

	parsed, err := llmjson.Extract(raw)
	if err != nil {
		p.logger.Warn("Model output could not be parsed", zap.Int("raw_length", len(raw)))
		return nil, &Error{Kind: KindParseFailure, RawText: raw, Err: err}
	}

	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, &Error{
			Kind:       KindValidationFailure,
			RawText:    raw,
			Violations: []contract.Violation{{Reason: "must be a JSON object"}},
		}
	}

	candidate := p.enrich(obj, transcript, now)

	tx, err := contract.Validate(candidate)
	if err != nil {
		out := &Error{Kind: KindValidationFailure, RawText: raw, Candidate: candidate}
		var verr *contract.ValidationError
		if errors.As(err, &verr) {
			out.Violations = verr.Violations
		} else {
			out.Err = err
		}
		p.logger.Info("Extracted transaction failed validation", zap.Int("violations", len(out.Violations)))
		return nil, out
	}

	warnings := contract.CheckTotals(tx)
	if len(warnings) > 0 {
		p.logger.Info("Extracted totals are inconsistent", zap.Int("warnings", len(warnings)))
	}

	p.logger.Info("Transaction extracted",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("type", string(tx.Type)),
		zap.Int("items", len(tx.Items)),
	)

	return &Result{Transaction: tx, RawText: raw, Warnings: warnings}, nil
}

// enrich returns a copy of obj with server-side fields stamped. Model-supplied
// transaction ids and statuses are always replaced; item ids are kept only when
// they are well-formed UUIDs.
func (p *Pipeline) enrich(obj map[string]any, transcript string, now time.Time) map[string]any {
	out := make(map[string]any, len(obj)+4)
	for k, v := range obj {
		out[k] = v
	}

	out["id"] = p.cfg.NewID().String()
	out["status"] = string(models.StatusPending)
	out["createdAt"] = now.UTC().Format(createdAtLayout)
	if transcript != "" {
		out["transcriptionText"] = transcript
	}

	list, ok := obj["items"].([]any)
	if !ok {
		return out
	}
	items := make([]any, len(list))
	for i, el := range list {
		item, ok := el.(map[string]any)
		if !ok {
			items[i] = el
			continue
		}
		copied := make(map[string]any, len(item)+1)
		for k, v := range item {
			copied[k] = v
		}
		if id, _ := item["id"].(string); !isUUID(id) {
			copied["id"] = p.cfg.NewID().String()
		}
		items[i] = copied
	}
	out["items"] = items
	return out
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
