package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"tajeryar/internal/dto"
	"tajeryar/internal/extraction"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	maxImageBytes  = 10 << 20
	correctionHint = "Review the extracted data and correct it in the table"
)

type Extractor interface {
	ExtractValue(ctx context.Context, input any) (*extraction.Result, error)
	ExtractImage(ctx context.Context, img extraction.Image) (*extraction.Result, error)
	SupportsImages() bool
}

type ExtractionHandler struct {
	extractor Extractor
	logger    *zap.Logger
}

func NewExtractionHandler(extractor Extractor, logger *zap.Logger) *ExtractionHandler {
	return &ExtractionHandler{
		extractor: extractor,
		logger:    logger,
	}
}

// Extract godoc
// @Summary Extract a transaction from a transcript
// @Description Runs the transcript through the language model and validates the answer against the transaction contract
// @Tags extraction
// @Accept json
// @Produce json
// @Param request body dto.ExtractRequest true "Transcript"
// @Security Bearer
// @Success 200 {object} dto.ExtractResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 422 {object} dto.ParseErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/v1/extract [post]
func (h *ExtractionHandler) Extract(c *fiber.Ctx) error {
	var req dto.ExtractRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := h.extractor.ExtractValue(c.Context(), req.Transcription)
	if err != nil {
		return h.extractionError(c, err)
	}

	return c.JSON(dto.ExtractResponse{
		Success:     true,
		Transaction: result.Transaction,
		Warnings:    result.Warnings,
	})
}

// ExtractPhoto godoc
// @Summary Extract a transaction from a receipt photo
// @Description Requires a vision-capable language model
// @Tags extraction
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Receipt or invoice photo"
// @Security Bearer
// @Success 200 {object} dto.ExtractResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 501 {object} dto.ErrorResponse
// @Router /api/v1/extract/photo [post]
func (h *ExtractionHandler) ExtractPhoto(c *fiber.Ctx) error {
	if !h.extractor.SupportsImages() {
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
			"error": "The configured language model cannot read images",
		})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image is required",
		})
	}
	if file.Size > maxImageBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "Image is too large",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open image",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read image",
		})
	}

	mimeType := file.Header.Get(fiber.HeaderContentType)
	if mimeType == "" || mimeType == fiber.MIMEOctetStream {
		mimeType = http.DetectContentType(data)
	}

	result, err := h.extractor.ExtractImage(c.Context(), extraction.Image{Data: data, MIMEType: mimeType})
	if err != nil {
		return h.extractionError(c, err)
	}

	return c.JSON(dto.ExtractResponse{
		Success:     true,
		Transaction: result.Transaction,
		Warnings:    result.Warnings,
	})
}

func (h *ExtractionHandler) extractionError(c *fiber.Ctx, err error) error {
	var xerr *extraction.Error
	if !errors.As(err, &xerr) {
		h.logger.Error("Extraction failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Extraction failed",
		})
	}

	switch xerr.Kind {
	case extraction.KindEmptyInput:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Transcription is required",
		})
	case extraction.KindValidationFailure:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ValidationErrorResponse{
			Error:            "Extracted data is not a valid transaction",
			ValidationErrors: xerr.Violations,
			ExtractedData:    xerr.Candidate,
			Hint:             correctionHint,
		})
	case extraction.KindParseFailure:
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ParseErrorResponse{
			Error:   "Language model answer is not valid JSON",
			RawText: xerr.RawText,
		})
	default:
		if errors.Is(err, extraction.ErrVisionUnsupported) {
			return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
				"error": "The configured language model cannot read images",
			})
		}
		h.logger.Warn("Language model call failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "Language model service is unavailable",
			"details": err.Error(),
		})
	}
}
