package handlers

import (
	"errors"

	"tajeryar/pkg/transcribe"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type TranscriptionHandler struct {
	client *transcribe.Client
	logger *zap.Logger
}

func NewTranscriptionHandler(client *transcribe.Client, logger *zap.Logger) *TranscriptionHandler {
	return &TranscriptionHandler{
		client: client,
		logger: logger,
	}
}

// Transcribe godoc
// @Summary Transcribe a voice recording
// @Description Forwards the audio to the speech-to-text proxy
// @Tags transcription
// @Accept multipart/form-data
// @Produce json
// @Param audio formData file true "Recording"
// @Param model formData string false "Speech model"
// @Param granularity formData string false "Timestamp granularity"
// @Security Bearer
// @Success 200 {object} transcribe.Result
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/v1/transcribe [post]
func (h *TranscriptionHandler) Transcribe(c *fiber.Ctx) error {
	file, err := c.FormFile("audio")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Audio file is required",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open audio file",
		})
	}
	defer src.Close()

	result, err := h.client.Transcribe(c.Context(), transcribe.Request{
		Audio:       src,
		FileName:    file.Filename,
		Model:       c.FormValue("model"),
		Granularity: c.FormValue("granularity"),
	})
	if err != nil {
		var uerr *transcribe.UpstreamError
		if errors.As(err, &uerr) {
			return c.Status(uerr.StatusCode).JSON(fiber.Map{
				"error":   "Transcription failed",
				"details": uerr.Detail,
			})
		}
		h.logger.Error("Transcription failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "Transcription service is unavailable",
			"details": err.Error(),
		})
	}

	return c.JSON(result)
}
