package handlers

import (
	"errors"
	"net/url"

	"tajeryar/internal/dto"
	"tajeryar/internal/service"
	"tajeryar/pkg/objectstore"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type FileHandler struct {
	fileService *service.FileService
	logger      *zap.Logger
}

func NewFileHandler(fileService *service.FileService, logger *zap.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		logger:      logger,
	}
}

// UploadFile godoc
// @Summary Upload a file
// @Description Stores a recording or receipt as {userId}/{path}/{uuid}.{ext} and returns a 7-day link
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File"
// @Param path formData string false "Folder (default transactions)"
// @Security Bearer
// @Success 200 {object} dto.Envelope
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/files [post]
func (h *FileHandler) UploadFile(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File is required",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open file",
		})
	}
	defer src.Close()

	resp, err := h.fileService.Upload(c.Context(), userID, src, file.Filename, file.Header.Get(fiber.HeaderContentType), c.FormValue("path"))
	if err != nil {
		return h.writeError(c, err, "Failed to upload file")
	}

	return c.JSON(dto.OK(resp))
}

// ListFiles godoc
// @Summary List stored files
// @Tags files
// @Produce json
// @Param prefix query string false "Object name prefix"
// @Param maxKeys query int false "Maximum objects (default 1000)"
// @Security Bearer
// @Success 200 {object} dto.Envelope
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/files [get]
func (h *FileHandler) ListFiles(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	listing, err := h.fileService.List(c.Context(), userID, c.Query("prefix"), c.QueryInt("maxKeys", service.DefaultListMaxKeys))
	if err != nil {
		return h.writeError(c, err, "Failed to list files")
	}

	return c.JSON(dto.OK(listing))
}

// DeleteFile godoc
// @Summary Delete a stored file
// @Tags files
// @Produce json
// @Param objectName path string true "Object name"
// @Security Bearer
// @Success 200 {object} dto.Envelope
// @Router /api/v1/files/{objectName} [delete]
func (h *FileHandler) DeleteFile(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	objectName, err := url.PathUnescape(c.Params("*"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid object name",
		})
	}

	resp, err := h.fileService.Delete(c.Context(), userID, objectName)
	if err != nil {
		return h.writeError(c, err, "Failed to delete file")
	}

	return c.JSON(dto.OK(resp))
}

// PresignFile godoc
// @Summary Create a temporary download link
// @Tags files
// @Accept json
// @Produce json
// @Param request body dto.PresignRequest true "Object and expiry"
// @Security Bearer
// @Success 200 {object} dto.Envelope
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/files/presign [post]
func (h *FileHandler) PresignFile(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.PresignRequest
	if err := parseBody(c, &req); err != nil {
		return rejectBody(c, err)
	}

	resp, err := h.fileService.Presign(c.Context(), userID, req.ObjectName, req.ExpirySeconds)
	if err != nil {
		return h.writeError(c, err, "Failed to create download link")
	}

	return c.JSON(dto.OK(resp))
}

func (h *FileHandler) writeError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, service.ErrEmptyFile), errors.Is(err, service.ErrInvalidObject):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, service.ErrForeignObject):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, service.ErrFileTooLarge):
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, objectstore.ErrBucketNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Bucket not found",
		})
	default:
		h.logger.Error(message, zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   message,
			"details": err.Error(),
		})
	}
}
