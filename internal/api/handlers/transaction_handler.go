package handlers

import (
	"errors"
	"fmt"
	"time"

	"tajeryar/internal/contract"
	"tajeryar/internal/dto"
	"tajeryar/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TransactionHandler struct {
	txService     *service.TransactionService
	exportService *service.ExportService
	logger        *zap.Logger
}

func NewTransactionHandler(txService *service.TransactionService, exportService *service.ExportService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		txService:     txService,
		exportService: exportService,
		logger:        logger,
	}
}

// ListTransactions godoc
// @Summary List transactions
// @Description Newest first. Records with stored audio carry a temporary audioUrl.
// @Tags transactions
// @Produce json
// @Param status query string false "pending, confirmed or rejected"
// @Param type query string false "buy or sell"
// @Param startDate query string false "YYYY/MM/DD, inclusive"
// @Param endDate query string false "YYYY/MM/DD, inclusive"
// @Param limit query int false "Page size (default 100)"
// @Param skip query int false "Offset (default 0)"
// @Security Bearer
// @Success 200 {object} dto.Envelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var query dto.ListTransactionsQuery
	if err := c.QueryParser(&query); err != nil {
		return invalidRequest(c, err)
	}
	if err := validate.Struct(&query); err != nil {
		return invalidRequest(c, err)
	}

	transactions, err := h.txService.List(c.Context(), userID, query.Filter())
	if err != nil {
		h.logger.Error("Failed to list transactions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list transactions",
		})
	}

	return c.JSON(dto.OKList(transactions))
}

// CreateTransaction godoc
// @Summary Save a transaction
// @Description Validates the transaction in full. Ids and timestamps are assigned by the server.
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body dto.CreateTransactionRequest true "Transaction"
// @Security Bearer
// @Success 201 {object} dto.Envelope
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Transaction == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Transaction is required",
		})
	}

	tx, err := h.txService.Create(c.Context(), userID, req.Transaction, req.AudioObjectName)
	if err != nil {
		return h.writeError(c, err, "Failed to create transaction")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.OK(tx))
}

// GetTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Security Bearer
// @Success 200 {object} dto.Envelope
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid transaction ID",
		})
	}

	tx, err := h.txService.Get(c.Context(), userID, id)
	if err != nil {
		return h.writeError(c, err, "Failed to get transaction")
	}

	return c.JSON(dto.OK(tx))
}

// UpdateTransaction godoc
// @Summary Update a transaction
// @Description Only the supplied fields are validated and changed. id and createdAt are immutable.
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body dto.UpdateTransactionRequest true "Changed fields"
// @Security Bearer
// @Success 200 {object} dto.Envelope
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid transaction ID",
		})
	}

	var req dto.UpdateTransactionRequest
	if err := c.BodyParser(&req); err != nil || req.Transaction == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	tx, err := h.txService.Update(c.Context(), userID, id, req.Transaction)
	if err != nil {
		return h.writeError(c, err, "Failed to update transaction")
	}

	return c.JSON(dto.OK(tx))
}

// DeleteTransaction godoc
// @Summary Delete a transaction
// @Description Also removes the stored audio, if any
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Security Bearer
// @Success 200 {object} dto.Envelope
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid transaction ID",
		})
	}

	if err := h.txService.Delete(c.Context(), userID, id); err != nil {
		return h.writeError(c, err, "Failed to delete transaction")
	}

	return c.JSON(dto.OK(fiber.Map{"id": id}))
}

// GetStats godoc
// @Summary Transaction statistics
// @Tags transactions
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.Envelope
// @Router /api/v1/transactions/stats [get]
func (h *TransactionHandler) GetStats(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	stats, err := h.txService.Stats(c.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to get stats", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get stats",
		})
	}

	return c.JSON(dto.OK(stats))
}

// ExportTransactions godoc
// @Summary Export transactions to Excel
// @Description Accepts the same filters as the list endpoint
// @Tags transactions
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security Bearer
// @Success 200 {file} file
// @Router /api/v1/transactions/export [get]
func (h *TransactionHandler) ExportTransactions(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var query dto.ListTransactionsQuery
	if err := c.QueryParser(&query); err != nil {
		return invalidRequest(c, err)
	}
	if err := validate.Struct(&query); err != nil {
		return invalidRequest(c, err)
	}

	transactions, err := h.txService.List(c.Context(), userID, query.Filter())
	if err != nil {
		h.logger.Error("Failed to list transactions for export", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to export transactions",
		})
	}

	fileName := fmt.Sprintf("transactions_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+fileName)
	if err := h.exportService.WriteXLSX(c.Response().BodyWriter(), transactions); err != nil {
		h.logger.Error("Failed to write workbook", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to export transactions",
		})
	}
	return nil
}

func (h *TransactionHandler) writeError(c *fiber.Ctx, err error, message string) error {
	var verr *contract.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ValidationErrorResponse{
			Error:            "Invalid transaction data",
			ValidationErrors: verr.Violations,
		})
	case errors.Is(err, service.ErrEmptyUpdate), errors.Is(err, service.ErrInvalidObject):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, service.ErrForeignObject):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, service.ErrTransactionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Transaction not found",
		})
	default:
		h.logger.Error(message, zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": message,
		})
	}
}
