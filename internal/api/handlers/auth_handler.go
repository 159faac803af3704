package handlers

import (
	"errors"

	"tajeryar/internal/dto"
	"tajeryar/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler serves the public account routes. Tokens come back in the same
// envelope as every other API response.
type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register godoc
// @Summary Create a shop owner account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Username, email and password"
// @Success 201 {object} dto.Envelope{data=dto.AuthResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /user/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return rejectBody(c, err)
	}

	tokens, err := h.authService.Register(c.Context(), &req)
	if err != nil {
		return h.writeError(c, err, "Could not create account", "")
	}

	h.logger.Info("Shop owner registered", zap.String("user_id", tokens.User.ID))
	return c.Status(fiber.StatusCreated).JSON(dto.OK(tokens))
}

// Login godoc
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Email and password"
// @Success 200 {object} dto.Envelope{data=dto.AuthResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Router /user/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return rejectBody(c, err)
	}

	tokens, err := h.authService.Login(c.Context(), &req)
	if err != nil {
		return h.writeError(c, err, "Could not sign in", "Email or password is incorrect")
	}

	return c.JSON(dto.OK(tokens))
}

// RefreshToken godoc
// @Summary Trade a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.Envelope{data=dto.AuthResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Router /user/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := parseBody(c, &req); err != nil {
		return rejectBody(c, err)
	}

	tokens, err := h.authService.RefreshToken(c.Context(), req.RefreshToken)
	if err != nil {
		return h.writeError(c, err, "Could not refresh session", "Session expired, sign in again")
	}

	return c.JSON(dto.OK(tokens))
}

// writeError maps auth failures; rejected is the 401 text for this route.
func (h *AuthHandler) writeError(c *fiber.Ctx, err error, message, rejected string) error {
	switch {
	case errors.Is(err, service.ErrUserExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: "Email is already registered"})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUserNotFound):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: rejected})
	default:
		h.logger.Error(message, zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: message})
	}
}
