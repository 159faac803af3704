package api

import (
	"errors"

	"tajeryar/docs"
	"tajeryar/internal/api/handlers"
	"tajeryar/pkg/auth"
	"tajeryar/pkg/config"
	"tajeryar/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth          *handlers.AuthHandler
	Extraction    *handlers.ExtractionHandler
	Transaction   *handlers.TransactionHandler
	File          *handlers.FileHandler
	Transcription *handlers.TranscriptionHandler
}

func SetupRouter(h Handlers, jwtManager *auth.JWTManager, cfg *config.ServerConfig, appLogger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "tajeryar",
		BodyLimit:    cfg.BodyLimit,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				appLogger.Error("Unhandled request error", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authRoutes := app.Group("/user/auth")
	authRoutes.Post("/register", h.Auth.Register)
	authRoutes.Post("/login", h.Auth.Login)
	authRoutes.Post("/refresh", h.Auth.RefreshToken)

	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))

	protected.Post("/extract", h.Extraction.Extract)
	protected.Post("/extract/photo", h.Extraction.ExtractPhoto)
	protected.Post("/transcribe", h.Transcription.Transcribe)

	transactions := protected.Group("/transactions")
	transactions.Get("", h.Transaction.ListTransactions)
	transactions.Post("", h.Transaction.CreateTransaction)
	transactions.Get("/stats", h.Transaction.GetStats)
	transactions.Get("/export", h.Transaction.ExportTransactions)
	transactions.Get("/:id", h.Transaction.GetTransaction)
	transactions.Put("/:id", h.Transaction.UpdateTransaction)
	transactions.Delete("/:id", h.Transaction.DeleteTransaction)

	files := protected.Group("/files")
	files.Post("", h.File.UploadFile)
	files.Get("", h.File.ListFiles)
	files.Post("/presign", h.File.PresignFile)
	files.Delete("/*", h.File.DeleteFile)

	return app
}
