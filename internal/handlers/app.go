package handlers

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"catalog/internal/middleware"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// AppConfig holds the collaborators of the HTTP application.
type AppConfig struct {
	BearerToken string
	Service     *services.ProductService
	// HealthCheck reports storage reachability. Nil means always healthy.
	HealthCheck func(ctx context.Context) error
	// AccessLog receives access log lines. Defaults to os.Stdout.
	AccessLog io.Writer
}

// NewApp builds the Fiber application: middleware, the unauthenticated
// health endpoint, the bearer token gate and the product routes.
func NewApp(cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "catalog",
		ErrorHandler: ErrorHandler,
	})

	accessLog := cfg.AccessLog
	if accessLog == nil {
		accessLog = os.Stdout
	}

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		Output: accessLog,
	}))

	app.Get("/health", healthHandler(cfg.HealthCheck))

	app.Use(middleware.BearerToken(cfg.BearerToken))

	dispatcher := NewDispatcher(ProductRoutes)
	NewProductHandler(cfg.Service).RegisterRoutes(dispatcher)
	app.Use(dispatcher.Serve)

	return app
}

func healthHandler(check func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data := fiber.Map{
			"status":   "healthy",
			"database": "up",
			"time":     time.Now().Format(time.RFC3339),
		}

		if check != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				log.Printf("Health check failed: %v", err)
				data["status"] = "unhealthy"
				data["database"] = "down"
				return respondError(c, fiber.StatusServiceUnavailable, "Database unreachable", data)
			}
		}
		return respondSuccess(c, fiber.StatusOK, data, "")
	}
}
