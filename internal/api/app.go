package api

import (
	"time"

	"taskboard/internal/api/handlers"
	"taskboard/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// NewApp membuat aplikasi Fiber lengkap dengan middleware dan semua route.
// rateLimit adalah jumlah request per menit per IP; 0 mematikan limiter.
func NewApp(h *handlers.Handler, corsOrigins string, rateLimit int) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "taskboard",
		ErrorHandler: middleware.ErrorResponder,
	})

	// Middleware
	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: corsOrigins != "*",
	}))
	if rateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        rateLimit,
			Expiration: 1 * time.Minute,
		}))
	}

	RegisterRoutes(app, h)
	return app
}
