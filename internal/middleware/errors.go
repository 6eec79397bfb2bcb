package middleware

import (
	"errors"

	"taskboard/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// APIError adalah error dengan status HTTP dan detail opsional (misalnya hasil validasi).
type APIError struct {
	Code    int
	Message string
	Errors  string
}

func (e *APIError) Error() string { return e.Message }

// ErrorResponder dipasang sebagai fiber.Config.ErrorHandler dan menulis
// envelope JSON untuk semua error yang dikembalikan handler.
func ErrorResponder(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	body := fiber.Map{}

	var ae *APIError
	var fe *fiber.Error
	switch {
	case errors.As(err, &ae):
		code, message = ae.Code, ae.Message
		if ae.Errors != "" {
			body["errors"] = ae.Errors
		}
	case errors.As(err, &fe):
		code, message = fe.Code, fe.Message
	}

	if code >= fiber.StatusInternalServerError {
		logger.ErrorLogger.Error("Request failed",
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
			zap.Error(err),
		)
	}

	body["message"] = message
	body["success"] = false
	body["status"] = code
	return c.Status(code).JSON(body)
}
