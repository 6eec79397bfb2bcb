package handlers

import (
	"context"
	"errors"

	"taskboard/internal/access"
	"taskboard/internal/advice"
	"taskboard/internal/auth"
	"taskboard/internal/middleware"
	"taskboard/internal/models"
	"taskboard/internal/repository"
	"taskboard/internal/websocket"
	"taskboard/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const boardKey = "board"

// Handler menyimpan semua dependency yang dipakai handler HTTP.
type Handler struct {
	Store    repository.Store
	Advisor  advice.Advisor
	Hub      *websocket.Hub
	Issuer   *auth.Issuer
	Validate *validator.Validate

	// CookieName adalah nama cookie sesi.
	CookieName string
	// Checks dijalankan oleh /healthz, misalnya ping database dan redis.
	Checks map[string]func(context.Context) error
}

func New(store repository.Store, advisor advice.Advisor, hub *websocket.Hub, issuer *auth.Issuer, cookieName string) *Handler {
	return &Handler{
		Store:      store,
		Advisor:    advisor,
		Hub:        hub,
		Issuer:     issuer,
		Validate:   validator.New(),
		CookieName: cookieName,
		Checks:     map[string]func(context.Context) error{},
	}
}

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	body := fiber.Map{
		"message": message,
		"success": true,
		"status":  status,
	}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

// parseBody membaca JSON lalu menjalankan validator.
func (h *Handler) parseBody(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		logger.ErrorLogger.Warn("Bad request body", zap.String("url", c.OriginalURL()), zap.Error(err))
		return fiber.NewError(fiber.StatusBadRequest, "Bad request")
	}
	if err := h.Validate.Struct(req); err != nil {
		return &middleware.APIError{Code: fiber.StatusBadRequest, Message: "Validation error", Errors: err.Error()}
	}
	return nil
}

// mapError menerjemahkan error domain ke status HTTP. what dipakai untuk pesan 404.
func mapError(c *fiber.Ctx, err error, what string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, what+" not found")
	case errors.Is(err, repository.ErrValueTooLong):
		return fiber.NewError(fiber.StatusBadRequest, "Value too long")
	case errors.Is(err, repository.ErrDuplicateEmail):
		return fiber.NewError(fiber.StatusConflict, "Email already registered")
	case errors.Is(err, access.ErrCreatorRemoval):
		return fiber.NewError(fiber.StatusBadRequest, "Cannot remove the board creator")
	case errors.Is(err, access.ErrNotMember):
		logSecurity(c, "Non-member access attempt")
		return fiber.NewError(fiber.StatusForbidden, "You are not a member of this board")
	case errors.Is(err, access.ErrForbidden):
		logSecurity(c, "Forbidden action")
		return fiber.NewError(fiber.StatusForbidden, "You do not have permission to perform this action")
	case errors.Is(err, advice.ErrAdvice):
		logger.ErrorLogger.Error("Advice request failed", zap.Error(err))
		return fiber.NewError(fiber.StatusBadGateway, "Could not generate task from description")
	case errors.Is(err, auth.ErrInvalidCredentials):
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
	}
	return err
}

func logSecurity(c *fiber.Ctx, msg string) {
	logger.SecurityLogger.Warn(msg,
		zap.String("user_id", middleware.UserID(c).String()),
		zap.String("method", c.Method()),
		zap.String("url", c.OriginalURL()),
	)
}

func uuidParam(c *fiber.Ctx, name, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+what+" ID")
	}
	return id, nil
}

// BoardGuard memuat board dari :boardId dan menyimpannya di Locals.
// Jika requireMember true, user sesi harus anggota board.
func (h *Handler) BoardGuard(requireMember bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		boardID, err := uuidParam(c, "boardId", "board")
		if err != nil {
			return err
		}
		board, err := h.Store.GetBoard(c.UserContext(), boardID)
		if err != nil {
			return mapError(c, err, "Board")
		}
		if requireMember {
			if err := access.RequireMember(board, middleware.UserID(c)); err != nil {
				return mapError(c, err, "Board")
			}
		}
		c.Locals(boardKey, board)
		return c.Next()
	}
}

func currentBoard(c *fiber.Ctx) *models.Board {
	board, _ := c.Locals(boardKey).(*models.Board)
	return board
}

func (h *Handler) publish(ev websocket.Event) {
	if h.Hub != nil {
		h.Hub.Publish(ev)
	}
}

// Healthz menjalankan semua Checks; satu saja gagal berarti 503.
func (h *Handler) Healthz(c *fiber.Ctx) error {
	result := fiber.Map{}
	healthy := true
	for name, check := range h.Checks {
		if err := check(c.UserContext()); err != nil {
			logger.SystemLogger.Error("Health check failed", zap.String("check", name), zap.Error(err))
			result[name] = "down"
			healthy = false
			continue
		}
		result[name] = "ok"
	}
	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Service unavailable",
			"success": false,
			"status":  fiber.StatusServiceUnavailable,
			"data":    result,
		})
	}
	return respond(c, fiber.StatusOK, "OK", result)
}
