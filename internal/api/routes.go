package api

import (
	"taskboard/internal/api/handlers"
	"taskboard/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func RegisterRoutes(app *fiber.App, h *handlers.Handler) {
	session := middleware.RequireSession(h.Issuer, h.CookieName)

	app.Get("/healthz", h.Healthz)

	api := app.Group("/api")

	// Auth
	authRoutes := api.Group("/auth")
	authRoutes.Post("/signup", h.Signup)
	authRoutes.Post("/login", h.Login)
	authRoutes.Post("/logout", h.Logout)
	authRoutes.Get("/session", session, h.Session)

	// Board
	boardRoutes := api.Group("/boards", session)
	boardRoutes.Get("/", h.ListBoards)
	boardRoutes.Post("/", h.CreateBoard)
	boardRoutes.Get("/:boardId", h.BoardGuard(true), h.GetBoard)
	boardRoutes.Delete("/:boardId", h.BoardGuard(false), h.DeleteBoard)
	boardRoutes.Patch("/:boardId", h.BoardGuard(false), h.UpdateMembership)
	boardRoutes.Get("/:boardId/task", h.BoardGuard(true), h.ListBoardTasks)
	boardRoutes.Post("/:boardId/task", h.BoardGuard(true), h.CreateBoardTask)
	boardRoutes.Patch("/:boardId/task", h.BoardGuard(true), h.UpdateBoardTask)

	// Task
	taskRoutes := api.Group("/tasks", session)
	taskRoutes.Get("/:taskId", h.GetTask)
	taskRoutes.Patch("/:taskId", h.UpdateTask)
	taskRoutes.Delete("/:taskId", h.DeleteTask)

	// User
	userRoutes := api.Group("/users", session)
	userRoutes.Get("/:userId", h.GetUser)
	userRoutes.Get("/:userId/boards", h.GetBoardsNotJoined)

	api.Post("/advice", session, h.Advice)

	// WebSocket
	ws := app.Group("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}, session)
	ws.Get("/boards/:boardId", h.BoardGuard(true), websocket.New(h.BoardSocket))
}
