package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// GetUser mengembalikan data user tanpa password.
func (h *Handler) GetUser(c *fiber.Ctx) error {
	userID, err := uuidParam(c, "userId", "user")
	if err != nil {
		return err
	}
	user, err := h.Store.GetUser(c.UserContext(), userID)
	if err != nil {
		return mapError(c, err, "User")
	}
	return respond(c, fiber.StatusOK, "User retrieved successfully", user)
}

// GetBoardsNotJoined adalah feed discovery: board yang belum diikuti user.
func (h *Handler) GetBoardsNotJoined(c *fiber.Ctx) error {
	userID, err := uuidParam(c, "userId", "user")
	if err != nil {
		return err
	}
	if _, err := h.Store.GetUser(c.UserContext(), userID); err != nil {
		return mapError(c, err, "User")
	}
	boards, err := h.Store.ListBoardsNotJoined(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Boards retrieved successfully", boards)
}

type adviceRequest struct {
	Task       string `json:"task" validate:"required"`
	AssignedTo string `json:"assignedTo"`
}

// Advice hanya menampilkan saran task tanpa menyimpan apa pun.
func (h *Handler) Advice(c *fiber.Ctx) error {
	var req adviceRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	text := strings.TrimSpace(req.Task)
	if text == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Task description is required")
	}
	s, err := h.Advisor.Suggest(c.UserContext(), text, strings.TrimSpace(req.AssignedTo))
	if err != nil {
		return mapError(c, err, "Advice")
	}
	return respond(c, fiber.StatusOK, "Advice generated successfully", fiber.Map{"advice": s})
}
