package handlers

import (
	"strings"

	"taskboard/internal/access"
	"taskboard/internal/middleware"
	"taskboard/internal/models"
	"taskboard/internal/websocket"
	"taskboard/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ListBoards mengembalikan board di mana user sesi menjadi anggota.
func (h *Handler) ListBoards(c *fiber.Ctx) error {
	boards, err := h.Store.ListBoardsForMember(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Boards retrieved successfully", boards)
}

type createBoardRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
}

// CreateBoard membuat board dengan user sesi sebagai pembuat dan satu-satunya anggota.
func (h *Handler) CreateBoard(c *fiber.Ctx) error {
	var req createBoardRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Title is required")
	}

	board := &models.Board{
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		CreatedBy:   middleware.UserID(c),
	}
	if err := h.Store.CreateBoard(c.UserContext(), board); err != nil {
		return mapError(c, err, "User")
	}

	logger.AuditLogger.Info("Board created",
		zap.String("board_id", board.ID.String()), zap.String("user_id", board.CreatedBy.String()))
	return respond(c, fiber.StatusCreated, "Board created successfully", board)
}

// GetBoard mengembalikan board beserta nama anggotanya.
func (h *Handler) GetBoard(c *fiber.Ctx) error {
	board := currentBoard(c)
	members, err := h.Store.ListMembers(c.UserContext(), board.ID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Board retrieved successfully", models.BoardDetail{
		Board:           *board,
		MemberSummaries: members,
	})
}

// DeleteBoard hanya untuk pembuat board; task ikut terhapus dalam satu transaksi.
func (h *Handler) DeleteBoard(c *fiber.Ctx) error {
	board := currentBoard(c)
	actor := middleware.UserID(c)
	if err := access.CanDeleteBoard(board, actor); err != nil {
		return mapError(c, err, "Board")
	}

	deleted, err := h.Store.DeleteBoard(c.UserContext(), board.ID)
	if err != nil {
		return mapError(c, err, "Board")
	}

	h.publish(websocket.Event{Type: websocket.EventBoardDeleted, BoardID: board.ID})
	logger.AuditLogger.Info("Board deleted",
		zap.String("board_id", board.ID.String()),
		zap.String("user_id", actor.String()),
		zap.Int64("tasks_deleted", deleted),
	)
	return respond(c, fiber.StatusOK, "Board deleted successfully", fiber.Map{"deletedTasks": deleted})
}

const (
	actionAddMember    = "add_member"
	actionRemoveMember = "remove_member"
)

type membershipRequest struct {
	Action string `json:"action" validate:"required,oneof=add_member remove_member"`
	UserID string `json:"userId" validate:"required,uuid"`
}

// UpdateMembership menambah atau menghapus anggota board.
func (h *Handler) UpdateMembership(c *fiber.Ctx) error {
	var req membershipRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	target, err := uuid.Parse(req.UserID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid user ID")
	}
	board := currentBoard(c)
	actor := middleware.UserID(c)
	ctx := c.UserContext()

	switch req.Action {
	case actionAddMember:
		if err := access.CanAddMember(board, actor, target); err != nil {
			return mapError(c, err, "Board")
		}
		added, err := h.Store.AddMember(ctx, board.ID, target)
		if err != nil {
			return mapError(c, err, "User")
		}
		if added {
			h.publish(websocket.Event{Type: websocket.EventMemberAdded, BoardID: board.ID, Payload: target})
			logger.AuditLogger.Info("Member added",
				zap.String("board_id", board.ID.String()),
				zap.String("member_id", target.String()),
				zap.String("user_id", actor.String()))
		}
	case actionRemoveMember:
		if err := access.CanRemoveMember(board, actor, target); err != nil {
			return mapError(c, err, "Board")
		}
		removed, err := h.Store.RemoveMember(ctx, board.ID, target)
		if err != nil {
			return mapError(c, err, "Board")
		}
		if removed {
			h.publish(websocket.Event{Type: websocket.EventMemberRemoved, BoardID: board.ID, Payload: target})
			logger.AuditLogger.Info("Member removed",
				zap.String("board_id", board.ID.String()),
				zap.String("member_id", target.String()),
				zap.String("user_id", actor.String()))
		}
	}

	updated, err := h.Store.GetBoard(ctx, board.ID)
	if err != nil {
		return mapError(c, err, "Board")
	}
	return respond(c, fiber.StatusOK, "Board updated successfully", updated)
}
