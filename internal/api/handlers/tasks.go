package handlers

import (
	"strings"

	"taskboard/internal/access"
	"taskboard/internal/advice"
	"taskboard/internal/middleware"
	"taskboard/internal/models"
	"taskboard/internal/websocket"
	"taskboard/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ListBoardTasks mengembalikan semua task pada board.
func (h *Handler) ListBoardTasks(c *fiber.Ctx) error {
	tasks, err := h.Store.ListTasks(c.UserContext(), currentBoard(c).ID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Tasks retrieved successfully", tasks)
}

// createTaskRequest menerima field task langsung, atau teks bebas di Task
// yang diubah menjadi task oleh Advisor.
type createTaskRequest struct {
	Task        string   `json:"task"`
	Title       string   `json:"title" validate:"required_without=Task,max=255"`
	Description string   `json:"description"`
	Labels      []string `json:"labels"`
	Status      string   `json:"status" validate:"omitempty,oneof=notStarted inProgress verification finished"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=Low Medium High"`
	DueDate     string   `json:"dueDate"`
	AssignedTo  string   `json:"assignedTo"`
}

// CreateBoardTask membuat task di board. Jika body berisi "task", field task
// diisi dari hasil Advisor; kegagalan Advisor menghasilkan 502.
func (h *Handler) CreateBoardTask(c *fiber.Ctx) error {
	var req createTaskRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	board := currentBoard(c)
	actor := middleware.UserID(c)

	assignee, err := memberAssignee(board, req.AssignedTo)
	if err != nil {
		return err
	}

	task := &models.Task{
		BoardID:    board.ID,
		Status:     models.Status(req.Status),
		CreatedBy:  actor,
		AssignedTo: assignee,
	}

	if text := strings.TrimSpace(req.Task); text != "" {
		s, err := h.Advisor.Suggest(c.UserContext(), text, strings.TrimSpace(req.AssignedTo))
		if err != nil {
			return mapError(c, err, "Task")
		}
		task.Title = s.Title
		task.Description = s.Description
		task.Labels = cleanLabels(s.Labels)
		task.Priority = s.Priority
		task.DueDate = s.DueDate
		if task.AssignedTo == nil && s.AssignedTo != "" {
			// Assignee dari model dipakai hanya jika valid dan anggota board.
			task.AssignedTo, _ = memberAssignee(board, s.AssignedTo)
		}
	} else {
		task.Title = strings.TrimSpace(req.Title)
		if task.Title == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Title is required")
		}
		task.Description = strings.TrimSpace(req.Description)
		task.Labels = cleanLabels(req.Labels)
		task.Priority = models.Priority(req.Priority)
		if strings.TrimSpace(req.DueDate) != "" {
			if task.DueDate = advice.ParseDate(req.DueDate); task.DueDate == nil {
				return badField("dueDate")
			}
		}
	}

	if err := h.Store.CreateTask(c.UserContext(), task); err != nil {
		return mapError(c, err, "Board")
	}

	h.publish(websocket.Event{Type: websocket.EventTaskCreated, BoardID: board.ID, Payload: task})
	logger.AuditLogger.Info("Task created",
		zap.String("task_id", task.ID.String()),
		zap.String("board_id", board.ID.String()),
		zap.String("user_id", actor.String()),
	)
	return respond(c, fiber.StatusCreated, "Task created successfully", task)
}

// memberAssignee memvalidasi assignee opsional: harus UUID dan anggota board.
func memberAssignee(board *models.Board, raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, badField("assignedTo")
	}
	if !board.IsMember(id) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Assignee must be a member of the board")
	}
	return &id, nil
}

type boardTaskRef struct {
	TaskID string `json:"taskId" validate:"required,uuid"`
}

// UpdateBoardTask mengubah sebagian field task yang dirujuk oleh body.taskId.
func (h *Handler) UpdateBoardTask(c *fiber.Ctx) error {
	var ref boardTaskRef
	if err := h.parseBody(c, &ref); err != nil {
		return err
	}
	taskID := uuid.MustParse(ref.TaskID)

	board := currentBoard(c)
	task, err := h.Store.GetTask(c.UserContext(), taskID)
	if err != nil {
		return mapError(c, err, "Task")
	}
	if task.BoardID != board.ID {
		return fiber.NewError(fiber.StatusNotFound, "Task not found")
	}
	return h.applyPatch(c, board, task)
}

// GetTask mengembalikan task jika user sesi anggota board task tersebut.
func (h *Handler) GetTask(c *fiber.Ctx) error {
	board, task, err := h.loadTask(c)
	if err != nil {
		return err
	}
	if err := access.RequireMember(board, middleware.UserID(c)); err != nil {
		return mapError(c, err, "Task")
	}
	return respond(c, fiber.StatusOK, "Task retrieved successfully", task)
}

// UpdateTask mengubah sebagian field task berdasarkan :taskId.
func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	board, task, err := h.loadTask(c)
	if err != nil {
		return err
	}
	return h.applyPatch(c, board, task)
}

// DeleteTask boleh dilakukan pembuat task atau pembuat board.
func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	board, task, err := h.loadTask(c)
	if err != nil {
		return err
	}
	actor := middleware.UserID(c)
	if err := access.CanEditTask(board, task, actor); err != nil {
		return mapError(c, err, "Task")
	}
	if err := h.Store.DeleteTask(c.UserContext(), task.ID); err != nil {
		return mapError(c, err, "Task")
	}

	h.publish(websocket.Event{Type: websocket.EventTaskDeleted, BoardID: board.ID, Payload: fiber.Map{"id": task.ID}})
	logger.AuditLogger.Info("Task deleted",
		zap.String("task_id", task.ID.String()),
		zap.String("board_id", board.ID.String()),
		zap.String("user_id", actor.String()),
	)
	return respond(c, fiber.StatusOK, "Task deleted successfully", nil)
}

func (h *Handler) loadTask(c *fiber.Ctx) (*models.Board, *models.Task, error) {
	taskID, err := uuidParam(c, "taskId", "task")
	if err != nil {
		return nil, nil, err
	}
	task, err := h.Store.GetTask(c.UserContext(), taskID)
	if err != nil {
		return nil, nil, mapError(c, err, "Task")
	}
	board, err := h.Store.GetBoard(c.UserContext(), task.BoardID)
	if err != nil {
		return nil, nil, mapError(c, err, "Board")
	}
	return board, task, nil
}

// applyPatch dipakai kedua endpoint update. Respons berisi task yang tersimpan
// sehingga klien bisa menyamakan state optimistiknya.
func (h *Handler) applyPatch(c *fiber.Ctx, board *models.Board, task *models.Task) error {
	actor := middleware.UserID(c)
	if err := access.CanEditTask(board, task, actor); err != nil {
		return mapError(c, err, "Task")
	}

	patch, err := parseTaskPatch(c.Body())
	if err != nil {
		return err
	}
	if patch.AssignedTo != nil && !board.IsMember(*patch.AssignedTo) {
		return fiber.NewError(fiber.StatusBadRequest, "Assignee must be a member of the board")
	}

	updated := patch.Apply(*task)
	if err := h.Store.SaveTask(c.UserContext(), &updated); err != nil {
		return mapError(c, err, "Task")
	}

	h.publish(websocket.Event{Type: websocket.EventTaskUpdated, BoardID: board.ID, Payload: updated})
	logger.AuditLogger.Info("Task updated",
		zap.String("task_id", updated.ID.String()),
		zap.String("board_id", board.ID.String()),
		zap.String("user_id", actor.String()),
	)
	return respond(c, fiber.StatusOK, "Task updated successfully", updated)
}
