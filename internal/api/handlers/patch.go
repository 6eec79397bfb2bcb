package handlers

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"taskboard/internal/advice"
	"taskboard/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// maxTitleLength mengikuti kolom VARCHAR(255) di Postgres.
const maxTitleLength = 255

var nullJSON = []byte("null")

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), nullJSON)
}

func badField(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, "Invalid value for "+field)
}

// parseTaskPatch membaca field task yang dikenali dari body JSON. Field lain
// (misalnya taskId) diabaikan. null atau "" pada dueDate dan assignedTo
// mengosongkan kolom tersebut.
func parseTaskPatch(body []byte) (models.TaskPatch, error) {
	var patch models.TaskPatch
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return patch, fiber.NewError(fiber.StatusBadRequest, "Bad request")
	}

	if raw, ok := fields["title"]; ok && !isNull(raw) {
		var title string
		if err := json.Unmarshal(raw, &title); err != nil {
			return patch, badField("title")
		}
		title = strings.TrimSpace(title)
		if title == "" {
			return patch, fiber.NewError(fiber.StatusBadRequest, "Title cannot be empty")
		}
		if utf8.RuneCountInString(title) > maxTitleLength {
			return patch, badField("title")
		}
		patch.Title = &title
	}

	if raw, ok := fields["description"]; ok {
		var desc string
		if !isNull(raw) {
			if err := json.Unmarshal(raw, &desc); err != nil {
				return patch, badField("description")
			}
		}
		patch.Description = &desc
	}

	if raw, ok := fields["labels"]; ok {
		labels := []string{}
		if !isNull(raw) {
			if err := json.Unmarshal(raw, &labels); err != nil {
				return patch, badField("labels")
			}
		}
		patch.Labels = cleanLabels(labels)
	}

	if raw, ok := fields["status"]; ok && !isNull(raw) {
		var status models.Status
		if err := json.Unmarshal(raw, &status); err != nil || !status.Valid() {
			return patch, fiber.NewError(fiber.StatusBadRequest, "Invalid status")
		}
		patch.Status = &status
	}

	if raw, ok := fields["priority"]; ok && !isNull(raw) {
		var priority models.Priority
		if err := json.Unmarshal(raw, &priority); err != nil || !priority.Valid() {
			return patch, fiber.NewError(fiber.StatusBadRequest, "Invalid priority")
		}
		patch.Priority = &priority
	}

	if raw, ok := fields["dueDate"]; ok {
		var v string
		if !isNull(raw) {
			if err := json.Unmarshal(raw, &v); err != nil {
				return patch, badField("dueDate")
			}
		}
		if strings.TrimSpace(v) == "" {
			patch.ClearDueDate = true
		} else if patch.DueDate = advice.ParseDate(v); patch.DueDate == nil {
			return patch, badField("dueDate")
		}
	}

	if raw, ok := fields["assignedTo"]; ok {
		var v string
		if !isNull(raw) {
			if err := json.Unmarshal(raw, &v); err != nil {
				return patch, badField("assignedTo")
			}
		}
		if strings.TrimSpace(v) == "" {
			patch.ClearAssignee = true
		} else {
			id, err := uuid.Parse(strings.TrimSpace(v))
			if err != nil {
				return patch, badField("assignedTo")
			}
			patch.AssignedTo = &id
		}
	}

	if patch.Empty() {
		return patch, fiber.NewError(fiber.StatusBadRequest, "No valid fields provided to update")
	}
	return patch, nil
}

func cleanLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
