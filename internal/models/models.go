package models

import (
	"time"

	"github.com/google/uuid"
)

// Status adalah kolom kanban tempat sebuah task berada.
// Tidak ada urutan wajib: status apa pun boleh diganti ke status lain.
type Status string

const (
	StatusNotStarted   Status = "notStarted"
	StatusInProgress   Status = "inProgress"
	StatusVerification Status = "verification"
	StatusFinished     Status = "finished"
)

// Statuses dalam urutan kolom board.
var Statuses = []Status{StatusNotStarted, StatusInProgress, StatusVerification, StatusFinished}

func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusVerification, StatusFinished:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

type User struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Password  string      `json:"-"`
	Boards    []uuid.UUID `json:"boards"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Member adalah ringkasan user yang ditampilkan di board.
type Member struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Board struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Members     []uuid.UUID `json:"members"`
	CreatedBy   uuid.UUID   `json:"createdBy"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// IsMember memeriksa keanggotaan dengan semantik set.
func (b *Board) IsMember(userID uuid.UUID) bool {
	for _, m := range b.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// BoardDetail adalah board beserta nama anggotanya.
type BoardDetail struct {
	Board
	MemberSummaries []Member `json:"memberDetails"`
}

type Task struct {
	ID          uuid.UUID  `json:"id"`
	BoardID     uuid.UUID  `json:"boardId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Labels      []string   `json:"labels"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedBy   uuid.UUID  `json:"createdBy"`
	AssignedTo  *uuid.UUID `json:"assignedTo,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ApplyDefaults mengisi status, priority dan labels yang kosong.
func (t *Task) ApplyDefaults() {
	if t.Status == "" {
		t.Status = StatusNotStarted
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Labels == nil {
		t.Labels = []string{}
	}
}

// TaskPatch berisi field yang akan diubah. Field nil tidak disentuh.
// ClearDueDate dan ClearAssignee mengosongkan kolom opsional.
type TaskPatch struct {
	Title         *string
	Description   *string
	Labels        []string
	Status        *Status
	Priority      *Priority
	DueDate       *time.Time
	ClearDueDate  bool
	AssignedTo    *uuid.UUID
	ClearAssignee bool
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Labels == nil &&
		p.Status == nil && p.Priority == nil &&
		p.DueDate == nil && !p.ClearDueDate &&
		p.AssignedTo == nil && !p.ClearAssignee
}

// Apply menerapkan patch ke salinan task.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Labels != nil {
		t.Labels = append([]string{}, p.Labels...)
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.ClearAssignee {
		t.AssignedTo = nil
	} else if p.AssignedTo != nil {
		a := *p.AssignedTo
		t.AssignedTo = &a
	}
	return t
}
