package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"taskboard/internal/access"
	"taskboard/internal/models"

	"github.com/google/uuid"
)

// Memory adalah Store di memori proses untuk pengembangan lokal (DB_DRIVER=memory)
// dan test. Semantiknya mengikuti Postgres.
type Memory struct {
	mu     sync.Mutex
	users  map[uuid.UUID]models.User
	emails map[string]uuid.UUID
	boards map[uuid.UUID]models.Board
	tasks  map[uuid.UUID]models.Task
	now    func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		users:  map[uuid.UUID]models.User{},
		emails: map[string]uuid.UUID{},
		boards: map[uuid.UUID]models.Board{},
		tasks:  map[uuid.UUID]models.Task{},
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if _, ok := m.emails[u.Email]; ok {
		return ErrDuplicateEmail
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = m.now()
	u.Boards = []uuid.UUID{}
	m.users[u.ID] = *u
	m.emails[u.Email] = u.ID
	return nil
}

func (m *Memory) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userLocked(id)
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.emails[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, ErrNotFound
	}
	return m.userLocked(id)
}

func (m *Memory) userLocked(id uuid.UUID) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.Boards = []uuid.UUID{}
	for _, b := range m.sortedBoardsLocked() {
		if b.IsMember(id) {
			u.Boards = append(u.Boards, b.ID)
		}
	}
	return &u, nil
}

func (m *Memory) CreateBoard(_ context.Context, b *models.Board) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[b.CreatedBy]; !ok {
		return ErrNotFound
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt = m.now()
	b.Members = []uuid.UUID{b.CreatedBy}
	m.boards[b.ID] = copyBoard(*b)
	return nil
}

func (m *Memory) GetBoard(_ context.Context, id uuid.UUID) (*models.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.boards[id]
	if !ok {
		return nil, ErrNotFound
	}
	b = copyBoard(b)
	return &b, nil
}

func (m *Memory) ListMembers(_ context.Context, boardID uuid.UUID) ([]models.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.boards[boardID]
	if !ok {
		return []models.Member{}, nil
	}
	members := make([]models.Member, 0, len(b.Members))
	for _, id := range b.Members {
		members = append(members, models.Member{ID: id, Name: m.users[id].Name})
	}
	return members, nil
}

func (m *Memory) ListBoardsForMember(_ context.Context, userID uuid.UUID) ([]models.Board, error) {
	return m.filterBoards(func(b models.Board) bool { return b.IsMember(userID) }), nil
}

func (m *Memory) ListBoardsNotJoined(_ context.Context, userID uuid.UUID) ([]models.Board, error) {
	return m.filterBoards(func(b models.Board) bool { return !b.IsMember(userID) }), nil
}

func (m *Memory) filterBoards(keep func(models.Board) bool) []models.Board {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Board{}
	for _, b := range m.sortedBoardsLocked() {
		if keep(b) {
			out = append(out, copyBoard(b))
		}
	}
	return out
}

func (m *Memory) sortedBoardsLocked() []models.Board {
	boards := make([]models.Board, 0, len(m.boards))
	for _, b := range m.boards {
		boards = append(boards, b)
	}
	sort.Slice(boards, func(i, j int) bool {
		if !boards[i].CreatedAt.Equal(boards[j].CreatedAt) {
			return boards[i].CreatedAt.Before(boards[j].CreatedAt)
		}
		return boards[i].ID.String() < boards[j].ID.String()
	})
	return boards
}

func (m *Memory) AddMember(_ context.Context, boardID, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.boards[boardID]
	if !ok {
		return false, ErrNotFound
	}
	if _, ok := m.users[userID]; !ok {
		return false, ErrNotFound
	}
	members, added := access.AddMember(b.Members, userID)
	b.Members = members
	m.boards[boardID] = b
	return added, nil
}

func (m *Memory) RemoveMember(_ context.Context, boardID, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.boards[boardID]
	if !ok || b.CreatedBy == userID {
		return false, nil
	}
	members, removed := access.RemoveMember(b.Members, userID)
	b.Members = members
	m.boards[boardID] = b
	return removed, nil
}

func (m *Memory) DeleteBoard(_ context.Context, id uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.boards[id]; !ok {
		return 0, ErrNotFound
	}
	var n int64
	for tid, t := range m.tasks {
		if t.BoardID == id {
			delete(m.tasks, tid)
			n++
		}
	}
	delete(m.boards, id)
	return n, nil
}

func (m *Memory) CreateTask(_ context.Context, t *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.boards[t.BoardID]; !ok {
		return ErrNotFound
	}
	if t.AssignedTo != nil {
		if _, ok := m.users[*t.AssignedTo]; !ok {
			return ErrNotFound
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.ApplyDefaults()
	t.CreatedAt = m.now()
	t.UpdatedAt = t.CreatedAt
	m.tasks[t.ID] = copyTask(*t)
	return nil
}

func (m *Memory) GetTask(_ context.Context, id uuid.UUID) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	t = copyTask(t)
	return &t, nil
}

func (m *Memory) ListTasks(_ context.Context, boardID uuid.UUID) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := []models.Task{}
	for _, t := range m.tasks {
		if t.BoardID == boardID {
			tasks = append(tasks, copyTask(t))
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID.String() < tasks[j].ID.String()
	})
	return tasks, nil
}

func (m *Memory) SaveTask(_ context.Context, t *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[t.ID]; !ok {
		return ErrNotFound
	}
	if t.AssignedTo != nil {
		if _, ok := m.users[*t.AssignedTo]; !ok {
			return ErrNotFound
		}
	}
	t.UpdatedAt = m.now()
	m.tasks[t.ID] = copyTask(*t)
	return nil
}

func (m *Memory) DeleteTask(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func copyBoard(b models.Board) models.Board {
	b.Members = append([]uuid.UUID{}, b.Members...)
	return b
}

func copyTask(t models.Task) models.Task {
	t.Labels = append([]string{}, t.Labels...)
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	if t.AssignedTo != nil {
		a := *t.AssignedTo
		t.AssignedTo = &a
	}
	return t
}
