package repository

import (
	"context"
	"database/sql"

	"taskboard/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const taskColumns = "id, board_id, title, description, labels, status, priority, due_date, created_by, assigned_to, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		t        models.Task
		labels   pq.StringArray
		due      sql.NullTime
		assigned uuid.NullUUID
	)
	err := row.Scan(&t.ID, &t.BoardID, &t.Title, &t.Description, &labels, &t.Status, &t.Priority,
		&due, &t.CreatedBy, &assigned, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Labels = []string(labels)
	if t.Labels == nil {
		t.Labels = []string{}
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	if assigned.Valid {
		a := assigned.UUID
		t.AssignedTo = &a
	}
	return &t, nil
}

func nullableAssignee(a *uuid.UUID) uuid.NullUUID {
	if a == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *a, Valid: true}
}

func uuidArray(ids []uuid.UUID) pq.StringArray {
	out := make(pq.StringArray, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// CreateTask menyimpan task. Board yang tidak ada menghasilkan ErrNotFound.
func (p *Postgres) CreateTask(ctx context.Context, t *models.Task) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.ApplyDefaults()

	err := p.db.QueryRowContext(ctx, `
		INSERT INTO tasks (id, board_id, title, description, labels, status, priority, due_date, created_by, assigned_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		t.ID, t.BoardID, t.Title, t.Description, pq.StringArray(t.Labels), t.Status, t.Priority,
		t.DueDate, t.CreatedBy, nullableAssignee(t.AssignedTo),
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return writeError(err)
	}
	return nil
}

func (p *Postgres) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	t, err := scanTask(p.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1", id))
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (p *Postgres) ListTasks(ctx context.Context, boardID uuid.UUID) ([]models.Task, error) {
	rows, err := p.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE board_id = $1 ORDER BY created_at, id", boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// SaveTask menulis semua kolom yang bisa diubah dan memperbarui updated_at.
func (p *Postgres) SaveTask(ctx context.Context, t *models.Task) error {
	err := p.db.QueryRowContext(ctx, `
		UPDATE tasks SET title = $2, description = $3, labels = $4, status = $5, priority = $6,
			due_date = $7, assigned_to = $8, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at`,
		t.ID, t.Title, t.Description, pq.StringArray(t.Labels), t.Status, t.Priority,
		t.DueDate, nullableAssignee(t.AssignedTo),
	).Scan(&t.UpdatedAt)
	if err != nil {
		return notFound(writeError(err))
	}
	return nil
}

func (p *Postgres) DeleteTask(ctx context.Context, id uuid.UUID) error {
	res, err := p.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
