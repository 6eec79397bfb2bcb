package repository

import (
	"context"
	"strings"

	"taskboard/internal/models"

	"github.com/google/uuid"
)

// CreateUser menyimpan user baru. Email disimpan lowercase; email yang sudah
// terdaftar menghasilkan ErrDuplicateEmail.
func (p *Postgres) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	err := p.db.QueryRowContext(ctx,
		"INSERT INTO users (id, name, email, password) VALUES ($1, $2, $3, $4) RETURNING created_at",
		u.ID, u.Name, u.Email, u.Password,
	).Scan(&u.CreatedAt)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			return ErrDuplicateEmail
		}
		return writeError(err)
	}
	u.Boards = []uuid.UUID{}
	return nil
}

func (p *Postgres) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := p.db.QueryRowContext(ctx,
		"SELECT id, name, email, password, created_at FROM users WHERE id = $1", id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if u.Boards, err = p.userBoards(ctx, u.ID); err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := p.db.QueryRowContext(ctx,
		"SELECT id, name, email, password, created_at FROM users WHERE email = $1",
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if u.Boards, err = p.userBoards(ctx, u.ID); err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *Postgres) userBoards(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := p.db.QueryContext(ctx,
		"SELECT board_id FROM board_members WHERE user_id = $1 ORDER BY joined_at, board_id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
