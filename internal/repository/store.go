package repository

import (
	"context"
	"database/sql"
	"errors"

	"taskboard/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrValueTooLong   = errors.New("value too long for column")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqStringTooLong       = "22001"
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type BoardStore interface {
	CreateBoard(ctx context.Context, b *models.Board) error
	GetBoard(ctx context.Context, id uuid.UUID) (*models.Board, error)
	ListMembers(ctx context.Context, boardID uuid.UUID) ([]models.Member, error)
	ListBoardsForMember(ctx context.Context, userID uuid.UUID) ([]models.Board, error)
	ListBoardsNotJoined(ctx context.Context, userID uuid.UUID) ([]models.Board, error)
	AddMember(ctx context.Context, boardID, userID uuid.UUID) (bool, error)
	RemoveMember(ctx context.Context, boardID, userID uuid.UUID) (bool, error)
	// DeleteBoard menghapus board beserta task-nya secara atomik dan
	// mengembalikan jumlah task yang ikut terhapus.
	DeleteBoard(ctx context.Context, id uuid.UUID) (int64, error)
}

type TaskStore interface {
	CreateTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListTasks(ctx context.Context, boardID uuid.UUID) ([]models.Task, error)
	SaveTask(ctx context.Context, t *models.Task) error
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

// Store menggabungkan semua koleksi.
type Store interface {
	UserStore
	BoardStore
	TaskStore
}

// Postgres mengimplementasikan Store di atas pool *sql.DB milik main.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// writeError memetakan pelanggaran constraint saat insert/update ke error repository.
func writeError(err error) error {
	switch pqCode(err) {
	case pqForeignKeyViolation:
		return ErrNotFound
	case pqStringTooLong:
		return ErrValueTooLong
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// withTx menjalankan fn dalam satu transaksi; rollback jika fn gagal.
func (p *Postgres) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
