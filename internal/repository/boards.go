package repository

import (
	"context"
	"database/sql"

	"taskboard/internal/models"

	"github.com/google/uuid"
)

const boardColumns = "b.id, b.title, b.description, b.created_by, b.created_at"

// CreateBoard menyimpan board dan menjadikan pembuatnya anggota pertama.
func (p *Postgres) CreateBoard(ctx context.Context, b *models.Board) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return p.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			"INSERT INTO boards (id, title, description, created_by) VALUES ($1, $2, $3, $4) RETURNING created_at",
			b.ID, b.Title, b.Description, b.CreatedBy,
		).Scan(&b.CreatedAt)
		if err != nil {
			return writeError(err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO board_members (board_id, user_id, position) VALUES ($1, $2, 0)",
			b.ID, b.CreatedBy,
		); err != nil {
			return err
		}
		b.Members = []uuid.UUID{b.CreatedBy}
		return nil
	})
}

func (p *Postgres) GetBoard(ctx context.Context, id uuid.UUID) (*models.Board, error) {
	var b models.Board
	err := p.db.QueryRowContext(ctx,
		"SELECT "+boardColumns+" FROM boards b WHERE b.id = $1", id,
	).Scan(&b.ID, &b.Title, &b.Description, &b.CreatedBy, &b.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}

	rows, err := p.db.QueryContext(ctx,
		"SELECT user_id FROM board_members WHERE board_id = $1 ORDER BY position", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	b.Members = []uuid.UUID{}
	for rows.Next() {
		var m uuid.UUID
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		b.Members = append(b.Members, m)
	}
	return &b, rows.Err()
}

// ListMembers mengembalikan id dan nama anggota sesuai urutan bergabung.
func (p *Postgres) ListMembers(ctx context.Context, boardID uuid.UUID) ([]models.Member, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT u.id, u.name FROM board_members bm
		JOIN users u ON u.id = bm.user_id
		WHERE bm.board_id = $1 ORDER BY bm.position`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (p *Postgres) ListBoardsForMember(ctx context.Context, userID uuid.UUID) ([]models.Board, error) {
	return p.listBoards(ctx, `
		SELECT `+boardColumns+` FROM boards b
		WHERE EXISTS (SELECT 1 FROM board_members bm WHERE bm.board_id = b.id AND bm.user_id = $1)
		ORDER BY b.created_at, b.id`, userID)
}

// ListBoardsNotJoined adalah feed discovery: board yang belum diikuti user.
func (p *Postgres) ListBoardsNotJoined(ctx context.Context, userID uuid.UUID) ([]models.Board, error) {
	return p.listBoards(ctx, `
		SELECT `+boardColumns+` FROM boards b
		WHERE NOT EXISTS (SELECT 1 FROM board_members bm WHERE bm.board_id = b.id AND bm.user_id = $1)
		ORDER BY b.created_at, b.id`, userID)
}

func (p *Postgres) listBoards(ctx context.Context, query string, userID uuid.UUID) ([]models.Board, error) {
	rows, err := p.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	boards := []models.Board{}
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var b models.Board
		if err := rows.Scan(&b.ID, &b.Title, &b.Description, &b.CreatedBy, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.Members = []uuid.UUID{}
		index[b.ID] = len(boards)
		boards = append(boards, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(boards) == 0 {
		return boards, nil
	}

	ids := make([]uuid.UUID, 0, len(boards))
	for _, b := range boards {
		ids = append(ids, b.ID)
	}
	memberRows, err := p.db.QueryContext(ctx,
		"SELECT board_id, user_id FROM board_members WHERE board_id = ANY($1::uuid[]) ORDER BY board_id, position",
		uuidArray(ids))
	if err != nil {
		return nil, err
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var boardID, userID uuid.UUID
		if err := memberRows.Scan(&boardID, &userID); err != nil {
			return nil, err
		}
		if i, ok := index[boardID]; ok {
			boards[i].Members = append(boards[i].Members, userID)
		}
	}
	return boards, memberRows.Err()
}

// AddMember bersifat idempoten: anggota yang sudah ada tidak berubah dan
// hasilnya false. Baris board dikunci selama transaksi agar posisi anggota
// baru tidak bentrok.
func (p *Postgres) AddMember(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	var added bool
	err := p.withTx(ctx, func(tx *sql.Tx) error {
		var locked uuid.UUID
		err := tx.QueryRowContext(ctx, "SELECT id FROM boards WHERE id = $1 FOR UPDATE", boardID).Scan(&locked)
		if err != nil {
			return notFound(err)
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO board_members (board_id, user_id, position)
			SELECT $1, $2, COALESCE(MAX(position) + 1, 0) FROM board_members WHERE board_id = $1
			ON CONFLICT (board_id, user_id) DO NOTHING`, boardID, userID)
		if err != nil {
			return writeError(err)
		}
		n, err := res.RowsAffected()
		added = n > 0
		return err
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// RemoveMember tidak pernah menghapus pembuat board, bahkan jika dipanggil langsung.
func (p *Postgres) RemoveMember(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	res, err := p.db.ExecContext(ctx, `
		DELETE FROM board_members bm USING boards b
		WHERE bm.board_id = b.id AND bm.board_id = $1 AND bm.user_id = $2 AND b.created_by <> $2`,
		boardID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (p *Postgres) DeleteBoard(ctx context.Context, id uuid.UUID) (int64, error) {
	var tasksDeleted int64
	err := p.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE board_id = $1", id)
		if err != nil {
			return err
		}
		if tasksDeleted, err = res.RowsAffected(); err != nil {
			return err
		}

		// board_members ikut terhapus lewat ON DELETE CASCADE
		res, err = tx.ExecContext(ctx, "DELETE FROM boards WHERE id = $1", id)
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
	})
	if err != nil {
		return 0, err
	}
	return tasksDeleted, nil
}
