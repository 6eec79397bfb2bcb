// Package access berisi aturan keanggotaan dan izin untuk board dan task.
// Semua handler memakai fungsi di sini sehingga hanya ada satu strategi otorisasi.
package access

import (
	"errors"

	"taskboard/internal/models"

	"github.com/google/uuid"
)

var (
	ErrNotMember      = errors.New("not a board member")
	ErrForbidden      = errors.New("forbidden")
	ErrCreatorRemoval = errors.New("cannot remove board creator")
)

// RequireMember gagal dengan ErrNotMember jika actor bukan anggota board.
func RequireMember(board *models.Board, actor uuid.UUID) error {
	if !board.IsMember(actor) {
		return ErrNotMember
	}
	return nil
}

// CanDeleteBoard: hanya pembuat board yang boleh menghapus.
func CanDeleteBoard(board *models.Board, actor uuid.UUID) error {
	if board.CreatedBy != actor {
		return ErrForbidden
	}
	return nil
}

// CanAddMember mengizinkan anggota menambah user lain, atau user bergabung sendiri.
func CanAddMember(board *models.Board, actor, target uuid.UUID) error {
	if actor == target || board.IsMember(actor) {
		return nil
	}
	return ErrForbidden
}

// CanRemoveMember menolak penghapusan pembuat board, lalu mengizinkan anggota
// atau user yang keluar sendiri.
func CanRemoveMember(board *models.Board, actor, target uuid.UUID) error {
	if target == board.CreatedBy {
		return ErrCreatorRemoval
	}
	if actor == target || board.IsMember(actor) {
		return nil
	}
	return ErrForbidden
}

// CanEditTask: actor harus anggota board dan pembuat task atau pembuat board.
// Aturan yang sama dipakai untuk menghapus task.
func CanEditTask(board *models.Board, task *models.Task, actor uuid.UUID) error {
	if err := RequireMember(board, actor); err != nil {
		return err
	}
	if actor != task.CreatedBy && actor != board.CreatedBy {
		return ErrForbidden
	}
	return nil
}

// AddMember menambahkan target ke daftar anggota tanpa duplikat.
// Mengembalikan false jika target sudah anggota.
func AddMember(members []uuid.UUID, target uuid.UUID) ([]uuid.UUID, bool) {
	for _, m := range members {
		if m == target {
			return members, false
		}
	}
	return append(members, target), true
}

// RemoveMember membuang target dan menjaga urutan anggota lain.
func RemoveMember(members []uuid.UUID, target uuid.UUID) ([]uuid.UUID, bool) {
	out := make([]uuid.UUID, 0, len(members))
	removed := false
	for _, m := range members {
		if m == target {
			removed = true
			continue
		}
		out = append(out, m)
	}
	return out, removed
}
