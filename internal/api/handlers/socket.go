package handlers

import (
	"taskboard/internal/middleware"
	"taskboard/internal/models"
	"taskboard/internal/websocket"
	"taskboard/pkg/logger"

	fiberws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BoardSocket mendaftarkan koneksi ke room board lalu membaca sampai klien menutup.
// Pesan dari klien diabaikan; semua perubahan lewat API HTTP.
func (h *Handler) BoardSocket(conn *fiberws.Conn) {
	board, _ := conn.Locals(boardKey).(*models.Board)
	userID, _ := conn.Locals(middleware.UserIDKey).(uuid.UUID)
	if board == nil || h.Hub == nil {
		conn.Close()
		return
	}

	client := &websocket.Client{Conn: conn, BoardID: board.ID, UserID: userID}
	if !h.Hub.Register(client) {
		conn.Close()
		return
	}
	defer func() {
		h.Hub.Unregister(client)
		client.Wait()
	}()

	logger.SystemLogger.Info("Board socket connected",
		zap.String("board_id", board.ID.String()), zap.String("user_id", userID.String()))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
