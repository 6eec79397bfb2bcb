package websocket

import (
	"context"
	"encoding/json"
	"time"

	"taskboard/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	EventTaskCreated   = "task.created"
	EventTaskUpdated   = "task.updated"
	EventTaskDeleted   = "task.deleted"
	EventMemberAdded   = "member.added"
	EventMemberRemoved = "member.removed"
	EventBoardDeleted  = "board.deleted"
)

const (
	// sendBuffer adalah jumlah event yang boleh antre per klien sebelum klien dianggap lambat.
	sendBuffer = 16
	writeWait  = 10 * time.Second
)

// Event dikirim ke semua klien yang membuka board yang sama.
type Event struct {
	Type    string      `json:"type"`
	BoardID uuid.UUID   `json:"boardId"`
	Payload interface{} `json:"payload,omitempty"`
}

// Conn adalah bagian dari *websocket.Conn yang dipakai hub.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type deadlineSetter interface {
	SetWriteDeadline(t time.Time) error
}

// Client merepresentasikan klien WebSocket pada satu board.
// Setiap klien punya goroutine penulis sendiri sehingga loop Hub tidak pernah
// menunggu koneksi yang lambat.
type Client struct {
	Conn    Conn
	BoardID uuid.UUID
	UserID  uuid.UUID
	send    chan []byte
	stopped chan struct{}
}

// Wait menunggu goroutine penulis selesai. Dipanggil setelah Unregister,
// sebelum koneksi dilepas.
func (c *Client) Wait() {
	if c.stopped != nil {
		<-c.stopped
	}
}

// writePump menulis antrean send ke koneksi sampai channel ditutup hub
// atau penulisan gagal, lalu menutup koneksi.
func (c *Client) writePump() {
	defer close(c.stopped)
	defer c.Conn.Close()
	for msg := range c.send {
		if d, ok := c.Conn.(deadlineSetter); ok {
			_ = d.SetWriteDeadline(time.Now().Add(writeWait))
		}
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			logger.SystemLogger.Info("Board socket write failed",
				zap.String("board_id", c.BoardID.String()), zap.Error(err))
			return
		}
	}
}

// Hub mengelola koneksi WebSocket per board.
type Hub struct {
	rooms      map[uuid.UUID]map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

// NewHub membuat instance Hub baru.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		broadcast:  make(chan Event, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Register mengembalikan false jika hub sudah berhenti.
func (h *Hub) Register(c *Client) bool {
	c.send = make(chan []byte, sendBuffer)
	c.stopped = make(chan struct{})
	select {
	case h.register <- c:
		return true
	case <-h.done:
		c.stopped = nil
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish tidak pernah memblokir handler HTTP; jika buffer penuh event dibuang.
func (h *Hub) Publish(ev Event) {
	select {
	case h.broadcast <- ev:
	default:
		logger.ErrorLogger.Error("Dropping board event, hub is busy",
			zap.String("type", ev.Type), zap.String("board_id", ev.BoardID.String()))
	}
}

// Run menjalankan loop Hub sampai ctx selesai, lalu menutup semua koneksi.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, room := range h.rooms {
				for client := range room {
					close(client.send)
				}
			}
			h.rooms = make(map[uuid.UUID]map[*Client]bool)
			return
		case client := <-h.register:
			room, ok := h.rooms[client.BoardID]
			if !ok {
				room = make(map[*Client]bool)
				h.rooms[client.BoardID] = room
			}
			room[client] = true
			go client.writePump()
		case client := <-h.unregister:
			h.drop(client)
		case ev := <-h.broadcast:
			h.deliver(ev)
		}
	}
}

func (h *Hub) deliver(ev Event) {
	room := h.rooms[ev.BoardID]
	if len(room) == 0 {
		return
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		logger.ErrorLogger.Error("Error encoding board event", zap.Error(err))
		return
	}

	for client := range room {
		select {
		case client.send <- msg:
		default:
			logger.SystemLogger.Warn("Dropping slow board socket",
				zap.String("board_id", client.BoardID.String()),
				zap.String("user_id", client.UserID.String()))
			h.drop(client)
			// Menutup koneksi membatalkan WriteMessage yang sedang tertahan.
			client.Conn.Close()
		}
	}

	switch ev.Type {
	case EventBoardDeleted:
		for client := range room {
			h.drop(client)
		}
	case EventMemberRemoved:
		removed, ok := ev.Payload.(uuid.UUID)
		if !ok {
			return
		}
		for client := range room {
			if client.UserID == removed {
				h.drop(client)
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	room, ok := h.rooms[client.BoardID]
	if !ok {
		return
	}
	if _, ok := room[client]; !ok {
		return
	}
	delete(room, client)
	// writePump mengirim sisa antrean lalu menutup koneksi.
	close(client.send)
	if len(room) == 0 {
		delete(h.rooms, client.BoardID)
	}
}
