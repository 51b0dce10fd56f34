package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"pokeguess/internal/model"
	"pokeguess/internal/service"
	"pokeguess/internal/transport/rest/middleware"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// BoardSource supplies the board a new watcher sees before any update
type BoardSource interface {
	Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
}

// Handler upgrades leaderboard watchers
type Handler struct {
	hub     *Hub
	authSvc *service.AuthService
	board   BoardSource
}

// NewHandler creates a new WebSocket handler; board may be nil
func NewHandler(hub *Hub, authSvc *service.AuthService, board BoardSource) *Handler {
	return &Handler{
		hub:     hub,
		authSvc: authSvc,
		board:   board,
	}
}

// LeaderboardWS handles GET /v1/ws/leaderboard?token=
func (h *Handler) LeaderboardWS(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractToken(r)
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	claims, err := h.authSvc.ValidatePlayerToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	socket, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	conn := &Connection{
		PlayerID: claims.Subject,
		Send:     make(chan []byte, sendBuffer),
		Hub:      h.hub,
	}
	if snapshot := h.snapshot(r.Context()); snapshot != nil {
		conn.Send <- snapshot
	}
	h.hub.Register(conn)

	go conn.writeLoop(socket)
	go conn.readLoop(socket)
}

// snapshot encodes the current board, or nil if it can't be loaded
func (h *Handler) snapshot(ctx context.Context) []byte {
	if h.board == nil {
		return nil
	}
	entries, err := h.board.Top(ctx, service.DefaultLeaderboardSize)
	if err != nil {
		log.Printf("[WS] Warning: no initial board for watcher: %v", err)
		return nil
	}
	payload, _ := json.Marshal(map[string]interface{}{"leaderboard": entries})
	data, _ := json.Marshal(&Message{Type: MsgLeaderboardUpdate, Payload: payload})
	return data
}

// readLoop drains client frames so pongs and close frames are handled
func (c *Connection) readLoop(socket *websocket.Conn) {
	defer func() {
		c.Hub.Unregister(c)
		socket.Close()
	}()

	socket.SetReadLimit(maxMessageSize)
	socket.SetReadDeadline(time.Now().Add(pongWait))
	socket.SetPongHandler(func(string) error {
		return socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := socket.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Player %s read error: %v", c.PlayerID, err)
			}
			return
		}
	}
}

// writeLoop forwards hub messages and keeps the socket alive with pings
func (c *Connection) writeLoop(socket *websocket.Conn) {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		socket.Close()
	}()

	for {
		select {
		case data, open := <-c.Send:
			socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !open {
				socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := socket.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ping.C:
			socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
