package websocket

import (
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fourline/server/internal/domain"
	"github.com/fourline/server/internal/service/game"
	"github.com/fourline/server/internal/service/matchmaking"
)

// Handler owns the websocket endpoint and routes parsed client events
// into the matchmaking queue and the session store.
type Handler struct {
	ConnManager    *ConnectionManager
	Queue          *matchmaking.Queue
	SessionManager *game.SessionManager
	Upgrader       websocket.Upgrader

	heartbeat time.Duration
}

func NewHandler(cm *ConnectionManager, queue *matchmaking.Queue, sm *game.SessionManager, heartbeat time.Duration) *Handler {
	return &Handler{
		ConnManager:    cm,
		Queue:          queue,
		SessionManager: sm,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		heartbeat: heartbeat,
	}
}

// HandleWebSocket upgrades the HTTP request and hands the socket to the
// per-connection loop.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	go h.handleConnection(conn)
}

// handleConnection manages the lifecycle of one socket: liveness pings,
// the read loop and the disconnect path on exit.
func (h *Handler) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	// A connection that has not ponged since the previous ping is
	// considered dead and closed, which funnels into the same
	// disconnect path as an explicit close.
	var alive atomic.Bool
	alive.Store(true)
	conn.SetPongHandler(func(string) error {
		alive.Store(true)
		return nil
	})

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if !alive.Load() {
					log.Println("[WS] Connection missed heartbeat, terminating")
					conn.Close()
					return
				}
				alive.Store(false)
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	var username string

	defer func() {
		if username == "" {
			return
		}
		log.Printf("[WS] Connection closed for %s", username)
		h.Queue.Remove(username)
		h.SessionManager.HandleDisconnect(username, h.ConnManager)
		h.ConnManager.RemoveConnectionIfMatching(username, conn)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Unexpected close: %v", err)
			}
			return
		}

		msg, err := domain.ParseClientMessage(data)
		if err != nil {
			// Malformed input is logged and dropped, the connection
			// stays open.
			log.Printf("[WS] Dropping message: %v", err)
			continue
		}

		switch msg.Type {
		case domain.TypeJoin:
			if msg.Username == "" || msg.Username == domain.BotUsername {
				log.Printf("[WS] Dropping join with unusable username %q", msg.Username)
				continue
			}
			if username != "" {
				log.Printf("[WS] Dropping join as %q, connection already bound to %s", msg.Username, username)
				continue
			}
			username = msg.Username
			h.ConnManager.AddConnection(username, conn)
			h.Queue.Join(username)

		case domain.TypeMove:
			if username == "" {
				continue
			}
			h.SessionManager.HandleMove(username, msg.Col, h.ConnManager)

		case domain.TypeReconnect:
			if msg.Username == "" || msg.Username == domain.BotUsername {
				continue
			}
			if username != "" && username != msg.Username {
				log.Printf("[WS] Dropping reconnect as %q, connection already bound to %s", msg.Username, username)
				continue
			}
			username = msg.Username
			h.ConnManager.AddConnection(username, conn)
			h.SessionManager.HandleReconnect(username, msg.GameID, h.ConnManager)
		}
	}
}
