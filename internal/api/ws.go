package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"snapwallet/internal/models"
)

// Hub fans wallet stats snapshots out to websocket subscribers: one message
// per account per engagement tick or mutation.
type Hub struct {
	mu   sync.Mutex
	log  *slog.Logger
	subs map[string]map[*websocket.Conn]struct{}
}

type statsMessage struct {
	Type      string       `json:"type"`
	AccountID string       `json:"account_id"`
	Stats     models.Stats `json:"stats"`
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:  log,
		subs: make(map[string]map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) subscribe(accountID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[accountID] == nil {
		h.subs[accountID] = make(map[*websocket.Conn]struct{})
	}
	h.subs[accountID][conn] = struct{}{}
}

func (h *Hub) unsubscribe(accountID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[accountID], conn)
	if len(h.subs[accountID]) == 0 {
		delete(h.subs, accountID)
	}
}

// BroadcastStats pushes a snapshot to every subscriber of one account.
// Dead connections are dropped on write failure; the read pump does the
// final cleanup.
func (h *Hub) BroadcastStats(accountID string, stats models.Stats) {
	msg := statsMessage{Type: "stats", AccountID: accountID, Stats: stats}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.subs[accountID] {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(msg); err != nil {
			h.log.Debug("ws_write_failed", "account_id", accountID, "error", err)
			conn.Close()
			delete(h.subs[accountID], conn)
		}
	}
}

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true // non-browser clients
			}
			for _, allowed := range s.cfg.CORSOrigins {
				if origin == allowed || allowed == "*" {
					return true
				}
			}
			return false
		},
	}
}

func (s *Server) wsStats(c *gin.Context) {
	accountID := c.Param("account_id")

	stats, ok := s.store.Stats(accountID)
	if !ok {
		s.accountNotFound(c)
		return
	}

	up := s.upgrader()
	conn, err := up.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("ws_upgrade_failed", "account_id", accountID, "error", err)
		return
	}

	s.hub.subscribe(accountID, conn)
	s.log.Info("ws_subscribed", "account_id", accountID)

	// initial snapshot so the client renders immediately
	s.hub.BroadcastStats(accountID, stats)

	// read pump: we never expect client messages, but reading is how we
	// notice the peer going away.
	go func() {
		defer func() {
			s.hub.unsubscribe(accountID, conn)
			conn.Close()
			s.log.Info("ws_unsubscribed", "account_id", accountID)
		}()
		conn.SetReadLimit(512)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
