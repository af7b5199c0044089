package handlers

import (
	"net/http"
	"time"

	"github.com/choreboard-dev/choreboard/internal/notify"
	"github.com/choreboard-dev/choreboard/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// WebSocket bridges the caller's hub subscription onto a websocket
// connection. Events are delivered best-effort; a dropped connection just
// stops receiving until the client reconnects.
func (h *Handler) WebSocket(c *gin.Context) {
	currentUser, err := utils.GetCurrentUser(c)

	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// Non-browser clients send no Origin header.
			if origin == "" {
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := h.hub.Subscribe(currentUser.ID)

	defer func() {
		sub.Close()
		conn.Close()
		h.log.Debug("websocket connection closed", zap.Uint("user_id", currentUser.ID))
	}()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		h.log.Warn("failed to set initial read deadline", zap.Error(err))
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return
	}

	if err := conn.WriteJSON(notify.NewEvent(notify.EventConnected, "Event channel established")); err != nil {
		h.log.Warn("failed to send welcome message", zap.Error(err))
		return
	}

	// Reader: the client sends nothing meaningful, but reads are needed to
	// process pongs and detect the close.
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.log.Debug("websocket read error", zap.Uint("user_id", currentUser.ID), zap.Error(err))
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				h.log.Debug("failed to deliver event", zap.Uint("user_id", currentUser.ID), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
