package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/shoplist-app/shoplist-backend/internal/auth"
	"github.com/shoplist-app/shoplist-backend/internal/observability/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the CORS layer; the token already authenticated
	// the connection.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// watch streams list change events over a websocket. Membership is checked
// once at connect time; a member removed mid-session keeps the stream until
// they reconnect.
func (h *Handler) watch(c *gin.Context) {
	listID := c.Param("id")
	if _, err := h.svc.Get(c.Request.Context(), auth.UserUID(c), listID); err != nil {
		respondError(c, err)
		return
	}
	if h.bus == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "realtime relay is not configured"})
		return
	}

	events, cancel, err := h.bus.Subscribe(c.Request.Context(), listID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to subscribe"})
		return
	}
	defer cancel()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "listID", listID, "error", err)
		return
	}
	defer conn.Close()

	metrics.WSConnected()
	defer metrics.WSDisconnected()

	// Read pump: drains control frames and signals when the client is gone.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
