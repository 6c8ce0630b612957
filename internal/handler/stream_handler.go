package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"workspace-service/internal/metrics"
	"workspace-service/internal/notify"
	"workspace-service/internal/response"
	"workspace-service/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// StreamHandler relays workspace change events to WebSocket clients
type StreamHandler struct {
	presenceService service.PresenceService
	metrics         *metrics.Metrics
	logger          *zap.Logger
}

func NewStreamHandler(presenceService service.PresenceService, m *metrics.Metrics, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{
		presenceService: presenceService,
		metrics:         m,
		logger:          logger,
	}
}

// HandleStream godoc
// @Summary      Workspace event stream
// @Description  Upgrades to a WebSocket that receives every presence and item event of the workspace
// @Tags         stream
// @Param        workspaceId path string true "Workspace ID"
// @Success      101
// @Failure      400 {object} response.ErrorResponse
// @Router       /ws/workspaces/{workspaceId} [get]
func (h *StreamHandler) HandleStream(c *gin.Context) {
	workspaceID := c.Param("workspaceId")
	if workspaceID == "" || len(workspaceID) > 128 {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid workspace id")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed",
			zap.String("workspace_id", workspaceID),
			zap.Error(err),
		)
		return
	}

	send := make(chan []byte, sendBufferSize)
	done := make(chan struct{})

	unsubscribe, err := h.presenceService.Subscribe(c.Request.Context(), workspaceID, func(event notify.Event) {
		payload, err := notify.Encode(event)
		if err != nil {
			return
		}
		select {
		case send <- payload:
		case <-done:
		default:
			h.logger.Warn("Dropping stream event for slow client",
				zap.String("workspace_id", workspaceID),
				zap.String("topic", event.Topic),
				zap.String("type", event.Type),
			)
		}
	})
	if err != nil {
		h.logger.Error("Failed to subscribe stream",
			zap.String("workspace_id", workspaceID),
			zap.Error(err),
		)
		msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscribe failed")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		conn.Close()
		return
	}

	h.metrics.StreamOpened()
	h.logger.Info("Stream client connected", zap.String("workspace_id", workspaceID))

	go h.writePump(conn, send, done)
	h.readPump(conn)

	close(done)
	unsubscribe()
	h.metrics.StreamClosed()
	h.logger.Info("Stream client disconnected", zap.String("workspace_id", workspaceID))
}

// readPump discards client frames and returns once the connection is gone.
func (h *StreamHandler) readPump(conn *websocket.Conn) {
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("Stream read error", zap.Error(err))
			}
			return
		}
	}
}

func (h *StreamHandler) writePump(conn *websocket.Conn, send <-chan []byte, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}
