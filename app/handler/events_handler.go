package handler

import (
	"net/http"

	"evalgrid/pkg/events"
	"evalgrid/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins, production should use stricter checks
	},
}

// EventsHandler streams the live task event feed over websocket
type EventsHandler struct {
	broker *events.Broker
}

// NewEventsHandler creates events handler
func NewEventsHandler(broker *events.Broker) *EventsHandler {
	return &EventsHandler{broker: broker}
}

// Stream upgrades to websocket and pushes task events as they happen
// @Summary Live event feed
// @Tags events
// @Router /ws/events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to upgrade to websocket: %v", err)
		return
	}
	defer ws.Close()

	sub := h.broker.Subscribe()
	defer h.broker.Unsubscribe(sub)

	// Reader goroutine: its only job is to notice the client going away
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case event, ok := <-sub:
			if !ok {
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, event); err != nil {
				logger.DebugCtx(c.Request.Context(), "websocket write failed, closing feed: %v", err)
				return
			}
		}
	}
}
