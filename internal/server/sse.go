package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/chitpool/internal/events"
)

// heartbeatInterval paces the comment frames that keep idle SSE
// connections alive through proxies.
const heartbeatInterval = 15 * time.Second

// EventsHandler relays the ledger event stream over Server-Sent Events.
type EventsHandler struct {
	bus *events.Bus
}

// NewEventsHandler creates an EventsHandler reading from the given bus.
func NewEventsHandler(bus *events.Bus) *EventsHandler {
	return &EventsHandler{bus: bus}
}

// Stream handles GET /api/v1/events. Each ledger event becomes one SSE
// frame: the event field carries the event name, the data field the JSON
// payload. The stream runs until the client disconnects or the bus shuts
// down.
func (h *EventsHandler) Stream(c *gin.Context) {
	sub := h.bus.Subscribe(c.Request.Context())
	defer sub.Close()

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": ping\n\n")
			c.Writer.Flush()
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			data, err := json.Marshal(ev.Payload)
			if err != nil {
				slog.Warn("Failed to marshal event payload", "event", ev.Name, "error", err)
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Name, data)
			c.Writer.Flush()
		}
	}
}
