package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Amityar01/chaolab-ircn-sub000/internal/service"
)

// EventsHandler streams prediction errors to the rendering layer.
type EventsHandler struct {
	bus *service.EventBus
}

func NewEventsHandler(bus *service.EventBus) *EventsHandler {
	return &EventsHandler{bus: bus}
}

// List returns the events still inside their display window.
// GET /v1/events
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	events := h.bus.Active(time.Now())
	writeJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}

// Stream is a Server-Sent Events feed of prediction errors as they occur.
// GET /v1/events/stream
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch, cancel := h.bus.Subscribe()
	defer cancel()

	for {
		select {
		case ev, open := <-ch:
			if !open {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: prediction_error\ndata: %s\n\n", payload)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
