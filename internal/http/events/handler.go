// Package events streams change notifications to clients over
// server-sent events so open views can refresh without polling.
package events

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mfonseca/fluxo/internal/notify"
)

type Handler struct {
	listener *notify.Listener
}

func NewHandler(listener *notify.Listener) *Handler {
	return &Handler{listener: listener}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.stream)
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := make(chan notify.Event, 16)

	unsubscribe := h.listener.Subscribe(func(ev notify.Event) {
		select {
		case events <- ev:
		default: // drop when the client cannot keep up
		}
	})
	defer unsubscribe()

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", ev.Payload)
			flusher.Flush()
		}
	}
}
