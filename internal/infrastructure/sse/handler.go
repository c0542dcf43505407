// Package sse streams published domain events to browsers using
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/frops/planner/pkg/domain/events"
)

// DefaultKeepAlive is the interval between comment lines on an idle stream.
const DefaultKeepAlive = 25 * time.Second

// clientBuffer is the number of events queued per stream. Events beyond it
// are dropped for that stream only.
const clientBuffer = 64

// Handler fans published events out to connected streams.
type Handler struct {
	keepAlive time.Duration

	mu      sync.RWMutex
	streams map[*stream]struct{}
}

// stream is one connected client and the events it asked for.
type stream struct {
	types   []string
	project string
	out     chan *events.Event
}

// wants reports whether e passes the stream's filters. A project filter
// keeps events of that project, its tasks and workspace reloads.
func (s *stream) wants(e *events.Event) bool {
	if len(s.types) > 0 && !slices.Contains(s.types, e.Type) {
		return false
	}
	if s.project == "" || e.AggregateType == events.AggregateWorkspace {
		return true
	}
	if e.AggregateType == events.AggregateProject {
		return e.AggregateID == s.project
	}
	id, _ := e.Data["project_id"].(string)
	return id == s.project
}

// NewHandler creates a handler subscribed to publisher.
func NewHandler(publisher events.Publisher) *Handler {
	h := &Handler{
		keepAlive: DefaultKeepAlive,
		streams:   make(map[*stream]struct{}),
	}
	publisher.Subscribe(h.broadcast)
	return h
}

// WithKeepAlive sets the idle comment interval. Zero disables it.
func (h *Handler) WithKeepAlive(d time.Duration) *Handler {
	h.keepAlive = d
	return h
}

func (h *Handler) broadcast(e *events.Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.streams {
		if !s.wants(e) {
			continue
		}
		select {
		case s.out <- e:
		default:
		}
	}
	return nil
}

// Clients returns the number of connected streams.
func (h *Handler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.streams)
}

func (h *Handler) attach(s *stream) func() {
	h.mu.Lock()
	h.streams[s] = struct{}{}
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		delete(h.streams, s)
		h.mu.Unlock()
	}
}

// ServeHTTP streams events until the client disconnects. The optional
// "types" parameter is a comma separated list of event types and
// "project" limits the stream to one project.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	s := &stream{
		types:   splitList(q.Get("types")),
		project: q.Get("project"),
		out:     make(chan *events.Event, clientBuffer),
	}
	defer h.attach(s)()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	_, _ = io.WriteString(w, ": connected\n\n")
	flusher.Flush()

	var ping <-chan time.Time
	if h.keepAlive > 0 {
		ticker := time.NewTicker(h.keepAlive)
		defer ticker.Stop()
		ping = ticker.C
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping:
			_, _ = io.WriteString(w, ": ping\n\n")
		case e := <-s.out:
			if err := writeEvent(w, e); err != nil {
				continue
			}
		}
		flusher.Flush()
	}
}

// message is the data line of a streamed event.
type message struct {
	Type          string    `json:"type"`
	AggregateType string    `json:"aggregate_type"`
	AggregateID   string    `json:"aggregate_id"`
	ProjectID     string    `json:"project_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func writeEvent(w io.Writer, e *events.Event) error {
	m := message{
		Type:          e.Type,
		AggregateType: e.AggregateType,
		AggregateID:   e.AggregateID,
		Timestamp:     e.Timestamp,
	}
	m.ProjectID, _ = e.Data["project_id"].(string)

	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", e.ID, e.Type, data)
	return err
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
