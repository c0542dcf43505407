package storage

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/frops/planner/pkg/domain/events"
)

// InMemoryEventPublisher fans events out to in-process subscribers.
type InMemoryEventPublisher struct {
	mu       sync.RWMutex
	handlers []events.Handler
	logger   *slog.Logger
}

// NewInMemoryEventPublisher creates a publisher. A nil logger falls back to
// slog.Default().
func NewInMemoryEventPublisher(logger *slog.Logger) *InMemoryEventPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventPublisher{logger: logger}
}

// Publish calls every subscriber in registration order. A failing handler
// is logged and the rest still run.
func (p *InMemoryEventPublisher) Publish(e *events.Event) error {
	p.mu.RLock()
	handlers := slices.Clone(p.handlers)
	p.mu.RUnlock()

	for _, h := range handlers {
		if err := h(e); err != nil {
			p.logger.Warn("event handler failed", "type", e.Type, "id", e.ID, "error", err)
		}
	}
	return nil
}

func (p *InMemoryEventPublisher) Subscribe(h events.Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, h)
}
