package storage

import (
	"time"

	"github.com/google/uuid"

	"github.com/frops/planner/pkg/domain/events"
)

// chain links appended events by hash. Callers hold their own lock.
type chain struct {
	head string
	now  func() time.Time
}

// seal fills in the ID and timestamp when missing and links e to the head.
func (c *chain) seal(e *events.Event) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = c.now().UTC()
	}
	e.PrevHash = c.head
	e.Hash = e.CalculateHash()
}

func (c *chain) advance(e *events.Event) { c.head = e.Hash }
