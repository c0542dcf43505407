package events

import (
	"slices"
	"time"
)

// Store persists events in append order.
type Store interface {
	// Append assigns the event an ID, timestamp and hash, then saves it.
	Append(event *Event) error

	// LoadAll returns all events in chronological order.
	LoadAll() ([]*Event, error)

	// Count returns the total number of events.
	Count() (int, error)
}

// Handler processes published events.
type Handler func(event *Event) error

// Publisher broadcasts events to in-process subscribers.
type Publisher interface {
	Publish(event *Event) error
	Subscribe(handler Handler)
}

// Query filters a loaded event list.
type Query struct {
	AggregateType string
	AggregateID   string
	Types         []string
	Since         time.Time
	Limit         int
}

// Matches reports whether e passes every non-empty filter.
func (q Query) Matches(e *Event) bool {
	if q.AggregateType != "" && e.AggregateType != q.AggregateType {
		return false
	}
	if q.AggregateID != "" && e.AggregateID != q.AggregateID {
		return false
	}
	if len(q.Types) > 0 && !slices.Contains(q.Types, e.Type) {
		return false
	}
	if !q.Since.IsZero() && e.Timestamp.Before(q.Since) {
		return false
	}
	return true
}

// Filter returns the matching events, keeping only the newest Limit.
func (q Query) Filter(evts []*Event) []*Event {
	var result []*Event
	for _, e := range evts {
		if q.Matches(e) {
			result = append(result, e)
		}
	}
	if q.Limit > 0 && len(result) > q.Limit {
		result = result[len(result)-q.Limit:]
	}
	return result
}
