// Package events defines the audit events recorded for workspace changes.
package events

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Event is one entry of the append-only audit log. Events are chained by
// hash so that edits to earlier entries can be detected.
type Event struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	AggregateType string         `json:"aggregate_type"`
	AggregateID   string         `json:"aggregate_id"`
	Timestamp     time.Time      `json:"timestamp"`
	Actor         string         `json:"actor"`
	Data          map[string]any `json:"data,omitempty"`
	PrevHash      string         `json:"prev_hash,omitempty"`
	Hash          string         `json:"hash,omitempty"`
}

// New creates an unsaved event. The store assigns ID, timestamp and hashes.
func New(eventType, aggregateType, aggregateID string, data map[string]any) *Event {
	return &Event{
		Type:          eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Data:          data,
	}
}

// hashInput is the part of an event covered by Hash. encoding/json writes
// map keys in sorted order, so Data hashes the same after a round trip.
type hashInput struct {
	Prev          string         `json:"prev"`
	ID            string         `json:"id"`
	Timestamp     string         `json:"ts"`
	Type          string         `json:"type"`
	AggregateType string         `json:"agg_type"`
	AggregateID   string         `json:"agg_id"`
	Actor         string         `json:"actor"`
	Data          map[string]any `json:"data,omitempty"`
}

// CalculateHash returns the hex SHA-256 of the event content and its link to
// the previous event.
func (e *Event) CalculateHash() string {
	in := hashInput{
		Prev:          e.PrevHash,
		ID:            e.ID,
		Timestamp:     e.Timestamp.UTC().Format(time.RFC3339Nano),
		Type:          e.Type,
		AggregateType: e.AggregateType,
		AggregateID:   e.AggregateID,
		Actor:         e.Actor,
	}
	if len(e.Data) > 0 {
		in.Data = e.Data
	}
	b, err := json.Marshal(in)
	if err != nil {
		// The store fails to marshal such an event too.
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Verify walks the log in order and describes every event that does not
// link to its predecessor or whose content no longer matches its hash.
func Verify(logged []*Event) []string {
	var problems []string
	prev := ""
	for i, e := range logged {
		if e.PrevHash != prev {
			problems = append(problems, fmt.Sprintf("event %d (%s) does not follow event %d", i, e.ID, i-1))
		}
		if e.Hash != e.CalculateHash() {
			problems = append(problems, fmt.Sprintf("event %d (%s) was modified after it was written", i, e.ID))
		}
		prev = e.Hash
	}
	return problems
}

const (
	TypeProjectCreated   = "project.created"
	TypeTaskCreated      = "task.created"
	TypeTaskDeleted      = "task.deleted"
	TypeTasksImported    = "task.imported"
	TypeWorkspaceChanged = "workspace.changed"
)

const (
	AggregateProject   = "project"
	AggregateTask      = "task"
	AggregateWorkspace = "workspace"
)
