package application

import (
	"fmt"
	"log/slog"

	"github.com/frops/planner/pkg/domain/events"
)

// AuditService records domain events and fans them out to subscribers.
type AuditService struct {
	store     events.Store
	publisher events.Publisher
	actor     string
	logger    *slog.Logger
}

// NewAuditService creates an audit service. publisher may be nil.
func NewAuditService(store events.Store, publisher events.Publisher, actor string, logger *slog.Logger) *AuditService {
	if logger == nil {
		logger = slog.Default()
	}
	if actor == "" {
		actor = "planner"
	}
	return &AuditService{store: store, publisher: publisher, actor: actor, logger: logger}
}

// Record appends the event and then publishes it. Publishing failures are
// logged; a failed append is returned.
func (s *AuditService) Record(event *events.Event) error {
	if event.Actor == "" {
		event.Actor = s.actor
	}
	if err := s.store.Append(event); err != nil {
		return fmt.Errorf("record %s event: %w", event.Type, err)
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(event); err != nil {
			s.logger.Warn("publish event failed", "type", event.Type, "error", err)
		}
	}
	return nil
}

// History returns recorded events matching q.
func (s *AuditService) History(q events.Query) ([]*events.Event, error) {
	all, err := s.store.LoadAll()
	if err != nil {
		return nil, err
	}
	return q.Filter(all), nil
}

// VerifyIntegrity checks the event hash chain.
func (s *AuditService) VerifyIntegrity() ([]string, error) {
	all, err := s.store.LoadAll()
	if err != nil {
		return nil, err
	}
	return events.Verify(all), nil
}
