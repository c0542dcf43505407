package watch

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/frops/planner/pkg/domain/events"
)

// PublishTo returns a change callback that broadcasts each batch as a
// workspace.changed event. The events are not written to the audit log.
func PublishTo(publisher events.Publisher, workspaceID string, logger *slog.Logger) func([]Change) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(batch []Change) {
		files := make([]any, len(batch))
		for i, c := range batch {
			files[i] = filepath.Base(c.Path)
		}

		e := events.New(events.TypeWorkspaceChanged, events.AggregateWorkspace, workspaceID, map[string]any{
			"files": files,
		})
		e.ID = uuid.New().String()
		e.Timestamp = time.Now().UTC()
		e.Actor = "watcher"

		if err := publisher.Publish(e); err != nil {
			logger.Warn("failed to publish workspace change", "error", err)
		}
	}
}
