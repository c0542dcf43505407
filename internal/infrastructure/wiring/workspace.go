// Package wiring assembles the workspace infrastructure and application
// services from configuration.
package wiring

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/frops/planner/internal/infrastructure/config"
	"github.com/frops/planner/internal/infrastructure/webhook"
	"github.com/frops/planner/pkg/domain/events"
	"github.com/frops/planner/pkg/domain/planning"
	"github.com/frops/planner/pkg/storage"
)

// Workspace bundles core infrastructure dependencies.
type Workspace struct {
	Root      string
	Config    *config.Config
	Logger    *slog.Logger
	Repo      planning.Repository
	Events    events.Store
	Publisher *storage.InMemoryEventPublisher
	Notifier  *webhook.Notifier
}

// NewWorkspace opens the configured repository and event store for root.
// The memory backend keeps its audit log in memory too. A nil logger uses
// slog.Default().
func NewWorkspace(root string, cfg *config.Config, logger *slog.Logger) (*Workspace, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	repo, err := storage.Open(cfg.StorageOptions(root))
	if err != nil {
		return nil, err
	}

	var store events.Store
	if storage.Backend(cfg.Storage.Backend) == storage.BackendMemory {
		store = storage.NewMemoryEventStore()
	} else {
		fileStore, err := storage.NewFileEventStore(storage.NewWorkspace(root).Dir())
		if err != nil {
			_ = repo.Close()
			return nil, fmt.Errorf("failed to open event store: %w", err)
		}
		store = fileStore
	}

	publisher := storage.NewInMemoryEventPublisher(logger)

	var notifier *webhook.Notifier
	if len(cfg.Webhooks) > 0 {
		dl, err := storage.NewWorkspace(root).ResolvePath(storage.DeadLetterFile)
		if err != nil {
			_ = repo.Close()
			return nil, err
		}
		notifier = webhook.NewNotifier(cfg.Webhooks, webhook.NewDeadLetterStore(dl), logger)
		notifier.Subscribe(publisher)
	}

	return &Workspace{
		Root:      root,
		Config:    cfg,
		Logger:    logger,
		Repo:      repo,
		Events:    store,
		Publisher: publisher,
		Notifier:  notifier,
	}, nil
}

// Close waits for pending webhook deliveries and releases the repository.
func (w *Workspace) Close() error {
	if w.Notifier != nil {
		w.Notifier.Wait()
	}
	return w.Repo.Close()
}

// VerifyIntegrity checks the audit hash chain when the store supports it.
func (w *Workspace) VerifyIntegrity() ([]string, error) {
	type verifier interface {
		VerifyIntegrity() ([]string, error)
	}
	v, ok := w.Events.(verifier)
	if !ok {
		return nil, errors.New("event store does not support integrity checks")
	}
	return v.VerifyIntegrity()
}

func actor() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "planner"
}
