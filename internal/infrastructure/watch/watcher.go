package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Op is the kind of filesystem change.
type Op string

const (
	OpCreate Op = "create"
	OpWrite  Op = "write"
	OpRemove Op = "remove"
	OpRename Op = "rename"
)

// Change is a single filesystem change.
type Change struct {
	Path string `json:"path"`
	Op   Op     `json:"op"`
}

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	Filter   Filter
	Logger   *slog.Logger
}

// Watcher reports changes to files in a set of directories.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	filter   Filter
	logger   *slog.Logger
	onChange func([]Change)
}

// New creates a watcher that calls onChange with each debounced batch.
func New(opts Options, onChange func([]Change)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Watcher{
		fs:       fw,
		debounce: opts.Debounce,
		filter:   opts.Filter,
		logger:   opts.Logger.With("component", "watch"),
		onChange: onChange,
	}, nil
}

// Add watches dir. Only direct children are reported.
func (w *Watcher) Add(dir string) error {
	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	return nil
}

// Run starts the event loop. It blocks until ctx is cancelled and closes
// the underlying watcher on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	debouncer := NewDebouncer(w.debounce, w.onChange)
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			op := opOf(event.Op)
			if op == "" || !w.filter.Matches(event.Name) {
				continue
			}
			w.logger.Debug("file changed", "path", event.Name, "op", op)
			debouncer.Add(Change{Path: event.Name, Op: op})

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func opOf(op fsnotify.Op) Op {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreate
	case op.Has(fsnotify.Write):
		return OpWrite
	case op.Has(fsnotify.Remove):
		return OpRemove
	case op.Has(fsnotify.Rename):
		return OpRename
	default:
		return ""
	}
}
