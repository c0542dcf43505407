package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/frops/planner/pkg/domain/events"
)

// maxEventLine bounds a single audit log record.
const maxEventLine = 1 << 20

// FileEventStore keeps the audit log as JSON Lines under a workspace
// directory. The directory is created on the first append.
type FileEventStore struct {
	mu    sync.RWMutex
	dir   string
	chain chain
}

// NewFileEventStore opens the log in dir and resumes its hash chain.
func NewFileEventStore(dir string) (*FileEventStore, error) {
	s := &FileEventStore{dir: dir, chain: chain{now: time.Now}}

	logged, err := s.read()
	if err != nil {
		return nil, err
	}
	if n := len(logged); n > 0 {
		s.chain.advance(logged[n-1])
	}
	return s, nil
}

func (s *FileEventStore) file() string { return filepath.Join(s.dir, EventsFile) }

// Append seals the event and writes it as one line.
func (s *FileEventStore) Append(e *events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chain.seal(e)
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", e.Type, err)
	}
	if err := s.writeLine(line); err != nil {
		return err
	}
	s.chain.advance(e)
	return nil
}

func (s *FileEventStore) writeLine(line []byte) (err error) {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create %s: %w", s.dir, err)
	}
	f, err := os.OpenFile(s.file(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close audit log: %w", cerr)
		}
	}()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append to audit log: %w", err)
	}
	return nil
}

// LoadAll returns every logged event, oldest first.
func (s *FileEventStore) LoadAll() ([]*events.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read()
}

// Count returns the number of logged events.
func (s *FileEventStore) Count() (int, error) {
	logged, err := s.LoadAll()
	return len(logged), err
}

// VerifyIntegrity reports every broken link in the hash chain.
func (s *FileEventStore) VerifyIntegrity() ([]string, error) {
	logged, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	return events.Verify(logged), nil
}

func (s *FileEventStore) read() ([]*events.Event, error) {
	f, err := os.Open(s.file())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only

	var logged []*events.Event
	sc := bufio.NewScanner(f)
	sc.Buffer(nil, maxEventLine)
	for lineNo := 1; sc.Scan(); lineNo++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		e := new(events.Event)
		if err := json.Unmarshal(sc.Bytes(), e); err != nil {
			return nil, fmt.Errorf("audit log line %d: %w", lineNo, err)
		}
		logged = append(logged, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	return logged, nil
}
