package webhook

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/frops/planner/pkg/domain/events"
)

// maxDeadLetterLine bounds a single JSONL entry; payloads carry whole events.
const maxDeadLetterLine = 4 << 20

// DeadLetterStore keeps failed deliveries in a JSONL file, one entry per
// line, oldest first.
type DeadLetterStore struct {
	mu   sync.Mutex
	path string
}

func NewDeadLetterStore(path string) *DeadLetterStore {
	return &DeadLetterStore{path: path}
}

func (s *DeadLetterStore) Path() string { return s.path }

// Append adds one entry to the end of the file.
func (s *DeadLetterStore) Append(dl events.DeadLetter) error {
	line, err := json.Marshal(dl)
	if err != nil {
		return fmt.Errorf("marshal dead letter: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create dead letter dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open dead letters: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("append dead letter: %w", err)
	}
	return f.Close()
}

// ReadAll returns every entry. Lines that do not decode are skipped, so a
// torn write never hides the rest of the file.
func (s *DeadLetterStore) ReadAll() ([]events.DeadLetter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Update runs fn over the current entries and stores what it returns,
// holding the lock so concurrent Appends are not lost.
func (s *DeadLetterStore) Update(fn func([]events.DeadLetter) []events.DeadLetter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read()
	if err != nil {
		return err
	}
	return s.write(fn(current))
}

func (s *DeadLetterStore) read() ([]events.DeadLetter, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dead letters: %w", err)
	}

	var entries []events.DeadLetter
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), maxDeadLetterLine)
	for sc.Scan() {
		var dl events.DeadLetter
		if json.Unmarshal(sc.Bytes(), &dl) == nil {
			entries = append(entries, dl)
		}
	}
	return entries, sc.Err()
}

// write swaps the file contents in one rename. An empty list removes the
// file.
func (s *DeadLetterStore) write(entries []events.DeadLetter) error {
	if len(entries) == 0 {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove dead letters: %w", err)
		}
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, dl := range entries {
		if err := enc.Encode(dl); err != nil {
			return fmt.Errorf("marshal dead letter: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write dead letters: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace dead letters: %w", err)
	}
	return nil
}
