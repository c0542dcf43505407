package watch

import (
	"path/filepath"
)

// Filter selects which paths count as workspace changes using glob
// patterns matched against the base name and the full path.
type Filter struct {
	Include []string
	Exclude []string
}

// DefaultFilter accepts the data documents and databases and ignores the
// audit log, dead letters, temp files and database journals.
func DefaultFilter() Filter {
	return Filter{
		Include: []string{"*.json", "*.db", "*.yaml"},
		Exclude: []string{"*.tmp", ".*", "*.jsonl", "*-journal", "*-wal", "*-shm"},
	}
}

// Matches reports whether path passes the filter. Excludes win over
// includes and an empty include list accepts everything.
func (f Filter) Matches(path string) bool {
	if matchAny(f.Exclude, path) {
		return false
	}
	return len(f.Include) == 0 || matchAny(f.Include, path)
}

func matchAny(patterns []string, path string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, path); matched {
			return true
		}
	}
	return false
}
