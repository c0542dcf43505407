package planning

import (
	"fmt"
	"regexp"
	"strings"
)

// codePattern matches task codes such as FOO-123.
var codePattern = regexp.MustCompile(`^[A-Z]{1,4}-\d+$`)

// TaskCode represents a validated task code.
type TaskCode struct {
	value string
}

// NewTaskCode creates a TaskCode from a string value.
// Returns an error if the value does not look like TEAM-123.
func NewTaskCode(value string) (TaskCode, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return TaskCode{}, &ValidationError{Field: "code", Reason: "cannot be empty"}
	}
	if !codePattern.MatchString(value) {
		return TaskCode{}, &ValidationError{Field: "code", Reason: fmt.Sprintf("%q does not match TEAM-123", value)}
	}
	return TaskCode{value: value}, nil
}

// MustTaskCode creates a TaskCode or panics if invalid. Use only in tests.
func MustTaskCode(value string) TaskCode {
	code, err := NewTaskCode(value)
	if err != nil {
		panic(err)
	}
	return code
}

// String returns the string representation of the TaskCode.
func (c TaskCode) String() string {
	return c.value
}

// IsZero returns true if the TaskCode is empty.
func (c TaskCode) IsZero() bool {
	return c.value == ""
}

// Team returns the letter prefix of the code.
func (c TaskCode) Team() string {
	return TeamOf(c.value)
}

// ValidCode reports whether code is a well-formed task code.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// TeamOf returns the substring before the first "-". It never fails: codes
// without a separator yield "".
func TeamOf(code string) string {
	team, _, found := strings.Cut(code, "-")
	if !found {
		return ""
	}
	return team
}
