package application

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/frops/planner/pkg/domain/planning"
)

// taskObjectJSON mirrors planning.TaskInput.
const taskObjectJSON = `{
  "type": "object",
  "required": ["title", "code", "startDate", "endDate"],
  "properties": {
    "title": { "type": "string", "minLength": 1 },
    "code": { "type": "string", "pattern": "^[A-Z]{1,4}-\\d+$" },
    "startDate": { "type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$" },
    "endDate": { "type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$" },
    "projectId": { "type": "string" }
  },
  "additionalProperties": false
}`

const (
	taskSchemaJSON     = taskObjectJSON
	taskListSchemaJSON = `{"type": "array", "items": ` + taskObjectJSON + `}`
)

var (
	taskSchemaLoader     = gojsonschema.NewStringLoader(taskSchemaJSON)
	taskListSchemaLoader = gojsonschema.NewStringLoader(taskListSchemaJSON)
)

// SchemaError lists every JSON schema violation of a payload.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "invalid payload: " + strings.Join(e.Problems, "; ")
}

// Is allows errors.Is(err, planning.ErrInvalidInput).
func (e *SchemaError) Is(target error) bool {
	return target == planning.ErrInvalidInput
}

func validateSchema(schema gojsonschema.JSONLoader, payload []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return &SchemaError{Problems: []string{fmt.Sprintf("malformed JSON: %v", err)}}
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return &SchemaError{Problems: problems}
}
