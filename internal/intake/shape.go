package intake

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// FieldProblem describes one offending field of a malformed body.
type FieldProblem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ShapeError reports a body that is not a flat object of scalars. It is a
// transport-level rejection, distinct from scoring.ValidationError.
type ShapeError struct {
	Problems []FieldProblem
	Cause    error
}

func (e *ShapeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed application: %v", e.Cause)
	}
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.Field + ": " + p.Message
	}
	return "malformed application: " + strings.Join(parts, "; ")
}

func (e *ShapeError) Unwrap() error {
	return e.Cause
}

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

// applicationSchema requires every known key to be a string, a number or null.
// Unknown keys are allowed and ignored.
func applicationSchema() map[string]any {
	props := make(map[string]any, len(Keys()))
	for _, key := range Keys() {
		props[key] = map[string]any{"type": []any{"string", "number", "null"}}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
	}
}

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewGoLoader(applicationSchema()))
	})
	return schema, schemaErr
}

// CheckShape validates the structure of a decoded body.
func CheckShape(raw map[string]any) error {
	if raw == nil {
		return &ShapeError{Problems: []FieldProblem{{Field: "(root)", Message: "body must be a JSON object"}}}
	}

	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile application schema: %w", err)
	}

	result, err := s.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return &ShapeError{Cause: err}
	}
	if result.Valid() {
		return nil
	}

	problems := make([]FieldProblem, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		problems = append(problems, FieldProblem{Field: field, Message: desc.Description()})
	}
	return &ShapeError{Problems: problems}
}
