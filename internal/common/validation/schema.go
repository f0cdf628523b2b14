package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (r *ValidationResult) Error() string {
	if r == nil || len(r.Errors) == 0 {
		return ""
	}
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

// Validate checks any JSON-compatible value against a JSON schema given as a Go map.
func Validate(schema map[string]interface{}, value interface{}) (*ValidationResult, error) {
	if len(schema) == 0 {
		return &ValidationResult{Valid: true}, nil
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(value))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out, nil
}

// ValidateInput validates a worker's decoded job variables.
func ValidateInput(input map[string]interface{}, schema map[string]interface{}) (*ValidationResult, error) {
	if input == nil {
		input = map[string]interface{}{}
	}
	return Validate(schema, input)
}

// Object builds an object schema with the given required keys.
func Object(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func NonEmptyString() map[string]interface{} {
	return map[string]interface{}{"type": "string", "minLength": 1}
}
