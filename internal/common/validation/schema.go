// Package validation checks Zeebe job variables against the JSON schemas
// declared in the activity registry.
package validation

import (
	"fmt"
	"regexp"
	"sort"

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

// ValidateJSON validates a raw JSON document. A nil or empty schema accepts
// everything. The error is set only when the schema or document cannot be
// loaded.
func ValidateJSON(schema map[string]interface{}, document string) (*ValidationResult, error) {
	return validate(schema, gojsonschema.NewStringLoader(document))
}

// ValidateObject validates an already decoded Go value.
func ValidateObject(schema map[string]interface{}, document interface{}) (*ValidationResult, error) {
	return validate(schema, gojsonschema.NewGoLoader(document))
}

func validate(schema map[string]interface{}, doc gojsonschema.JSONLoader) (*ValidationResult, error) {
	if len(schema) == 0 {
		return &ValidationResult{Valid: true}, nil
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), doc)
	if err != nil {
		return nil, fmt.Errorf("schema validation could not run: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "(root)" {
			if missing, ok := desc.Details()["property"].(string); ok {
				field = missing
			}
		}
		out.Errors = append(out.Errors, ValidationError{
			Field:   field,
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}
	sort.SliceStable(out.Errors, func(i, j int) bool {
		return out.Errors[i].Field < out.Errors[j].Field
	})
	return out, nil
}

func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return messages
}

func (vr *ValidationResult) HasErrors(field string) bool {
	for _, e := range vr.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)
)

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone accepts E.164 numbers, the only format SNS delivers to.
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}
