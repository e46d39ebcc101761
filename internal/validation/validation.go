// Package validation wraps go-playground/validator with readable
// field-level error messages.
package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FieldProblem describes one field that failed validation.
type FieldProblem struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// ValidateStruct validates a struct and flattens the failures into one
// readable error.
func ValidateStruct(s interface{}) error {
	if s == nil {
		return nil
	}

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validation failed: %w", err)
	}

	messages := make([]string, 0, len(ve))
	for _, e := range ve {
		messages = append(messages, describe(e))
	}
	return fmt.Errorf("%s", strings.Join(messages, "; "))
}

// Problems returns the structured failure list for an error produced by
// ValidateStruct, or nil.
func Problems(err error) []FieldProblem {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}

	problems := make([]FieldProblem, 0, len(ve))
	for _, e := range ve {
		problems = append(problems, FieldProblem{
			Field: strings.ToLower(e.Field()),
			Rule:  e.Tag(),
			Param: e.Param(),
		})
	}
	return problems
}

func describe(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s failed the %s rule", field, e.Tag())
	}
}
