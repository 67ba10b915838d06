package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Tag     string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "min", "gte":
		return fmt.Sprintf("%s is below its minimum (got %v)", e.Field, e.Value)
	case "max", "lte":
		return fmt.Sprintf("%s is above its maximum (got %v)", e.Field, e.Value)
	default:
		return fmt.Sprintf("%s failed validation", e.Field)
	}
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	messages := make([]string, len(e))
	for i, err := range e {
		messages[i] = err.Error()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

var validate = validator.New()

// Validate checks the configuration's struct tags and returns
// ValidationErrors describing every violated field.
func (c *SimulationConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Field: "config", Message: err.Error()}
	}

	var errs ValidationErrors
	for _, fieldErr := range validationErrs {
		errs = append(errs, ValidationError{
			Field: fieldErr.Field(),
			Tag:   fieldErr.Tag(),
			Value: fieldErr.Value(),
		})
	}
	return errs
}
