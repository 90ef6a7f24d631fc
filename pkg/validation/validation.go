// Package validation turns go-playground/validator failures into AppErrors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	apperrors "slotter/pkg/errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"-"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// New returns a validator that reports JSON field names.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates s and returns an AppError for the first failure.
func Struct(v *validator.Validate, s any) error {
	if err := v.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return ToAppError(Translate(validationErrs))
		}
		return apperrors.InvalidInput(err.Error())
	}
	return nil
}

func Translate(errs validator.ValidationErrors) ValidationErrors {
	var out ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "datetime":
			message = fmt.Sprintf("%s must be an ISO-8601 timestamp", err.Field())
		}

		out = append(out, ValidationError{
			Field:   err.Field(),
			Tag:     err.Tag(),
			Message: message,
		})
	}

	return out
}

// ToAppError maps the first failure: a missing field wins over a malformed one.
func ToAppError(errs ValidationErrors) error {
	if len(errs) == 0 {
		return nil
	}
	for _, e := range errs {
		if e.Tag == "required" {
			return apperrors.MissingField(e.Field)
		}
	}
	first := errs[0]
	return apperrors.InvalidInput(first.Message).WithDetails(map[string]any{
		"field":  first.Field,
		"errors": errs,
	})
}

// Timestamp parses an RFC 3339 value, normalized to UTC with millisecond precision.
func Timestamp(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, apperrors.MissingField(field)
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput(field + " must be an ISO-8601 timestamp").
			WithDetails(map[string]any{"field": field, "value": value})
	}
	return t.UTC().Truncate(time.Millisecond), nil
}
