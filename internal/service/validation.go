package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/coursehub-web/pkg/errors"
)

// NewValidator returns a validator reporting fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// validatePayload runs struct validation and converts failures into a ValidationFailed
// error carrying one message per field.
func validatePayload(v *validator.Validate, payload interface{}, message string) error {
	err := v.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation, message)
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	wrapped := appErrors.Wrap(err, appErrors.ErrValidation, message)
	wrapped.Fields = fields
	return wrapped
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return "is invalid"
	}
}
