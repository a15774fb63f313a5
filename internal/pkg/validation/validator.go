// Package validation wraps go-playground/validator so that struct tag failures
// surface as *domain.ValidationError keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/portfolio/workitems-api/internal/core/domain"
)

// Validator is safe for concurrent use. It also satisfies echo.Validator.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the work-item tags registered:
//
//	notblank           string must contain a non-space character
//	workitem_status    value is a known domain.WorkItemStatus
//	workitem_priority  value is a known domain.WorkItemPriority
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "workitem_status", func(fl validator.FieldLevel) bool {
		return domain.WorkItemStatus(fl.Field().Int()).Valid()
	})
	mustRegister(v, "workitem_priority", func(fl validator.FieldLevel) bool {
		return domain.WorkItemPriority(fl.Field().Int()).Valid()
	})

	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// Struct validates i and returns nil or a *domain.ValidationError.
func (val *Validator) Struct(i any) error {
	err := val.v.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	out := domain.NewValidationError()
	for _, fe := range ve {
		out.Add(fe.Field(), fieldError(fe))
	}
	return out
}

// Validate satisfies the echo.Validator interface.
func (val *Validator) Validate(i any) error {
	return val.Struct(i)
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "workitem_status":
		return field + " must be one of: Todo, InProgress, Done"
	case "workitem_priority":
		return field + " must be one of: Low, Medium, High"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
