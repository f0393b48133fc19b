// Package validation wraps go-playground/validator/v10 for config records and request bodies.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/rhedu/adstudio-server/internal/errors"
)

// FieldError is one constraint failure with a path in source-file terms.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that reports yaml (then json) field names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"yaml", "json"} {
			name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain validation error.
func (v *Validator) Validate(s any) error {
	violations, err := v.Check(s)
	if err != nil {
		return err
	}
	if len(violations) == 0 {
		return nil
	}

	details := make(map[string]string, len(violations))
	for _, fe := range violations {
		details[fe.Path] = fe.Message
	}
	return domainerrors.ValidationWithDetails("validation failed", details)
}

// Check validates a struct and returns every constraint failure.
// The returned error is non-nil only when s cannot be validated at all.
func (v *Validator) Check(s any) ([]FieldError, error) {
	err := v.v.Struct(s)
	if err == nil {
		return nil, nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil, err
	}

	out := make([]FieldError, 0, len(validationErrs))
	for _, e := range validationErrs {
		out = append(out, FieldError{
			Path:    trimRoot(e.Namespace()),
			Message: friendlyMessage(e),
		})
	}
	return out, nil
}

// trimRoot drops the struct type name validator puts at the front of a namespace,
// leaving "fields[0].max_chars".
func trimRoot(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "unique":
		if e.Param() != "" {
			return fmt.Sprintf("must not contain duplicate %s values", strings.ToLower(e.Param()))
		}
		return "must not contain duplicates"
	case "oneof":
		return "must be one of: " + e.Param()
	case "min":
		if e.Kind() == reflect.String {
			if e.Param() == "1" {
				return "must not be empty"
			}
			return "must be at least " + e.Param() + " characters"
		}
		return "must have at least " + e.Param() + " items"
	case "max":
		return "must not exceed " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "lt":
		return "must be less than " + e.Param()
	default:
		return "is invalid"
	}
}
