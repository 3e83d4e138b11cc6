package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule on one request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// DefaultMessages maps validation tags to client facing messages.
var DefaultMessages = map[string]string{
	"required": "Field is required",
	"min":      "Value is too short",
	"max":      "Value is too long",
}

// Register reports field names by their json tag and installs the custom
// validation functions.
func Register(v *validator.Validate, custom map[string]validator.Func) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register validation %q: %w", tag, err)
		}
	}
	return nil
}

// Translate flattens validation errors found in err's chain. It returns nil
// when err holds none.
func Translate(err error, messages map[string]string) []FieldError {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return nil
	}
	if messages == nil {
		messages = DefaultMessages
	}

	fields := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		msg := messages[e.Tag()]
		if msg == "" {
			msg = fmt.Sprintf("failed on the '%s' rule", e.Tag())
		}
		fields = append(fields, FieldError{
			Field:   fieldPath(e.Namespace()),
			Message: msg,
		})
	}
	return fields
}

// fieldPath drops the struct name from a namespace like "Request.values[x]".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
