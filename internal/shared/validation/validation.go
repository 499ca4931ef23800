// Package validation configures the request validator shared by the client
// and the development backend, and renders its failures as API field errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/Apurer/pharmacy-dispatch/internal/shared/errors"
	"github.com/Apurer/pharmacy-dispatch/internal/shared/wire"
)

// New returns a validator that names fields by their JSON name and treats
// wire.Time as a plain timestamp.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if t, ok := field.Interface().(wire.Time); ok {
			return t.Time
		}
		return nil
	}, wire.Time{})
	return v
}

// FieldErrors converts a validator failure into body field errors. ok is
// false when err did not come from field validation.
func FieldErrors(err error) (fields []apperrors.FieldError, ok bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	fields = make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		loc := []any{"body"}
		for _, part := range strings.Split(fe.Namespace(), ".")[1:] {
			loc = append(loc, part)
		}
		fields = append(fields, apperrors.FieldError{Loc: loc, Msg: message(fe), Type: "value_error." + fe.Tag()})
	}
	return fields, true
}

// Check validates payload and reports failures as a local validation error.
func Check(v *validator.Validate, payload any) error {
	err := v.Struct(payload)
	if err == nil {
		return nil
	}
	fields, ok := FieldErrors(err)
	if !ok {
		return fmt.Errorf("validate request: %w", err)
	}
	return apperrors.NewValidationError(fields)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "gte":
		return "ensure this value is greater than or equal to " + fe.Param()
	case "gt":
		return "ensure this value is greater than " + fe.Param()
	case "min":
		return "ensure this value has at least " + fe.Param() + " items"
	case "oneof":
		return "value is not one of " + fe.Param()
	default:
		return fmt.Sprintf("failed on the %q rule", fe.Tag())
	}
}
