// Package validation collects field-level problems as short, stable codes
// that clients can map to messages.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/form"
	"github.com/go-playground/validator/v10"
)

// Violations maps a request field name to an error code.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records code for field unless the field already has one.
func (v Violations) Add(field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}

// Required flags a blank value.
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
	}
}

// NewValidator returns a validator that reports fields by their form (then json) tag.
func NewValidator() *validator.Validate {
	vd := validator.New(validator.WithRequiredStructEnabled())
	vd.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return vd
}

// NewDecoder returns a query/form decoder reading the `form` struct tag.
func NewDecoder() *form.Decoder {
	return form.NewDecoder()
}

// FromValidator copies validator failures into v. Errors that are not
// validation failures are returned unchanged.
func FromValidator(err error, v Violations) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		v.Add(fe.Field(), codeFor(fe.Tag()))
	}
	return nil
}

// FromDecoder copies form decoding failures (wrong type, unparsable number) into v.
func FromDecoder(err error, v Violations) error {
	if err == nil {
		return nil
	}
	var derrs form.DecodeErrors
	if !errors.As(err, &derrs) {
		return err
	}
	for field := range derrs {
		v.Add(field, "invalid_format")
	}
	return nil
}

func codeFor(tag string) string {
	switch tag {
	case "required", "required_with", "required_without":
		return "required"
	case "min", "max", "gte", "lte", "gt", "lt":
		return "out_of_range"
	case "oneof":
		return "invalid_choice"
	case "datetime":
		return "invalid_format"
	default:
		return "invalid"
	}
}
