// Package validation coerces and checks request payloads before anything
// reaches a repository. Every failure is reported as a *FieldError naming the
// first offending field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is a single validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"error"`
}

func (e *FieldError) Error() string {
	return e.Message
}

var skuPattern = regexp.MustCompile(`^[A-Z0-9_]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names so FieldError.Field matches the wire format
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("sku", func(fl validator.FieldLevel) bool {
		return skuPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return v
}

// messageFunc renders a validator failure for one field.
type messageFunc func(fe validator.FieldError) string

// fieldErrors runs the struct validator and converts every failure, in
// struct field order, into a *FieldError using messages.
func fieldErrors(s any, messages messageFunc) []*FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []*FieldError{{Message: "invalid input"}}
	}

	out := make([]*FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, &FieldError{Field: fe.Field(), Message: messages(fe)})
	}
	return out
}

// firstError is fieldErrors reduced to its first entry.
func firstError(s any, messages messageFunc) *FieldError {
	if errs := fieldErrors(s, messages); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

var labels = map[string]string{
	"name":      "Name",
	"email":     "Email",
	"password":  "Password",
	"storeName": "Store name",
}

// genericMessage covers the tags used by the credential payloads.
func genericMessage(fe validator.FieldError) string {
	label, ok := labels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", label, fe.Param())
	default:
		return label + " is invalid"
	}
}
