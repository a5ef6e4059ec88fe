// Package validation holds the request validator and the custom rules the API relies on.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"ulasan/internal/apperrors"
)

// ReservedUsername cannot be registered because it names the self-service profile route.
const ReservedUsername = "me"

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// Validator wraps validator.Validate with the platform's custom tags registered.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// New creates a Validator. Tags: username, notme, slug, notfutureyear.
func New() *Validator {
	v := &Validator{validate: validator.New(), now: time.Now}
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	mustRegister(v.validate, "username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	mustRegister(v.validate, "notme", func(fl validator.FieldLevel) bool {
		return !IsReservedUsername(fl.Field().String())
	})
	mustRegister(v.validate, "slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	mustRegister(v.validate, "notfutureyear", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(v.now().Year())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// IsReservedUsername reports whether name is the reserved literal, ignoring case.
func IsReservedUsername(name string) bool {
	return strings.EqualFold(name, ReservedUsername)
}

// Struct validates s and returns an *apperrors.Error of kind Validation on failure.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.Validation("Invalid request", map[string]string{"body": err.Error()})
	}
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Field()] = message(e)
	}
	return apperrors.Validation("Validation failed", fields)
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", e.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", e.Param())
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s characters.", e.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", e.Param())
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. It may contain only letters, numbers, and @/./+/-/_ characters."
	case "notme":
		return fmt.Sprintf("The username %q is not available.", ReservedUsername)
	case "slug":
		return "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	case "notfutureyear":
		return "Year cannot be in the future."
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", e.Param())
	}
	return fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
}
