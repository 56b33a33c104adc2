// package validation provides helper functions for request data validation.
// It uses the go-playground/validator library and includes custom validation rules.
package validation

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate = validator.New()
	idRe     = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// init registers custom validation rules with the validator instance.
// This function runs automatically when the package is imported.
func init() {
	// Report fields by their JSON names, which is what clients send.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}

		return name
	})

	// custom_id keeps caller, donor and request ids to letters, digits,
	// hyphens and underscores.
	if err := validate.RegisterValidation("custom_id", func(fl validator.FieldLevel) bool {
		if fl.Field().String() == "" {
			// Allow empty strings to be handled by the 'required' tag.
			return true
		}

		return idRe.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("failed to register custom validation: %v", err))
	}

	// probability accepts a finite number in [0, 1].
	if err := validate.RegisterValidation("probability", func(fl validator.FieldLevel) bool {
		v := fl.Field().Float()
		return !math.IsNaN(v) && v >= 0 && v <= 1
	}); err != nil {
		panic(fmt.Sprintf("failed to register custom validation: %v", err))
	}
}

// ValidationError is a custom error type that holds a slice of validation error messages.
type ValidationError struct {
	Errors []string
}

// Error returns a single string concatenating all validation error messages.
func (v *ValidationError) Error() string {
	return strings.Join(v.Errors, ", ")
}

// ValidateStruct performs validation on a given struct based on its validation tags.
// If validation fails, it returns a *ValidationError with user-friendly messages.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Errors: []string{err.Error()}}
	}

	validationErrors := make([]string, 0, len(fieldErrors))

	for _, fe := range fieldErrors {
		var message string

		switch fe.Tag() {
		case "custom_id":
			message = fmt.Sprintf(
				"field '%s' must contain only letters, numbers, hyphens, and underscores",
				fe.Field(),
			)
		case "probability":
			message = fmt.Sprintf("field '%s' must be between 0 and 1", fe.Field())
		case "oneof":
			message = fmt.Sprintf("field '%s' must be one of [%s]", fe.Field(), fe.Param())
		default:
			// Default message for other standard validation tags like 'required', 'min', 'max', etc.
			message = fmt.Sprintf(
				"field '%s' failed on the '%s' tag",
				fe.Field(),
				fe.Tag(),
			)
		}

		validationErrors = append(validationErrors, message)
	}

	return &ValidationError{Errors: validationErrors}
}
