package validation

import (
	"errors"
	"fmt"
)

// ConfigValidator provides a fluent interface for validating option values.
// It collects all validation errors rather than failing on the first one.
type ConfigValidator struct {
	errors []error
	name   string // prefix for error messages, may be empty
}

// NewConfigValidator creates a new validator whose messages are prefixed with name
func NewConfigValidator(name string) *ConfigValidator {
	return &ConfigValidator{
		name:   name,
		errors: make([]error, 0),
	}
}

func (cv *ConfigValidator) addf(field, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if cv.name != "" {
		field = cv.name + "." + field
	}
	cv.errors = append(cv.errors, fmt.Errorf("%s: %s", field, msg))
}

// Required validates that a string field is not empty.
func (cv *ConfigValidator) Required(field, value string) *ConfigValidator {
	if value == "" {
		cv.addf(field, "required value is empty")
	}
	return cv
}

// NonNegative validates that an int field is non-negative (>= 0).
func (cv *ConfigValidator) NonNegative(field string, value int) *ConfigValidator {
	if value < 0 {
		cv.addf(field, "value %d must be non-negative", value)
	}
	return cv
}

// Positive validates that an int field is positive (> 0).
func (cv *ConfigValidator) Positive(field string, value int) *ConfigValidator {
	if value <= 0 {
		cv.addf(field, "value %d must be positive", value)
	}
	return cv
}

// OpenRangeFloat validates that lo < value < hi.
func (cv *ConfigValidator) OpenRangeFloat(field string, value, lo, hi float64) *ConfigValidator {
	if !(value > lo && value < hi) {
		cv.addf(field, "value %g must be strictly between %g and %g", value, lo, hi)
	}
	return cv
}

// Requires records an error when field is set without the option it depends on
func (cv *ConfigValidator) Requires(field string, set bool, dependency string, dependencySet bool) *ConfigValidator {
	if set && !dependencySet {
		cv.addf(field, "requires %s", dependency)
	}
	return cv
}

// Custom applies a custom validation function.
func (cv *ConfigValidator) Custom(field string, fn func() error) *ConfigValidator {
	if err := fn(); err != nil {
		if cv.name != "" {
			field = cv.name + "." + field
		}
		cv.errors = append(cv.errors, fmt.Errorf("%s: %w", field, err))
	}
	return cv
}

// When conditionally applies validations if the condition is true.
func (cv *ConfigValidator) When(condition bool, validations func(*ConfigValidator)) *ConfigValidator {
	if condition {
		validations(cv)
	}
	return cv
}

// Validate returns nil, the single error, or every error joined one per line.
func (cv *ConfigValidator) Validate() error {
	switch len(cv.errors) {
	case 0:
		return nil
	case 1:
		return cv.errors[0]
	default:
		return errors.Join(cv.errors...)
	}
}
