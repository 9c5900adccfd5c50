package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/graph-analysis/pkg/logging"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxAttributeLength = 64

	// Regular expressions
	attributePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

	// Output formats gonum/plot can save, by extension
	imageExtensions = map[string]bool{
		".png": true, ".svg": true, ".pdf": true, ".jpg": true, ".jpeg": true,
		".eps": true, ".tif": true, ".tiff": true,
	}
)

func init() {
	validate = validator.New()

	// Report yaml keys rather than Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister("attr", func(fl validator.FieldLevel) bool {
		return ValidateAttributeName(fl.Field().String()) == nil
	})
	mustRegister("loglevel", func(fl validator.FieldLevel) bool {
		_, err := logging.ParseLevel(fl.Field().String())
		return err == nil
	})
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// ValidateStruct checks v against its `validate` struct tags
func ValidateStruct(v any) error {
	if v == nil {
		return errors.New("value to validate cannot be nil")
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateAttributeName checks a node or edge attribute key. Keys end up in
// GML output, so they must be plain identifiers.
func ValidateAttributeName(name string) error {
	if name == "" {
		return errors.New("attribute name cannot be empty")
	}
	if len(name) > MaxAttributeLength {
		return fmt.Errorf("attribute name '%s' exceeds maximum length of %d characters", name, MaxAttributeLength)
	}
	if !attributePattern.MatchString(name) {
		return fmt.Errorf("attribute name '%s' is invalid (must start with letter or underscore, followed by alphanumeric or underscore)", name)
	}
	return nil
}

// ValidateImagePath checks that path names an image format the plotter can write
func ValidateImagePath(path string) error {
	if path == "" {
		return errors.New("image path cannot be empty")
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !imageExtensions[ext] {
		return fmt.Errorf("unsupported image format %q (use png, svg, pdf, jpg, eps or tif)", ext)
	}
	return nil
}

// ValidateGIFPath checks that path ends in .gif
func ValidateGIFPath(path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".gif") {
		return fmt.Errorf("animation path %q must end in .gif", path)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := fieldPath(e.Namespace())
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min", "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max", "lte":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, param)
		case "lt":
			return fmt.Errorf("%s: must be less than %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, param)
		case "attr":
			return fmt.Errorf("%s: %w", field, ValidateAttributeName(fmt.Sprint(e.Value())))
		case "loglevel":
			return fmt.Errorf("%s: unknown log level %q", field, e.Value())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}

// fieldPath drops the root struct name from a namespace like "Config.plot.width"
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}
