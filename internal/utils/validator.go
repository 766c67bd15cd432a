// internal/utils/validator.go
package utils

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate = newValidator()

	usernamePattern  = regexp.MustCompile(`^[a-zA-Z0-9_.\-]+$`)
	sizeLabelPattern = regexp.MustCompile(`^[\p{L}\p{N} ./\-]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("username", validateUsername)
	v.RegisterValidation("size_label", validateSizeLabel)
	v.RegisterValidation("not_blank", validateNotBlank)
	return v
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateUsername(fl validator.FieldLevel) bool {
	username := fl.Field().String()

	if len(username) < 3 || len(username) > 150 {
		return false
	}

	return usernamePattern.MatchString(username)
}

func validateSizeLabel(fl validator.FieldLevel) bool {
	size := strings.TrimSpace(fl.Field().String())
	if size == "" || len(size) > 20 {
		return false
	}
	return sizeLabelPattern.MatchString(size)
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "not_blank":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gte":
		return e.Field() + " must be greater than or equal to " + e.Param()
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "username":
		return "Username must be 3-150 characters and contain only letters, numbers, dots, dashes and underscores"
	case "size_label":
		return "Size must be 1-20 characters of letters, digits, spaces, dots, slashes or dashes"
	case "eqfield":
		return e.Field() + " must match " + e.Param()
	default:
		return e.Field() + " is invalid"
	}
}
