package validators

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator adapts go-playground/validator to echo's Validator interface
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a CustomValidator with the project's extra rules registered
func NewValidator() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// notblank: the string must contain something other than whitespace.
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(err)
	}
	return &CustomValidator{validator: v}
}

// Validate runs struct validation on i
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
