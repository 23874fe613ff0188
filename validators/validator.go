package validators

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator plugs go-playground/validator into echo's Context.Validate
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates the validator installed on the echo instance
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate checks the validate tags of i
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
