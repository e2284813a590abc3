package handler

import (
	"fmt"

	"github.com/sirpyerre/useradmin/internal/core/domain"
	"github.com/sirpyerre/useradmin/pkg/validation"
)

// echoValidator lets Echo call c.Validate(req) with the shared validator.
type echoValidator struct{}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{}
}

// Validate satisfies the echo.Validator interface. Failures wrap
// domain.ErrValidationFailed so the error handler answers 422.
func (ev *echoValidator) Validate(i any) error {
	if err := validation.Struct(i); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidationFailed, err)
	}
	return nil
}
