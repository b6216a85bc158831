package handler

import (
	"github.com/devcamper/devcamper-api/internal/core/domain"
)

// echoValidator lets Echo call c.Validate(req) with the same rules and
// messages the domain entities use.
type echoValidator struct{}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	return domain.Validate(i)
}
