package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/devcamper/devcamper-api/internal/api/middleware"
	"github.com/devcamper/devcamper-api/internal/core/domain"
)

// currentUser returns the account injected by the Protect middleware and
// fails fast when a protected handler is mounted without it.
func currentUser(c echo.Context) (*domain.User, error) {
	u := middleware.UserFrom(c)
	if u == nil {
		return nil, domain.Errorf(domain.ErrUnauthenticated, "Not authorized to access this route")
	}
	return u, nil
}

// bind decodes the request body, reporting malformed payloads as a
// validation error.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Errorf(domain.ErrValidation, "Invalid request payload")
	}
	return nil
}

// bindAndValidate binds req and runs its validate tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := bind(c, req); err != nil {
		return err
	}
	return c.Validate(req)
}
