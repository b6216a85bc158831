package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/devcamper/devcamper-api/internal/core/domain"
)

// Authorize enforces role-based access control. It must run after Protect.
func Authorize(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := UserFrom(c)
			if user == nil {
				return notAuthorized()
			}
			if _, ok := allowed[user.Role]; !ok {
				return domain.Errorf(domain.ErrForbidden, "User role %s is not authorized to access this route", user.Role)
			}
			return next(c)
		}
	}
}
