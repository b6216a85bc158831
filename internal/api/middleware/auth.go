package middleware

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/devcamper/devcamper-api/internal/core/domain"
)

// UserKey is the echo context key holding the authenticated *domain.User.
const UserKey = "user"

// TokenCookie is the cookie the session token is mirrored into.
const TokenCookie = "token"

// UserLookup loads the account a token was issued for.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Protect validates the JWT from the Authorization header or the token
// cookie, loads the user it names and stores it under UserKey.
func Protect(jwtSecret string, users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				return notAuthorized()
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return notAuthorized()
			}

			id, _ := claims["id"].(string)
			if id == "" {
				return notAuthorized()
			}

			user, err := users.FindByID(c.Request().Context(), id)
			if err != nil {
				// A valid token for a deleted account is still not a session.
				return notAuthorized()
			}

			c.Set(UserKey, user)
			return next(c)
		}
	}
}

// UserFrom returns the user set by Protect, or nil on public routes.
func UserFrom(c echo.Context) *domain.User {
	u, _ := c.Get(UserKey).(*domain.User)
	return u
}

func bearerToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if ck, err := c.Cookie(TokenCookie); err == nil && ck.Value != "none" {
		return ck.Value
	}
	return ""
}

func notAuthorized() error {
	return domain.Errorf(domain.ErrUnauthenticated, "Not authorized to access this route")
}
