package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/devcamper/devcamper-api/internal/core/domain"
)

type stubUsers map[string]*domain.User

func (s stubUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, domain.NotFound("user", id)
}

var alice = &domain.User{ID: "u1", Name: "Alice", Email: "alice@example.com", Role: domain.RolePublisher}

func signToken(t *testing.T, secret, id string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  id,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func runProtect(t *testing.T, req *http.Request) (*domain.User, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got *domain.User
	handler := Protect("secret", stubUsers{"u1": alice})(func(c echo.Context) error {
		got = UserFrom(c)
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	return got, err
}

func TestProtect_BearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signToken(t, "secret", "u1", time.Hour))

	user, err := runProtect(t, req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if user == nil || user.ID != "u1" {
		t.Fatalf("expected user u1 in context, got %+v", user)
	}
}

func TestProtect_Cookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: signToken(t, "secret", "u1", time.Hour)})

	user, err := runProtect(t, req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if user == nil || user.Email != "alice@example.com" {
		t.Fatalf("expected alice in context, got %+v", user)
	}
}

func TestProtect_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
	}{
		{"missing credential", "", ""},
		{"wrong scheme", "Token abc", ""},
		{"garbage token", "Bearer not-a-token", ""},
		{"wrong secret", "Bearer " + signToken(t, "other", "u1", time.Hour), ""},
		{"expired", "Bearer " + signToken(t, "secret", "u1", -time.Minute), ""},
		{"deleted user", "Bearer " + signToken(t, "secret", "gone", time.Hour), ""},
		{"logged out cookie", "", "none"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tt.cookie})
			}

			user, err := runProtect(t, req)
			if !errors.Is(err, domain.ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
			if user != nil {
				t.Fatalf("next handler should not run")
			}
			if err.Error() != "Not authorized to access this route" {
				t.Errorf("unexpected message %q", err.Error())
			}
		})
	}
}

func TestProtect_RejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"id": "u1"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed)

	if _, err := runProtect(t, req); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
