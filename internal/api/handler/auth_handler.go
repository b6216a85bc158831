package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/devcamper/devcamper-api/internal/api/metrics"
	"github.com/devcamper/devcamper-api/internal/api/middleware"
	"github.com/devcamper/devcamper-api/internal/core/domain"
	"github.com/devcamper/devcamper-api/internal/core/ports"
)

// CookieConfig controls the session cookie that mirrors the bearer token.
type CookieConfig struct {
	TTL    time.Duration
	Secure bool
}

type AuthHandler struct {
	authService ports.AuthService
	cookie      CookieConfig
	publicURL   string
	now         func() time.Time
}

func NewAuthHandler(authService ports.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie, now: time.Now}
}

// WithPublicURL makes mailed links use base instead of the request's Host
// header, which the client controls.
func (h *AuthHandler) WithPublicURL(base string) *AuthHandler {
	h.publicURL = strings.TrimRight(base, "/")
	return h
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), toRegisterInput(req))
	if err != nil {
		return err
	}
	metrics.AuthEventsTotal.WithLabelValues("register").Inc()
	return h.sendToken(c, res)
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Email == "" || req.Password == "" {
		return domain.Errorf(domain.ErrValidation, "Please provide an email and password")
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.AuthEventsTotal.WithLabelValues("login_failed").Inc()
		return err
	}
	metrics.AuthEventsTotal.WithLabelValues("login").Inc()
	return h.sendToken(c, res)
}

// Logout clears the session cookie.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dataResponse
// @Router       /auth/logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "none",
		Path:     "/",
		Expires:  h.now().Add(10 * time.Second),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return respond(c, http.StatusOK, emptyData)
}

// Me returns the logged-in user.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dataResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	user, err := h.authService.Me(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user)
}

// UpdateDetails changes the logged-in user's name and email.
//
// @Summary      Update name and email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateDetailsRequest  true  "Fields to change"
// @Success      200   {object}  dataResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/updatedetails [put]
func (h *AuthHandler) UpdateDetails(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req updateDetailsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.UpdateDetails(c.Request().Context(), actor.ID, req.Name, req.Email)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user)
}

// UpdatePassword re-verifies the current password and issues a fresh token.
//
// @Summary      Update password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updatePasswordRequest  true  "Current and new password"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/updatepassword [put]
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req updatePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.UpdatePassword(c.Request().Context(), actor.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}
	return h.sendToken(c, res)
}

// ForgotPassword mails a reset link.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  dataResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/forgotpassword [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	base := h.publicURL
	if base == "" {
		base = c.Scheme() + "://" + c.Request().Host
	}
	resetURL := base + "/api/v1/auth/resetpassword"
	if err := h.authService.ForgotPassword(c.Request().Context(), req.Email, resetURL); err != nil {
		return err
	}
	metrics.AuthEventsTotal.WithLabelValues("forgot_password").Inc()
	return respond(c, http.StatusOK, "Email sent")
}

// ResetPassword sets a new password using a mailed reset token.
//
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        resettoken  path      string                true  "Reset token from the email"
// @Param        body        body      resetPasswordRequest  true  "New password"
// @Success      200         {object}  tokenResponse
// @Failure      400         {object}  errorResponse
// @Router       /auth/resetpassword/{resettoken} [put]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.ResetPassword(c.Request().Context(), c.Param("resettoken"), req.Password)
	if err != nil {
		return err
	}
	metrics.AuthEventsTotal.WithLabelValues("reset_password").Inc()
	return h.sendToken(c, res)
}

// sendToken mirrors the token into an httpOnly cookie and returns it in the
// body.
func (h *AuthHandler) sendToken(c echo.Context, res *ports.AuthResult) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    res.Token,
		Path:     "/",
		Expires:  h.now().Add(h.cookie.TTL),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, tokenResponse{Success: true, Token: res.Token})
}
