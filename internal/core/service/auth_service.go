package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/devcamper/devcamper-api/internal/core/domain"
	"github.com/devcamper/devcamper-api/internal/core/ports"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 72 // bcrypt input limit, in bytes
	resetTokenTTL  = 10 * time.Minute
	resetTokenSize = 20
)

// AuthService implements registration, login and password management.
type AuthService struct {
	users     ports.UserRepository
	mailer    ports.Mailer
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

func NewAuthService(users ports.UserRepository, mailer ports.Mailer, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 30 * 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		mailer:    mailer,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if role == domain.RoleAdmin {
		return nil, domain.Errorf(domain.ErrValidation, "role must be one of: user publisher")
	}

	user := &domain.User{
		Name:      strings.TrimSpace(in.Name),
		Email:     normalizeEmail(in.Email),
		Role:      role,
		CreatedAt: s.now(),
	}
	if err := domain.Validate(user); err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Login reports ErrInvalidCredentials for an unknown email and for a wrong
// password alike.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	if email == "" || password == "" {
		return nil, domain.Errorf(domain.ErrValidation, "Please provide an email and password")
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, invalidCredentials()
	}
	return s.issue(user)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) UpdateDetails(ctx context.Context, userID string, name, email *string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if name != nil {
		user.Name = strings.TrimSpace(*name)
	}
	if email != nil {
		user.Email = normalizeEmail(*email)
	}
	if err := domain.Validate(user); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) UpdatePassword(ctx context.Context, userID, current, next string) (*ports.AuthResult, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return nil, domain.Errorf(domain.ErrInvalidCredentials, "Password is incorrect")
	}
	hash, err := hashPassword(next)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

// ForgotPassword stores only the SHA-256 digest of the reset token; the
// plaintext leaves the process in the email and nowhere else.
func (s *AuthService) ForgotPassword(ctx context.Context, email, resetURL string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Errorf(domain.ErrNotFound, "There is no user with that email")
	}
	if err != nil {
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}
	if err := s.users.SetResetToken(ctx, user.ID, hashResetToken(token), s.now().Add(resetTokenTTL)); err != nil {
		return err
	}

	msg := ports.Message{
		To:      user.Email,
		Subject: "Password reset token",
		Text: "You are receiving this email because a password reset was requested for your account. " +
			"Please make a PUT request to:\n\n" + strings.TrimRight(resetURL, "/") + "/" + token,
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("reset email failed")
		if uerr := s.users.SetResetToken(ctx, user.ID, "", time.Time{}); uerr != nil {
			s.log.Error().Err(uerr).Str("user_id", user.ID).Msg("failed to clear reset token")
		}
		return domain.Errorf(domain.ErrUpstream, "Email could not be sent")
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password string) (*ports.AuthResult, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	// Claiming and spending the token is one write, so concurrent resets with
	// the same token cannot both succeed.
	user, err := s.users.ConsumeResetToken(ctx, hashResetToken(token), s.now(), hash)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Errorf(domain.ErrInvalidToken, "Invalid token")
	}
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *domain.User) (*ports.AuthResult, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"id":  user.ID,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &ports.AuthResult{Token: token, User: user}, nil
}

func invalidCredentials() error {
	return domain.Errorf(domain.ErrInvalidCredentials, "Invalid credentials")
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLen {
		return "", domain.Errorf(domain.ErrValidation, "password must be at least %d characters", minPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return "", domain.Errorf(domain.ErrValidation, "password must be at most %d bytes", maxPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.Errorf(domain.ErrValidation, "password must be at most %d bytes", maxPasswordLen)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func newResetToken() (string, error) {
	b := make([]byte, resetTokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
