package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/devcamper/devcamper-api/internal/core/domain"
	"github.com/devcamper/devcamper-api/internal/core/ports"
)

const testSecret = "secret"

func newAuthService(t *testing.T) (*AuthService, *stubUserRepo, *stubMailer) {
	t.Helper()
	repo := newStubUserRepo()
	mailer := &stubMailer{}
	return NewAuthService(repo, mailer, testSecret, time.Hour, nopLog), repo, mailer
}

func register(t *testing.T, svc *AuthService, email, password string) *ports.AuthResult {
	t.Helper()
	res, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "Alice",
		Email:    email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	return res
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, repo, _ := newAuthService(t)

	res := register(t, svc, "alice@example.com", "pass123")

	stored := repo.users[res.User.ID]
	if stored.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if stored.Role != domain.RoleUser {
		t.Fatalf("expected default role user, got %s", stored.Role)
	}
	if res.Token == "" {
		t.Fatalf("expected token")
	}
}

func TestAuthService_Register_TokenClaims(t *testing.T) {
	svc, _, _ := newAuthService(t)
	res := register(t, svc, "alice@example.com", "pass123")

	parsed, err := jwt.Parse(res.Token, func(*jwt.Token) (any, error) { return []byte(testSecret), nil })
	if err != nil || !parsed.Valid {
		t.Fatalf("token did not verify: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["id"] != res.User.ID {
		t.Errorf("expected id claim %s, got %v", res.User.ID, claims["id"])
	}
	if _, ok := claims["iat"]; !ok {
		t.Errorf("expected iat claim")
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	cases := map[string]ports.RegisterInput{
		"missing name":   {Email: "a@example.com", Password: "pass123"},
		"bad email":      {Name: "A", Email: "not-an-email", Password: "pass123"},
		"short password": {Name: "A", Email: "a@example.com", Password: "123"},
		"long password":  {Name: "A", Email: "a@example.com", Password: strings.Repeat("a", 73)},
		"admin role":     {Name: "A", Email: "a@example.com", Password: "pass123", Role: domain.RoleAdmin},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Register(ctx, in); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, _, _ := newAuthService(t)
	register(t, svc, "alice@example.com", "pass123")

	_, err := svc.Register(context.Background(), ports.RegisterInput{Name: "Bob", Email: "Alice@Example.com", Password: "pass456"})
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _, _ := newAuthService(t)
	created := register(t, svc, "alice@example.com", "pass123")

	res, err := svc.Login(context.Background(), "alice@example.com", "pass123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.User.ID != created.User.ID || res.Token == "" {
		t.Fatalf("unexpected login result %+v", res)
	}
}

func TestAuthService_Login_UnknownEmailAndWrongPasswordAreIndistinguishable(t *testing.T) {
	svc, _, _ := newAuthService(t)
	register(t, svc, "alice@example.com", "pass123")
	ctx := context.Background()

	_, wrongPass := svc.Login(ctx, "alice@example.com", "nope123")
	_, unknown := svc.Login(ctx, "ghost@example.com", "pass123")

	if !errors.Is(wrongPass, domain.ErrInvalidCredentials) || !errors.Is(unknown, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v and %v", wrongPass, unknown)
	}
	if wrongPass.Error() != unknown.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPass, unknown)
	}
}

func TestAuthService_Login_MissingFields(t *testing.T) {
	svc, _, _ := newAuthService(t)
	if _, err := svc.Login(context.Background(), "", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAuthService_UpdateDetails(t *testing.T) {
	svc, repo, _ := newAuthService(t)
	res := register(t, svc, "alice@example.com", "pass123")

	u, err := svc.UpdateDetails(context.Background(), res.User.ID, strPtr("Alice Smith"), nil)
	if err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}
	if u.Name != "Alice Smith" || u.Email != "alice@example.com" {
		t.Errorf("unexpected user %+v", u)
	}
	if repo.users[res.User.ID].PasswordHash != res.User.PasswordHash {
		t.Errorf("password hash must not change")
	}
}

func TestAuthService_UpdatePassword(t *testing.T) {
	svc, _, _ := newAuthService(t)
	res := register(t, svc, "alice@example.com", "pass123")
	ctx := context.Background()

	if _, err := svc.UpdatePassword(ctx, res.User.ID, "wrong", "newpass1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong current password, got %v", err)
	}
	if _, err := svc.UpdatePassword(ctx, res.User.ID, "pass123", "newpass1"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	if _, err := svc.Login(ctx, "alice@example.com", "newpass1"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func resetTokenFrom(t *testing.T, mailer *stubMailer) string {
	t.Helper()
	if len(mailer.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(mailer.sent))
	}
	text := mailer.sent[0].Text
	return text[strings.LastIndex(text, "/")+1:]
}

func TestAuthService_ForgotPassword_StoresDigestOnly(t *testing.T) {
	svc, repo, mailer := newAuthService(t)
	res := register(t, svc, "alice@example.com", "pass123")

	if err := svc.ForgotPassword(context.Background(), "alice@example.com", "http://localhost:5000/api/v1/auth/resetpassword"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}

	token := resetTokenFrom(t, mailer)
	if len(token) != 40 {
		t.Fatalf("expected 40 hex chars, got %q", token)
	}
	stored := repo.users[res.User.ID]
	if stored.ResetPasswordToken == token {
		t.Fatalf("plaintext token must not be stored")
	}
	if stored.ResetPasswordToken != hashResetToken(token) {
		t.Fatalf("stored digest does not match token")
	}
	if until := time.Until(stored.ResetPasswordExpire); until <= 0 || until > resetTokenTTL {
		t.Fatalf("unexpected expiry %v", stored.ResetPasswordExpire)
	}
	if !strings.Contains(mailer.sent[0].Text, "/api/v1/auth/resetpassword/"+token) {
		t.Errorf("reset URL missing from email: %q", mailer.sent[0].Text)
	}
}

func TestAuthService_ForgotPassword_UnknownEmail(t *testing.T) {
	svc, _, _ := newAuthService(t)
	if err := svc.ForgotPassword(context.Background(), "ghost@example.com", "http://x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAuthService_ForgotPassword_MailFailureClearsToken(t *testing.T) {
	svc, repo, mailer := newAuthService(t)
	res := register(t, svc, "alice@example.com", "pass123")
	mailer.err = errors.New("smtp down")

	err := svc.ForgotPassword(context.Background(), "alice@example.com", "http://x")
	if !errors.Is(err, domain.ErrUpstream) || err.Error() != "Email could not be sent" {
		t.Fatalf("expected upstream error, got %v", err)
	}
	stored := repo.users[res.User.ID]
	if stored.ResetPasswordToken != "" || !stored.ResetPasswordExpire.IsZero() {
		t.Fatalf("expected reset fields cleared, got %+v", stored)
	}
}

func TestAuthService_ResetPassword_SingleUse(t *testing.T) {
	svc, repo, mailer := newAuthService(t)
	res := register(t, svc, "alice@example.com", "pass123")
	ctx := context.Background()

	if err := svc.ForgotPassword(ctx, "alice@example.com", "http://x"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	token := resetTokenFrom(t, mailer)

	if _, err := svc.ResetPassword(ctx, token, "brandnew"); err != nil {
		t.Fatalf("first reset failed: %v", err)
	}
	if repo.users[res.User.ID].ResetPasswordToken != "" {
		t.Fatalf("token must be cleared after use")
	}
	if _, err := svc.ResetPassword(ctx, token, "another1"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken on reuse, got %v", err)
	}
	if _, err := svc.Login(ctx, "alice@example.com", "brandnew"); err != nil {
		t.Fatalf("login with reset password failed: %v", err)
	}
}

func TestAuthService_ResetPassword_Expired(t *testing.T) {
	svc, _, mailer := newAuthService(t)
	register(t, svc, "alice@example.com", "pass123")
	ctx := context.Background()

	if err := svc.ForgotPassword(ctx, "alice@example.com", "http://x"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	token := resetTokenFrom(t, mailer)

	svc.now = func() time.Time { return time.Now().UTC().Add(resetTokenTTL + time.Minute) }
	if _, err := svc.ResetPassword(ctx, token, "brandnew"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestHashPassword_Bounds(t *testing.T) {
	if _, err := hashPassword(strings.Repeat("a", 72)); err != nil {
		t.Fatalf("72 bytes must hash, got %v", err)
	}
	// 25 three-byte runes: short in characters, too long in bytes.
	for _, pw := range []string{strings.Repeat("a", 80), strings.Repeat("€", 25)} {
		if _, err := hashPassword(pw); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected ErrValidation for %d bytes, got %v", len(pw), err)
		}
	}
}

func TestAuthService_PasswordTooLongIsValidation(t *testing.T) {
	svc, _, mailer := newAuthService(t)
	res := register(t, svc, "alice@example.com", "pass123")
	ctx := context.Background()
	long := strings.Repeat("a", 100)

	if _, err := svc.UpdatePassword(ctx, res.User.ID, "pass123", long); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("UpdatePassword: expected ErrValidation, got %v", err)
	}

	if err := svc.ForgotPassword(ctx, "alice@example.com", "http://x"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	token := resetTokenFrom(t, mailer)
	if _, err := svc.ResetPassword(ctx, token, long); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("ResetPassword: expected ErrValidation, got %v", err)
	}
	// A rejected password does not spend the token.
	if _, err := svc.ResetPassword(ctx, token, "brandnew"); err != nil {
		t.Fatalf("token should still be usable, got %v", err)
	}
}

func TestAuthService_ResetPassword_ConcurrentUseWinsOnce(t *testing.T) {
	svc, _, mailer := newAuthService(t)
	register(t, svc, "alice@example.com", "pass123")
	ctx := context.Background()

	if err := svc.ForgotPassword(ctx, "alice@example.com", "http://x"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	token := resetTokenFrom(t, mailer)

	const attempts = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		wins    int
		invalid int
	)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ResetPassword(ctx, token, "newpass"+string(rune('a'+i)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrInvalidToken):
				invalid++
			default:
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 || invalid != attempts-1 {
		t.Fatalf("expected exactly one winner, got %d wins and %d invalid", wins, invalid)
	}
}

func TestAuthService_UpdateDetailsKeepsPendingReset(t *testing.T) {
	svc, repo, mailer := newAuthService(t)
	res := register(t, svc, "alice@example.com", "pass123")
	ctx := context.Background()

	// Loaded before the reset was requested, written after.
	stale, err := repo.FindByID(ctx, res.User.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if err := svc.ForgotPassword(ctx, "alice@example.com", "http://x"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	stale.Name = "Alice Smith"
	if err := repo.Update(ctx, stale); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if _, err := svc.ResetPassword(ctx, resetTokenFrom(t, mailer), "brandnew"); err != nil {
		t.Fatalf("pending reset lost by profile update: %v", err)
	}
}
