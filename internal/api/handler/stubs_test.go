package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/devcamper/devcamper-api/internal/api/middleware"
	"github.com/devcamper/devcamper-api/internal/core/domain"
	"github.com/devcamper/devcamper-api/internal/core/ports"
	"github.com/devcamper/devcamper-api/internal/core/query"
)

// newTestContext builds an echo context with the validator wired in, as the
// router does.
func newTestContext(method, target string, body io.Reader, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func jsonContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	return newTestContext(method, target, r, echo.MIMEApplicationJSON)
}

func withUser(c echo.Context, u *domain.User) echo.Context {
	c.Set(middleware.UserKey, u)
	return c
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

var (
	testPublisher = &domain.User{ID: "p1", Name: "Pub", Email: "pub@example.com", Role: domain.RolePublisher}
	testUser      = &domain.User{ID: "u1", Name: "User", Email: "user@example.com", Role: domain.RoleUser}
)

// --- service stubs ---

type stubAuthService struct {
	registerFn       func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn          func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	meFn             func(ctx context.Context, id string) (*domain.User, error)
	updateDetailsFn  func(ctx context.Context, id string, name, email *string) (*domain.User, error)
	updatePasswordFn func(ctx context.Context, id, current, next string) (*ports.AuthResult, error)
	forgotFn         func(ctx context.Context, email, resetURL string) error
	resetFn          func(ctx context.Context, token, password string) (*ports.AuthResult, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Me(ctx context.Context, id string) (*domain.User, error) {
	return s.meFn(ctx, id)
}

func (s *stubAuthService) UpdateDetails(ctx context.Context, id string, name, email *string) (*domain.User, error) {
	return s.updateDetailsFn(ctx, id, name, email)
}

func (s *stubAuthService) UpdatePassword(ctx context.Context, id, current, next string) (*ports.AuthResult, error) {
	return s.updatePasswordFn(ctx, id, current, next)
}

func (s *stubAuthService) ForgotPassword(ctx context.Context, email, resetURL string) error {
	return s.forgotFn(ctx, email, resetURL)
}

func (s *stubAuthService) ResetPassword(ctx context.Context, token, password string) (*ports.AuthResult, error) {
	return s.resetFn(ctx, token, password)
}

type stubBootcampService struct {
	listFn   func(ctx context.Context, q query.Query) (*ports.Page[*domain.Bootcamp], error)
	getFn    func(ctx context.Context, id string) (*domain.Bootcamp, error)
	createFn func(ctx context.Context, actor *domain.User, in ports.BootcampFields) (*domain.Bootcamp, error)
	updateFn func(ctx context.Context, actor *domain.User, id string, in ports.BootcampFields) (*domain.Bootcamp, error)
	deleteFn func(ctx context.Context, actor *domain.User, id string) error
	radiusFn func(ctx context.Context, zipcode string, distance float64) ([]*domain.Bootcamp, error)
	photoFn  func(ctx context.Context, actor *domain.User, id string, file ports.PhotoUpload) (string, error)
}

func (s *stubBootcampService) List(ctx context.Context, q query.Query) (*ports.Page[*domain.Bootcamp], error) {
	return s.listFn(ctx, q)
}

func (s *stubBootcampService) Get(ctx context.Context, id string) (*domain.Bootcamp, error) {
	return s.getFn(ctx, id)
}

func (s *stubBootcampService) Create(ctx context.Context, actor *domain.User, in ports.BootcampFields) (*domain.Bootcamp, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubBootcampService) Update(ctx context.Context, actor *domain.User, id string, in ports.BootcampFields) (*domain.Bootcamp, error) {
	return s.updateFn(ctx, actor, id, in)
}

func (s *stubBootcampService) Delete(ctx context.Context, actor *domain.User, id string) error {
	return s.deleteFn(ctx, actor, id)
}

func (s *stubBootcampService) WithinRadius(ctx context.Context, zipcode string, distance float64) ([]*domain.Bootcamp, error) {
	return s.radiusFn(ctx, zipcode, distance)
}

func (s *stubBootcampService) UploadPhoto(ctx context.Context, actor *domain.User, id string, file ports.PhotoUpload) (string, error) {
	return s.photoFn(ctx, actor, id, file)
}

type stubCourseService struct {
	listFn       func(ctx context.Context, q query.Query) (*ports.Page[*domain.Course], error)
	byBootcampFn func(ctx context.Context, bootcampID string) ([]*domain.Course, error)
	getFn        func(ctx context.Context, id string) (*domain.Course, error)
	createFn     func(ctx context.Context, actor *domain.User, bootcampID string, in ports.CourseFields) (*domain.Course, error)
	updateFn     func(ctx context.Context, actor *domain.User, id string, in ports.CourseFields) (*domain.Course, error)
	deleteFn     func(ctx context.Context, actor *domain.User, id string) error
}

func (s *stubCourseService) List(ctx context.Context, q query.Query) (*ports.Page[*domain.Course], error) {
	return s.listFn(ctx, q)
}

func (s *stubCourseService) ListByBootcamp(ctx context.Context, bootcampID string) ([]*domain.Course, error) {
	return s.byBootcampFn(ctx, bootcampID)
}

func (s *stubCourseService) Get(ctx context.Context, id string) (*domain.Course, error) {
	return s.getFn(ctx, id)
}

func (s *stubCourseService) Create(ctx context.Context, actor *domain.User, bootcampID string, in ports.CourseFields) (*domain.Course, error) {
	return s.createFn(ctx, actor, bootcampID, in)
}

func (s *stubCourseService) Update(ctx context.Context, actor *domain.User, id string, in ports.CourseFields) (*domain.Course, error) {
	return s.updateFn(ctx, actor, id, in)
}

func (s *stubCourseService) Delete(ctx context.Context, actor *domain.User, id string) error {
	return s.deleteFn(ctx, actor, id)
}

type stubReviewService struct {
	listFn       func(ctx context.Context, q query.Query) (*ports.Page[*domain.Review], error)
	byBootcampFn func(ctx context.Context, bootcampID string) ([]*domain.Review, error)
	getFn        func(ctx context.Context, id string) (*domain.Review, error)
	createFn     func(ctx context.Context, actor *domain.User, bootcampID string, in ports.ReviewFields) (*domain.Review, error)
	updateFn     func(ctx context.Context, actor *domain.User, id string, in ports.ReviewFields) (*domain.Review, error)
	deleteFn     func(ctx context.Context, actor *domain.User, id string) error
}

func (s *stubReviewService) List(ctx context.Context, q query.Query) (*ports.Page[*domain.Review], error) {
	return s.listFn(ctx, q)
}

func (s *stubReviewService) ListByBootcamp(ctx context.Context, bootcampID string) ([]*domain.Review, error) {
	return s.byBootcampFn(ctx, bootcampID)
}

func (s *stubReviewService) Get(ctx context.Context, id string) (*domain.Review, error) {
	return s.getFn(ctx, id)
}

func (s *stubReviewService) Create(ctx context.Context, actor *domain.User, bootcampID string, in ports.ReviewFields) (*domain.Review, error) {
	return s.createFn(ctx, actor, bootcampID, in)
}

func (s *stubReviewService) Update(ctx context.Context, actor *domain.User, id string, in ports.ReviewFields) (*domain.Review, error) {
	return s.updateFn(ctx, actor, id, in)
}

func (s *stubReviewService) Delete(ctx context.Context, actor *domain.User, id string) error {
	return s.deleteFn(ctx, actor, id)
}

type stubUserService struct {
	listFn   func(ctx context.Context, q query.Query) (*ports.Page[*domain.User], error)
	getFn    func(ctx context.Context, id string) (*domain.User, error)
	createFn func(ctx context.Context, in ports.UserFields) (*domain.User, error)
	updateFn func(ctx context.Context, id string, in ports.UserFields) (*domain.User, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s *stubUserService) List(ctx context.Context, q query.Query) (*ports.Page[*domain.User], error) {
	return s.listFn(ctx, q)
}

func (s *stubUserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) Create(ctx context.Context, in ports.UserFields) (*domain.User, error) {
	return s.createFn(ctx, in)
}

func (s *stubUserService) Update(ctx context.Context, id string, in ports.UserFields) (*domain.User, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubUserService) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}
