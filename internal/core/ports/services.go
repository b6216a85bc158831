package ports

import (
	"context"

	"github.com/devcamper/devcamper-api/internal/core/domain"
	"github.com/devcamper/devcamper-api/internal/core/query"
)

// Page is one page of an advanced-results listing.
type Page[T any] struct {
	Items      []T
	Total      int64
	Pagination query.Pagination
}

// RegisterInput carries a self-registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// AuthResult is a freshly issued credential and the user it belongs to.
type AuthResult struct {
	Token string
	User  *domain.User
}

// AuthService covers the account and session lifecycle.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
	UpdateDetails(ctx context.Context, userID string, name, email *string) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID, current, next string) (*AuthResult, error)
	// ForgotPassword mails a single-use reset link built by appending the
	// plaintext token to resetURL.
	ForgotPassword(ctx context.Context, email, resetURL string) error
	ResetPassword(ctx context.Context, token, password string) (*AuthResult, error)
}

// BootcampFields is a create or update payload. Nil fields are left
// untouched on update.
type BootcampFields struct {
	Name          *string
	Description   *string
	Website       *string
	Phone         *string
	Email         *string
	Address       *string
	Careers       []string
	Housing       *bool
	JobAssistance *bool
	JobGuarantee  *bool
	AcceptGi      *bool
}

// PhotoUpload is a file received on the photo endpoint.
type PhotoUpload struct {
	Filename string
	Size     int64
	Data     []byte
}

type BootcampService interface {
	List(ctx context.Context, q query.Query) (*Page[*domain.Bootcamp], error)
	Get(ctx context.Context, id string) (*domain.Bootcamp, error)
	Create(ctx context.Context, actor *domain.User, in BootcampFields) (*domain.Bootcamp, error)
	Update(ctx context.Context, actor *domain.User, id string, in BootcampFields) (*domain.Bootcamp, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
	// WithinRadius finds bootcamps within distance miles of zipcode.
	WithinRadius(ctx context.Context, zipcode string, distance float64) ([]*domain.Bootcamp, error)
	// UploadPhoto stores the photo and returns its file name.
	UploadPhoto(ctx context.Context, actor *domain.User, id string, file PhotoUpload) (string, error)
}

type CourseFields struct {
	Title                *string
	Description          *string
	Weeks                *int
	Tuition              *float64
	MinimumSkill         *string
	ScholarshipAvailable *bool
}

type CourseService interface {
	List(ctx context.Context, q query.Query) (*Page[*domain.Course], error)
	ListByBootcamp(ctx context.Context, bootcampID string) ([]*domain.Course, error)
	Get(ctx context.Context, id string) (*domain.Course, error)
	Create(ctx context.Context, actor *domain.User, bootcampID string, in CourseFields) (*domain.Course, error)
	Update(ctx context.Context, actor *domain.User, id string, in CourseFields) (*domain.Course, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
}

type ReviewFields struct {
	Title  *string
	Text   *string
	Rating *int
}

type ReviewService interface {
	List(ctx context.Context, q query.Query) (*Page[*domain.Review], error)
	ListByBootcamp(ctx context.Context, bootcampID string) ([]*domain.Review, error)
	Get(ctx context.Context, id string) (*domain.Review, error)
	Create(ctx context.Context, actor *domain.User, bootcampID string, in ReviewFields) (*domain.Review, error)
	Update(ctx context.Context, actor *domain.User, id string, in ReviewFields) (*domain.Review, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
}

// UserFields is the admin user-management payload.
type UserFields struct {
	Name     *string
	Email    *string
	Role     *string
	Password *string
}

type UserService interface {
	List(ctx context.Context, q query.Query) (*Page[*domain.User], error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, in UserFields) (*domain.User, error)
	Update(ctx context.Context, id string, in UserFields) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
