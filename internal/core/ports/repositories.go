package ports

import (
	"context"
	"time"

	"github.com/devcamper/devcamper-api/internal/core/domain"
	"github.com/devcamper/devcamper-api/internal/core/query"
)

// Repositories return domain.NotFound for unknown or malformed ids and an
// ErrDuplicate *domain.Error when a unique index rejects a write.

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Update writes name, email, role and password hash. Reset-token fields
	// are only ever changed by SetResetToken and ConsumeResetToken.
	Update(ctx context.Context, u *domain.User) error
	// SetResetToken records a pending reset for the user. An empty tokenHash
	// clears it.
	SetResetToken(ctx context.Context, id, tokenHash string, expire time.Time) error
	// ConsumeResetToken claims the reset token in a single write: the user
	// holding tokenHash with a window still open at now gets passwordHash and
	// loses the token. ErrNotFound when no open token matches.
	ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q query.Query) ([]*domain.User, int64, error)
}

// BootcampRepository persists bootcamps.
type BootcampRepository interface {
	Create(ctx context.Context, b *domain.Bootcamp) error
	FindByID(ctx context.Context, id string) (*domain.Bootcamp, error)
	Update(ctx context.Context, b *domain.Bootcamp) error
	Delete(ctx context.Context, id string) error
	// List returns one page of bootcamps and the number of bootcamps matching
	// the query's filters.
	List(ctx context.Context, q query.Query) ([]*domain.Bootcamp, int64, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	// WithinRadius returns bootcamps whose location lies inside the spherical
	// cap centred at (lng, lat). radius is in radians.
	WithinRadius(ctx context.Context, lng, lat, radius float64) ([]*domain.Bootcamp, error)
	Summaries(ctx context.Context, ids []string) (map[string]domain.BootcampSummary, error)
	SetPhoto(ctx context.Context, id, photo string) error
	// SetAverageCost and SetAverageRating clear the field when avg is nil.
	SetAverageCost(ctx context.Context, id string, avg *float64) error
	SetAverageRating(ctx context.Context, id string, avg *float64) error
}

// CourseRepository persists courses.
type CourseRepository interface {
	Create(ctx context.Context, c *domain.Course) error
	FindByID(ctx context.Context, id string) (*domain.Course, error)
	Update(ctx context.Context, c *domain.Course) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q query.Query) ([]*domain.Course, int64, error)
	ListByBootcamp(ctx context.Context, bootcampID string) ([]*domain.Course, error)
	// GroupByBootcamp returns the courses of each of the given bootcamps.
	GroupByBootcamp(ctx context.Context, bootcampIDs []string) (map[string][]domain.Course, error)
	DeleteByBootcamp(ctx context.Context, bootcampID string) (int64, error)
	// AverageTuition reports ok=false when the bootcamp has no courses.
	AverageTuition(ctx context.Context, bootcampID string) (avg float64, ok bool, err error)
}

// ReviewRepository persists reviews.
type ReviewRepository interface {
	Create(ctx context.Context, r *domain.Review) error
	FindByID(ctx context.Context, id string) (*domain.Review, error)
	Update(ctx context.Context, r *domain.Review) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q query.Query) ([]*domain.Review, int64, error)
	ListByBootcamp(ctx context.Context, bootcampID string) ([]*domain.Review, error)
	DeleteByBootcamp(ctx context.Context, bootcampID string) (int64, error)
	// AverageRating reports ok=false when the bootcamp has no reviews.
	AverageRating(ctx context.Context, bootcampID string) (avg float64, ok bool, err error)
}
