package ports

import (
	"context"

	"github.com/devcamper/devcamper-api/internal/core/domain"
)

// Geocoder resolves a free-form address or zipcode to a point.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*domain.Location, error)
}

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Text    string
}

// Mailer delivers email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// PhotoStore writes uploaded bootcamp photos where the static file server
// can reach them.
type PhotoStore interface {
	Save(ctx context.Context, name string, data []byte) error
}

// AggregateScheduler queues a recalculation of a bootcamp's averageCost and
// averageRating. It must not block the caller.
type AggregateScheduler interface {
	Schedule(bootcampID string)
}

// AggregateService recalculates a bootcamp's derived fields.
type AggregateService interface {
	Recalculate(ctx context.Context, bootcampID string) error
}
