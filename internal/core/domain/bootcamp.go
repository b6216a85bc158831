package domain

import "time"

// Careers a bootcamp may offer.
var Careers = []string{
	"Web Development",
	"Mobile Development",
	"UI/UX",
	"Data Science",
	"Business",
	"Other",
}

// DefaultPhoto is the photo every bootcamp starts with.
const DefaultPhoto = "no-photo.jpg"

// Location is the geocoded derivative of a bootcamp address. Coordinates are
// stored GeoJSON style: [longitude, latitude].
type Location struct {
	Type             string     `json:"type"`
	Coordinates      [2]float64 `json:"coordinates"`
	FormattedAddress string     `json:"formattedAddress,omitempty"`
	Street           string     `json:"street,omitempty"`
	City             string     `json:"city,omitempty"`
	State            string     `json:"state,omitempty"`
	Zipcode          string     `json:"zipcode,omitempty"`
	Country          string     `json:"country,omitempty"`
}

// Lng returns the longitude.
func (l Location) Lng() float64 { return l.Coordinates[0] }

// Lat returns the latitude.
func (l Location) Lat() float64 { return l.Coordinates[1] }

// Bootcamp is an educational program listing owned by a publisher.
type Bootcamp struct {
	ID            string    `json:"id"`
	User          string    `json:"user"        validate:"required"`
	Name          string    `json:"name"        validate:"required,max=50"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description" validate:"required,max=500"`
	Website       string    `json:"website,omitempty" validate:"omitempty,url,startswith=http"`
	Phone         string    `json:"phone,omitempty"   validate:"omitempty,max=20"`
	Email         string    `json:"email,omitempty"   validate:"omitempty,email"`
	Location      *Location `json:"location,omitempty"`
	Careers       []string  `json:"careers"     validate:"required,min=1,dive,career"`
	AverageRating *float64  `json:"averageRating,omitempty"`
	AverageCost   *float64  `json:"averageCost,omitempty"`
	Photo         string    `json:"photo"`
	Housing       bool      `json:"housing"`
	JobAssistance bool      `json:"jobAssistance"`
	JobGuarantee  bool      `json:"jobGuarantee"`
	AcceptGi      bool      `json:"acceptGi"`
	CreatedAt     time.Time `json:"createdAt"`

	// Courses is populated on list responses only.
	Courses []Course `json:"courses,omitempty"`
}

// OwnedBy reports whether userID owns the bootcamp.
func (b *Bootcamp) OwnedBy(userID string) bool {
	return b.User == userID
}
