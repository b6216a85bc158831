package domain

import "time"

// BootcampSummary is the subset of a bootcamp embedded in course listings.
type BootcampSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Course belongs to exactly one bootcamp and one user.
type Course struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"        validate:"required"`
	Description          string    `json:"description"  validate:"required"`
	Weeks                int       `json:"weeks"        validate:"required,gt=0"`
	Tuition              float64   `json:"tuition"      validate:"gte=0"`
	MinimumSkill         string    `json:"minimumSkill" validate:"required,oneof=beginner intermediate advanced"`
	ScholarshipAvailable bool      `json:"scholarshipAvailable"`
	Bootcamp             string    `json:"bootcamp"     validate:"required"`
	User                 string    `json:"user"         validate:"required"`
	CreatedAt            time.Time `json:"createdAt"`

	// BootcampInfo is populated on the course listing.
	BootcampInfo *BootcampSummary `json:"bootcampInfo,omitempty"`
}

// OwnedBy reports whether userID owns the course.
func (c *Course) OwnedBy(userID string) bool {
	return c.User == userID
}
