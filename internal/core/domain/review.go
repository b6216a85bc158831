package domain

import "time"

// Review is a rating left by a user for a bootcamp. A user may review a
// given bootcamp once.
type Review struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"    validate:"required,max=100"`
	Text      string    `json:"text"     validate:"required"`
	Rating    int       `json:"rating"   validate:"required,min=1,max=10"`
	Bootcamp  string    `json:"bootcamp" validate:"required"`
	User      string    `json:"user"     validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
}

// OwnedBy reports whether userID wrote the review.
func (r *Review) OwnedBy(userID string) bool {
	return r.User == userID
}
