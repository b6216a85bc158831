package domain

import "time"

const (
	RoleUser      = "user"
	RolePublisher = "publisher"
	RoleAdmin     = "admin"
)

// User models an authenticated actor in the system.
type User struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"  validate:"required"`
	Email               string    `json:"email" validate:"required,email"`
	Role                string    `json:"role"  validate:"required,oneof=user publisher admin"`
	PasswordHash        string    `json:"-"`
	ResetPasswordToken  string    `json:"-"`
	ResetPasswordExpire time.Time `json:"-"`
	CreatedAt           time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
