package service

import (
	"github.com/devcamper/devcamper-api/internal/core/domain"
)

// Owned is a resource with a single owning user.
type Owned interface {
	OwnedBy(userID string) bool
}

// CanModify reports whether actor may change res.
// Admins may change anything; everyone else only what they own.
func CanModify(actor *domain.User, res Owned) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || res.OwnedBy(actor.ID)
}

func forbidden(actor *domain.User, action, resource, id string) error {
	return domain.Errorf(domain.ErrForbidden, "User %s is not authorized to %s %s %s", actor.ID, action, resource, id)
}
