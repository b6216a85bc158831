package handler

import "github.com/devcamper/devcamper-api/internal/core/query"

// userFilters never exposes password or reset-token fields.
var userFilters = query.Schema{
	"id":        query.ID,
	"name":      query.String,
	"email":     query.String,
	"role":      query.String,
	"createdAt": query.Time,
}

type userRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Role     *string `json:"role"     validate:"omitempty,oneof=user publisher admin"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
}
