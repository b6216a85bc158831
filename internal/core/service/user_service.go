package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/devcamper/devcamper-api/internal/core/domain"
	"github.com/devcamper/devcamper-api/internal/core/ports"
	"github.com/devcamper/devcamper-api/internal/core/query"
)

// UserService is admin-only account management. Unlike self-registration it
// may assign any role.
type UserService struct {
	users ports.UserRepository
	log   zerolog.Logger
}

func NewUserService(users ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{users: users, log: log}
}

func (s *UserService) List(ctx context.Context, q query.Query) (*ports.Page[*domain.User], error) {
	items, total, err := s.users.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &ports.Page[*domain.User]{
		Items:      items,
		Total:      total,
		Pagination: query.NewPagination(q, total),
	}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) Create(ctx context.Context, in ports.UserFields) (*domain.User, error) {
	u := &domain.User{Role: domain.RoleUser, CreatedAt: time.Now().UTC()}
	applyUserFields(u, in)
	if err := domain.Validate(u); err != nil {
		return nil, err
	}

	var password string
	if in.Password != nil {
		password = *in.Password
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash

	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Update(ctx context.Context, id string, in ports.UserFields) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyUserFields(u, in)
	if err := domain.Validate(u); err != nil {
		return nil, err
	}
	if in.Password != nil {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

func applyUserFields(u *domain.User, in ports.UserFields) {
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		u.Email = normalizeEmail(*in.Email)
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
}
