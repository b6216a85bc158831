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

type ReviewService struct {
	reviews    ports.ReviewRepository
	bootcamps  ports.BootcampRepository
	aggregates ports.AggregateScheduler
	log        zerolog.Logger
}

func NewReviewService(reviews ports.ReviewRepository, bootcamps ports.BootcampRepository, aggregates ports.AggregateScheduler, log zerolog.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, bootcamps: bootcamps, aggregates: aggregates, log: log}
}

func (s *ReviewService) List(ctx context.Context, q query.Query) (*ports.Page[*domain.Review], error) {
	items, total, err := s.reviews.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &ports.Page[*domain.Review]{
		Items:      items,
		Total:      total,
		Pagination: query.NewPagination(q, total),
	}, nil
}

func (s *ReviewService) ListByBootcamp(ctx context.Context, bootcampID string) ([]*domain.Review, error) {
	return s.reviews.ListByBootcamp(ctx, bootcampID)
}

func (s *ReviewService) Get(ctx context.Context, id string) (*domain.Review, error) {
	return s.reviews.FindByID(ctx, id)
}

// Create records actor's review of a bootcamp. A second review of the same
// bootcamp by the same user is rejected by the store as a duplicate.
func (s *ReviewService) Create(ctx context.Context, actor *domain.User, bootcampID string, in ports.ReviewFields) (*domain.Review, error) {
	b, err := s.bootcamps.FindByID(ctx, bootcampID)
	if err != nil {
		return nil, err
	}

	r := &domain.Review{
		Bootcamp:  b.ID,
		User:      actor.ID,
		CreatedAt: time.Now().UTC(),
	}
	applyReviewFields(r, in)
	if err := domain.Validate(r); err != nil {
		return nil, err
	}
	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, err
	}
	s.aggregates.Schedule(r.Bootcamp)
	return r, nil
}

func (s *ReviewService) Update(ctx context.Context, actor *domain.User, id string, in ports.ReviewFields) (*domain.Review, error) {
	r, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanModify(actor, r) {
		return nil, forbidden(actor, "update", "review", id)
	}

	applyReviewFields(r, in)
	if err := domain.Validate(r); err != nil {
		return nil, err
	}
	if err := s.reviews.Update(ctx, r); err != nil {
		return nil, err
	}
	s.aggregates.Schedule(r.Bootcamp)
	return r, nil
}

func (s *ReviewService) Delete(ctx context.Context, actor *domain.User, id string) error {
	r, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanModify(actor, r) {
		return forbidden(actor, "delete", "review", id)
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return err
	}
	s.aggregates.Schedule(r.Bootcamp)
	return nil
}

func applyReviewFields(r *domain.Review, in ports.ReviewFields) {
	if in.Title != nil {
		r.Title = strings.TrimSpace(*in.Title)
	}
	if in.Text != nil {
		r.Text = *in.Text
	}
	if in.Rating != nil {
		r.Rating = *in.Rating
	}
}
