package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/devcamper/devcamper-api/internal/core/domain"
	"github.com/devcamper/devcamper-api/internal/core/ports"
)

// AggregateService recomputes the averageCost and averageRating stored on a
// bootcamp from its courses and reviews.
type AggregateService struct {
	bootcamps ports.BootcampRepository
	courses   ports.CourseRepository
	reviews   ports.ReviewRepository
	log       zerolog.Logger
}

func NewAggregateService(bootcamps ports.BootcampRepository, courses ports.CourseRepository, reviews ports.ReviewRepository, log zerolog.Logger) *AggregateService {
	return &AggregateService{bootcamps: bootcamps, courses: courses, reviews: reviews, log: log}
}

// Recalculate is a no-op for a bootcamp that no longer exists.
func (s *AggregateService) Recalculate(ctx context.Context, bootcampID string) error {
	avgTuition, ok, err := s.courses.AverageTuition(ctx, bootcampID)
	if err != nil {
		return fmt.Errorf("average tuition: %w", err)
	}
	var cost *float64
	if ok {
		v := RoundCost(avgTuition)
		cost = &v
	}
	if err := s.bootcamps.SetAverageCost(ctx, bootcampID, cost); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	avgRating, ok, err := s.reviews.AverageRating(ctx, bootcampID)
	if err != nil {
		return fmt.Errorf("average rating: %w", err)
	}
	var rating *float64
	if ok {
		rating = &avgRating
	}
	if err := s.bootcamps.SetAverageRating(ctx, bootcampID, rating); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	s.log.Debug().Str("bootcamp_id", bootcampID).Msg("aggregates recalculated")
	return nil
}

// RoundCost rounds an average tuition up to the next multiple of 10.
func RoundCost(avg float64) float64 {
	return math.Ceil(avg/10) * 10
}
