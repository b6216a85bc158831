package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/devcamper/devcamper-api/internal/core/domain"
	"github.com/devcamper/devcamper-api/internal/core/ports"
	"github.com/devcamper/devcamper-api/internal/core/query"
)

type CourseService struct {
	courses    ports.CourseRepository
	bootcamps  ports.BootcampRepository
	aggregates ports.AggregateScheduler
	log        zerolog.Logger
}

func NewCourseService(courses ports.CourseRepository, bootcamps ports.BootcampRepository, aggregates ports.AggregateScheduler, log zerolog.Logger) *CourseService {
	return &CourseService{courses: courses, bootcamps: bootcamps, aggregates: aggregates, log: log}
}

// List returns one page of courses with the name and description of the
// bootcamp each belongs to.
func (s *CourseService) List(ctx context.Context, q query.Query) (*ports.Page[*domain.Course], error) {
	items, total, err := s.courses.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(q.Select) == 0 || slices.Contains(q.Select, "bootcamp") {
		if err := s.attachBootcamps(ctx, items...); err != nil {
			return nil, err
		}
	}
	return &ports.Page[*domain.Course]{
		Items:      items,
		Total:      total,
		Pagination: query.NewPagination(q, total),
	}, nil
}

func (s *CourseService) ListByBootcamp(ctx context.Context, bootcampID string) ([]*domain.Course, error) {
	return s.courses.ListByBootcamp(ctx, bootcampID)
}

func (s *CourseService) Get(ctx context.Context, id string) (*domain.Course, error) {
	c, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachBootcamps(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Create adds a course to a bootcamp the actor owns.
func (s *CourseService) Create(ctx context.Context, actor *domain.User, bootcampID string, in ports.CourseFields) (*domain.Course, error) {
	b, err := s.bootcamps.FindByID(ctx, bootcampID)
	if err != nil {
		return nil, err
	}
	if !CanModify(actor, b) {
		return nil, forbidden(actor, "add a course to", "bootcamp", bootcampID)
	}
	if in.Tuition == nil {
		return nil, domain.Errorf(domain.ErrValidation, "tuition is required")
	}

	c := &domain.Course{
		Bootcamp:  b.ID,
		User:      actor.ID,
		CreatedAt: time.Now().UTC(),
	}
	applyCourseFields(c, in)
	if err := domain.Validate(c); err != nil {
		return nil, err
	}
	if err := s.courses.Create(ctx, c); err != nil {
		return nil, err
	}
	s.aggregates.Schedule(c.Bootcamp)
	return c, nil
}

func (s *CourseService) Update(ctx context.Context, actor *domain.User, id string, in ports.CourseFields) (*domain.Course, error) {
	c, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanModify(actor, c) {
		return nil, forbidden(actor, "update", "course", id)
	}

	applyCourseFields(c, in)
	if err := domain.Validate(c); err != nil {
		return nil, err
	}
	if err := s.courses.Update(ctx, c); err != nil {
		return nil, err
	}
	s.aggregates.Schedule(c.Bootcamp)
	return c, nil
}

func (s *CourseService) Delete(ctx context.Context, actor *domain.User, id string) error {
	c, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanModify(actor, c) {
		return forbidden(actor, "delete", "course", id)
	}
	if err := s.courses.Delete(ctx, id); err != nil {
		return err
	}
	s.aggregates.Schedule(c.Bootcamp)
	return nil
}

func (s *CourseService) attachBootcamps(ctx context.Context, courses ...*domain.Course) error {
	if len(courses) == 0 {
		return nil
	}
	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		if c.Bootcamp != "" && !slices.Contains(ids, c.Bootcamp) {
			ids = append(ids, c.Bootcamp)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	summaries, err := s.bootcamps.Summaries(ctx, ids)
	if err != nil {
		return err
	}
	for _, c := range courses {
		if sum, ok := summaries[c.Bootcamp]; ok {
			c.BootcampInfo = &sum
		}
	}
	return nil
}

func applyCourseFields(c *domain.Course, in ports.CourseFields) {
	if in.Title != nil {
		c.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Weeks != nil {
		c.Weeks = *in.Weeks
	}
	if in.Tuition != nil {
		c.Tuition = *in.Tuition
	}
	if in.MinimumSkill != nil {
		c.MinimumSkill = *in.MinimumSkill
	}
	if in.ScholarshipAvailable != nil {
		c.ScholarshipAvailable = *in.ScholarshipAvailable
	}
}
