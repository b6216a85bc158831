package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"

	"github.com/devcamper/devcamper-api/internal/core/domain"
	"github.com/devcamper/devcamper-api/internal/core/ports"
	"github.com/devcamper/devcamper-api/internal/core/query"
)

// earthRadiusMiles converts a distance in miles to radians for $centerSphere.
const earthRadiusMiles = 3963.0

type BootcampService struct {
	bootcamps ports.BootcampRepository
	courses   ports.CourseRepository
	reviews   ports.ReviewRepository
	geocoder  ports.Geocoder
	photos    ports.PhotoStore
	maxUpload int64
	log       zerolog.Logger
}

func NewBootcampService(
	bootcamps ports.BootcampRepository,
	courses ports.CourseRepository,
	reviews ports.ReviewRepository,
	geocoder ports.Geocoder,
	photos ports.PhotoStore,
	maxUpload int64,
	log zerolog.Logger,
) *BootcampService {
	return &BootcampService{
		bootcamps: bootcamps,
		courses:   courses,
		reviews:   reviews,
		geocoder:  geocoder,
		photos:    photos,
		maxUpload: maxUpload,
		log:       log,
	}
}

// List returns one page of bootcamps, each with its courses unless the
// projection leaves them out.
func (s *BootcampService) List(ctx context.Context, q query.Query) (*ports.Page[*domain.Bootcamp], error) {
	items, total, err := s.bootcamps.List(ctx, q)
	if err != nil {
		return nil, err
	}

	if len(items) > 0 && (len(q.Select) == 0 || slices.Contains(q.Select, "courses")) {
		ids := make([]string, len(items))
		for i, b := range items {
			ids[i] = b.ID
		}
		grouped, err := s.courses.GroupByBootcamp(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, b := range items {
			b.Courses = grouped[b.ID]
		}
	}

	return &ports.Page[*domain.Bootcamp]{
		Items:      items,
		Total:      total,
		Pagination: query.NewPagination(q, total),
	}, nil
}

func (s *BootcampService) Get(ctx context.Context, id string) (*domain.Bootcamp, error) {
	return s.bootcamps.FindByID(ctx, id)
}

// Create publishes a bootcamp for actor. Publishers may own a single
// bootcamp; admins are not limited.
func (s *BootcampService) Create(ctx context.Context, actor *domain.User, in ports.BootcampFields) (*domain.Bootcamp, error) {
	if !actor.IsAdmin() {
		n, err := s.bootcamps.CountByUser(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, domain.Errorf(domain.ErrValidation, "The user with ID %s has already published a bootcamp", actor.ID)
		}
	}
	if in.Address == nil || strings.TrimSpace(*in.Address) == "" {
		return nil, domain.Errorf(domain.ErrValidation, "address is required")
	}

	b := &domain.Bootcamp{
		User:      actor.ID,
		Photo:     domain.DefaultPhoto,
		CreatedAt: time.Now().UTC(),
	}
	applyBootcampFields(b, in)
	if err := domain.Validate(b); err != nil {
		return nil, err
	}

	b.Slug = slug.Make(b.Name)
	loc, err := s.geocode(ctx, *in.Address)
	if err != nil {
		return nil, err
	}
	b.Location = loc

	if err := s.bootcamps.Create(ctx, b); err != nil {
		return nil, err
	}
	s.log.Info().Str("bootcamp_id", b.ID).Str("user_id", actor.ID).Msg("bootcamp created")
	return b, nil
}

func (s *BootcampService) Update(ctx context.Context, actor *domain.User, id string, in ports.BootcampFields) (*domain.Bootcamp, error) {
	b, err := s.bootcamps.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanModify(actor, b) {
		return nil, forbidden(actor, "update", "bootcamp", id)
	}

	oldName := b.Name
	applyBootcampFields(b, in)
	if err := domain.Validate(b); err != nil {
		return nil, err
	}
	if b.Name != oldName {
		b.Slug = slug.Make(b.Name)
	}
	if in.Address != nil && strings.TrimSpace(*in.Address) != "" {
		loc, err := s.geocode(ctx, *in.Address)
		if err != nil {
			return nil, err
		}
		b.Location = loc
	}

	if err := s.bootcamps.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Delete removes the bootcamp's courses and reviews before the bootcamp
// itself so a partial failure never leaves children without a parent.
func (s *BootcampService) Delete(ctx context.Context, actor *domain.User, id string) error {
	b, err := s.bootcamps.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanModify(actor, b) {
		return forbidden(actor, "delete", "bootcamp", id)
	}

	courses, err := s.courses.DeleteByBootcamp(ctx, id)
	if err != nil {
		return fmt.Errorf("delete bootcamp courses: %w", err)
	}
	reviews, err := s.reviews.DeleteByBootcamp(ctx, id)
	if err != nil {
		return fmt.Errorf("delete bootcamp reviews: %w", err)
	}
	if err := s.bootcamps.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().
		Str("bootcamp_id", id).
		Int64("courses", courses).
		Int64("reviews", reviews).
		Msg("bootcamp deleted")
	return nil
}

func (s *BootcampService) WithinRadius(ctx context.Context, zipcode string, distance float64) ([]*domain.Bootcamp, error) {
	if distance <= 0 {
		return nil, domain.Errorf(domain.ErrValidation, "distance must be greater than 0")
	}
	loc, err := s.geocode(ctx, zipcode)
	if err != nil {
		return nil, err
	}
	return s.bootcamps.WithinRadius(ctx, loc.Lng(), loc.Lat(), distance/earthRadiusMiles)
}

func (s *BootcampService) UploadPhoto(ctx context.Context, actor *domain.User, id string, file ports.PhotoUpload) (string, error) {
	b, err := s.bootcamps.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !CanModify(actor, b) {
		return "", forbidden(actor, "update", "bootcamp", id)
	}

	if file.Size > s.maxUpload || int64(len(file.Data)) > s.maxUpload {
		return "", domain.Errorf(domain.ErrValidation, "Please upload an image less than %d bytes", s.maxUpload)
	}
	if len(file.Data) == 0 {
		return "", domain.Errorf(domain.ErrValidation, "Please upload a file")
	}
	mt := mimetype.Detect(file.Data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", domain.Errorf(domain.ErrValidation, "Please upload an image file")
	}

	ext := mt.Extension()
	if ext == "" {
		ext = filepath.Ext(file.Filename)
	}
	name := fmt.Sprintf("photo_%s%s", b.ID, ext)

	if err := s.photos.Save(ctx, name, file.Data); err != nil {
		return "", fmt.Errorf("save photo: %w", err)
	}
	if err := s.bootcamps.SetPhoto(ctx, b.ID, name); err != nil {
		return "", err
	}
	return name, nil
}

// geocode passes client-facing errors through and reports anything else as
// an upstream failure.
func (s *BootcampService) geocode(ctx context.Context, address string) (*domain.Location, error) {
	loc, err := s.geocoder.Geocode(ctx, address)
	if err == nil {
		return loc, nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return nil, err
	}
	s.log.Error().Err(err).Str("address", address).Msg("geocoding failed")
	return nil, domain.Errorf(domain.ErrUpstream, "Could not geocode address")
}

func applyBootcampFields(b *domain.Bootcamp, in ports.BootcampFields) {
	if in.Name != nil {
		b.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		b.Description = *in.Description
	}
	if in.Website != nil {
		b.Website = *in.Website
	}
	if in.Phone != nil {
		b.Phone = *in.Phone
	}
	if in.Email != nil {
		b.Email = *in.Email
	}
	if in.Careers != nil {
		b.Careers = in.Careers
	}
	if in.Housing != nil {
		b.Housing = *in.Housing
	}
	if in.JobAssistance != nil {
		b.JobAssistance = *in.JobAssistance
	}
	if in.JobGuarantee != nil {
		b.JobGuarantee = *in.JobGuarantee
	}
	if in.AcceptGi != nil {
		b.AcceptGi = *in.AcceptGi
	}
}
