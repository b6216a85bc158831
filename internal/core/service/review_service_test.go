package service

import (
	"context"
	"errors"
	"testing"

	"github.com/devcamper/devcamper-api/internal/core/domain"
	"github.com/devcamper/devcamper-api/internal/core/ports"
)

func newReviewFixture(t *testing.T) (*ReviewService, *stubReviewRepo, *recordingScheduler, string) {
	t.Helper()
	reviews := newStubReviewRepo()
	bootcamps := newStubBootcampRepo()
	sched := &recordingScheduler{}
	b := &domain.Bootcamp{User: "p1", Name: "Devworks"}
	if err := bootcamps.Create(context.Background(), b); err != nil {
		t.Fatalf("seed bootcamp: %v", err)
	}
	return NewReviewService(reviews, bootcamps, sched, nopLog), reviews, sched, b.ID
}

func reviewInput(rating int) ports.ReviewFields {
	return ports.ReviewFields{Title: strPtr("Learned a ton"), Text: strPtr("Great instructors"), Rating: intPtr(rating)}
}

func TestReviewService_Create(t *testing.T) {
	svc, _, sched, bootcampID := newReviewFixture(t)

	r, err := svc.Create(context.Background(), regularUser("u1"), bootcampID, reviewInput(8))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.User != "u1" || r.Bootcamp != bootcampID {
		t.Errorf("unexpected review %+v", r)
	}
	if len(sched.scheduled) != 1 {
		t.Errorf("expected aggregate recalculation, got %v", sched.scheduled)
	}
}

func TestReviewService_Create_OnePerUserPerBootcamp(t *testing.T) {
	svc, _, _, bootcampID := newReviewFixture(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, regularUser("u1"), bootcampID, reviewInput(8)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, regularUser("u1"), bootcampID, reviewInput(3)); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if _, err := svc.Create(ctx, regularUser("u2"), bootcampID, reviewInput(3)); err != nil {
		t.Fatalf("other user should be able to review: %v", err)
	}
}

func TestReviewService_Create_RatingOutOfRange(t *testing.T) {
	svc, _, _, bootcampID := newReviewFixture(t)
	if _, err := svc.Create(context.Background(), regularUser("u1"), bootcampID, reviewInput(0)); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestReviewService_UpdateDelete_OwnerOrAdmin(t *testing.T) {
	svc, repo, _, bootcampID := newReviewFixture(t)
	ctx := context.Background()
	r, _ := svc.Create(ctx, regularUser("u1"), bootcampID, reviewInput(8))

	if _, err := svc.Update(ctx, regularUser("u2"), r.ID, reviewInput(1)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if repo.reviews[r.ID].Rating != 8 {
		t.Fatalf("review changed by non-owner")
	}

	updated, err := svc.Update(ctx, regularUser("u1"), r.ID, ports.ReviewFields{Rating: intPtr(9)})
	if err != nil || updated.Rating != 9 {
		t.Fatalf("owner update failed: %v", err)
	}

	if err := svc.Delete(ctx, regularUser("u2"), r.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, admin(), r.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
}
