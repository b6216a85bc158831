package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/devcamper/devcamper-api/internal/core/domain"
	"github.com/devcamper/devcamper-api/internal/core/ports"
	"github.com/devcamper/devcamper-api/internal/core/query"
)

var nopLog = zerolog.New(io.Discard)

var errStore = errors.New("store unavailable")

// idSeq hands out readable ids so failures are easy to follow.
type idSeq struct {
	mu sync.Mutex
	n  int
}

func (s *idSeq) next(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s%d", prefix, s.n)
}

// ── users ─────────────────────────────────────────────────────────────────────

type stubUserRepo struct {
	mu    sync.Mutex
	ids   idSeq
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return domain.Errorf(domain.ErrDuplicate, "Duplicate field value entered")
		}
	}
	u.ID = r.ids.next("u")
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.NotFound("user", id)
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.Errorf(domain.ErrNotFound, "No user with email %s", email)
}

func (r *stubUserRepo) ConsumeResetToken(_ context.Context, hash string, now time.Time, passwordHash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetPasswordToken != "" && u.ResetPasswordToken == hash && u.ResetPasswordExpire.After(now) {
			u.PasswordHash = passwordHash
			u.ResetPasswordToken = ""
			u.ResetPasswordExpire = time.Time{}
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubUserRepo) SetResetToken(_ context.Context, id, hash string, expire time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.NotFound("user", id)
	}
	u.ResetPasswordToken = hash
	u.ResetPasswordExpire = expire
	return nil
}

// Update mirrors the Mongo $set: profile fields only, reset fields untouched.
func (r *stubUserRepo) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[u.ID]
	if !ok {
		return domain.NotFound("user", u.ID)
	}
	stored.Name = u.Name
	stored.Email = u.Email
	stored.Role = u.Role
	stored.PasswordHash = u.PasswordHash
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.NotFound("user", id)
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) List(_ context.Context, q query.Query) ([]*domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, q), int64(len(out)), nil
}

// ── bootcamps ─────────────────────────────────────────────────────────────────

type stubBootcampRepo struct {
	ids       idSeq
	bootcamps map[string]*domain.Bootcamp
	radius    []float64
}

func newStubBootcampRepo() *stubBootcampRepo {
	return &stubBootcampRepo{bootcamps: make(map[string]*domain.Bootcamp)}
}

func cloneBootcamp(b *domain.Bootcamp) *domain.Bootcamp {
	c := *b
	return &c
}

func (r *stubBootcampRepo) Create(_ context.Context, b *domain.Bootcamp) error {
	for _, existing := range r.bootcamps {
		if existing.Name == b.Name {
			return domain.Errorf(domain.ErrDuplicate, "Duplicate field value entered")
		}
	}
	b.ID = r.ids.next("b")
	r.bootcamps[b.ID] = cloneBootcamp(b)
	return nil
}

func (r *stubBootcampRepo) FindByID(_ context.Context, id string) (*domain.Bootcamp, error) {
	b, ok := r.bootcamps[id]
	if !ok {
		return nil, domain.NotFound("bootcamp", id)
	}
	return cloneBootcamp(b), nil
}

func (r *stubBootcampRepo) Update(_ context.Context, b *domain.Bootcamp) error {
	if _, ok := r.bootcamps[b.ID]; !ok {
		return domain.NotFound("bootcamp", b.ID)
	}
	r.bootcamps[b.ID] = cloneBootcamp(b)
	return nil
}

func (r *stubBootcampRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.bootcamps[id]; !ok {
		return domain.NotFound("bootcamp", id)
	}
	delete(r.bootcamps, id)
	return nil
}

func (r *stubBootcampRepo) List(_ context.Context, q query.Query) ([]*domain.Bootcamp, int64, error) {
	var out []*domain.Bootcamp
	for _, b := range r.bootcamps {
		out = append(out, cloneBootcamp(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, q), int64(len(out)), nil
}

func (r *stubBootcampRepo) CountByUser(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, b := range r.bootcamps {
		if b.User == userID {
			n++
		}
	}
	return n, nil
}

func (r *stubBootcampRepo) WithinRadius(_ context.Context, lng, lat, radius float64) ([]*domain.Bootcamp, error) {
	r.radius = []float64{lng, lat, radius}
	var out []*domain.Bootcamp
	for _, b := range r.bootcamps {
		out = append(out, cloneBootcamp(b))
	}
	return out, nil
}

func (r *stubBootcampRepo) Summaries(_ context.Context, ids []string) (map[string]domain.BootcampSummary, error) {
	out := make(map[string]domain.BootcampSummary)
	for _, id := range ids {
		if b, ok := r.bootcamps[id]; ok {
			out[id] = domain.BootcampSummary{ID: b.ID, Name: b.Name, Description: b.Description}
		}
	}
	return out, nil
}

func (r *stubBootcampRepo) SetPhoto(_ context.Context, id, photo string) error {
	b, ok := r.bootcamps[id]
	if !ok {
		return domain.NotFound("bootcamp", id)
	}
	b.Photo = photo
	return nil
}

func (r *stubBootcampRepo) SetAverageCost(_ context.Context, id string, avg *float64) error {
	b, ok := r.bootcamps[id]
	if !ok {
		return domain.NotFound("bootcamp", id)
	}
	b.AverageCost = avg
	return nil
}

func (r *stubBootcampRepo) SetAverageRating(_ context.Context, id string, avg *float64) error {
	b, ok := r.bootcamps[id]
	if !ok {
		return domain.NotFound("bootcamp", id)
	}
	b.AverageRating = avg
	return nil
}

// ── courses ───────────────────────────────────────────────────────────────────

type stubCourseRepo struct {
	ids       idSeq
	courses   map[string]*domain.Course
	deleteErr error
}

func newStubCourseRepo() *stubCourseRepo {
	return &stubCourseRepo{courses: make(map[string]*domain.Course)}
}

func cloneCourse(c *domain.Course) *domain.Course {
	cp := *c
	return &cp
}

func (r *stubCourseRepo) Create(_ context.Context, c *domain.Course) error {
	c.ID = r.ids.next("c")
	r.courses[c.ID] = cloneCourse(c)
	return nil
}

func (r *stubCourseRepo) FindByID(_ context.Context, id string) (*domain.Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return nil, domain.NotFound("course", id)
	}
	return cloneCourse(c), nil
}

func (r *stubCourseRepo) Update(_ context.Context, c *domain.Course) error {
	if _, ok := r.courses[c.ID]; !ok {
		return domain.NotFound("course", c.ID)
	}
	r.courses[c.ID] = cloneCourse(c)
	return nil
}

func (r *stubCourseRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.courses[id]; !ok {
		return domain.NotFound("course", id)
	}
	delete(r.courses, id)
	return nil
}

// List honours numeric conditions on tuition, which is all the tests filter on.
func (r *stubCourseRepo) List(_ context.Context, q query.Query) ([]*domain.Course, int64, error) {
	var out []*domain.Course
	for _, c := range r.courses {
		if matchesNumber(q, "tuition", c.Tuition) {
			out = append(out, cloneCourse(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, q), int64(len(out)), nil
}

func (r *stubCourseRepo) ListByBootcamp(_ context.Context, bootcampID string) ([]*domain.Course, error) {
	var out []*domain.Course
	for _, c := range r.courses {
		if c.Bootcamp == bootcampID {
			out = append(out, cloneCourse(c))
		}
	}
	return out, nil
}

func (r *stubCourseRepo) GroupByBootcamp(_ context.Context, ids []string) (map[string][]domain.Course, error) {
	out := make(map[string][]domain.Course)
	for _, id := range ids {
		for _, c := range r.courses {
			if c.Bootcamp == id {
				out[id] = append(out[id], *c)
			}
		}
	}
	return out, nil
}

func (r *stubCourseRepo) DeleteByBootcamp(_ context.Context, bootcampID string) (int64, error) {
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	var n int64
	for id, c := range r.courses {
		if c.Bootcamp == bootcampID {
			delete(r.courses, id)
			n++
		}
	}
	return n, nil
}

func (r *stubCourseRepo) AverageTuition(_ context.Context, bootcampID string) (float64, bool, error) {
	var sum float64
	var n int
	for _, c := range r.courses {
		if c.Bootcamp == bootcampID {
			sum += c.Tuition
			n++
		}
	}
	if n == 0 {
		return 0, false, nil
	}
	return sum / float64(n), true, nil
}

// ── reviews ───────────────────────────────────────────────────────────────────

type stubReviewRepo struct {
	ids     idSeq
	reviews map[string]*domain.Review
}

func newStubReviewRepo() *stubReviewRepo {
	return &stubReviewRepo{reviews: make(map[string]*domain.Review)}
}

func cloneReview(r *domain.Review) *domain.Review {
	c := *r
	return &c
}

func (r *stubReviewRepo) Create(_ context.Context, rv *domain.Review) error {
	for _, existing := range r.reviews {
		if existing.Bootcamp == rv.Bootcamp && existing.User == rv.User {
			return domain.Errorf(domain.ErrDuplicate, "Duplicate field value entered")
		}
	}
	rv.ID = r.ids.next("r")
	r.reviews[rv.ID] = cloneReview(rv)
	return nil
}

func (r *stubReviewRepo) FindByID(_ context.Context, id string) (*domain.Review, error) {
	rv, ok := r.reviews[id]
	if !ok {
		return nil, domain.NotFound("review", id)
	}
	return cloneReview(rv), nil
}

func (r *stubReviewRepo) Update(_ context.Context, rv *domain.Review) error {
	if _, ok := r.reviews[rv.ID]; !ok {
		return domain.NotFound("review", rv.ID)
	}
	r.reviews[rv.ID] = cloneReview(rv)
	return nil
}

func (r *stubReviewRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.reviews[id]; !ok {
		return domain.NotFound("review", id)
	}
	delete(r.reviews, id)
	return nil
}

func (r *stubReviewRepo) List(_ context.Context, q query.Query) ([]*domain.Review, int64, error) {
	var out []*domain.Review
	for _, rv := range r.reviews {
		out = append(out, cloneReview(rv))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, q), int64(len(out)), nil
}

func (r *stubReviewRepo) ListByBootcamp(_ context.Context, bootcampID string) ([]*domain.Review, error) {
	var out []*domain.Review
	for _, rv := range r.reviews {
		if rv.Bootcamp == bootcampID {
			out = append(out, cloneReview(rv))
		}
	}
	return out, nil
}

func (r *stubReviewRepo) DeleteByBootcamp(_ context.Context, bootcampID string) (int64, error) {
	var n int64
	for id, rv := range r.reviews {
		if rv.Bootcamp == bootcampID {
			delete(r.reviews, id)
			n++
		}
	}
	return n, nil
}

func (r *stubReviewRepo) AverageRating(_ context.Context, bootcampID string) (float64, bool, error) {
	var sum, n int
	for _, rv := range r.reviews {
		if rv.Bootcamp == bootcampID {
			sum += rv.Rating
			n++
		}
	}
	if n == 0 {
		return 0, false, nil
	}
	return float64(sum) / float64(n), true, nil
}

// ── integrations ──────────────────────────────────────────────────────────────

type stubGeocoder struct {
	loc   *domain.Location
	err   error
	calls []string
}

func (g *stubGeocoder) Geocode(_ context.Context, address string) (*domain.Location, error) {
	g.calls = append(g.calls, address)
	if g.err != nil {
		return nil, g.err
	}
	if g.loc != nil {
		loc := *g.loc
		return &loc, nil
	}
	return &domain.Location{Type: "Point", Coordinates: [2]float64{-71.104, 42.350}, City: "Boston"}, nil
}

type stubMailer struct {
	sent []ports.Message
	err  error
}

func (m *stubMailer) Send(_ context.Context, msg ports.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type stubPhotoStore struct {
	saved map[string][]byte
}

func (p *stubPhotoStore) Save(_ context.Context, name string, data []byte) error {
	if p.saved == nil {
		p.saved = make(map[string][]byte)
	}
	p.saved[name] = data
	return nil
}

type recordingScheduler struct {
	scheduled []string
}

func (s *recordingScheduler) Schedule(bootcampID string) {
	s.scheduled = append(s.scheduled, bootcampID)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func page[T any](items []T, q query.Query) []T {
	start := int(q.Skip())
	if start >= len(items) {
		return nil
	}
	end := min(start+q.Limit, len(items))
	return items[start:end]
}

func matchesNumber(q query.Query, field string, v float64) bool {
	for _, c := range q.Conditions {
		if c.Field != field {
			continue
		}
		bound, _ := c.Value.(float64)
		switch c.Op {
		case query.OpEq:
			if v != bound {
				return false
			}
		case query.OpGt:
			if v <= bound {
				return false
			}
		case query.OpGte:
			if v < bound {
				return false
			}
		case query.OpLt:
			if v >= bound {
				return false
			}
		case query.OpLte:
			if v > bound {
				return false
			}
		}
	}
	return true
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

func admin() *domain.User {
	return &domain.User{ID: "admin1", Name: "Admin", Email: "admin@devcamper.io", Role: domain.RoleAdmin}
}

func publisher(id string) *domain.User {
	return &domain.User{ID: id, Name: "Publisher " + id, Email: id + "@devcamper.io", Role: domain.RolePublisher}
}

func regularUser(id string) *domain.User {
	return &domain.User{ID: id, Name: "User " + id, Email: id + "@devcamper.io", Role: domain.RoleUser}
}
