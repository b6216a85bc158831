package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devcamper/devcamper-api/internal/core/domain"
	"github.com/devcamper/devcamper-api/internal/core/query"
)

const collectionCourses = "courses"

type CourseRepository struct {
	col *mongo.Collection
}

func NewCourseRepository(db *mongo.Database) *CourseRepository {
	return &CourseRepository{col: db.Collection(collectionCourses)}
}

type courseDoc struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty"`
	Title                string             `bson:"title"`
	Description          string             `bson:"description"`
	Weeks                int                `bson:"weeks"`
	Tuition              float64            `bson:"tuition"`
	MinimumSkill         string             `bson:"minimumSkill"`
	ScholarshipAvailable bool               `bson:"scholarshipAvailable"`
	Bootcamp             primitive.ObjectID `bson:"bootcamp"`
	User                 primitive.ObjectID `bson:"user"`
	CreatedAt            time.Time          `bson:"createdAt"`
}

func newCourseDoc(c *domain.Course) courseDoc {
	return courseDoc{
		Title:                c.Title,
		Description:          c.Description,
		Weeks:                c.Weeks,
		Tuition:              c.Tuition,
		MinimumSkill:         c.MinimumSkill,
		ScholarshipAvailable: c.ScholarshipAvailable,
		Bootcamp:             refID(c.Bootcamp),
		User:                 refID(c.User),
		CreatedAt:            c.CreatedAt,
	}
}

func (d courseDoc) toDomain() *domain.Course {
	return &domain.Course{
		ID:                   hexID(d.ID),
		Title:                d.Title,
		Description:          d.Description,
		Weeks:                d.Weeks,
		Tuition:              d.Tuition,
		MinimumSkill:         d.MinimumSkill,
		ScholarshipAvailable: d.ScholarshipAvailable,
		Bootcamp:             hexID(d.Bootcamp),
		User:                 hexID(d.User),
		CreatedAt:            d.CreatedAt,
	}
}

func (r *CourseRepository) Create(ctx context.Context, c *domain.Course) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, newCourseDoc(c))
	if err != nil {
		return writeErr("insert course", err)
	}
	c.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *CourseRepository) FindByID(ctx context.Context, id string) (*domain.Course, error) {
	oid, err := objectID("course", id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc courseDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if notFound(err) {
			return nil, domain.NotFound("course", id)
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *CourseRepository) Update(ctx context.Context, c *domain.Course) error {
	oid, err := objectID("course", c.ID)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := newCourseDoc(c)
	doc.ID = oid
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return writeErr("update course", err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFound("course", c.ID)
	}
	return nil
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID("course", id)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.NotFound("course", id)
	}
	return nil
}

func (r *CourseRepository) List(ctx context.Context, q query.Query) ([]*domain.Course, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := buildFilter(q)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	items, err := r.find(ctx, filter, findOptions(q))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *CourseRepository) ListByBootcamp(ctx context.Context, bootcampID string) ([]*domain.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return r.find(ctx, bson.M{"bootcamp": refID(bootcampID)}, opts)
}

func (r *CourseRepository) GroupByBootcamp(ctx context.Context, bootcampIDs []string) (map[string][]domain.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	items, err := r.find(ctx, bson.M{"bootcamp": bson.M{"$in": refIDs(bootcampIDs)}}, opts)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]domain.Course, len(bootcampIDs))
	for _, c := range items {
		out[c.Bootcamp] = append(out[c.Bootcamp], *c)
	}
	return out, nil
}

func (r *CourseRepository) DeleteByBootcamp(ctx context.Context, bootcampID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"bootcamp": refID(bootcampID)})
	if err != nil {
		return 0, fmt.Errorf("delete courses: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *CourseRepository) AverageTuition(ctx context.Context, bootcampID string) (float64, bool, error) {
	return average(ctx, r.col, bootcampID, "$tuition")
}

func (r *CourseRepository) find(ctx context.Context, filter any, opts *options.FindOptions) ([]*domain.Course, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find courses: %w", err)
	}
	var docs []courseDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode courses: %w", err)
	}
	items := make([]*domain.Course, len(docs))
	for i, d := range docs {
		items[i] = d.toDomain()
	}
	return items, nil
}

// EnsureIndexes creates necessary indexes on the courses collection.
func (r *CourseRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "bootcamp", Value: 1}}},
		{Keys: bson.D{{Key: "user", Value: 1}}},
		{Keys: bson.D{{Key: "tuition", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// average runs {$match: {bootcamp}} → {$group: {$avg: expr}} over col.
func average(ctx context.Context, col *mongo.Collection, bootcampID, expr string) (float64, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"bootcamp": refID(bootcampID)}}},
		{{Key: "$group", Value: bson.M{"_id": "$bootcamp", "avg": bson.M{"$avg": expr}}}},
	}
	cur, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, false, fmt.Errorf("aggregate %s: %w", expr, err)
	}
	var rows []struct {
		Avg float64 `bson:"avg"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, false, fmt.Errorf("decode %s average: %w", expr, err)
	}
	if len(rows) == 0 {
		return 0, false, nil
	}
	return rows[0].Avg, true, nil
}
