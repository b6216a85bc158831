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

const collectionReviews = "reviews"

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection(collectionReviews)}
}

type reviewDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Text      string             `bson:"text"`
	Rating    int                `bson:"rating"`
	Bootcamp  primitive.ObjectID `bson:"bootcamp"`
	User      primitive.ObjectID `bson:"user"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func newReviewDoc(r *domain.Review) reviewDoc {
	return reviewDoc{
		Title:     r.Title,
		Text:      r.Text,
		Rating:    r.Rating,
		Bootcamp:  refID(r.Bootcamp),
		User:      refID(r.User),
		CreatedAt: r.CreatedAt,
	}
}

func (d reviewDoc) toDomain() *domain.Review {
	return &domain.Review{
		ID:        hexID(d.ID),
		Title:     d.Title,
		Text:      d.Text,
		Rating:    d.Rating,
		Bootcamp:  hexID(d.Bootcamp),
		User:      hexID(d.User),
		CreatedAt: d.CreatedAt,
	}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, newReviewDoc(rv))
	if err != nil {
		return writeErr("insert review", err)
	}
	rv.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	oid, err := objectID("review", id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc reviewDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if notFound(err) {
			return nil, domain.NotFound("review", id)
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ReviewRepository) Update(ctx context.Context, rv *domain.Review) error {
	oid, err := objectID("review", rv.ID)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := newReviewDoc(rv)
	doc.ID = oid
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return writeErr("update review", err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFound("review", rv.ID)
	}
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID("review", id)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.NotFound("review", id)
	}
	return nil
}

func (r *ReviewRepository) List(ctx context.Context, q query.Query) ([]*domain.Review, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := buildFilter(q)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}
	items, err := r.find(ctx, filter, findOptions(q))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ReviewRepository) ListByBootcamp(ctx context.Context, bootcampID string) ([]*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{"bootcamp": refID(bootcampID)}, opts)
}

func (r *ReviewRepository) DeleteByBootcamp(ctx context.Context, bootcampID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"bootcamp": refID(bootcampID)})
	if err != nil {
		return 0, fmt.Errorf("delete reviews: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *ReviewRepository) AverageRating(ctx context.Context, bootcampID string) (float64, bool, error) {
	return average(ctx, r.col, bootcampID, "$rating")
}

func (r *ReviewRepository) find(ctx context.Context, filter any, opts *options.FindOptions) ([]*domain.Review, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	var docs []reviewDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	items := make([]*domain.Review, len(docs))
	for i, d := range docs {
		items[i] = d.toDomain()
	}
	return items, nil
}

// EnsureIndexes creates necessary indexes on the reviews collection. The
// compound unique index limits a user to one review per bootcamp.
func (r *ReviewRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "bootcamp", Value: 1}, {Key: "user", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "rating", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
