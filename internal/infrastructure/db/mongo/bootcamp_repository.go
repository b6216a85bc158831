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

const collectionBootcamps = "bootcamps"

type BootcampRepository struct {
	col *mongo.Collection
}

func NewBootcampRepository(db *mongo.Database) *BootcampRepository {
	return &BootcampRepository{col: db.Collection(collectionBootcamps)}
}

type locationDoc struct {
	Type             string    `bson:"type"`
	Coordinates      []float64 `bson:"coordinates"`
	FormattedAddress string    `bson:"formattedAddress,omitempty"`
	Street           string    `bson:"street,omitempty"`
	City             string    `bson:"city,omitempty"`
	State            string    `bson:"state,omitempty"`
	Zipcode          string    `bson:"zipcode,omitempty"`
	Country          string    `bson:"country,omitempty"`
}

type bootcampDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	User          primitive.ObjectID `bson:"user"`
	Name          string             `bson:"name"`
	Slug          string             `bson:"slug"`
	Description   string             `bson:"description"`
	Website       string             `bson:"website,omitempty"`
	Phone         string             `bson:"phone,omitempty"`
	Email         string             `bson:"email,omitempty"`
	Location      *locationDoc       `bson:"location,omitempty"`
	Careers       []string           `bson:"careers"`
	AverageRating *float64           `bson:"averageRating,omitempty"`
	AverageCost   *float64           `bson:"averageCost,omitempty"`
	Photo         string             `bson:"photo"`
	Housing       bool               `bson:"housing"`
	JobAssistance bool               `bson:"jobAssistance"`
	JobGuarantee  bool               `bson:"jobGuarantee"`
	AcceptGi      bool               `bson:"acceptGi"`
	CreatedAt     time.Time          `bson:"createdAt"`
}

func newBootcampDoc(b *domain.Bootcamp) bootcampDoc {
	doc := bootcampDoc{
		User:          refID(b.User),
		Name:          b.Name,
		Slug:          b.Slug,
		Description:   b.Description,
		Website:       b.Website,
		Phone:         b.Phone,
		Email:         b.Email,
		Careers:       b.Careers,
		AverageRating: b.AverageRating,
		AverageCost:   b.AverageCost,
		Photo:         b.Photo,
		Housing:       b.Housing,
		JobAssistance: b.JobAssistance,
		JobGuarantee:  b.JobGuarantee,
		AcceptGi:      b.AcceptGi,
		CreatedAt:     b.CreatedAt,
	}
	if l := b.Location; l != nil {
		doc.Location = &locationDoc{
			Type:             l.Type,
			Coordinates:      []float64{l.Lng(), l.Lat()},
			FormattedAddress: l.FormattedAddress,
			Street:           l.Street,
			City:             l.City,
			State:            l.State,
			Zipcode:          l.Zipcode,
			Country:          l.Country,
		}
	}
	return doc
}

func (d bootcampDoc) toDomain() *domain.Bootcamp {
	b := &domain.Bootcamp{
		ID:            hexID(d.ID),
		User:          hexID(d.User),
		Name:          d.Name,
		Slug:          d.Slug,
		Description:   d.Description,
		Website:       d.Website,
		Phone:         d.Phone,
		Email:         d.Email,
		Careers:       d.Careers,
		AverageRating: d.AverageRating,
		AverageCost:   d.AverageCost,
		Photo:         d.Photo,
		Housing:       d.Housing,
		JobAssistance: d.JobAssistance,
		JobGuarantee:  d.JobGuarantee,
		AcceptGi:      d.AcceptGi,
		CreatedAt:     d.CreatedAt,
	}
	if l := d.Location; l != nil {
		loc := &domain.Location{
			Type:             l.Type,
			FormattedAddress: l.FormattedAddress,
			Street:           l.Street,
			City:             l.City,
			State:            l.State,
			Zipcode:          l.Zipcode,
			Country:          l.Country,
		}
		copy(loc.Coordinates[:], l.Coordinates)
		b.Location = loc
	}
	return b
}

func (r *BootcampRepository) Create(ctx context.Context, b *domain.Bootcamp) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, newBootcampDoc(b))
	if err != nil {
		return writeErr("insert bootcamp", err)
	}
	b.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *BootcampRepository) FindByID(ctx context.Context, id string) (*domain.Bootcamp, error) {
	oid, err := objectID("bootcamp", id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc bootcampDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if notFound(err) {
			return nil, domain.NotFound("bootcamp", id)
		}
		return nil, fmt.Errorf("find bootcamp: %w", err)
	}
	return doc.toDomain(), nil
}

// Update writes the editable fields only. Photo and the aggregates have their
// own setters so a concurrent recalculation is never overwritten.
func (r *BootcampRepository) Update(ctx context.Context, b *domain.Bootcamp) error {
	oid, err := objectID("bootcamp", b.ID)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := newBootcampDoc(b)
	set := bson.M{
		"name":          doc.Name,
		"slug":          doc.Slug,
		"description":   doc.Description,
		"website":       doc.Website,
		"phone":         doc.Phone,
		"email":         doc.Email,
		"careers":       doc.Careers,
		"housing":       doc.Housing,
		"jobAssistance": doc.JobAssistance,
		"jobGuarantee":  doc.JobGuarantee,
		"acceptGi":      doc.AcceptGi,
	}
	if doc.Location != nil {
		set["location"] = doc.Location
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return writeErr("update bootcamp", err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFound("bootcamp", b.ID)
	}
	return nil
}

func (r *BootcampRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID("bootcamp", id)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete bootcamp: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.NotFound("bootcamp", id)
	}
	return nil
}

func (r *BootcampRepository) List(ctx context.Context, q query.Query) ([]*domain.Bootcamp, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := buildFilter(q)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count bootcamps: %w", err)
	}
	items, err := r.find(ctx, filter, findOptions(q))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *BootcampRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"user": refID(userID)})
	if err != nil {
		return 0, fmt.Errorf("count bootcamps by user: %w", err)
	}
	return n, nil
}

func (r *BootcampRepository) WithinRadius(ctx context.Context, lng, lat, radius float64) ([]*domain.Bootcamp, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"location": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{bson.A{lng, lat}, radius},
			},
		},
	}
	return r.find(ctx, filter, options.Find())
}

func (r *BootcampRepository) Summaries(ctx context.Context, ids []string) (map[string]domain.BootcampSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.D{{Key: "name", Value: 1}, {Key: "description", Value: 1}})
	items, err := r.find(ctx, bson.M{"_id": bson.M{"$in": refIDs(ids)}}, opts)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.BootcampSummary, len(items))
	for _, b := range items {
		out[b.ID] = domain.BootcampSummary{ID: b.ID, Name: b.Name, Description: b.Description}
	}
	return out, nil
}

func (r *BootcampRepository) find(ctx context.Context, filter any, opts *options.FindOptions) ([]*domain.Bootcamp, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find bootcamps: %w", err)
	}
	var docs []bootcampDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode bootcamps: %w", err)
	}
	items := make([]*domain.Bootcamp, len(docs))
	for i, d := range docs {
		items[i] = d.toDomain()
	}
	return items, nil
}

func (r *BootcampRepository) SetPhoto(ctx context.Context, id, photo string) error {
	return r.patch(ctx, id, bson.M{"$set": bson.M{"photo": photo}})
}

func (r *BootcampRepository) SetAverageCost(ctx context.Context, id string, avg *float64) error {
	return r.patch(ctx, id, setOrUnset("averageCost", avg))
}

func (r *BootcampRepository) SetAverageRating(ctx context.Context, id string, avg *float64) error {
	return r.patch(ctx, id, setOrUnset("averageRating", avg))
}

func setOrUnset(field string, v *float64) bson.M {
	if v == nil {
		return bson.M{"$unset": bson.M{field: ""}}
	}
	return bson.M{"$set": bson.M{field: *v}}
}

func (r *BootcampRepository) patch(ctx context.Context, id string, update bson.M) error {
	oid, err := objectID("bootcamp", id)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("patch bootcamp: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFound("bootcamp", id)
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the bootcamps collection.
func (r *BootcampRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "slug", Value: 1}}},
		{Keys: bson.D{{Key: "user", Value: 1}}},
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
