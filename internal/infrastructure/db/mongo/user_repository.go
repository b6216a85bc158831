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

const collectionUsers = "users"

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type userDoc struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	Name                string             `bson:"name"`
	Email               string             `bson:"email"`
	Role                string             `bson:"role"`
	Password            string             `bson:"password"`
	ResetPasswordToken  string             `bson:"resetPasswordToken,omitempty"`
	ResetPasswordExpire *time.Time         `bson:"resetPasswordExpire,omitempty"`
	CreatedAt           time.Time          `bson:"createdAt"`
}

func newUserDoc(u *domain.User) userDoc {
	doc := userDoc{
		Name:               u.Name,
		Email:              u.Email,
		Role:               u.Role,
		Password:           u.PasswordHash,
		ResetPasswordToken: u.ResetPasswordToken,
		CreatedAt:          u.CreatedAt,
	}
	if !u.ResetPasswordExpire.IsZero() {
		t := u.ResetPasswordExpire
		doc.ResetPasswordExpire = &t
	}
	return doc
}

func (d userDoc) toDomain() *domain.User {
	u := &domain.User{
		ID:                 hexID(d.ID),
		Name:               d.Name,
		Email:              d.Email,
		Role:               d.Role,
		PasswordHash:       d.Password,
		ResetPasswordToken: d.ResetPasswordToken,
		CreatedAt:          d.CreatedAt,
	}
	if d.ResetPasswordExpire != nil {
		u.ResetPasswordExpire = d.ResetPasswordExpire.UTC()
	}
	return u
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, newUserDoc(u))
	if err != nil {
		return writeErr("insert user", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := objectID("user", id)
	if err != nil {
		return nil, err
	}
	u, err := r.findOne(ctx, bson.M{"_id": oid})
	if notFound(err) {
		return nil, domain.NotFound("user", id)
	}
	return u, err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := r.findOne(ctx, bson.M{"email": email})
	if notFound(err) {
		return nil, domain.Errorf(domain.ErrNotFound, "No user with email %s", email)
	}
	return u, err
}

// ConsumeResetToken matches on the token and its expiry and spends it in the
// same FindOneAndUpdate, so only one caller can ever win a given token.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (*domain.User, error) {
	if tokenHash == "" {
		return nil, domain.ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDoc
	err := r.col.FindOneAndUpdate(ctx, resetTokenFilter(tokenHash, now), consumeResetUpdate(passwordHash), opts).Decode(&doc)
	if notFound(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("consume reset token: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expire time.Time) error {
	oid, err := objectID("user", id)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, resetTokenUpdate(tokenHash, expire))
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFound("user", id)
	}
	return nil
}

func resetTokenFilter(tokenHash string, now time.Time) bson.M {
	return bson.M{
		"resetPasswordToken":  tokenHash,
		"resetPasswordExpire": bson.M{"$gt": now},
	}
}

func consumeResetUpdate(passwordHash string) bson.M {
	return bson.M{
		"$set":   bson.M{"password": passwordHash},
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpire": ""},
	}
}

func resetTokenUpdate(tokenHash string, expire time.Time) bson.M {
	if tokenHash == "" {
		return bson.M{"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpire": ""}}
	}
	return bson.M{"$set": bson.M{"resetPasswordToken": tokenHash, "resetPasswordExpire": expire}}
}

// profileUpdate is the $set applied by Update. Reset-token fields are left
// alone so an unrelated profile write cannot revive or drop a pending reset.
func profileUpdate(u *domain.User) bson.M {
	return bson.M{"$set": bson.M{
		"name":     u.Name,
		"email":    u.Email,
		"role":     u.Role,
		"password": u.PasswordHash,
	}}
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if notFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	oid, err := objectID("user", u.ID)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, profileUpdate(u))
	if err != nil {
		return writeErr("update user", err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFound("user", u.ID)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID("user", id)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.NotFound("user", id)
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, q query.Query) ([]*domain.User, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := buildFilter(q)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	cur, err := r.col.Find(ctx, filter, findOptions(q))
	if err != nil {
		return nil, 0, fmt.Errorf("find users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode users: %w", err)
	}

	users := make([]*domain.User, len(docs))
	for i, d := range docs {
		users[i] = d.toDomain()
	}
	return users, total, nil
}

// EnsureIndexes creates necessary indexes on the users collection.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "resetPasswordToken", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
