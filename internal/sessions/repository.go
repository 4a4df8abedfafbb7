package sessions

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository persists refresh-token revocation records.
type Repository interface {
	Put(ctx context.Context, rec *Record) error
	// IsLive reports whether a record exists for tokenID and has not expired.
	// Expired records found on lookup are removed.
	IsLive(ctx context.Context, tokenID string) (bool, error)
	// Delete is idempotent.
	Delete(ctx context.Context, tokenID string) error
	// Rotate atomically deletes oldID and stores next. It returns false and
	// stores nothing when oldID was not live, so of two concurrent rotations
	// of the same record exactly one succeeds.
	Rotate(ctx context.Context, oldID string, next *Record) (bool, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// MongoRepository implements Repository using a Mongo collection
type MongoRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col, now: time.Now}
}

// EnsureIndexes creates the TTL index on expiresAt and the per-user lookup index.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	})
	return err
}

func (r *MongoRepository) Put(ctx context.Context, rec *Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now().UTC()
	}
	_, err := r.col.InsertOne(ctx, rec)
	return err
}

func (r *MongoRepository) IsLive(ctx context.Context, tokenID string) (bool, error) {
	var rec Record
	if err := r.col.FindOne(ctx, bson.M{"_id": tokenID}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	// the TTL monitor runs about once a minute
	if !rec.Live(r.now()) {
		_ = r.Delete(ctx, tokenID)
		return false, nil
	}
	return true, nil
}

func (r *MongoRepository) Delete(ctx context.Context, tokenID string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": tokenID})
	return err
}

func (r *MongoRepository) Rotate(ctx context.Context, oldID string, next *Record) (bool, error) {
	res, err := r.col.DeleteOne(ctx, liveFilter(oldID, r.now()))
	if err != nil {
		return false, err
	}
	if res.DeletedCount == 0 {
		return false, nil
	}
	if err := r.Put(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// liveFilter matches the record for tokenID only while it is unexpired at now.
func liveFilter(tokenID string, now time.Time) bson.M {
	return bson.M{"_id": tokenID, "expiresAt": bson.M{"$gt": now.UTC()}}
}

func (r *MongoRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}
