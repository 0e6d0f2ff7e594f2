package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rev-saas-api/internal/model"
)

// FanRepository handles Fan data operations in MongoDB. It implements
// store.FanStore.
type FanRepository struct {
	collection *mongo.Collection
}

// NewFanRepository creates a new FanRepository.
func NewFanRepository(db *mongo.Database) *FanRepository {
	return &FanRepository{
		collection: db.Collection("fans"),
	}
}

// Create inserts a new fan acquisition event. The external identifier must
// already be hashed by the caller (service.FanIDHasher) before reaching
// this layer — the repository never sees a raw identifier.
func (r *FanRepository) Create(ctx context.Context, fan *model.Fan) error {
	fan.CreatedAt = time.Now().UTC()
	result, err := r.collection.InsertOne(ctx, fan)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		fan.ID = oid
	}
	return nil
}

// CountAcquired implements store.FanStore.
func (r *FanRepository) CountAcquired(ctx context.Context, creatorID primitive.ObjectID, t0, t1 time.Time) (int, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"creator_id":  creatorID,
		"acquired_at": bson.M{"$gte": t0, "$lt": t1},
	})
	return int(count), err
}

// ListAcquired implements store.FanStore.
func (r *FanRepository) ListAcquired(ctx context.Context, creatorID primitive.ObjectID, t0, t1 time.Time) ([]model.Fan, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"creator_id":  creatorID,
		"acquired_at": bson.M{"$gte": t0, "$lt": t1},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var fans []model.Fan
	if err := cursor.All(ctx, &fans); err != nil {
		return nil, err
	}
	return fans, nil
}

// ListUnattributed implements store.FanStore.
func (r *FanRepository) ListUnattributed(ctx context.Context, creatorID primitive.ObjectID) ([]model.Fan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "acquired_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{
		"creator_id":          creatorID,
		"attributed_category": bson.M{"$in": bson.A{"", nil}},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var fans []model.Fan
	if err := cursor.All(ctx, &fans); err != nil {
		return nil, err
	}
	return fans, nil
}

// ListByCategory implements store.FanStore.
func (r *FanRepository) ListByCategory(ctx context.Context, creatorID primitive.ObjectID, category string, t0, t1 time.Time) ([]model.Fan, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"creator_id":          creatorID,
		"attributed_category": category,
		"acquired_at":         bson.M{"$gte": t0, "$lt": t1},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var fans []model.Fan
	if err := cursor.All(ctx, &fans); err != nil {
		return nil, err
	}
	return fans, nil
}

// Save implements store.FanStore — upserts a fan's attribution fields.
func (r *FanRepository) Save(ctx context.Context, fan *model.Fan) error {
	filter := bson.M{"_id": fan.ID}
	update := bson.M{
		"$set": bson.M{
			"attributed_category": fan.AttributedCategory,
			"attribution_method":  fan.AttributionMethod,
			"confidence":          fan.Confidence,
			"weights":             fan.Weights,
		},
	}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
