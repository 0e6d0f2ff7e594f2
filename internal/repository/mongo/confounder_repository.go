package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"rev-saas-api/internal/model"
)

// ConfounderRepository handles ConfounderEvent data operations in MongoDB.
// It implements store.ConfounderStore.
type ConfounderRepository struct {
	collection *mongo.Collection
}

// NewConfounderRepository creates a new ConfounderRepository.
func NewConfounderRepository(db *mongo.Database) *ConfounderRepository {
	return &ConfounderRepository{
		collection: db.Collection("confounder_events"),
	}
}

// Create inserts a new confounder event.
func (r *ConfounderRepository) Create(ctx context.Context, event *model.ConfounderEvent) error {
	event.CreatedAt = time.Now().UTC()
	result, err := r.collection.InsertOne(ctx, event)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		event.ID = oid
	}
	return nil
}

// Update edits a confounder event's declared fields — these may be edited
// freely per spec.md §3.
func (r *ConfounderRepository) Update(ctx context.Context, event *model.ConfounderEvent) error {
	filter := bson.M{"_id": event.ID}
	update := bson.M{
		"$set": bson.M{
			"type":        event.Type,
			"start_at":    event.StartAt,
			"end_at":      event.EndAt,
			"impact":      event.Impact,
			"description": event.Description,
		},
	}
	_, err := r.collection.UpdateOne(ctx, filter, update)
	return err
}

// Delete removes a confounder event.
func (r *ConfounderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// ListOverlapping implements store.ConfounderStore using the overlap rule
// from spec.md §4.3: event_start <= w_end AND (event_end IS NULL OR
// event_end >= w_start).
func (r *ConfounderRepository) ListOverlapping(ctx context.Context, creatorID primitive.ObjectID, wStart, wEnd time.Time) ([]model.ConfounderEvent, error) {
	filter := bson.M{
		"creator_id": creatorID,
		"start_at":   bson.M{"$lte": wEnd},
		"$or": bson.A{
			bson.M{"end_at": nil},
			bson.M{"end_at": bson.M{"$exists": false}},
			bson.M{"end_at": bson.M{"$gte": wStart}},
		},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []model.ConfounderEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListByCreator returns every confounder event declared for a creator.
func (r *ConfounderRepository) ListByCreator(ctx context.Context, creatorID primitive.ObjectID) ([]model.ConfounderEvent, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"creator_id": creatorID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []model.ConfounderEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
