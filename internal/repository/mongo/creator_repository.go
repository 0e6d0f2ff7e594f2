package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"rev-saas-api/internal/model"
)

// CreatorRepository handles Creator data operations in MongoDB. It
// implements store.CreatorStore.
type CreatorRepository struct {
	collection *mongo.Collection
}

// NewCreatorRepository creates a new CreatorRepository.
func NewCreatorRepository(db *mongo.Database) *CreatorRepository {
	return &CreatorRepository{
		collection: db.Collection("creators"),
	}
}

// Create inserts a new creator into the database.
func (r *CreatorRepository) Create(ctx context.Context, creator *model.Creator) error {
	creator.CreatedAt = time.Now().UTC()
	result, err := r.collection.InsertOne(ctx, creator)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		creator.ID = oid
	}
	return nil
}

// GetByID retrieves a creator by its ID. Implements store.CreatorStore.
func (r *CreatorRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Creator, error) {
	var creator model.Creator
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&creator)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &creator, nil
}

// ListByAgency returns every creator owned by an agency.
func (r *CreatorRepository) ListByAgency(ctx context.Context, agencyID primitive.ObjectID) ([]*model.Creator, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"agency_id": agencyID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var creators []*model.Creator
	if err := cursor.All(ctx, &creators); err != nil {
		return nil, err
	}
	return creators, nil
}

// Update updates a creator's configuration.
func (r *CreatorRepository) Update(ctx context.Context, creator *model.Creator) error {
	filter := bson.M{"_id": creator.ID}
	update := bson.M{
		"$set": bson.M{
			"name":                              creator.Name,
			"platform":                          creator.Platform,
			"status":                            creator.Status,
			"optimal_attribution_window_hours":  creator.OptimalAttributionWindowHours,
			"baseline_lookback_days":            creator.BaselineLookbackDays,
			"min_subs_recommendation":           creator.MinSubsRecommendation,
			"min_subs_confident":                creator.MinSubsConfident,
			"category_taxonomy":                 creator.CategoryTaxonomy,
			"weekly_plan_cap":                   creator.WeeklyPlanCap,
			"currency":                          creator.Currency,
		},
	}
	_, err := r.collection.UpdateOne(ctx, filter, update)
	return err
}

// Delete removes a creator from the database.
func (r *CreatorRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
