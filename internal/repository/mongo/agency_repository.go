package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"rev-saas-api/internal/model"
)

// AgencyRepository handles Agency data operations in MongoDB.
type AgencyRepository struct {
	collection *mongo.Collection
}

// NewAgencyRepository creates a new AgencyRepository.
func NewAgencyRepository(db *mongo.Database) *AgencyRepository {
	return &AgencyRepository{
		collection: db.Collection("agencies"),
	}
}

// Create inserts a new agency. The HMAC hash salt is generated by the caller
// (handler.AgencyHandler.Create) and stored as given.
func (r *AgencyRepository) Create(ctx context.Context, agency *model.Agency) error {
	agency.CreatedAt = time.Now().UTC()
	result, err := r.collection.InsertOne(ctx, agency)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		agency.ID = oid
	}
	return nil
}

// GetAgencyByID retrieves an agency by its ID. Implements store.AgencyStore.
func (r *AgencyRepository) GetAgencyByID(ctx context.Context, id primitive.ObjectID) (*model.Agency, error) {
	var agency model.Agency
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&agency)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &agency, nil
}

// Update updates an agency's configuration overrides.
func (r *AgencyRepository) Update(ctx context.Context, agency *model.Agency) error {
	filter := bson.M{"_id": agency.ID}
	update := bson.M{
		"$set": bson.M{
			"name":                             agency.Name,
			"baseline_lookback_days":           agency.BaselineLookbackDays,
			"min_subs_recommendation":          agency.MinSubsRecommendation,
			"min_subs_confident":               agency.MinSubsConfident,
			"category_taxonomy":                agency.CategoryTaxonomy,
			"weekly_plan_cap":                  agency.WeeklyPlanCap,
			"optimal_attribution_window_hours": agency.OptimalAttributionWindowHours,
		},
	}
	_, err := r.collection.UpdateOne(ctx, filter, update)
	return err
}
