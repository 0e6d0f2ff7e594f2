package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Agency is a creator-management agency — the tenant that owns Creators and
// AgencyUsers, and that HMAC-hashes its fans' external identifiers with a
// per-agency secret salt.
type Agency struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`

	// HashSaltHex is the per-agency secret salt (hex-encoded) mixed into
	// every fan's external identifier before it is hashed and stored. See
	// service.FanIDHasher.Hash.
	HashSaltHex string `bson:"hash_salt,omitempty" json:"-"`

	// Recognised configuration overrides, applied whenever a Creator under
	// this agency does not set its own override.
	BaselineLookbackDays          int      `bson:"baseline_lookback_days,omitempty" json:"baseline_lookback_days,omitempty"`
	MinSubsRecommendation         int      `bson:"min_subs_recommendation,omitempty" json:"min_subs_recommendation,omitempty"`
	MinSubsConfident              int      `bson:"min_subs_confident,omitempty" json:"min_subs_confident,omitempty"`
	CategoryTaxonomy              []string `bson:"category_taxonomy,omitempty" json:"category_taxonomy,omitempty"`
	WeeklyPlanCap                 int      `bson:"weekly_plan_cap,omitempty" json:"weekly_plan_cap,omitempty"`
	OptimalAttributionWindowHours int      `bson:"optimal_attribution_window_hours,omitempty" json:"optimal_attribution_window_hours,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
