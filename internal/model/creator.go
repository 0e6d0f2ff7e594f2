package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Creator is the identity of a talent managed by an agency. It owns posts,
// snapshots, fans, and confounder events (unidirectionally — Creator holds
// no back-references; reverse navigation is a query against those
// collections keyed by creator_id).
type Creator struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AgencyID primitive.ObjectID `bson:"agency_id" json:"agency_id"`
	Name     string             `bson:"name" json:"name"`
	Platform string             `bson:"platform,omitempty" json:"platform,omitempty"`
	Status   string             `bson:"status" json:"status"` // active | paused | archived

	// OptimalAttributionWindowHours is the per-creator default window for
	// fan re-attribution (AttributionEngine.AttributeFans). Learnable over
	// time; defaults to 48.
	OptimalAttributionWindowHours int `bson:"optimal_attribution_window_hours,omitempty" json:"optimal_attribution_window_hours,omitempty"`

	// BaselineLookbackDays overrides the agency's lookback (or
	// service.DefaultBaselineLookbackDays) for this creator only. Zero means
	// "use the agency default".
	BaselineLookbackDays int `bson:"baseline_lookback_days,omitempty" json:"baseline_lookback_days,omitempty"`

	// MinSubsRecommendation / MinSubsConfident override the agency-wide
	// confidence thresholds for this creator only. Zero means "use default".
	MinSubsRecommendation int `bson:"min_subs_recommendation,omitempty" json:"min_subs_recommendation,omitempty"`
	MinSubsConfident      int `bson:"min_subs_confident,omitempty" json:"min_subs_confident,omitempty"`

	// CategoryTaxonomy is this creator's allowed label set. Empty means
	// "use DefaultTaxonomy".
	CategoryTaxonomy []string `bson:"category_taxonomy,omitempty" json:"category_taxonomy,omitempty"`

	// WeeklyPlanCap overrides the agency default ceiling on suggested
	// posts/week. Zero means "use default".
	WeeklyPlanCap int `bson:"weekly_plan_cap,omitempty" json:"weekly_plan_cap,omitempty"`

	Currency string `bson:"currency,omitempty" json:"currency,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// IsActive reports whether the creator is currently active.
func (c *Creator) IsActive() bool {
	return c.Status == CreatorStatusActive || c.Status == ""
}

// EffectiveCurrency returns the creator's currency code, defaulting to USD.
func (c *Creator) EffectiveCurrency() string {
	if c.Currency != "" {
		return c.Currency
	}
	return DefaultCurrency
}
