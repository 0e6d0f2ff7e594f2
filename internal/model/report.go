package model

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Baseline is BaselineBuilder.Build's result: an expected-rate model for a
// creator over a lookback window ending strictly at BaselineEnd.
type Baseline struct {
	SubsPerDay           float64            `json:"subs_per_day"`
	RevPerDay            decimal.Decimal    `json:"rev_per_day"`
	SubsPer1kDeltaViews  float64            `json:"subs_per_1k_delta_views"`
	DataDays             int                `json:"data_days"`
	IsDefault            bool               `json:"is_default"`
	DowFactors           [7]float64         `json:"dow_factors"` // index 0 = Sunday, matching time.Weekday
	BaselineEnd          time.Time          `json:"baseline_end"`
}

// ConfidenceResult is ConfidenceScorer.Score's output.
type ConfidenceResult struct {
	Score         float64  `json:"score"` // clamped to [0.1, 0.95]
	Level         string   `json:"level"` // low | medium | high
	Reasons       []string `json:"reasons"`
	MinEventsMet  bool     `json:"min_events_met"`
	PoissonP      *float64 `json:"poisson_p,omitempty"`
}

// AttributionReport is AttributionEngine.Attribute's result.
type AttributionReport struct {
	CreatorID   primitive.ObjectID `json:"creator_id"`
	WindowStart time.Time          `json:"window_start"`
	WindowEnd   time.Time          `json:"window_end"`
	WindowHours float64            `json:"window_hours"`

	Baseline Baseline `json:"baseline"`

	ExpectedSubs  float64 `json:"expected_subs"`
	ActualSubs    int     `json:"actual_subs"`
	SubsLiftPct   float64 `json:"subs_lift_pct"`

	ExpectedRevenue decimal.Decimal `json:"expected_revenue"`
	ActualRevenue   decimal.Decimal `json:"actual_revenue"`
	RevenueLiftPct  float64         `json:"revenue_lift_pct"`
	Currency        string          `json:"currency"`

	ContentTypeDeltas map[string]CategoryDelta `json:"content_type_deltas"`
	CreditWeights     map[string]float64       `json:"credit_weights"`
	TotalDeltaViews   int64                    `json:"total_delta_views"`

	Confounders []ConfounderEvent `json:"confounders"`

	Confidence ConfidenceResult `json:"confidence"`

	RecommendationTier string `json:"recommendation_tier"` // confident | hypothesis

	// Notes carries non-fatal annotations such as credit-weight ties.
	Notes []string `json:"notes,omitempty"`
}

// HasConfounders reports whether any confounder overlapped the window.
func (r *AttributionReport) HasConfounders() bool {
	return len(r.Confounders) > 0
}

// CategoryDecision is one category's entry in RecommendationEngine.Generate's
// output — the tagged-variant union collapsed into one struct with an
// explicit Tier discriminator, per spec.md §9 ("Dynamic result shapes").
type CategoryDecision struct {
	Category string  `json:"category"`
	Tier     string  `json:"tier"` // confident | hypothesis | insufficient_data
	Action   string  `json:"action,omitempty"` // increase | decrease | maintain | test

	Subs       int     `json:"subs"`
	ShareOfViews float64 `json:"share_of_views"`
	LiftPct    float64 `json:"lift_pct"`
	ViewsDelta int64   `json:"views_delta"`

	Confidence ConfidenceResult `json:"confidence"`
	HasConfounder bool `json:"has_confounder"`

	Reason             string `json:"reason,omitempty"`
	CurrentPostsPerWeek float64 `json:"current_posts_per_week"`
	SuggestedPostsPerWeek float64 `json:"suggested_posts_per_week"`
}

// WeeklyPlan is RecommendationEngine.Generate's weekly posting plan.
type WeeklyPlan struct {
	TotalPosts float64            `json:"total_posts"`
	Breakdown  map[string]float64 `json:"breakdown"`
	Rationale  string             `json:"rationale,omitempty"`
	Withheld   bool               `json:"withheld"`
}

// Recommendation is RecommendationEngine.Generate's result.
type Recommendation struct {
	CreatorID primitive.ObjectID `json:"creator_id"`
	Days      int                `json:"days"`

	Confident          []CategoryDecision `json:"confident"`
	Hypothesis         []CategoryDecision `json:"hypothesis"`
	InsufficientData   []CategoryDecision `json:"insufficient_data"`

	WeeklyPlan WeeklyPlan `json:"weekly_plan"`

	TopPerformer  string `json:"top_performer,omitempty"`
	Underperformer string `json:"underperformer,omitempty"`

	HasConfounders  bool     `json:"has_confounders"`
	DataQualityNotes []string `json:"data_quality_notes,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}
