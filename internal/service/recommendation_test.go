package service

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rev-saas-api/internal/model"
	"rev-saas-api/internal/store/memory"
)

func newTestRecommendationEngine(st *memory.Store) *RecommendationEngine {
	attribution := newTestAttributionEngine(st)
	return NewRecommendationEngine(attribution, st, st, st)
}

func TestEffectiveConfig_RecommendationOverrides_CreatorThenAgencyThenDefault(t *testing.T) {
	t.Run("category taxonomy", func(t *testing.T) {
		agency := &model.Agency{CategoryTaxonomy: []string{"a", "b"}}
		if got := effectiveTaxonomy(nil, agency); len(got) != 2 {
			t.Errorf("agency override: got %v, want [a b]", got)
		}
		creator := &model.Creator{CategoryTaxonomy: []string{"c"}}
		if got := effectiveTaxonomy(creator, agency); len(got) != 1 || got[0] != "c" {
			t.Errorf("creator override should win over agency: got %v, want [c]", got)
		}
		if got := effectiveTaxonomy(nil, nil); len(got) != len(model.DefaultTaxonomy) {
			t.Errorf("package default: got %v, want %v", got, model.DefaultTaxonomy)
		}
	})

	t.Run("min subs recommendation", func(t *testing.T) {
		agency := &model.Agency{MinSubsRecommendation: 9}
		if got := effectiveMinSubsRecommendation(nil, agency); got != 9 {
			t.Errorf("agency override: got %d, want 9", got)
		}
		creator := &model.Creator{MinSubsRecommendation: 3}
		if got := effectiveMinSubsRecommendation(creator, agency); got != 3 {
			t.Errorf("creator override should win over agency: got %d, want 3", got)
		}
		if got := effectiveMinSubsRecommendation(nil, nil); got != DefaultMinSubsForRecommendation {
			t.Errorf("package default: got %d, want %d", got, DefaultMinSubsForRecommendation)
		}
	})

	t.Run("weekly plan cap", func(t *testing.T) {
		agency := &model.Agency{WeeklyPlanCap: 21}
		if got := effectiveWeeklyPlanCap(nil, agency); got != 21 {
			t.Errorf("agency override: got %d, want 21", got)
		}
		creator := &model.Creator{WeeklyPlanCap: 7}
		if got := effectiveWeeklyPlanCap(creator, agency); got != 7 {
			t.Errorf("creator override should win over agency: got %d, want 7", got)
		}
		if got := effectiveWeeklyPlanCap(nil, nil); got != DefaultWeeklyPlanCap {
			t.Errorf("package default: got %d, want %d", got, DefaultWeeklyPlanCap)
		}
	})
}

func TestRecommendationEngine_Generate_InsufficientDataBelowFloor(t *testing.T) {
	st := memory.New()
	creatorID := primitive.NewObjectID()
	st.PutCreator(&model.Creator{ID: creatorID})

	engine := newTestRecommendationEngine(st)
	rec, err := engine.Generate(context.Background(), creatorID, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No fans, no posts: every non-"other" category should land in
	// InsufficientData, since 0 subs is always below min_subs_recommendation.
	nonOtherCategories := len(model.DefaultTaxonomy) - 1
	if len(rec.InsufficientData) != nonOtherCategories {
		t.Errorf("InsufficientData has %d entries, want %d", len(rec.InsufficientData), nonOtherCategories)
	}
	if len(rec.Confident) != 0 || len(rec.Hypothesis) != 0 {
		t.Errorf("expected no confident/hypothesis decisions with zero data, got confident=%d hypothesis=%d", len(rec.Confident), len(rec.Hypothesis))
	}
}

func TestRecommendationEngine_Generate_WeeklyPlanWithheldOnConfounder(t *testing.T) {
	st := memory.New()
	creatorID := primitive.NewObjectID()
	st.PutCreator(&model.Creator{ID: creatorID})

	now := time.Now().UTC()
	st.PutConfounder(model.ConfounderEvent{CreatorID: creatorID, Type: model.ConfounderMassDM, StartAt: now.AddDate(0, 0, -5), Impact: model.ImpactHigh})

	engine := newTestRecommendationEngine(st)
	rec, err := engine.Generate(context.Background(), creatorID, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !rec.WeeklyPlan.Withheld {
		t.Error("expected the weekly plan to be withheld when a confounder overlaps the window")
	}
	if !rec.HasConfounders {
		t.Error("expected Recommendation.HasConfounders to be true")
	}
	found := false
	for _, note := range rec.DataQualityNotes {
		if note != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected at least one data quality note")
	}
}

func TestSelectAction(t *testing.T) {
	tests := []struct {
		name         string
		liftPct      float64
		shareOfViews float64
		tier         string
		want         string
	}{
		{name: "strong positive lift increases", liftPct: 60, shareOfViews: 0.2, tier: model.TierConfident, want: model.ActionIncrease},
		{name: "strong negative lift with real share decreases", liftPct: -60, shareOfViews: 0.3, tier: model.TierConfident, want: model.ActionDecrease},
		{name: "negative lift but negligible share keeps testing", liftPct: -60, shareOfViews: 0.01, tier: model.TierHypothesis, want: model.ActionTest},
		{name: "hypothesis tier with flat lift tests", liftPct: 5, shareOfViews: 0.2, tier: model.TierHypothesis, want: model.ActionTest},
		{name: "confident tier with flat lift maintains", liftPct: 5, shareOfViews: 0.2, tier: model.TierConfident, want: model.ActionMaintain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectAction(tt.liftPct, tt.shareOfViews, tt.tier)
			if got != tt.want {
				t.Errorf("selectAction() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSuggestedPostsPerWeek(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		action  string
		want    float64
	}{
		{name: "increase applies multiplier and floor", current: 1, action: model.ActionIncrease, want: 3},
		{name: "increase from zero still adds the floor", current: 0, action: model.ActionIncrease, want: 2},
		{name: "decrease halves but floors at one", current: 1, action: model.ActionDecrease, want: 1},
		{name: "decrease from a high baseline halves", current: 10, action: model.ActionDecrease, want: 5},
		{name: "maintain keeps current", current: 4, action: model.ActionMaintain, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := suggestedPostsPerWeek(tt.current, tt.action)
			if got != tt.want {
				t.Errorf("suggestedPostsPerWeek() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArgmaxWeight_TieBreaksByCategoryName(t *testing.T) {
	weights := map[string]float64{
		model.CategoryGRWM:      0.5,
		model.CategoryStorytime: 0.5,
	}
	category, _, tied := argmaxWeight(weights)
	if !tied {
		t.Fatal("expected a tie to be detected")
	}
	if category != model.CategoryGRWM {
		t.Errorf("expected the alphabetically-first category (%q) to win the tie, got %q", model.CategoryGRWM, category)
	}
}
