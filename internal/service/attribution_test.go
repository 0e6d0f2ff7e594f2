package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rev-saas-api/internal/apperr"
	"rev-saas-api/internal/model"
	"rev-saas-api/internal/store/memory"
)

func newTestAttributionEngine(st *memory.Store) *AttributionEngine {
	baselines := NewBaselineBuilder(st)
	confidence := NewConfidenceScorer()
	return NewAttributionEngine(st, st, st, st, st, st, baselines, confidence)
}

func TestEffectiveConfig_CreatorThenAgencyThenDefault(t *testing.T) {
	t.Run("baseline lookback days", func(t *testing.T) {
		agency := &model.Agency{BaselineLookbackDays: 21}
		if got := effectiveLookback(nil, agency); got != 21 {
			t.Errorf("agency override: got %d, want 21", got)
		}
		creator := &model.Creator{BaselineLookbackDays: 7}
		if got := effectiveLookback(creator, agency); got != 7 {
			t.Errorf("creator override should win over agency: got %d, want 7", got)
		}
		if got := effectiveLookback(nil, nil); got != DefaultBaselineLookbackDays {
			t.Errorf("package default: got %d, want %d", got, DefaultBaselineLookbackDays)
		}
	})

	t.Run("min subs confident", func(t *testing.T) {
		agency := &model.Agency{MinSubsConfident: 40}
		if got := effectiveMinSubsConfident(nil, agency); got != 40 {
			t.Errorf("agency override: got %d, want 40", got)
		}
		creator := &model.Creator{MinSubsConfident: 12}
		if got := effectiveMinSubsConfident(creator, agency); got != 12 {
			t.Errorf("creator override should win over agency: got %d, want 12", got)
		}
	})

	t.Run("attribution window hours", func(t *testing.T) {
		agency := &model.Agency{OptimalAttributionWindowHours: 72}
		if got := effectiveAttributionWindowHours(nil, agency); got != 72 {
			t.Errorf("agency override: got %d, want 72", got)
		}
		creator := &model.Creator{OptimalAttributionWindowHours: 24}
		if got := effectiveAttributionWindowHours(creator, agency); got != 24 {
			t.Errorf("creator override should win over agency: got %d, want 24", got)
		}
		if got := effectiveAttributionWindowHours(nil, nil); got != 48 {
			t.Errorf("package default: got %d, want 48", got)
		}
	})
}

func TestAttributionEngine_AttributeFans_DefaultsWindowFromAgencyOverride(t *testing.T) {
	st := memory.New()
	agencyID := primitive.NewObjectID()
	st.PutAgency(&model.Agency{ID: agencyID, OptimalAttributionWindowHours: 24})

	creatorID := primitive.NewObjectID()
	st.PutCreator(&model.Creator{ID: creatorID, AgencyID: agencyID})

	acquiredAt := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	// A post outside the agency's 24h window but inside the default 48h
	// window: if the agency override is honoured, its views never count.
	post := &model.SocialPost{CreatorID: creatorID, Category: model.CategoryThirstTrap, PostedAt: acquiredAt.Add(-47 * time.Hour)}
	st.PutPost(post)
	if err := st.Record(context.Background(), post.ID, model.Metrics{Views: 0}, acquiredAt.Add(-47*time.Hour), uuid.Nil); err != nil {
		t.Fatalf("seeding snapshot: %v", err)
	}
	if err := st.Record(context.Background(), post.ID, model.Metrics{Views: 2000}, acquiredAt.Add(-30*time.Hour), uuid.Nil); err != nil {
		t.Fatalf("seeding snapshot: %v", err)
	}

	fan := &model.Fan{CreatorID: creatorID, AcquiredAt: acquiredAt}
	st.PutFan(fan)

	engine := newTestAttributionEngine(st)
	n, err := engine.AttributeFans(context.Background(), creatorID, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// If the 48h package default were used instead of the agency's 24h
	// override, the view delta at -30h would fall inside the window and the
	// fan would be attributed. Honouring the override leaves it unattributed.
	if n != 0 {
		t.Fatalf("expected 0 fans attributed under the agency's 24h window override, got %d", n)
	}

	unattributed, err := st.ListUnattributed(context.Background(), creatorID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(unattributed) != 1 {
		t.Fatalf("expected the fan to remain unattributed, got %d remaining", len(unattributed))
	}
}

func TestAttributionEngine_Attribute_RejectsInvalidWindow(t *testing.T) {
	st := memory.New()
	creatorID := primitive.NewObjectID()
	st.PutCreator(&model.Creator{ID: creatorID})
	engine := newTestAttributionEngine(st)

	now := time.Now().UTC()

	tests := []struct {
		name       string
		wStart     time.Time
		wEnd       time.Time
		wantKind   apperr.Kind
	}{
		{name: "end before start", wStart: now, wEnd: now.Add(-time.Hour), wantKind: apperr.KindWindowInvalid},
		{name: "end equals start", wStart: now, wEnd: now, wantKind: apperr.KindWindowInvalid},
		{name: "end in the future", wStart: now.Add(-time.Hour), wEnd: now.Add(time.Hour), wantKind: apperr.KindWindowInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Attribute(context.Background(), creatorID, tt.wStart, tt.wEnd, "")
			if err == nil {
				t.Fatal("expected an error, got nil")
			}
			kind, ok := apperr.KindOf(err)
			if !ok || kind != tt.wantKind {
				t.Errorf("got kind %v, want %v", kind, tt.wantKind)
			}
		})
	}
}

func TestAttributionEngine_Attribute_CreditWeightsAndLift(t *testing.T) {
	st := memory.New()
	creatorID := primitive.NewObjectID()
	st.PutCreator(&model.Creator{ID: creatorID})

	wEnd := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	wStart := wEnd.AddDate(0, 0, -7)

	storytimePost := &model.SocialPost{CreatorID: creatorID, Category: model.CategoryStorytime, PostedAt: wStart.Add(-48 * time.Hour)}
	grwmPost := &model.SocialPost{CreatorID: creatorID, Category: model.CategoryGRWM, PostedAt: wStart.Add(-48 * time.Hour)}
	st.PutPost(storytimePost)
	st.PutPost(grwmPost)

	if err := st.Record(context.Background(), storytimePost.ID, model.Metrics{Views: 1000}, wStart.Add(-time.Hour), uuid.Nil); err != nil {
		t.Fatalf("seeding snapshot: %v", err)
	}
	if err := st.Record(context.Background(), storytimePost.ID, model.Metrics{Views: 4000}, wEnd.Add(-time.Hour), uuid.Nil); err != nil {
		t.Fatalf("seeding snapshot: %v", err)
	}
	if err := st.Record(context.Background(), grwmPost.ID, model.Metrics{Views: 500}, wStart.Add(-time.Hour), uuid.Nil); err != nil {
		t.Fatalf("seeding snapshot: %v", err)
	}
	if err := st.Record(context.Background(), grwmPost.ID, model.Metrics{Views: 1500}, wEnd.Add(-time.Hour), uuid.Nil); err != nil {
		t.Fatalf("seeding snapshot: %v", err)
	}

	// storytime: 3000 delta views, grwm: 1000 delta views -> weights 0.75/0.25.
	for i := 0; i < 12; i++ {
		st.PutFan(&model.Fan{CreatorID: creatorID, AcquiredAt: wStart.Add(time.Duration(i) * time.Hour)})
	}
	st.PutRevenueEvent(model.RevenueEvent{CreatorID: creatorID, Amount: decimal.NewFromInt(500), Currency: "USD", EventAt: wStart.Add(time.Hour)})

	engine := newTestAttributionEngine(st)
	report, err := engine.Attribute(context.Background(), creatorID, wStart, wEnd, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := report.CreditWeights[model.CategoryStorytime]; got < 0.74 || got > 0.76 {
		t.Errorf("storytime credit weight = %v, want ~0.75", got)
	}
	if got := report.CreditWeights[model.CategoryGRWM]; got < 0.24 || got > 0.26 {
		t.Errorf("grwm credit weight = %v, want ~0.25", got)
	}
	if report.ActualSubs != 12 {
		t.Errorf("ActualSubs = %d, want 12", report.ActualSubs)
	}
	if report.TotalDeltaViews != 4000 {
		t.Errorf("TotalDeltaViews = %d, want 4000", report.TotalDeltaViews)
	}
	// Thin history -> default baseline of 5 subs/day, so 35 expected over
	// the 7-day window; 12 actual gives (12/35 - 1) * 100 ~= -65.71%.
	if got := report.SubsLiftPct; got < -65.72 || got > -65.70 {
		t.Errorf("SubsLiftPct = %v, want ~-65.71", got)
	}
}

func TestAttributionEngine_Attribute_ConfounderSuppressesConfidentTier(t *testing.T) {
	st := memory.New()
	creatorID := primitive.NewObjectID()
	st.PutCreator(&model.Creator{ID: creatorID})

	wEnd := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	wStart := wEnd.AddDate(0, 0, -7)

	for i := 0; i < 30; i++ {
		st.PutFan(&model.Fan{CreatorID: creatorID, AcquiredAt: wStart.Add(time.Duration(i) * time.Hour)})
	}
	st.PutConfounder(model.ConfounderEvent{CreatorID: creatorID, Type: model.ConfounderPromotion, StartAt: wStart.Add(24 * time.Hour), Impact: model.ImpactHigh})

	engine := newTestAttributionEngine(st)
	report, err := engine.Attribute(context.Background(), creatorID, wStart, wEnd, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !report.HasConfounders() {
		t.Fatal("expected the overlapping confounder to be reported")
	}
	if report.RecommendationTier == model.TierConfident {
		t.Errorf("expected a confounder to suppress the confident tier, got %q", report.RecommendationTier)
	}
}

func TestAttributionEngine_AttributeFans_ReferralLinkTakesPriority(t *testing.T) {
	st := memory.New()
	creatorID := primitive.NewObjectID()
	st.PutCreator(&model.Creator{ID: creatorID})

	acquiredAt := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	referralID := primitive.NewObjectID()
	fan := &model.Fan{
		CreatorID:        creatorID,
		AcquiredAt:       acquiredAt,
		ReferralLinkID:   &referralID,
		ReferralCategory: model.CategoryMoneyTalk,
	}
	st.PutFan(fan)

	engine := newTestAttributionEngine(st)
	n, err := engine.AttributeFans(context.Background(), creatorID, 48)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 fan attributed, got %d", n)
	}

	unattributed, err := st.ListUnattributed(context.Background(), creatorID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(unattributed) != 0 {
		t.Fatalf("expected the fan to no longer be unattributed, got %d remaining", len(unattributed))
	}

	all, err := st.ListByCategory(context.Background(), creatorID, model.CategoryMoneyTalk, acquiredAt.Add(-time.Hour), acquiredAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected the fan to be attributed to money_talk, got %d matches", len(all))
	}
	if all[0].AttributionMethod != model.AttributionMethodReferralLink {
		t.Errorf("AttributionMethod = %q, want %q", all[0].AttributionMethod, model.AttributionMethodReferralLink)
	}
	if all[0].Confidence != fanAttributionConfidenceReferral {
		t.Errorf("Confidence = %v, want %v", all[0].Confidence, fanAttributionConfidenceReferral)
	}
}

func TestAttributionEngine_AttributeFans_WeightedWindowFallback(t *testing.T) {
	st := memory.New()
	creatorID := primitive.NewObjectID()
	st.PutCreator(&model.Creator{ID: creatorID})

	acquiredAt := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	windowStart := acquiredAt.Add(-48 * time.Hour)

	post := &model.SocialPost{CreatorID: creatorID, Category: model.CategoryThirstTrap, PostedAt: windowStart}
	st.PutPost(post)
	if err := st.Record(context.Background(), post.ID, model.Metrics{Views: 0}, windowStart, uuid.Nil); err != nil {
		t.Fatalf("seeding snapshot: %v", err)
	}
	if err := st.Record(context.Background(), post.ID, model.Metrics{Views: 2000}, acquiredAt.Add(-time.Minute), uuid.Nil); err != nil {
		t.Fatalf("seeding snapshot: %v", err)
	}

	fan := &model.Fan{CreatorID: creatorID, AcquiredAt: acquiredAt}
	st.PutFan(fan)

	engine := newTestAttributionEngine(st)
	n, err := engine.AttributeFans(context.Background(), creatorID, 48)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 fan attributed, got %d", n)
	}

	unattributed, err := st.ListUnattributed(context.Background(), creatorID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(unattributed) != 0 {
		t.Fatalf("expected the fan to be attributed, got %d remaining", len(unattributed))
	}
}
