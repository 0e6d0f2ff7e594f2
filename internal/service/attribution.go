package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rev-saas-api/internal/apperr"
	"rev-saas-api/internal/model"
	"rev-saas-api/internal/store"
)

// fanAttributionConfidenceReferral is the fixed confidence assigned to a
// referral-link attribution (spec.md §4.3 step 1).
const fanAttributionConfidenceReferral = 0.95

// AttributionEngine computes lift, credit weights, and confounder
// annotations for a requested window, and performs weighted fan
// attribution for fans that have not yet been assigned a category.
type AttributionEngine struct {
	snapshots   store.SnapshotStore
	fans        store.FanStore
	revenue     store.RevenueStore
	confounders store.ConfounderStore
	creators    store.CreatorStore
	agencies    store.AgencyStore
	baselines   *BaselineBuilder
	confidence  *ConfidenceScorer
}

// NewAttributionEngine wires an AttributionEngine to its collaborators.
func NewAttributionEngine(
	snapshots store.SnapshotStore,
	fans store.FanStore,
	revenue store.RevenueStore,
	confounders store.ConfounderStore,
	creators store.CreatorStore,
	agencies store.AgencyStore,
	baselines *BaselineBuilder,
	confidence *ConfidenceScorer,
) *AttributionEngine {
	return &AttributionEngine{
		snapshots:   snapshots,
		fans:        fans,
		revenue:     revenue,
		confounders: confounders,
		creators:    creators,
		agencies:    agencies,
		baselines:   baselines,
		confidence:  confidence,
	}
}

// resolveAgency loads the agency owning creator, if any. A nil creator or a
// zero AgencyID yields a nil agency, which every effective* helper treats as
// "no agency-level override available".
func (e *AttributionEngine) resolveAgency(ctx context.Context, creator *model.Creator) (*model.Agency, error) {
	if creator == nil || creator.AgencyID.IsZero() || e.agencies == nil {
		return nil, nil
	}
	return e.agencies.GetAgencyByID(ctx, creator.AgencyID)
}

// Attribute implements AttributionEngine.attribute. categoryFilter, when
// non-empty, restricts content_type_deltas/actual_subs to a single category
// and pro-rates the expected count by that category's credit weight
// (credit_weights and total_delta_views still cover every category) — this is the path RecommendationEngine's per-category
// decision (spec.md §4.5 step 1) drives through.
func (e *AttributionEngine) Attribute(ctx context.Context, creatorID primitive.ObjectID, wStart, wEnd time.Time, categoryFilter string) (*model.AttributionReport, error) {
	if !wEnd.After(wStart) {
		return nil, apperr.WindowInvalid("window end must be after window start")
	}
	if wEnd.After(time.Now().UTC()) {
		return nil, apperr.WindowInvalid("window end must not be in the future")
	}

	creator, err := e.creators.GetByID(ctx, creatorID)
	if err != nil {
		return nil, apperr.PersistenceUnavailable("loading creator", err)
	}
	agency, err := e.resolveAgency(ctx, creator)
	if err != nil {
		return nil, apperr.PersistenceUnavailable("loading agency", err)
	}

	windowHours := math.Max(1, wEnd.Sub(wStart).Hours())

	baseline, err := e.baselines.Build(ctx, creatorID, wStart, effectiveLookback(creator, agency))
	if err != nil {
		return nil, apperr.PersistenceUnavailable("building baseline", err)
	}

	deltas, err := e.snapshots.DeltaPerCategory(ctx, creatorID, wStart, wEnd)
	if err != nil {
		return nil, apperr.PersistenceUnavailable("loading content deltas", err)
	}

	var totalDeltaViews int64
	for _, d := range deltas {
		totalDeltaViews += d.ViewsDelta
	}
	creditWeights := creditWeightsFrom(deltas, totalDeltaViews)

	expectedSubsFull := expectedEventsOverWindow(baseline, wStart, wEnd)
	shareForFilter := 1.0
	if categoryFilter != "" {
		shareForFilter = creditWeights[categoryFilter]
	}
	expectedSubs := expectedSubsFull * shareForFilter

	actualSubs, err := e.countActualSubs(ctx, creatorID, categoryFilter, wStart, wEnd)
	if err != nil {
		return nil, apperr.PersistenceUnavailable("counting acquired fans", err)
	}

	subsLiftPct := liftPct(float64(actualSubs), expectedSubs)

	actualRevenueMinor, currency, err := e.revenue.SumAmount(ctx, creatorID, wStart, wEnd)
	if err != nil {
		return nil, apperr.PersistenceUnavailable("summing revenue", err)
	}
	if currency == "" {
		currency = creatorCurrency(creator)
	}
	actualRevenue := decimal.New(actualRevenueMinor, -2)
	expectedRevenue := baseline.RevPerDay.Mul(decimal.NewFromFloat(windowHours / 24.0 * shareForFilter))
	revenueLiftPct := liftPctDecimal(actualRevenue, expectedRevenue)

	confounders, err := e.confounders.ListOverlapping(ctx, creatorID, wStart, wEnd)
	if err != nil {
		return nil, apperr.PersistenceUnavailable("loading confounders", err)
	}

	conf := e.confidence.Score(actualSubs, expectedSubs, windowHours, len(confounders) > 0, baseline.DataDays, effectiveMinSubsConfident(creator, agency))

	tier := model.TierHypothesis
	if conf.Score >= highLevelThreshold && len(confounders) == 0 {
		tier = model.TierConfident
	}

	if categoryFilter != "" {
		filtered := map[string]model.CategoryDelta{}
		if d, ok := deltas[categoryFilter]; ok {
			filtered[categoryFilter] = d
		}
		deltas = filtered
	}

	var notes []string
	if _, _, tied := argmaxWeight(creditWeights); tied {
		notes = append(notes, "two or more categories tied for highest credit weight; ties broken by category name")
	}

	return &model.AttributionReport{
		CreatorID:          creatorID,
		WindowStart:        wStart,
		WindowEnd:          wEnd,
		WindowHours:        windowHours,
		Baseline:           baseline,
		ExpectedSubs:       expectedSubs,
		ActualSubs:         actualSubs,
		SubsLiftPct:        subsLiftPct,
		ExpectedRevenue:    expectedRevenue,
		ActualRevenue:      actualRevenue,
		RevenueLiftPct:     revenueLiftPct,
		Currency:           currency,
		ContentTypeDeltas:  deltas,
		CreditWeights:      creditWeights,
		TotalDeltaViews:    totalDeltaViews,
		Confounders:        confounders,
		Confidence:         conf,
		RecommendationTier: tier,
		Notes:              notes,
	}, nil
}

func (e *AttributionEngine) countActualSubs(ctx context.Context, creatorID primitive.ObjectID, categoryFilter string, wStart, wEnd time.Time) (int, error) {
	if categoryFilter == "" {
		return e.fans.CountAcquired(ctx, creatorID, wStart, wEnd)
	}
	fans, err := e.fans.ListByCategory(ctx, creatorID, categoryFilter, wStart, wEnd)
	if err != nil {
		return 0, err
	}
	return len(fans), nil
}

// creditWeightsFrom computes, for each category, views_delta(c) / total
// (0 if total is 0), per spec.md §4.3.
func creditWeightsFrom(deltas map[string]model.CategoryDelta, total int64) map[string]float64 {
	weights := make(map[string]float64, len(deltas))
	for cat, d := range deltas {
		if total <= 0 {
			weights[cat] = 0
			continue
		}
		weights[cat] = float64(d.ViewsDelta) / float64(total)
	}
	return weights
}

func liftPct(actual, expected float64) float64 {
	if expected <= 0 {
		return 0
	}
	return (actual/expected - 1) * 100
}

func liftPctDecimal(actual, expected decimal.Decimal) float64 {
	if !expected.IsPositive() {
		return 0
	}
	ratio, _ := actual.Div(expected).Float64()
	return (ratio - 1) * 100
}

// effectiveLookback resolves baseline_lookback_days: creator override, then
// agency override, then the package default.
func effectiveLookback(creator *model.Creator, agency *model.Agency) int {
	if creator != nil && creator.BaselineLookbackDays > 0 {
		return creator.BaselineLookbackDays
	}
	if agency != nil && agency.BaselineLookbackDays > 0 {
		return agency.BaselineLookbackDays
	}
	return DefaultBaselineLookbackDays
}

// effectiveMinSubsConfident resolves min_subs_confident: creator override,
// then agency override, then the package default.
func effectiveMinSubsConfident(creator *model.Creator, agency *model.Agency) int {
	if creator != nil && creator.MinSubsConfident > 0 {
		return creator.MinSubsConfident
	}
	if agency != nil && agency.MinSubsConfident > 0 {
		return agency.MinSubsConfident
	}
	return DefaultMinSubsForConfident
}

// effectiveAttributionWindowHours resolves optimal_attribution_window_hours:
// creator override, then agency override, then the package default.
func effectiveAttributionWindowHours(creator *model.Creator, agency *model.Agency) int {
	if creator != nil && creator.OptimalAttributionWindowHours > 0 {
		return creator.OptimalAttributionWindowHours
	}
	if agency != nil && agency.OptimalAttributionWindowHours > 0 {
		return agency.OptimalAttributionWindowHours
	}
	return 48
}

func creatorCurrency(creator *model.Creator) string {
	if creator != nil {
		return creator.EffectiveCurrency()
	}
	return model.DefaultCurrency
}

// AttributeFans implements AttributionEngine.attribute_fans: for each fan
// lacking an attributed category, applies the referral-link-then-weighted-
// window decision in spec.md §4.3. Idempotent: the same inputs produce the
// same weights and primary category on re-run.
func (e *AttributionEngine) AttributeFans(ctx context.Context, creatorID primitive.ObjectID, windowHours int) (int, error) {
	if windowHours <= 0 {
		creator, err := e.creators.GetByID(ctx, creatorID)
		if err != nil {
			return 0, apperr.PersistenceUnavailable("loading creator", err)
		}
		agency, err := e.resolveAgency(ctx, creator)
		if err != nil {
			return 0, apperr.PersistenceUnavailable("loading agency", err)
		}
		windowHours = effectiveAttributionWindowHours(creator, agency)
	}

	unattributed, err := e.fans.ListUnattributed(ctx, creatorID)
	if err != nil {
		return 0, apperr.PersistenceUnavailable("loading unattributed fans", err)
	}

	attributed := 0
	for i := range unattributed {
		fan := &unattributed[i]

		if fan.ReferralLinkID != nil && fan.ReferralCategory != "" {
			fan.AttributedCategory = fan.ReferralCategory
			fan.AttributionMethod = model.AttributionMethodReferralLink
			fan.Weights = map[string]float64{fan.ReferralCategory: 1.0}
			fan.Confidence = fanAttributionConfidenceReferral
		} else {
			windowStart := fan.AcquiredAt.Add(-time.Duration(windowHours) * time.Hour)
			deltas, err := e.snapshots.DeltaPerCategory(ctx, creatorID, windowStart, fan.AcquiredAt)
			if err != nil {
				return attributed, apperr.PersistenceUnavailable("loading pre-acquisition deltas", err)
			}

			var total int64
			for _, d := range deltas {
				total += d.ViewsDelta
			}

			if total <= 0 {
				continue // leave unattributed
			}

			weights := creditWeightsFrom(deltas, total)
			primary, maxWeight, _ := argmaxWeight(weights)

			fan.AttributedCategory = primary
			fan.AttributionMethod = model.AttributionMethodWeightedWindow
			fan.Weights = weights
			fan.Confidence = 0.3 + 0.5*maxWeight
		}

		if err := e.fans.Save(ctx, fan); err != nil {
			return attributed, apperr.PersistenceUnavailable("saving fan attribution", err)
		}
		attributed++
	}

	return attributed, nil
}

// argmaxWeight returns the category with the highest weight; ties are
// broken by ascending category name (spec.md §4.3 "Tie-breaking").
func argmaxWeight(weights map[string]float64) (category string, weight float64, tied bool) {
	cats := make([]string, 0, len(weights))
	for c := range weights {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	best := ""
	bestW := -1.0
	tieCount := 0
	for _, c := range cats {
		w := weights[c]
		if w > bestW {
			bestW = w
			best = c
			tieCount = 1
		} else if w == bestW {
			tieCount++
		}
	}
	return best, bestW, tieCount > 1
}
