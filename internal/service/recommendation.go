package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rev-saas-api/internal/apperr"
	"rev-saas-api/internal/model"
	"rev-saas-api/internal/store"
)

// ═══════════════════════════════════════════════════════════════════════════
// RECOMMENDATION ENGINE - DETERMINISTIC TIERED ACTIONS
// Turns AttributionEngine output into confident/hypothesis/insufficient_data
// decisions and a weekly posting plan. No randomness, no LLM calls.
// ═══════════════════════════════════════════════════════════════════════════

// DefaultWeeklyPlanCap is the posts/week ceiling applied when a creator or
// agency has not configured its own.
const DefaultWeeklyPlanCap = 14

// postsPerWeekLookbackDays resolves Open Question #2 (spec.md §9): the
// denominator for "current posts/week" is read from the 4 weeks preceding
// the analysis window.
const postsPerWeekLookbackDays = 28

const (
	liftIncreaseThreshold = 50.0
	liftDecreaseThreshold = -50.0
	decreaseShareFloor    = 0.10

	increaseMultiplier = 1.5
	decreaseMultiplier = 0.5
	minIncreaseAdd      = 2.0
)

// RecommendationEngine synthesises AttributionEngine output into
// tier-labelled actions and a weekly posting plan (spec.md §4.5).
type RecommendationEngine struct {
	attribution *AttributionEngine
	posts       store.PostStore
	creators    store.CreatorStore
	agencies    store.AgencyStore
}

// NewRecommendationEngine wires a RecommendationEngine to its collaborators.
func NewRecommendationEngine(attribution *AttributionEngine, posts store.PostStore, creators store.CreatorStore, agencies store.AgencyStore) *RecommendationEngine {
	return &RecommendationEngine{attribution: attribution, posts: posts, creators: creators, agencies: agencies}
}

// resolveAgency loads the agency owning creator, if any.
func (e *RecommendationEngine) resolveAgency(ctx context.Context, creator *model.Creator) (*model.Agency, error) {
	if creator == nil || creator.AgencyID.IsZero() || e.agencies == nil {
		return nil, nil
	}
	return e.agencies.GetAgencyByID(ctx, creator.AgencyID)
}

// Generate implements RecommendationEngine.generate.
func (e *RecommendationEngine) Generate(ctx context.Context, creatorID primitive.ObjectID, days int) (*model.Recommendation, error) {
	if days <= 0 {
		days = 30
	}

	wEnd := time.Now().UTC()
	wStart := wEnd.AddDate(0, 0, -days)

	creator, err := e.creators.GetByID(ctx, creatorID)
	if err != nil {
		return nil, apperr.PersistenceUnavailable("loading creator", err)
	}
	agency, err := e.resolveAgency(ctx, creator)
	if err != nil {
		return nil, apperr.PersistenceUnavailable("loading agency", err)
	}

	overall, err := e.attribution.Attribute(ctx, creatorID, wStart, wEnd, "")
	if err != nil {
		return nil, err
	}

	taxonomy := effectiveTaxonomy(creator, agency)

	rec := &model.Recommendation{
		CreatorID:      creatorID,
		Days:           days,
		HasConfounders: overall.HasConfounders(),
		GeneratedAt:    wEnd,
	}

	minSubsRecommendation := effectiveMinSubsRecommendation(creator, agency)
	minSubsConfident := effectiveMinSubsConfident(creator, agency)

	for _, category := range taxonomy {
		if category == model.CategoryOther {
			continue
		}

		decision, err := e.decideCategory(ctx, creatorID, category, wStart, wEnd, overall, minSubsRecommendation, minSubsConfident)
		if err != nil {
			return nil, err
		}

		switch decision.Tier {
		case model.TierInsufficientData:
			rec.InsufficientData = append(rec.InsufficientData, *decision)
		case model.TierConfident:
			rec.Confident = append(rec.Confident, *decision)
		default:
			rec.Hypothesis = append(rec.Hypothesis, *decision)
		}
	}

	sortByAbsLiftDesc(rec.Confident)
	sortByAbsLiftDesc(rec.Hypothesis)
	rec.Confident = top(rec.Confident, 3)
	rec.Hypothesis = top(rec.Hypothesis, 3)

	rec.TopPerformer, rec.Underperformer = topAndBottomPerformer(overall)

	rec.WeeklyPlan = e.buildWeeklyPlan(ctx, creatorID, taxonomy, overall, creator, agency)

	if overall.Baseline.IsDefault {
		rec.DataQualityNotes = append(rec.DataQualityNotes, "baseline is a conservative default; history is too thin for a measured baseline")
	}
	if overall.HasConfounders() {
		rec.DataQualityNotes = append(rec.DataQualityNotes, "one or more confounder events overlap this window; quantitative claims are suppressed")
	}

	return rec, nil
}

// decideCategory implements the per-category decision in spec.md §4.5.
func (e *RecommendationEngine) decideCategory(ctx context.Context, creatorID primitive.ObjectID, category string, wStart, wEnd time.Time, overall *model.AttributionReport, minSubsRecommendation, minSubsConfident int) (*model.CategoryDecision, error) {
	catReport, err := e.attribution.Attribute(ctx, creatorID, wStart, wEnd, category)
	if err != nil {
		return nil, err
	}

	shareOfViews := overall.CreditWeights[category]
	delta := overall.ContentTypeDeltas[category]

	decision := &model.CategoryDecision{
		Category:      category,
		Subs:          catReport.ActualSubs,
		ShareOfViews:  shareOfViews,
		LiftPct:       catReport.SubsLiftPct,
		ViewsDelta:    delta.ViewsDelta,
		Confidence:    catReport.Confidence,
		HasConfounder: overall.HasConfounders(),
	}

	if catReport.ActualSubs < minSubsRecommendation {
		decision.Tier = model.TierInsufficientData
		decision.Reason = fmt.Sprintf("Only %d subs attributed to %s", catReport.ActualSubs, category)
		return decision, nil
	}

	confident := catReport.ActualSubs >= minSubsConfident &&
		catReport.Confidence.Score >= highLevelThreshold &&
		!overall.HasConfounders()

	currentPostsPerWeek, err := e.currentPostsPerWeek(ctx, creatorID, category, wStart)
	if err != nil {
		return nil, err
	}
	decision.CurrentPostsPerWeek = currentPostsPerWeek

	if confident {
		decision.Tier = model.TierConfident
	} else {
		decision.Tier = model.TierHypothesis
	}

	decision.Action = selectAction(catReport.SubsLiftPct, shareOfViews, decision.Tier)
	decision.SuggestedPostsPerWeek = suggestedPostsPerWeek(currentPostsPerWeek, decision.Action)

	return decision, nil
}

func selectAction(liftPct, shareOfViews float64, tier string) string {
	switch {
	case liftPct >= liftIncreaseThreshold:
		return model.ActionIncrease
	case liftPct <= liftDecreaseThreshold && shareOfViews >= decreaseShareFloor:
		return model.ActionDecrease
	case tier == model.TierHypothesis:
		return model.ActionTest
	default:
		return model.ActionMaintain
	}
}

func suggestedPostsPerWeek(current float64, action string) float64 {
	switch action {
	case model.ActionIncrease:
		suggested := current * increaseMultiplier
		if min := current + minIncreaseAdd; suggested < min {
			suggested = min
		}
		return suggested
	case model.ActionDecrease:
		suggested := current * decreaseMultiplier
		if suggested < 1 {
			suggested = 1
		}
		return suggested
	default:
		return current
	}
}

func (e *RecommendationEngine) currentPostsPerWeek(ctx context.Context, creatorID primitive.ObjectID, category string, windowStart time.Time) (float64, error) {
	since := windowStart.AddDate(0, 0, -postsPerWeekLookbackDays)
	count, err := e.posts.CountByCategorySince(ctx, creatorID, category, since)
	if err != nil {
		return 0, apperr.PersistenceUnavailable("counting recent posts", err)
	}
	inWindow, err := e.posts.CountByCategorySince(ctx, creatorID, category, windowStart)
	if err != nil {
		return 0, apperr.PersistenceUnavailable("counting recent posts", err)
	}
	count -= inWindow
	weeks := float64(postsPerWeekLookbackDays) / 7.0
	return float64(count) / weeks, nil
}

// buildWeeklyPlan sums per-category suggested posts/week, capped at the
// configured ceiling; withheld entirely when any confounder overlaps the
// analysis window (spec.md §4.5).
func (e *RecommendationEngine) buildWeeklyPlan(ctx context.Context, creatorID primitive.ObjectID, taxonomy []string, overall *model.AttributionReport, creator *model.Creator, agency *model.Agency) model.WeeklyPlan {
	var currentTotal float64
	breakdown := make(map[string]float64)

	for _, category := range taxonomy {
		if category == model.CategoryOther {
			continue
		}
		current, err := e.currentPostsPerWeek(ctx, creatorID, category, overall.WindowStart)
		if err != nil {
			continue
		}
		currentTotal += current
	}

	if overall.HasConfounders() {
		return model.WeeklyPlan{
			TotalPosts: currentTotal,
			Breakdown:  map[string]float64{},
			Rationale:  "Weekly plan unavailable due to confounders overlapping the analysis window",
			Withheld:   true,
		}
	}

	cap := effectiveWeeklyPlanCap(creator, agency)
	var total float64
	for _, category := range taxonomy {
		if category == model.CategoryOther {
			continue
		}
		current, err := e.currentPostsPerWeek(ctx, creatorID, category, overall.WindowStart)
		if err != nil {
			continue
		}
		action := model.ActionMaintain
		if catReport, err := e.attribution.Attribute(ctx, creatorID, overall.WindowStart, overall.WindowEnd, category); err == nil {
			action = selectAction(catReport.SubsLiftPct, overall.CreditWeights[category], model.TierHypothesis)
		}
		suggested := suggestedPostsPerWeek(current, action)
		breakdown[category] = suggested
		total += suggested
	}

	if total > float64(cap) {
		scale := float64(cap) / total
		scaledTotal := 0.0
		for c, v := range breakdown {
			breakdown[c] = v * scale
			scaledTotal += v * scale
		}
		total = scaledTotal
	}

	return model.WeeklyPlan{
		TotalPosts: total,
		Breakdown:  breakdown,
		Rationale:  "Allocated by category lift and credit weight, capped at configured ceiling",
		Withheld:   false,
	}
}

func sortByAbsLiftDesc(decisions []model.CategoryDecision) {
	sort.Slice(decisions, func(i, j int) bool {
		return absFloat(decisions[i].LiftPct) > absFloat(decisions[j].LiftPct)
	})
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func top(decisions []model.CategoryDecision, n int) []model.CategoryDecision {
	if len(decisions) <= n {
		return decisions
	}
	return decisions[:n]
}

func topAndBottomPerformer(overall *model.AttributionReport) (top string, bottom string) {
	var best, worst string
	var bestW, worstW float64
	first := true
	for cat, w := range overall.CreditWeights {
		if cat == model.CategoryOther {
			continue
		}
		if first || w > bestW {
			bestW = w
			best = cat
		}
		if first || w < worstW {
			worstW = w
			worst = cat
		}
		first = false
	}
	return best, worst
}

// effectiveTaxonomy resolves category_taxonomy: creator override, then
// agency override, then DefaultTaxonomy.
func effectiveTaxonomy(creator *model.Creator, agency *model.Agency) []string {
	if creator != nil && len(creator.CategoryTaxonomy) > 0 {
		return creator.CategoryTaxonomy
	}
	if agency != nil && len(agency.CategoryTaxonomy) > 0 {
		return agency.CategoryTaxonomy
	}
	return model.DefaultTaxonomy
}

// effectiveMinSubsRecommendation resolves min_subs_recommendation: creator
// override, then agency override, then the package default.
func effectiveMinSubsRecommendation(creator *model.Creator, agency *model.Agency) int {
	if creator != nil && creator.MinSubsRecommendation > 0 {
		return creator.MinSubsRecommendation
	}
	if agency != nil && agency.MinSubsRecommendation > 0 {
		return agency.MinSubsRecommendation
	}
	return DefaultMinSubsForRecommendation
}

// effectiveWeeklyPlanCap resolves weekly_plan_cap: creator override, then
// agency override, then the package default.
func effectiveWeeklyPlanCap(creator *model.Creator, agency *model.Agency) int {
	if creator != nil && creator.WeeklyPlanCap > 0 {
		return creator.WeeklyPlanCap
	}
	if agency != nil && agency.WeeklyPlanCap > 0 {
		return agency.WeeklyPlanCap
	}
	return DefaultWeeklyPlanCap
}
