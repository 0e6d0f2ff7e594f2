package service

import (
	"fmt"

	"rev-saas-api/internal/model"
)

// Default confidence thresholds. Creator/Agency config may override the
// subs thresholds (see Score for where each override takes effect);
// MinBaselineDays is a fixed constant.
const (
	DefaultMinSubsForRecommendation = 10
	DefaultMinSubsForConfident      = 25
	MinBaselineDays                 = 7

	confidenceFloor   = 0.1
	confidenceCeiling = 0.95
	confidenceBase    = 0.5

	highLevelThreshold   = 0.7
	mediumLevelThreshold = 0.4

	poissonSkipBelowActual = 5
)

// ConfidenceScorer bounds the strength of a claim by the amount and quality
// of evidence behind it (spec.md §4.4). It holds no state of its own; the
// thresholds it evaluates against are passed in per call so that each
// creator/agency can override them.
type ConfidenceScorer struct{}

// NewConfidenceScorer returns a ready-to-use scorer.
func NewConfidenceScorer() *ConfidenceScorer {
	return &ConfidenceScorer{}
}

// Score implements ConfidenceScorer.score. minSubsForConfident is the only
// per-call threshold (the actual>=minSubsForConfident branch). The
// low-sample penalty and MinEventsMet always use the fixed
// DefaultMinSubsForRecommendation; a creator/agency override of
// min_subs_recommendation is applied by RecommendationEngine's
// per-category decision, not here.
func (s *ConfidenceScorer) Score(actual int, expected float64, windowHours float64, hasConfounders bool, baselineDataDays int, minSubsForConfident int) model.ConfidenceResult {
	if minSubsForConfident <= 0 {
		minSubsForConfident = DefaultMinSubsForConfident
	}

	score := confidenceBase
	var reasons []string
	minEventsMet := actual >= DefaultMinSubsForRecommendation

	switch {
	case actual < DefaultMinSubsForRecommendation:
		score -= 0.30
		reasons = append(reasons, reasonLowSample(actual))
	case actual < minSubsForConfident:
		reasons = append(reasons, reasonModerateSample(actual))
	default:
		score += 0.15
		reasons = append(reasons, reasonGoodSample(actual))
	}

	var poissonP *float64
	if actual >= poissonSkipBelowActual {
		p := PoissonTwoSidedP(actual, expected)
		poissonP = &p
		switch {
		case p < 0.05:
			score += 0.20
			reasons = append(reasons, "Lift is statistically significant")
		case p < 0.10:
			score += 0.10
			reasons = append(reasons, "Marginally significant")
		default:
			score -= 0.10
			reasons = append(reasons, "Lift not significant")
		}
	}

	if baselineDataDays < MinBaselineDays {
		score -= 0.15
		reasons = append(reasons, "Limited baseline")
	} else if baselineDataDays >= 14 {
		score += 0.05
	}

	if hasConfounders {
		score -= 0.20
		reasons = append(reasons, "Confounder event(s) overlap")
	}

	if windowHours < 24 {
		score -= 0.10
		reasons = append(reasons, "Short window increases noise")
	}

	score = clamp(score, confidenceFloor, confidenceCeiling)

	return model.ConfidenceResult{
		Score:        score,
		Level:        levelFor(score),
		Reasons:      reasons,
		MinEventsMet: minEventsMet,
		PoissonP:     poissonP,
	}
}

func levelFor(score float64) string {
	switch {
	case score >= highLevelThreshold:
		return "high"
	case score >= mediumLevelThreshold:
		return "medium"
	default:
		return "low"
	}
}

func reasonLowSample(actual int) string {
	return fmt.Sprintf("Low sample: only %d subs attributed", actual)
}

func reasonModerateSample(actual int) string {
	return fmt.Sprintf("Moderate sample: %d subs", actual)
}

func reasonGoodSample(actual int) string {
	return fmt.Sprintf("Good sample: %d subs", actual)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
