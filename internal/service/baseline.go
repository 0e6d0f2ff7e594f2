package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rev-saas-api/internal/model"
	"rev-saas-api/internal/store"
)

// DefaultBaselineLookbackDays is used when a creator/agency has not
// configured its own.
const DefaultBaselineLookbackDays = 14

const minRollupsForRealBaseline = 3

// Conservative defaults returned when a creator's history is too thin to
// build a real baseline (spec.md §4.2 step 3).
const (
	defaultSubsPerDay          = 5.0
	defaultRevPerDay           = 100.0
	defaultSubsPer1kDeltaViews = 0.2
)

// BaselineBuilder produces per-creator expected-rate models from a lookback
// window that ends strictly before the analysis window it will feed.
type BaselineBuilder struct {
	rollups store.RollupStore
}

// NewBaselineBuilder wires a BaselineBuilder to its rollup source.
func NewBaselineBuilder(rollups store.RollupStore) *BaselineBuilder {
	return &BaselineBuilder{rollups: rollups}
}

// Build implements BaselineBuilder.build. baselineEnd is exclusive: no
// rollup dated baselineEnd or later is ever consulted.
func (b *BaselineBuilder) Build(ctx context.Context, creatorID primitive.ObjectID, baselineEnd time.Time, lookbackDays int) (model.Baseline, error) {
	if lookbackDays <= 0 {
		lookbackDays = DefaultBaselineLookbackDays
	}
	baselineStart := baselineEnd.AddDate(0, 0, -lookbackDays)

	rollups, err := b.rollups.DailyRollups(ctx, creatorID, baselineStart, baselineEnd)
	if err != nil {
		return model.Baseline{}, err
	}

	if len(rollups) < minRollupsForRealBaseline {
		return model.Baseline{
			SubsPerDay:          defaultSubsPerDay,
			RevPerDay:           decimal.NewFromFloat(defaultRevPerDay),
			SubsPer1kDeltaViews: defaultSubsPer1kDeltaViews,
			DataDays:            len(rollups),
			IsDefault:           true,
			DowFactors:          uniformDowFactors(),
			BaselineEnd:         baselineEnd,
		}, nil
	}

	var totalSubs, totalRev float64
	var totalDeltaViews int64
	bySubsByWeekday := [7][]float64{}

	for _, r := range rollups {
		totalSubs += float64(r.NewSubs)
		totalRev += r.Revenue
		totalDeltaViews += r.DeltaViews
		wd := int(r.Date.Weekday())
		bySubsByWeekday[wd] = append(bySubsByWeekday[wd], float64(r.NewSubs))
	}

	days := float64(len(rollups))
	subsPerDay := totalSubs / days
	revPerDay := totalRev / days

	var subsPer1kDeltaViews float64
	if totalDeltaViews > 0 {
		subsPer1kDeltaViews = totalSubs / (float64(totalDeltaViews) / 1000.0)
	}

	dowFactors := computeDowFactors(bySubsByWeekday, subsPerDay)

	return model.Baseline{
		SubsPerDay:          subsPerDay,
		RevPerDay:           decimal.NewFromFloat(revPerDay),
		SubsPer1kDeltaViews: subsPer1kDeltaViews,
		DataDays:            len(rollups),
		IsDefault:           false,
		DowFactors:          dowFactors,
		BaselineEnd:         baselineEnd,
	}, nil
}

func uniformDowFactors() [7]float64 {
	var f [7]float64
	for i := range f {
		f[i] = 1.0
	}
	return f
}

func computeDowFactors(bySubsByWeekday [7][]float64, overallMean float64) [7]float64 {
	var f [7]float64
	for wd := 0; wd < 7; wd++ {
		samples := bySubsByWeekday[wd]
		if len(samples) == 0 || overallMean <= 0 {
			f[wd] = 1.0
			continue
		}
		var sum float64
		for _, v := range samples {
			sum += v
		}
		mean := sum / float64(len(samples))
		f[wd] = mean / overallMean
	}
	return f
}

// ExpectedEvents computes the day-of-week adjusted expected subscriber
// count over an arbitrary half-open window [wStart, wEnd), per spec.md
// §4.2: partition into contiguous calendar-day slices, contribute
// subs_per_day * (h/24) * dow_factor[d] per slice, summed. Computing in
// hours (not truncated integer days) avoids collapsing sub-24h windows to
// zero.
func (b *BaselineBuilder) ExpectedEvents(baseline model.Baseline, wStart, wEnd time.Time) float64 {
	return expectedEventsOverWindow(baseline, wStart, wEnd)
}

func expectedEventsOverWindow(baseline model.Baseline, wStart, wEnd time.Time) float64 {
	if !wEnd.After(wStart) {
		return 0
	}

	var total float64
	cursor := wStart
	for cursor.Before(wEnd) {
		dayEnd := time.Date(cursor.Year(), cursor.Month(), cursor.Day(), 0, 0, 0, 0, cursor.Location()).AddDate(0, 0, 1)
		sliceEnd := dayEnd
		if wEnd.Before(sliceEnd) {
			sliceEnd = wEnd
		}

		hours := sliceEnd.Sub(cursor).Hours()
		if hours < 0 {
			hours = 0
		}

		wd := int(cursor.Weekday())
		factor := baseline.DowFactors[wd]
		if factor == 0 {
			factor = 1.0
		}

		total += baseline.SubsPerDay * (hours / 24.0) * factor
		cursor = sliceEnd
	}
	return total
}
