package service

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rev-saas-api/internal/model"
	"rev-saas-api/internal/store/memory"
)

func TestBaselineBuilder_Build_DefaultsWhenHistoryThin(t *testing.T) {
	st := memory.New()
	creatorID := primitive.NewObjectID()

	baselineEnd := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	builder := NewBaselineBuilder(st)

	baseline, err := builder.Build(context.Background(), creatorID, baselineEnd, DefaultBaselineLookbackDays)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !baseline.IsDefault {
		t.Errorf("expected IsDefault with no rollup history, got %+v", baseline)
	}
	if baseline.SubsPerDay != defaultSubsPerDay {
		t.Errorf("SubsPerDay = %v, want %v", baseline.SubsPerDay, defaultSubsPerDay)
	}
	for _, f := range baseline.DowFactors {
		if f != 1.0 {
			t.Errorf("expected uniform day-of-week factors on a default baseline, got %+v", baseline.DowFactors)
			break
		}
	}
}

func TestBaselineBuilder_Build_FromRealHistory(t *testing.T) {
	st := memory.New()
	creatorID := primitive.NewObjectID()
	creator := &model.Creator{ID: creatorID}
	st.PutCreator(creator)

	post := &model.SocialPost{CreatorID: creatorID, Category: model.CategoryStorytime}
	st.PutPost(post)

	baselineEnd := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	// Seed 10 days of fans (2/day) so the baseline passes the
	// minRollupsForRealBaseline gate.
	for d := 0; d < 10; d++ {
		day := baselineEnd.AddDate(0, 0, -1-d)
		st.PutFan(&model.Fan{CreatorID: creatorID, AcquiredAt: day.Add(1 * time.Hour)})
		st.PutFan(&model.Fan{CreatorID: creatorID, AcquiredAt: day.Add(2 * time.Hour)})
	}

	builder := NewBaselineBuilder(st)
	baseline, err := builder.Build(context.Background(), creatorID, baselineEnd, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if baseline.IsDefault {
		t.Fatalf("expected a measured baseline with 10 days of history, got a default")
	}
	if baseline.SubsPerDay <= 0 {
		t.Errorf("expected positive SubsPerDay, got %v", baseline.SubsPerDay)
	}
	if baseline.DataDays != 10 {
		t.Errorf("DataDays = %d, want 10", baseline.DataDays)
	}
}

func TestExpectedEventsOverWindow(t *testing.T) {
	baseline := model.Baseline{
		SubsPerDay: 10,
		DowFactors: [7]float64{1, 1, 1, 1, 1, 1, 1},
	}

	wStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		wEnd time.Time
		want float64
	}{
		{name: "one full day", wEnd: wStart.AddDate(0, 0, 1), want: 10},
		{name: "half a day", wEnd: wStart.Add(12 * time.Hour), want: 5},
		{name: "empty window", wEnd: wStart, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expectedEventsOverWindow(baseline, wStart, tt.wEnd)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("expectedEventsOverWindow() = %v, want %v", got, tt.want)
			}
		})
	}
}
