package service

import "testing"

func TestConfidenceScorer_Score(t *testing.T) {
	tests := []struct {
		name                string
		actual              int
		expected            float64
		windowHours         float64
		hasConfounders      bool
		baselineDataDays    int
		minSubsForConfident int
		wantLevel           string
		wantMinEventsMet    bool
	}{
		{
			name:                "below recommendation floor scores low",
			actual:              3,
			expected:            5,
			windowHours:         72,
			baselineDataDays:    14,
			minSubsForConfident: 25,
			wantLevel:           "low",
			wantMinEventsMet:    false,
		},
		{
			name:                "large sample with significant lift and full baseline scores high",
			actual:              40,
			expected:            10,
			windowHours:         168,
			baselineDataDays:    30,
			minSubsForConfident: 25,
			wantLevel:           "high",
			wantMinEventsMet:    true,
		},
		{
			name:                "confounder overlap pulls score down",
			actual:              40,
			expected:            10,
			windowHours:         168,
			hasConfounders:      true,
			baselineDataDays:    10,
			minSubsForConfident: 25,
			wantLevel:           "medium",
			wantMinEventsMet:    true,
		},
		{
			name:                "thin baseline history is penalised",
			actual:              15,
			expected:            12,
			windowHours:         72,
			baselineDataDays:    2,
			minSubsForConfident: 25,
			wantLevel:           "low",
			wantMinEventsMet:    true,
		},
	}

	scorer := NewConfidenceScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := scorer.Score(tt.actual, tt.expected, tt.windowHours, tt.hasConfounders, tt.baselineDataDays, tt.minSubsForConfident)
			if result.Level != tt.wantLevel {
				t.Errorf("Level = %q, want %q (score=%v)", result.Level, tt.wantLevel, result.Score)
			}
			if result.MinEventsMet != tt.wantMinEventsMet {
				t.Errorf("MinEventsMet = %v, want %v", result.MinEventsMet, tt.wantMinEventsMet)
			}
			if result.Score < 0.1 || result.Score > 0.95 {
				t.Errorf("Score %v out of clamp range [0.1, 0.95]", result.Score)
			}
		})
	}
}

func TestConfidenceScorer_PoissonSkippedBelowFiveActual(t *testing.T) {
	scorer := NewConfidenceScorer()
	result := scorer.Score(3, 10, 72, false, 14, 25)
	if result.PoissonP != nil {
		t.Errorf("expected PoissonP to stay nil below the actual>=5 threshold, got %v", *result.PoissonP)
	}
}
