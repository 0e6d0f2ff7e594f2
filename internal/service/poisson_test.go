package service

import "testing"

func TestPoissonTwoSidedP(t *testing.T) {
	tests := []struct {
		name     string
		actual   int
		expected float64
		wantHigh bool // true if p should be "large" (not significant)
	}{
		{name: "actual matches expected exactly", actual: 10, expected: 10, wantHigh: true},
		{name: "actual far above expected", actual: 40, expected: 10, wantHigh: false},
		{name: "actual far below expected", actual: 1, expected: 20, wantHigh: false},
		{name: "zero expected, zero actual", actual: 0, expected: 0, wantHigh: true},
		{name: "zero expected, positive actual is degenerate and returns certainty", actual: 5, expected: 0, wantHigh: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PoissonTwoSidedP(tt.actual, tt.expected)
			if p < 0 || p > 1 {
				t.Fatalf("p-value out of range: %v", p)
			}
			if tt.wantHigh && p < 0.5 {
				t.Errorf("expected a high (non-significant) p-value, got %v", p)
			}
			if !tt.wantHigh && p > 0.1 {
				t.Errorf("expected a low (significant) p-value, got %v", p)
			}
		})
	}
}

func TestPoissonTwoSidedP_NonPositiveExpectedIsAlwaysCertain(t *testing.T) {
	for _, actual := range []int{0, 1, 5, 100} {
		if p := PoissonTwoSidedP(actual, 0); p != 1 {
			t.Errorf("expected p=1 for actual=%d against 0 expected, got %v", actual, p)
		}
	}
}
