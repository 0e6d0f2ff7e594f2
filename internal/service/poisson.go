package service

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// PoissonTwoSidedP computes a two-sided exact test p-value for observing
// actual events against a Poisson(expected) null: the probability, under
// the null that the true rate matches the baseline, of observing a result
// at least as extreme as actual in either direction.
//
// This mirrors a one-sample Poisson exact test: the tail in the direction
// actual deviates from expected, doubled and capped at 1, rather than the
// minimum-likelihood definition, since results are reported against a
// directional lift (over- or under-performance) and not a magnitude alone.
//
// A non-positive expected rate is degenerate — there is no baseline to test
// against — so it always returns certainty (p=1) rather than treating any
// observed count as infinitely significant.
func PoissonTwoSidedP(actual int, expected float64) float64 {
	if expected <= 0 {
		return 1
	}

	dist := distuv.Poisson{Lambda: expected}
	k := float64(actual)

	var tail float64
	if k >= expected {
		// P(X >= actual) = 1 - P(X <= actual-1) = 1 - CDF(actual-1)
		tail = 1 - dist.CDF(k-1)
	} else {
		// P(X <= actual)
		tail = dist.CDF(k)
	}

	p := 2 * tail
	if p > 1 {
		p = 1
	}
	return p
}
