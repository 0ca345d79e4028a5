package sim

import "math"

// DefaultZ is the normal quantile for a 95% interval.
const DefaultZ = 1.96

// ZScore returns the two-sided normal quantile for confidence in (0,1).
// Zero, or anything outside (0,1), gives DefaultZ.
func ZScore(confidence float64) float64 {
	if confidence <= 0 || confidence >= 1 || math.IsNaN(confidence) {
		return DefaultZ
	}
	if confidence == 0.95 {
		return DefaultZ
	}
	return math.Sqrt2 * math.Erfinv(confidence)
}

// Wilson returns the Wilson score interval for hits successes out of n trials.
func Wilson(hits, n int64, z float64) (lower, upper float64) {
	if n <= 0 {
		return 0, 0
	}
	nf := float64(n)
	p := float64(hits) / nf
	z2 := z * z
	denom := 1 + z2/nf
	centre := (p + z2/(2*nf)) / denom
	margin := z * math.Sqrt(p*(1-p)/nf+z2/(4*nf*nf)) / denom
	return math.Max(0, centre-margin), math.Min(1, centre+margin)
}

// EV is the expected profit per unit staked on a bet paying b:1 that wins with probability p.
func EV(p, b float64) float64 {
	return (b+1)*p - 1
}

// Kelly is the Kelly stake fraction for a b:1 bet won with probability p,
// clamped to [0,1] and zero whenever the bet has no edge.
func Kelly(p, b float64) float64 {
	if b <= 0 || EV(p, b) <= 0 {
		return 0
	}
	f := (p*b - (1 - p)) / b
	return math.Max(0, math.Min(1, f))
}
