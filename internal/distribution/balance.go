package distribution

import "math"

// GlobalBalance reduces a set of load summaries to a fleet equity percentage
// in [0,100]. 100 means every agent carries the same load; lower values mean
// more skew. The value is derived from the coefficient of variation of the
// balance scores (population standard deviation over mean). An empty summary
// set yields 0; a non-positive mean yields 100 since there is no load to be
// unequal about. This is a reporting signal only and never drives assignment
// decisions.
func GlobalBalance(summaries map[string]LoadSummary) float64 {
	if len(summaries) == 0 {
		return 0
	}

	var sum float64
	for _, s := range summaries {
		sum += s.BalanceScore
	}
	mean := sum / float64(len(summaries))

	var variance float64
	for _, s := range summaries {
		d := s.BalanceScore - mean
		variance += d * d
	}
	variance /= float64(len(summaries))
	stddev := math.Sqrt(variance)

	cv := 0.0
	if mean > 0 {
		cv = stddev / mean * 100
	}

	return math.Max(0, 100-cv)
}
