package report

import (
	"sort"

	"dailyreport/internal/domain"
)

// Aggregate collapses a set of samples to a single cell value using the
// given aggregation. The second return is false when there is nothing to
// aggregate, in which case the caller writes the fill-if-missing text.
func Aggregate(samples []domain.Sample, agg domain.Aggregation) (float64, bool) {
	if len(samples) == 0 {
		return 0, false
	}

	switch agg {
	case domain.AggAvg:
		sum := 0.0
		for _, s := range samples {
			sum += s.Value
		}
		return sum / float64(len(samples)), true

	case domain.AggMax:
		max := samples[0].Value
		for _, s := range samples[1:] {
			if s.Value > max {
				max = s.Value
			}
		}
		return max, true

	case domain.AggMin:
		min := samples[0].Value
		for _, s := range samples[1:] {
			if s.Value < min {
				min = s.Value
			}
		}
		return min, true

	case domain.AggSum:
		sum := 0.0
		for _, s := range samples {
			sum += s.Value
		}
		return sum, true

	default: // AggLast and anything unrecognized
		ordered := make([]domain.Sample, len(samples))
		copy(ordered, samples)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Time.Before(ordered[j].Time)
		})
		return ordered[len(ordered)-1].Value, true
	}
}

// FilterWindow returns the samples inside [start, end], bounds inclusive.
func FilterWindow(samples []domain.Sample, req domain.ReportRequest) []domain.Sample {
	start, end := req.Start(), req.End()

	var out []domain.Sample
	for _, s := range samples {
		if s.Time.Before(start) || s.Time.After(end) {
			continue
		}
		out = append(out, s)
	}
	return out
}
