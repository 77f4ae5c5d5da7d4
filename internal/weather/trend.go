package weather

// DefaultTrendLimit is the number of observations drawn in a trend chart.
const DefaultTrendLimit = 7

// Trend returns the last limit observations for city in append order.
// Matching is exact and case-sensitive. Order follows the log, not the
// timestamps, so backfilled rows stay where they were appended.
func Trend(log []Observation, city string, limit int) []Observation {
	out := []Observation{}
	if limit <= 0 {
		return out
	}
	for _, o := range log {
		if o.City == city {
			out = append(out, o)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// Cities returns the distinct cities present in log, in first-seen order.
func Cities(log []Observation) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, o := range log {
		if _, ok := seen[o.City]; ok {
			continue
		}
		seen[o.City] = struct{}{}
		out = append(out, o.City)
	}
	return out
}
