// Package timeline computes how a fixed duration budget is spread across
// an ordered list of video clips.
package timeline

// Keep records how much of one clip survives the budget. Entries appear
// in input order; clips dropped after the budget is exhausted have no entry.
type Keep struct {
	Index    int
	Duration float64
}

// Plan allocates maxDuration greedily from left to right: each clip keeps
// min(its duration, remaining budget) seconds from its start, and once the
// budget runs out every later clip is dropped. There is no rebalancing —
// a short early clip does not give later clips a larger share, its unused
// allotment simply stays in the remaining budget.
func Plan(clipDurations []float64, maxDuration float64) []Keep {
	plan := make([]Keep, 0, len(clipDurations))
	remaining := maxDuration

	for i, dur := range clipDurations {
		if remaining <= 0 {
			break
		}
		keep := dur
		if keep > remaining {
			keep = remaining
		}
		plan = append(plan, Keep{Index: i, Duration: keep})
		remaining -= keep
	}

	return plan
}

// Total returns the summed kept duration of a plan.
func Total(plan []Keep) float64 {
	var sum float64
	for _, k := range plan {
		sum += k.Duration
	}
	return sum
}
