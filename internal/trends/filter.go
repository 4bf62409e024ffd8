// internal/trends/filter.go
package trends

import "fmt"

// DefaultMinCount is the default per-label total below which labels are
// dropped.
const DefaultMinCount = 20

// LabelTotals sums NWithMut per label across all dates.
func LabelTotals(recs []Record) map[string]int {
	out := map[string]int{}
	for _, r := range recs {
		out[r.Label] += r.NWithMut
	}
	return out
}

// Filter keeps records whose label total is >= minCount and returns them
// sorted by (label, date). The input is not modified.
func Filter(recs []Record, minCount int) ([]Record, error) {
	if minCount < 0 {
		return nil, fmt.Errorf("min count must be >= 0, got %d", minCount)
	}
	totals := LabelTotals(recs)
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		if totals[r.Label] >= minCount {
			out = append(out, r)
		}
	}
	Sort(out)
	return out, nil
}
