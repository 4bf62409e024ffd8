// internal/trends/aggregate.go
package trends

import (
	"sort"

	"mutfreq/internal/civil"
	"mutfreq/internal/metadata"
	"mutfreq/internal/mutation"
)

// Record is the frequency of one label on one day.
type Record struct {
	Label      string
	Date       civil.Date
	NWithMut   int
	NSequences int
	Freq       *float64 // nil when NSequences is 0
}

// DailyTotals counts distinct roster keys per known collection date.
func DailyTotals(roster []metadata.Entry) map[civil.Date]int {
	keys := map[civil.Date]map[string]struct{}{}
	for _, e := range roster {
		if e.Date.IsZero() {
			continue
		}
		m := keys[e.Date]
		if m == nil {
			m = map[string]struct{}{}
			keys[e.Date] = m
		}
		m[e.Key] = struct{}{}
	}
	out := make(map[civil.Date]int, len(keys))
	for d, m := range keys {
		out[d] = len(m)
	}
	return out
}

type dayLabel struct {
	date  civil.Date
	label string
}

// dailyCounts counts distinct sample keys per (date, label). Events with a
// missing date are dropped.
func dailyCounts(events []mutation.Event) map[dayLabel]int {
	keys := map[dayLabel]map[string]struct{}{}
	for _, e := range events {
		if e.Date.IsZero() {
			continue
		}
		k := dayLabel{e.Date, e.Label()}
		m := keys[k]
		if m == nil {
			m = map[string]struct{}{}
			keys[k] = m
		}
		m[e.Key] = struct{}{}
	}
	out := make(map[dayLabel]int, len(keys))
	for k, m := range keys {
		out[k] = len(m)
	}
	return out
}

// Aggregate left-joins daily mutation counts onto the roster's daily
// totals. It emits one record per observed (label, date), sorted by label
// then date.
func Aggregate(events []mutation.Event, roster []metadata.Entry) []Record {
	totals := DailyTotals(roster)
	counts := dailyCounts(events)

	out := make([]Record, 0, len(counts))
	for k, n := range counts {
		r := Record{Label: k.label, Date: k.date, NWithMut: n, NSequences: totals[k.date]}
		if r.NSequences > 0 {
			f := float64(r.NWithMut) / float64(r.NSequences)
			r.Freq = &f
		}
		out = append(out, r)
	}
	Sort(out)
	return out
}

// Sort orders records by (label, date), stably.
func Sort(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Label != recs[j].Label {
			return recs[i].Label < recs[j].Label
		}
		return recs[i].Date.Before(recs[j].Date)
	})
}
