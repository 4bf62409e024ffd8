// internal/catalog/catalog.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"mutfreq/internal/align"
	"mutfreq/internal/civil"
	"mutfreq/internal/fasta"
	"mutfreq/internal/metadata"
	"mutfreq/internal/mutation"
)

// Sample is one roster member ready for alignment.
type Sample struct {
	Key  string
	Seq  []byte
	Date civil.Date
}

// Roster attaches collection dates to records by exact key match.
// Records without a metadata row get a missing date.
func Roster(records []fasta.Record, view *metadata.View) []Sample {
	out := make([]Sample, len(records))
	for i, r := range records {
		d, _ := view.Lookup(r.ID)
		out[i] = Sample{Key: r.ID, Seq: r.Ungapped(), Date: d}
	}
	return out
}

// Completed is the roster view without the samples t skipped. Skipped
// samples have no known mutation status and must not enter denominators.
func (t Table) Completed(roster []Sample) []metadata.Entry {
	skipped := make(map[string]bool, len(t.Skipped))
	for _, k := range t.Skipped {
		skipped[k] = true
	}
	out := make([]metadata.Entry, 0, len(roster)-len(t.Skipped))
	for _, s := range roster {
		if !skipped[s.Key] {
			out = append(out, metadata.Entry{Key: s.Key, Date: s.Date})
		}
	}
	return out
}

// Observer is notified as samples finish. Calls come from worker
// goroutines and must be safe for concurrent use.
type Observer interface {
	Aligned(key string, events int, took time.Duration)
	Skipped(key string, err error)
}

// Table is the completed mutation long table.
type Table struct {
	Events  []mutation.Event
	Samples int      // roster size
	Skipped []string // keys that exceeded their alignment budget, roster order
}

// Builder aligns every sample against one reference and collects events.
type Builder struct {
	Aligner *align.Aligner
	Threads int           // <= 0 means all CPUs
	Timeout time.Duration // per-alignment wall time; 0 = none
	Extract mutation.Options
	Obs     Observer
}

type result struct {
	events  []mutation.Event
	skipped bool
}

// Build runs all alignments and returns once every sample is done.
// Results are merged in roster order regardless of completion order.
// Samples over their length or time budget are skipped; any other error,
// including cancellation of ctx, aborts the build.
func (b *Builder) Build(ctx context.Context, ref []byte, roster []Sample) (Table, error) {
	if b.Aligner == nil {
		return Table{}, errors.New("catalog: nil aligner")
	}
	thr := b.Threads
	if thr <= 0 {
		thr = runtime.NumCPU()
	}

	results := make([]result, len(roster))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(thr)

	for i := range roster {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			s := roster[i]
			evs, skipped, err := b.one(gctx, ref, s)
			if err != nil {
				return fmt.Errorf("sample %q: %w", s.Key, err)
			}
			results[i] = result{events: evs, skipped: skipped}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Table{}, err
	}
	if err := ctx.Err(); err != nil {
		return Table{}, err
	}

	t := Table{Samples: len(roster)}
	for i, r := range results {
		if r.skipped {
			t.Skipped = append(t.Skipped, roster[i].Key)
			continue
		}
		t.Events = append(t.Events, r.events...)
	}
	return t, nil
}

func (b *Builder) one(ctx context.Context, ref []byte, s Sample) ([]mutation.Event, bool, error) {
	actx := ctx
	if b.Timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}
	start := time.Now()
	aln, err := b.Aligner.Align(actx, ref, s.Seq)
	if err != nil {
		overBudget := errors.Is(err, align.ErrTooLong) ||
			(errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil)
		if !overBudget {
			return nil, false, err
		}
		if b.Obs != nil {
			b.Obs.Skipped(s.Key, err)
		}
		return nil, true, nil
	}
	subs := mutation.Extract(aln, b.Extract)
	evs := make([]mutation.Event, len(subs))
	for k, sub := range subs {
		evs[k] = mutation.Event{Key: s.Key, Date: s.Date, Substitution: sub}
	}
	if b.Obs != nil {
		b.Obs.Aligned(s.Key, len(evs), time.Since(start))
	}
	return evs, false, nil
}
