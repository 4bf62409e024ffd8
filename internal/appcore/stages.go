// internal/appcore/stages.go
package appcore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"mutfreq/internal/align"
	"mutfreq/internal/catalog"
	"mutfreq/internal/cli"
	"mutfreq/internal/cmdutil"
	"mutfreq/internal/fasta"
	"mutfreq/internal/freqtable"
	"mutfreq/internal/longtable"
	"mutfreq/internal/metadata"
	"mutfreq/internal/metrics"
	"mutfreq/internal/mutation"
	"mutfreq/internal/pgexport"
	"mutfreq/internal/reference"
	"mutfreq/internal/trends"
)

// Env carries the per-run logger and metrics.
type Env struct {
	Log     *log.Logger
	Metrics *metrics.Metrics
}

// observer reports catalog progress to the log and the metrics registry.
type observer struct {
	log *log.Logger
	m   *metrics.Metrics
}

func (o observer) Aligned(key string, events int, took time.Duration) {
	o.log.WithFields(log.Fields{"sample": key, "mutations": events, "took": took}).Debug("aligned")
	o.m.Aligned(key, events, took)
}

func (o observer) Skipped(key string, err error) {
	cmdutil.Warnf(o.log, "skipping sample %s: %v", key, err)
	o.m.Skipped(key, err)
}

// Inputs is everything stage (a) needs, loaded and validated before any
// output is written.
type Inputs struct {
	Reference fasta.Record
	Roster    []catalog.Sample
}

// LoadInputs reads sequences and metadata, picks the reference and builds
// the roster. Every failure here is an input error.
func LoadInputs(ctx context.Context, o cli.Options, env Env) (Inputs, error) {
	records, err := fasta.ReadAll(ctx, o.Sequences)
	if err != nil {
		return Inputs{}, cmdutil.Usage(fmt.Errorf("sequences: %w", err))
	}
	var external []fasta.Record
	if o.ReferenceFASTA != "" {
		external, err = fasta.ReadAll(ctx, o.ReferenceFASTA)
		if err != nil {
			return Inputs{}, cmdutil.Usage(fmt.Errorf("reference: %w", err))
		}
	}
	sel, err := reference.Select(o.Strategy(), records, external, o.ExcludeReference)
	if err != nil {
		return Inputs{}, cmdutil.Usage(err)
	}

	view, warns, err := metadata.Load(o.Metadata)
	if err != nil {
		return Inputs{}, cmdutil.Usage(fmt.Errorf("metadata: %w", err))
	}
	for _, w := range warns {
		cmdutil.Warnf(env.Log, "metadata %s", w)
	}

	roster := catalog.Roster(sel.Samples, view)
	missing := 0
	for _, s := range roster {
		if s.Date.IsZero() {
			missing++
		}
	}
	if missing > 0 {
		cmdutil.Warnf(env.Log, "%d of %d samples have no collection date and are left out of daily totals", missing, len(roster))
	}
	env.Log.WithFields(log.Fields{
		"metadata":  view.Len(),
		"reference": sel.Reference.ID,
		"length":    len(sel.Reference.Ungapped()),
		"samples":   len(roster),
	}).Info("inputs loaded")
	return Inputs{Reference: sel.Reference, Roster: roster}, nil
}

// Call runs stage (a): align every sample, then persist the long table and
// the roster view under o.OutDir. The returned roster view leaves out
// skipped samples; it is what samples.csv holds.
func Call(ctx context.Context, o cli.Options, env Env, in Inputs) (catalog.Table, []metadata.Entry, error) {
	b := &catalog.Builder{
		Aligner: align.New(o.Scoring, align.Options{MaxLen: o.MaxSeqLen}),
		Threads: o.Threads,
		Timeout: o.TimeoutPerSample,
		Extract: mutation.Options{SkipAmbiguous: o.SkipAmbiguous},
		Obs:     observer{log: env.Log, m: env.Metrics},
	}
	start := time.Now()
	tab, err := b.Build(ctx, in.Reference.Ungapped(), in.Roster)
	if err != nil {
		return catalog.Table{}, nil, err
	}
	env.Log.WithFields(log.Fields{
		"samples": tab.Samples,
		"skipped": len(tab.Skipped),
		"events":  len(tab.Events),
		"took":    time.Since(start).Round(time.Millisecond),
	}).Info("alignment finished")

	if err := os.MkdirAll(o.OutDir, 0o755); err != nil {
		return catalog.Table{}, nil, err
	}
	longPath := filepath.Join(o.OutDir, longtable.FileName(o.LongFormat))
	if err := longtable.WriteFile(longPath, o.LongFormat, tab.Events); err != nil {
		return catalog.Table{}, nil, err
	}
	env.Log.Infof("wrote %s with %d rows", longPath, len(tab.Events))

	rosterPath := filepath.Join(o.OutDir, longtable.RosterFileName)
	entries := tab.Completed(in.Roster)
	if err := longtable.WriteRosterFile(rosterPath, entries); err != nil {
		return catalog.Table{}, nil, err
	}
	env.Log.Infof("wrote %s with %d rows", rosterPath, len(entries))
	return tab, entries, nil
}

// RosterPath is the roster file stage (b) reads: --samples, or samples.csv
// next to the long table.
func RosterPath(o cli.Options) string {
	if o.Roster != "" {
		return o.Roster
	}
	return filepath.Join(filepath.Dir(o.Mutations), longtable.RosterFileName)
}

// LoadCatalog reads a persisted long table and its roster.
func LoadCatalog(o cli.Options, env Env) ([]mutation.Event, []metadata.Entry, error) {
	events, err := longtable.ReadFile(o.Mutations)
	if err != nil {
		return nil, nil, cmdutil.Usage(fmt.Errorf("mutations: %w", err))
	}
	rp := RosterPath(o)
	roster, err := longtable.ReadRosterFile(rp)
	if err != nil {
		return nil, nil, cmdutil.Usage(fmt.Errorf("samples: %w", err))
	}
	env.Log.WithFields(log.Fields{"events": len(events), "samples": len(roster)}).Info("long table loaded")
	return events, roster, nil
}

// Trends runs stage (b): aggregate, filter, persist and optionally export.
func Trends(ctx context.Context, o cli.Options, env Env, events []mutation.Event, roster []metadata.Entry) ([]trends.Record, error) {
	all := trends.Aggregate(events, roster)
	recs, err := trends.Filter(all, o.MinCount)
	if err != nil {
		return nil, cmdutil.Usage(err)
	}
	env.Log.WithFields(log.Fields{
		"records":   len(all),
		"kept":      len(recs),
		"labels":    len(trends.LabelTotals(recs)),
		"min_count": o.MinCount,
	}).Info("aggregated")

	if err := os.MkdirAll(o.OutDir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(o.OutDir, freqtable.FileName(o.FreqFormat))
	if err := freqtable.WriteFile(path, o.FreqFormat, recs); err != nil {
		return nil, err
	}
	env.Log.Infof("wrote %s with %d rows", path, len(recs))
	env.Metrics.FrequencyRecords.Set(float64(len(recs)))

	if o.PGURL != "" {
		if err := export(ctx, o, env, recs); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

func export(ctx context.Context, o cli.Options, env Env, recs []trends.Record) error {
	ex, err := pgexport.Connect(ctx, o.PGURL)
	if err != nil {
		return err
	}
	defer func() { _ = ex.Close(context.Background()) }()
	if o.PGTable != "" {
		ex.Table = o.PGTable
	}
	n, err := ex.Load(ctx, RunID(o), recs)
	if err != nil {
		return err
	}
	env.Log.WithFields(log.Fields{"table": ex.Table, "run_id": RunID(o), "rows": n}).Info("exported to postgres")
	return nil
}

// RunID is --run-id, or the base name of the output directory.
func RunID(o cli.Options) string {
	if o.RunID != "" {
		return o.RunID
	}
	abs, err := filepath.Abs(o.OutDir)
	if err != nil {
		return filepath.Base(o.OutDir)
	}
	return filepath.Base(abs)
}

// PushMetrics sends run metrics when --metrics-push is set. Failures are
// warnings; the artifacts are already on disk.
func PushMetrics(o cli.Options, env Env) {
	if o.MetricsPush == "" {
		return
	}
	if err := env.Metrics.Push(o.MetricsPush, RunID(o)); err != nil {
		cmdutil.Warnf(env.Log, "metrics push to %s failed: %v", o.MetricsPush, err)
		return
	}
	env.Log.Infof("pushed metrics to %s", o.MetricsPush)
}
