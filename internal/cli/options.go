// internal/cli/options.go
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"mutfreq/internal/align"
	"mutfreq/internal/config"
	"mutfreq/internal/freqtable"
	"mutfreq/internal/longtable"
	"mutfreq/internal/reference"
	"mutfreq/internal/trends"
)

// Mode selects which pipeline stages a command runs.
type Mode int

const (
	ModeFull   Mode = iota // call + trends
	ModeCall               // sequences -> long table
	ModeTrends             // long table -> frequency table
)

func (m Mode) calls() bool  { return m == ModeFull || m == ModeCall }
func (m Mode) trends() bool { return m == ModeFull || m == ModeTrends }

// Options holds all CLI flags and arguments.
type Options struct {
	// Stage (a) input
	Sequences        string
	Metadata         string
	Reference        string
	ReferenceFASTA   string
	ExcludeReference bool

	// Stage (b) input, trends-only command
	Mutations string
	Roster    string

	OutDir string

	// Alignment
	Scoring          align.Scoring
	MaxSeqLen        int
	TimeoutPerSample time.Duration
	SkipAmbiguous    bool
	Threads          int

	// Aggregation
	MinCount int

	// Output
	LongFormat  string
	FreqFormat  string
	PGURL       string
	PGTable     string
	RunID       string
	MetricsPush string

	// Misc
	Config  string
	Quiet   bool
	Version bool

	strategy reference.Strategy
}

// Strategy is the validated reference-selection strategy.
func (o Options) Strategy() reference.Strategy { return o.strategy }

// register wires the flags that mode uses.
func register(fs *flag.FlagSet, mode Mode, o *Options, help *bool) {
	if mode.calls() {
		fs.StringVar(&o.Sequences, "sequences", "", "FASTA of samples, optionally gzipped, or '-' [*]")
		fs.StringVar(&o.Metadata, "metadata", "", "CSV/TSV metadata with identifier and collection date [*]")
		fs.StringVar(&o.Reference, "reference", reference.First, "reference selection: first | id:<ID> | file")
		fs.StringVar(&o.ReferenceFASTA, "reference-fasta", "", "FASTA whose first record is the reference (implies --reference file)")
		fs.BoolVar(&o.ExcludeReference, "exclude-reference", false, "drop the reference record from the sample roster")

		o.Scoring = align.DefaultScoring
		fs.Float64Var(&o.Scoring.Match, "match", align.DefaultScoring.Match, "match score")
		fs.Float64Var(&o.Scoring.Mismatch, "mismatch", align.DefaultScoring.Mismatch, "mismatch score")
		fs.Float64Var(&o.Scoring.GapOpen, "gap-open", align.DefaultScoring.GapOpen, "gap open score")
		fs.Float64Var(&o.Scoring.GapExtend, "gap-extend", align.DefaultScoring.GapExtend, "gap extend score")
		fs.IntVar(&o.MaxSeqLen, "max-seq-len", 0, "skip samples longer than N bases (0 = unlimited)")
		fs.DurationVar(&o.TimeoutPerSample, "timeout-per-sample", 0, "skip samples whose alignment exceeds this wall time (0 = none)")
		fs.BoolVar(&o.SkipAmbiguous, "skip-ambiguous", false, "do not report substitutions to non-ACGT symbols")
		fs.IntVar(&o.Threads, "threads", 0, "alignment worker threads (0 = all CPUs); each holds one traceback matrix, a few MiB for closely related genomes")
		fs.StringVar(&o.LongFormat, "long-format", longtable.FormatCSV, "long table encoding: csv | jsonl | cbor")
	}
	if mode == ModeTrends {
		fs.StringVar(&o.Mutations, "mutations", "", "mutation long table (.csv, .jsonl or .cbor) [*]")
		fs.StringVar(&o.Roster, "samples", "", "sample roster CSV (default: samples.csv next to --mutations)")
	}
	if mode.trends() {
		fs.IntVar(&o.MinCount, "min-count", trends.DefaultMinCount, "drop labels observed fewer times in total")
		fs.StringVar(&o.FreqFormat, "freq-format", freqtable.FormatCSV, "frequency table encoding: csv | jsonl")
		fs.StringVar(&o.PGURL, "pg-url", "", "also load the frequency table into this PostgreSQL database")
		fs.StringVar(&o.PGTable, "pg-table", "", "PostgreSQL table name (default mutation_freq_by_day)")
		fs.StringVar(&o.RunID, "run-id", "", "run identifier for --pg-url and --metrics-push (default: output directory name)")
	}
	fs.StringVar(&o.OutDir, "out", "", "output directory (created if missing) [*]")
	fs.StringVar(&o.MetricsPush, "metrics-push", "", "Prometheus Pushgateway URL to push run metrics to")
	fs.StringVar(&o.Config, "config", "", "INI config file (default $HOME/"+config.FileName+" when present)")
	fs.BoolVar(&o.Quiet, "quiet", false, "log warnings and errors only")
	fs.BoolVar(&o.Quiet, "q", false, "alias of --quiet")
	fs.BoolVar(&o.Version, "version", false, "print version and exit")
	fs.BoolVar(&o.Version, "v", false, "alias of --version")
	fs.BoolVar(help, "h", false, "show this help message")
}

// ParseArgs registers and parses the flags of mode. Values from the config
// file fill in flags not given on the command line.
func ParseArgs(fs *flag.FlagSet, mode Mode, argv []string) (Options, error) {
	var opt Options
	var help bool
	register(fs, mode, &opt, &help)

	if err := fs.Parse(argv); err != nil {
		return opt, err
	}
	if help {
		return opt, flag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}
	if fs.NArg() > 0 {
		return opt, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if err := applyConfig(fs, opt.Config); err != nil {
		return opt, err
	}
	return opt, validate(mode, &opt)
}

func applyConfig(fs *flag.FlagSet, path string) error {
	var (
		vals map[string]string
		err  error
	)
	if path != "" {
		vals, err = config.Load(path)
	} else {
		vals, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	for _, k := range config.Keys() {
		v, ok := vals[k]
		if !ok || set[k] || fs.Lookup(k) == nil {
			continue
		}
		if err := fs.Set(k, v); err != nil {
			return fmt.Errorf("config %s=%q: %w", k, v, err)
		}
	}
	return nil
}

func validate(mode Mode, o *Options) error {
	if o.OutDir == "" {
		return errors.New("--out is required")
	}
	if mode.calls() {
		if o.Sequences == "" {
			return errors.New("--sequences is required")
		}
		if o.Metadata == "" {
			return errors.New("--metadata is required")
		}
		s, err := reference.ParseStrategy(o.Reference)
		if err != nil {
			return err
		}
		if o.ReferenceFASTA != "" {
			if s.Kind == reference.ByID {
				return errors.New("--reference-fasta conflicts with --reference id:<ID>")
			}
			s = reference.Strategy{Kind: reference.File}
		} else if s.Kind == reference.File {
			return errors.New("--reference file requires --reference-fasta")
		}
		o.strategy = s
		if err := o.Scoring.Validate(); err != nil {
			return err
		}
		if o.MaxSeqLen < 0 {
			return errors.New("--max-seq-len must be ≥ 0")
		}
		if o.TimeoutPerSample < 0 {
			return errors.New("--timeout-per-sample must be ≥ 0")
		}
		if o.Threads < 0 {
			return errors.New("--threads must be ≥ 0")
		}
		if !contains(longtable.Formats(), o.LongFormat) {
			return fmt.Errorf("invalid --long-format %q", o.LongFormat)
		}
	}
	if mode == ModeTrends && o.Mutations == "" {
		return errors.New("--mutations is required")
	}
	if mode.trends() {
		if o.MinCount < 0 {
			return errors.New("--min-count must be ≥ 0")
		}
		if !contains(freqtable.Formats(), o.FreqFormat) {
			return fmt.Errorf("invalid --freq-format %q", o.FreqFormat)
		}
	}
	if o.Sequences == "-" && o.Metadata == "-" {
		return errors.New("--sequences and --metadata cannot both read stdin")
	}
	if st, err := os.Stat(o.OutDir); err == nil && !st.IsDir() {
		return fmt.Errorf("--out %s exists and is not a directory", o.OutDir)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
