// internal/cli/options_test.go
package cli

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mutfreq/internal/align"
	"mutfreq/internal/reference"
	"mutfreq/internal/trends"
)

func newFS(mode Mode) *flag.FlagSet {
	fs := NewFlagSet("mutfreq", mode)
	fs.SetOutput(io.Discard)
	return fs
}

func mustParse(t *testing.T, mode Mode, args ...string) Options {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	o, err := ParseArgs(newFS(mode), mode, args)
	if err != nil {
		t.Fatalf("ParseArgs(%v): %v", args, err)
	}
	return o
}

func parseErr(t *testing.T, mode Mode, args ...string) error {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	_, err := ParseArgs(newFS(mode), mode, args)
	return err
}

var base = []string{"--sequences", "s.fa", "--metadata", "m.csv", "--out", "out"}

func TestDefaults(t *testing.T) {
	o := mustParse(t, ModeFull, base...)
	if o.Scoring != align.DefaultScoring {
		t.Fatalf("scoring %+v", o.Scoring)
	}
	if o.MinCount != trends.DefaultMinCount || o.LongFormat != "csv" || o.FreqFormat != "csv" {
		t.Fatalf("defaults %+v", o)
	}
	if o.Strategy() != (reference.Strategy{Kind: reference.First}) {
		t.Fatalf("strategy %+v", o.Strategy())
	}
	if o.ExcludeReference || o.SkipAmbiguous || o.Threads != 0 || o.MaxSeqLen != 0 || o.TimeoutPerSample != 0 {
		t.Fatalf("unexpected non-zero defaults %+v", o)
	}
}

func TestFlags(t *testing.T) {
	o := mustParse(t, ModeFull, append(base,
		"--match", "1", "--mismatch", "-3", "--gap-open", "-5", "--gap-extend", "-1",
		"--max-seq-len", "30000", "--timeout-per-sample", "2s", "--threads", "3",
		"--reference", "id:MN908947.3", "--exclude-reference",
		"--min-count", "0", "--long-format", "cbor", "--freq-format", "jsonl", "-q")...)
	if o.Scoring != (align.Scoring{Match: 1, Mismatch: -3, GapOpen: -5, GapExtend: -1}) {
		t.Fatalf("scoring %+v", o.Scoring)
	}
	if o.MaxSeqLen != 30000 || o.TimeoutPerSample != 2*time.Second || o.Threads != 3 {
		t.Fatalf("budgets %+v", o)
	}
	if o.Strategy() != (reference.Strategy{Kind: reference.ByID, ID: "MN908947.3"}) || !o.ExcludeReference {
		t.Fatalf("reference %+v", o.Strategy())
	}
	if o.MinCount != 0 || o.LongFormat != "cbor" || o.FreqFormat != "jsonl" || !o.Quiet {
		t.Fatalf("output %+v", o)
	}
}

func TestReferenceFASTAImpliesFileStrategy(t *testing.T) {
	o := mustParse(t, ModeCall, append(base, "--reference-fasta", "ref.fa")...)
	if o.Strategy().Kind != reference.File {
		t.Fatalf("strategy %+v", o.Strategy())
	}
}

func TestValidation(t *testing.T) {
	cases := map[string][]string{
		"no out":          {"--sequences", "s.fa", "--metadata", "m.csv"},
		"no sequences":    {"--metadata", "m.csv", "--out", "o"},
		"no metadata":     {"--sequences", "s.fa", "--out", "o"},
		"negative count":  append(base, "--min-count", "-1"),
		"bad format":      append(base, "--long-format", "xml"),
		"bad freq format": append(base, "--freq-format", "cbor"),
		"bad strategy":    append(base, "--reference", "last"),
		"file no fasta":   append(base, "--reference", "file"),
		"id and fasta":    append(base, "--reference", "id:x", "--reference-fasta", "r.fa"),
		"neg threads":     append(base, "--threads", "-2"),
		"both stdin":      {"--sequences", "-", "--metadata", "-", "--out", "o"},
		"positional":      append(base, "extra.fa"),
	}
	for name, args := range cases {
		if err := parseErr(t, ModeFull, args...); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestModesRegisterOwnFlags(t *testing.T) {
	if err := parseErr(t, ModeCall, append(base, "--min-count", "3")...); err == nil {
		t.Fatalf("call mode should not accept --min-count")
	}
	if err := parseErr(t, ModeTrends, "--sequences", "s.fa", "--out", "o"); err == nil {
		t.Fatalf("trends mode should not accept --sequences")
	}
	o := mustParse(t, ModeTrends, "--mutations", "x/mutations_long.csv", "--out", "o", "--pg-url", "postgres://h/db")
	if o.Mutations != "x/mutations_long.csv" || o.PGURL != "postgres://h/db" {
		t.Fatalf("%+v", o)
	}
	if err := parseErr(t, ModeTrends, "--out", "o"); err == nil {
		t.Fatalf("trends mode requires --mutations")
	}
}

func TestHelpAndVersion(t *testing.T) {
	if err := parseErr(t, ModeFull, "-h"); !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("-h: %v", err)
	}
	o := mustParse(t, ModeFull, "--version")
	if !o.Version {
		t.Fatalf("--version not set")
	}
}

func TestConfigFillsUnsetFlags(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "cfg.ini")
	ini := "[alignment]\nmatch=5\nmax-seq-len=100\n[run]\nmin-count=7\nthreads=2\n[output]\nlong-format=jsonl\n"
	if err := os.WriteFile(cfg, []byte(ini), 0o644); err != nil {
		t.Fatal(err)
	}
	o := mustParse(t, ModeFull, append(base, "--config", cfg, "--threads", "8")...)
	if o.Scoring.Match != 5 || o.MaxSeqLen != 100 || o.MinCount != 7 || o.LongFormat != "jsonl" {
		t.Fatalf("config not applied: %+v", o)
	}
	if o.Threads != 8 {
		t.Fatalf("flag should win over config, threads=%d", o.Threads)
	}
}

func TestConfigDefaultPath(t *testing.T) {
	home := t.TempDir()
	if err := os.WriteFile(filepath.Join(home, ".mutfreq"), []byte("[run]\nmin-count=3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", home)
	o, err := ParseArgs(newFS(ModeFull), ModeFull, base)
	if err != nil {
		t.Fatal(err)
	}
	if o.MinCount != 3 {
		t.Fatalf("min-count %d", o.MinCount)
	}
}

func TestConfigBadValue(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "cfg.ini")
	if err := os.WriteFile(cfg, []byte("[run]\nthreads=many\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := parseErr(t, ModeFull, append(base, "--config", cfg)...); err == nil {
		t.Fatalf("expected error for non-numeric threads")
	}
}
