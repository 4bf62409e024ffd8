// internal/cli/usage.go
package cli

import (
	"flag"
	"fmt"

	"mutfreq/internal/version"
)

var blurbs = map[Mode]string{
	ModeFull:   "align samples to a reference and build daily mutation frequencies",
	ModeCall:   "align samples to a reference and write the mutation long table",
	ModeTrends: "aggregate a mutation long table into daily frequencies",
}

var examples = map[Mode]string{
	ModeFull:   "--sequences seqs.fa.gz --metadata meta.csv --out results/ --min-count 20",
	ModeCall:   "--sequences seqs.fa --metadata meta.tsv --reference id:MN908947.3 --out results/",
	ModeTrends: "--mutations results/mutations_long.csv --out results/ --min-count 5",
}

// NewFlagSet returns a ContinueOnError FlagSet with custom usage/help.
func NewFlagSet(name string, mode Mode) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "%s: %s\n\nVersion: %s\n\n", name, blurbs[mode], version.Version)
		fmt.Fprintf(out, "Example:\n  %s %s\n\n", name, examples[mode])
		fmt.Fprintf(out, "Usage of %s ([*] = required):\n", name)
		fs.PrintDefaults()
	}
	return fs
}
