// internal/longtable/longtable.go
package longtable

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"mutfreq/internal/civil"
	"mutfreq/internal/fasta"
	"mutfreq/internal/mutation"
	"mutfreq/internal/writers"
	"mutfreq/pkg/api"
)

const (
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
	FormatCBOR  = "cbor"

	// BaseName is the artifact name without extension.
	BaseName = "mutations_long"
)

// Header is the CSV column order.
var Header = []string{"key", "collection_date", "pos", "ref", "alt", "label"}

var (
	registry = writers.NewRegistry[mutation.Event]("long-table")
	readers  = map[string]func(io.Reader) ([]mutation.Event, error){}
)

func registerReader(format string, fn func(io.Reader) ([]mutation.Event, error)) {
	readers[format] = fn
}

// Formats lists the supported encodings.
func Formats() []string { return registry.Formats() }

// FileName is the artifact name for format, e.g. mutations_long.csv.
func FileName(format string) string { return BaseName + "." + format }

// FormatFromPath infers the encoding from the extension (".gz" ignored).
func FormatFromPath(path string) (string, error) {
	ext := strings.TrimPrefix(filepath.Ext(strings.TrimSuffix(path, ".gz")), ".")
	if _, ok := readers[ext]; ok {
		return ext, nil
	}
	return "", fmt.Errorf("%s: cannot infer long-table format from extension (want one of %v)", path, Formats())
}

func Write(w io.Writer, format string, events []mutation.Event) error {
	return registry.Write(format, w, events)
}

func Read(r io.Reader, format string) ([]mutation.Event, error) {
	fn, ok := readers[format]
	if !ok {
		return nil, fmt.Errorf("unknown long-table format %q (no reader registered)", format)
	}
	return fn(r)
}

// WriteFile persists events to path; nothing is left behind on failure.
func WriteFile(path, format string, events []mutation.Event) error {
	if !registry.Has(format) {
		return fmt.Errorf("unknown long-table format %q", format)
	}
	return writers.WriteFile(path, func(w io.Writer) error { return Write(w, format, events) })
}

// ReadFile loads a long table, inferring the format from path.
func ReadFile(path string) ([]mutation.Event, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	rc, err := fasta.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	evs, err := Read(rc, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return evs, nil
}

func toAPI(e mutation.Event) api.EventV1 {
	return api.EventV1{
		Key:            e.Key,
		CollectionDate: e.Date.String(),
		Pos:            e.Pos,
		Ref:            string(e.Ref),
		Alt:            string(e.Alt),
		Label:          e.Label(),
	}
}

// fromAPI validates one wire row. The label must agree with (ref, pos, alt).
func fromAPI(v api.EventV1) (mutation.Event, error) {
	d, err := civil.Parse(v.CollectionDate)
	if err != nil {
		return mutation.Event{}, err
	}
	if v.Pos < 1 {
		return mutation.Event{}, fmt.Errorf("position must be positive, got %d", v.Pos)
	}
	if len(v.Ref) != 1 || len(v.Alt) != 1 {
		return mutation.Event{}, fmt.Errorf("ref/alt must be single symbols, got %q/%q", v.Ref, v.Alt)
	}
	e := mutation.Event{Key: v.Key, Date: d, Substitution: mutation.Substitution{Pos: v.Pos, Ref: v.Ref[0], Alt: v.Alt[0]}}
	if v.Label != "" && v.Label != e.Label() {
		return mutation.Event{}, fmt.Errorf("label %q disagrees with %s", v.Label, e.Label())
	}
	return e, nil
}
