// internal/longtable/roster.go
package longtable

import (
	"encoding/csv"
	"fmt"
	"io"

	"mutfreq/internal/civil"
	"mutfreq/internal/fasta"
	"mutfreq/internal/metadata"
	"mutfreq/internal/writers"
)

// RosterFileName holds the denominator view written next to the long table.
const RosterFileName = "samples.csv"

var RosterHeader = []string{"key", "collection_date"}

// WriteRoster writes one row per roster member, in roster order.
func WriteRoster(w io.Writer, entries []metadata.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RosterHeader); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Key, e.Date.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ReadRoster(r io.Reader) ([]metadata.Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(RosterHeader)
	head, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("roster: missing header")
	}
	if err != nil {
		return nil, err
	}
	if head[0] != RosterHeader[0] || head[1] != RosterHeader[1] {
		return nil, fmt.Errorf("roster: header %v, want %v", head, RosterHeader)
	}
	var out []metadata.Entry
	seen := map[string]bool{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if seen[rec[0]] {
			return nil, fmt.Errorf("roster line %d: duplicate key %q", line, rec[0])
		}
		seen[rec[0]] = true
		d, err := civil.Parse(rec[1])
		if err != nil {
			return nil, fmt.Errorf("roster line %d: %w", line, err)
		}
		out = append(out, metadata.Entry{Key: rec[0], Date: d})
	}
}

func WriteRosterFile(path string, entries []metadata.Entry) error {
	return writers.WriteFile(path, func(w io.Writer) error { return WriteRoster(w, entries) })
}

func ReadRosterFile(path string) ([]metadata.Entry, error) {
	rc, err := fasta.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	es, err := ReadRoster(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return es, nil
}
