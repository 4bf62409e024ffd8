// internal/metadata/metadata.go
package metadata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"mutfreq/internal/civil"
	"mutfreq/internal/fasta"
)

var (
	ErrNoDateColumn = errors.New("metadata must include a collection date column")
	ErrNoKeyColumn  = errors.New("metadata must include an identifier column")
)

// Recognized headers, in priority order.
var (
	DateColumns = []string{"collection_date", "date", "Collection_Date", "sample_date"}
	KeyColumns  = []string{"accession", "Accession", "id", "ID", "strain"}
)

// Entry is the normalized two-field view consumed by the pipeline.
type Entry struct {
	Key  string
	Date civil.Date
}

// Warning reports a soft failure on one row.
type Warning struct {
	Line int
	Key  string
	Msg  string
}

func (w Warning) String() string { return fmt.Sprintf("line %d (%s): %s", w.Line, w.Key, w.Msg) }

// View is an ordered, key-unique set of entries.
type View struct {
	Entries []Entry
	index   map[string]int
}

func NewView(entries []Entry) *View {
	v := &View{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		if _, dup := v.index[e.Key]; dup {
			continue
		}
		v.index[e.Key] = len(v.Entries)
		v.Entries = append(v.Entries, e)
	}
	return v
}

// Lookup is an exact key match. Unknown keys yield a missing date.
func (v *View) Lookup(key string) (civil.Date, bool) {
	if v == nil {
		return civil.Date{}, false
	}
	i, ok := v.index[key]
	if !ok {
		return civil.Date{}, false
	}
	return v.Entries[i].Date, true
}

func (v *View) Len() int {
	if v == nil {
		return 0
	}
	return len(v.Entries)
}

// Load reads a CSV (or TSV, by .tsv/.tsv.gz suffix) metadata table.
func Load(path string) (*View, []Warning, error) {
	rc, err := fasta.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()
	comma := ','
	if p := strings.TrimSuffix(path, ".gz"); strings.HasSuffix(p, ".tsv") || strings.HasSuffix(p, ".txt") {
		comma = '\t'
	}
	v, warns, err := Parse(rc, comma)
	if err != nil {
		return nil, warns, fmt.Errorf("%s: %w", path, err)
	}
	return v, warns, nil
}

// Parse normalizes a delimited table into a View. A missing date or key
// column is fatal; an unparseable date on a row is a warning and the row
// keeps a missing date. For duplicate keys the first row wins.
func Parse(r io.Reader, comma rune) (*View, []Warning, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("%w (empty table)", ErrNoDateColumn)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	dateCol := findColumn(header, DateColumns)
	if dateCol < 0 {
		return nil, nil, ErrNoDateColumn
	}
	keyCol := findColumn(header, KeyColumns)
	if keyCol < 0 {
		return nil, nil, ErrNoKeyColumn
	}

	var (
		entries []Entry
		warns   []Warning
		seen    = map[string]bool{}
		line    = 1
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, warns, err
		}
		line++
		key := field(rec, keyCol)
		if key == "" {
			warns = append(warns, Warning{Line: line, Msg: "empty identifier; row ignored"})
			continue
		}
		if seen[key] {
			warns = append(warns, Warning{Line: line, Key: key, Msg: "duplicate identifier; first row kept"})
			continue
		}
		seen[key] = true
		d, perr := civil.Parse(field(rec, dateCol))
		if perr != nil {
			warns = append(warns, Warning{Line: line, Key: key, Msg: perr.Error() + "; date treated as missing"})
		}
		entries = append(entries, Entry{Key: key, Date: d})
	}
	return NewView(entries), warns, nil
}

func findColumn(header, candidates []string) int {
	for _, c := range candidates {
		for i, h := range header {
			if strings.TrimSpace(h) == c {
				return i
			}
		}
	}
	return -1
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
