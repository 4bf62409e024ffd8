// internal/longtable/csv.go
package longtable

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"mutfreq/internal/mutation"
	"mutfreq/pkg/api"
)

func init() {
	registry.Register(FormatCSV, writeCSV)
	registerReader(FormatCSV, readCSV)
}

func writeCSV(w io.Writer, events []mutation.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	row := make([]string, len(Header))
	for _, e := range events {
		row[0] = e.Key
		row[1] = e.Date.String()
		row[2] = strconv.Itoa(e.Pos)
		row[3] = string(e.Ref)
		row[4] = string(e.Alt)
		row[5] = e.Label()
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func readCSV(r io.Reader) ([]mutation.Event, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	head, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("long table: missing header")
	}
	if err != nil {
		return nil, err
	}
	for i, h := range Header {
		if head[i] != h {
			return nil, fmt.Errorf("long table: column %d is %q, want %q", i+1, head[i], h)
		}
	}
	var out []mutation.Event
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		pos, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad pos %q", line, rec[2])
		}
		e, err := fromAPI(api.EventV1{Key: rec[0], CollectionDate: rec[1], Pos: pos, Ref: rec[3], Alt: rec[4], Label: rec[5]})
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, e)
	}
	return out, nil
}
