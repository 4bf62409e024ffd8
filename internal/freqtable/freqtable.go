// internal/freqtable/freqtable.go
package freqtable

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"mutfreq/internal/civil"
	"mutfreq/internal/fasta"
	"mutfreq/internal/jsonlutil"
	"mutfreq/internal/trends"
	"mutfreq/internal/writers"
	"mutfreq/pkg/api"
)

const (
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"

	BaseName = "mutation_freq_by_day"
)

// Header is the CSV column order.
var Header = []string{"date", "label", "n_with_mut", "n_sequences", "freq"}

var registry = writers.NewRegistry[trends.Record]("frequency")

func init() {
	registry.Register(FormatCSV, writeCSV)
	registry.Register(FormatJSONL, func(w io.Writer, recs []trends.Record) error {
		return jsonlutil.WriteAll(w, recs, func(enc *json.Encoder, r trends.Record) error {
			return enc.Encode(ToAPI(r))
		}, writers.IsBrokenPipe)
	})
}

func Formats() []string { return registry.Formats() }

func FileName(format string) string { return BaseName + "." + format }

func Write(w io.Writer, format string, recs []trends.Record) error {
	return registry.Write(format, w, recs)
}

func WriteFile(path, format string, recs []trends.Record) error {
	if !registry.Has(format) {
		return fmt.Errorf("unknown frequency format %q", format)
	}
	return writers.WriteFile(path, func(w io.Writer) error { return Write(w, format, recs) })
}

// FormatFreq renders a frequency; undefined is the empty string.
func FormatFreq(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}

func ToAPI(r trends.Record) api.FrequencyV1 {
	return api.FrequencyV1{
		Date:       r.Date.String(),
		Label:      r.Label,
		NWithMut:   r.NWithMut,
		NSequences: r.NSequences,
		Freq:       r.Freq,
	}
}

func writeCSV(w io.Writer, recs []trends.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	row := make([]string, len(Header))
	for _, r := range recs {
		row[0] = r.Date.String()
		row[1] = r.Label
		row[2] = strconv.Itoa(r.NWithMut)
		row[3] = strconv.Itoa(r.NSequences)
		row[4] = FormatFreq(r.Freq)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV loads a frequency-by-day table written by WriteFile.
func ReadCSV(r io.Reader) ([]trends.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	head, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("frequency table: missing header")
	}
	if err != nil {
		return nil, err
	}
	for i, h := range Header {
		if head[i] != h {
			return nil, fmt.Errorf("frequency table: column %d is %q, want %q", i+1, head[i], h)
		}
	}
	var out []trends.Record
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		d, err := civil.Parse(rec[0])
		if err != nil || d.IsZero() {
			return nil, fmt.Errorf("line %d: bad date %q", line, rec[0])
		}
		n, err1 := strconv.Atoi(rec[2])
		tot, err2 := strconv.Atoi(rec[3])
		if err1 != nil || err2 != nil || n < 0 || tot < 0 {
			return nil, fmt.Errorf("line %d: bad counts %q/%q", line, rec[2], rec[3])
		}
		r := trends.Record{Date: d, Label: rec[1], NWithMut: n, NSequences: tot}
		if rec[4] != "" {
			f, err := strconv.ParseFloat(rec[4], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad freq %q", line, rec[4])
			}
			r.Freq = &f
		}
		out = append(out, r)
	}
}

func ReadFile(path string) ([]trends.Record, error) {
	rc, err := fasta.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	recs, err := ReadCSV(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}
