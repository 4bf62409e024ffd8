// internal/longtable/jsonl.go
package longtable

import (
	"encoding/json"
	"fmt"
	"io"

	"mutfreq/internal/jsonlutil"
	"mutfreq/internal/mutation"
	"mutfreq/internal/writers"
	"mutfreq/pkg/api"
)

func init() {
	registry.Register(FormatJSONL, func(w io.Writer, events []mutation.Event) error {
		return jsonlutil.WriteAll(w, events, func(enc *json.Encoder, e mutation.Event) error {
			return enc.Encode(toAPI(e))
		}, writers.IsBrokenPipe)
	})
	registerReader(FormatJSONL, readJSONL)
}

func readJSONL(r io.Reader) ([]mutation.Event, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var out []mutation.Event
	for n := 1; ; n++ {
		var v api.EventV1
		if err := dec.Decode(&v); err == io.EOF {
			return out, nil
		} else if err != nil {
			return nil, fmt.Errorf("record %d: %w", n, err)
		}
		e, err := fromAPI(v)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", n, err)
		}
		out = append(out, e)
	}
}
