// internal/longtable/cbor.go
package longtable

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"mutfreq/internal/mutation"
	"mutfreq/pkg/api"
)

// The CBOR encoding is a sequence of EventV1 maps (RFC 8742), one per event.
func init() {
	registry.Register(FormatCBOR, writeCBOR)
	registerReader(FormatCBOR, readCBOR)
}

func writeCBOR(w io.Writer, events []mutation.Event) error {
	enc := cbor.NewEncoder(w)
	for _, e := range events {
		if err := enc.Encode(toAPI(e)); err != nil {
			return err
		}
	}
	return nil
}

func readCBOR(r io.Reader) ([]mutation.Event, error) {
	dec := cbor.NewDecoder(r)
	var out []mutation.Event
	for n := 1; ; n++ {
		var v api.EventV1
		if err := dec.Decode(&v); errors.Is(err, io.EOF) {
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
