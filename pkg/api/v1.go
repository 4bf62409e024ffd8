// pkg/api/v1.go
package api

// EventV1 is the stable JSONL/CBOR schema for one mutation long-table row.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type EventV1 struct {
	Key            string `json:"key" cbor:"key"`
	CollectionDate string `json:"collection_date" cbor:"collection_date"` // ISO date or ""
	Pos            int    `json:"pos" cbor:"pos"`
	Ref            string `json:"ref" cbor:"ref"`
	Alt            string `json:"alt" cbor:"alt"`
	Label          string `json:"label" cbor:"label"`
}

// SampleV1 is one roster row: the denominator view of a sample.
type SampleV1 struct {
	Key            string `json:"key"`
	CollectionDate string `json:"collection_date"`
}

// FrequencyV1 is the stable schema for one frequency-by-day row.
// Freq is null when NSequences is 0.
type FrequencyV1 struct {
	Date       string   `json:"date"`
	Label      string   `json:"label"`
	NWithMut   int      `json:"n_with_mut"`
	NSequences int      `json:"n_sequences"`
	Freq       *float64 `json:"freq"`
}
