// Package writers holds the format registry and file plumbing shared by the
// long-table and frequency-table serializers.
//
// Design:
//   - Serializers own all format knowledge (CSV/JSONL/CBOR).
//   - Core stages stay domain-only and never import this package.
//   - JSONL/CBOR go through pkg/api (v1) for a stable wire format.
package writers
