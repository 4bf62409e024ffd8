// internal/reference/select.go
package reference

import (
	"errors"
	"fmt"
	"strings"

	"mutfreq/internal/fasta"
)

var (
	ErrNotFound     = errors.New("reference record not found")
	ErrDuplicateKey = errors.New("duplicate sequence identifier")
)

// Strategy names.
const (
	First = "first"
	ByID  = "id:"
	File  = "file"
)

// Strategy picks the reference. The zero value is First.
type Strategy struct {
	Kind string // First, ByID or File
	ID   string // for ByID
}

// ParseStrategy reads "first", "id:<ID>" or "file".
func ParseStrategy(s string) (Strategy, error) {
	switch {
	case s == "" || s == First:
		return Strategy{Kind: First}, nil
	case s == File:
		return Strategy{Kind: File}, nil
	case strings.HasPrefix(s, ByID) && len(s) > len(ByID):
		return Strategy{Kind: ByID, ID: s[len(ByID):]}, nil
	}
	return Strategy{}, fmt.Errorf("invalid reference strategy %q (want first | id:<ID> | file)", s)
}

func (s Strategy) String() string {
	if s.Kind == ByID {
		return ByID + s.ID
	}
	if s.Kind == "" {
		return First
	}
	return s.Kind
}

// Selection is the outcome of applying a Strategy.
type Selection struct {
	Reference fasta.Record
	Samples   []fasta.Record
}

// Select chooses the reference among records (or from external, for File)
// and returns the sample roster. Records keep input order. The reference
// record stays in the roster unless excludeRef is set.
func Select(s Strategy, records, external []fasta.Record, excludeRef bool) (Selection, error) {
	if len(records) == 0 {
		return Selection{}, fasta.ErrEmpty
	}
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, dup := seen[r.ID]; dup {
			return Selection{}, fmt.Errorf("%w: %q", ErrDuplicateKey, r.ID)
		}
		seen[r.ID] = struct{}{}
	}

	refIdx := -1
	var ref fasta.Record
	switch s.Kind {
	case "", First:
		refIdx, ref = 0, records[0]
	case ByID:
		for i, r := range records {
			if r.ID == s.ID {
				refIdx, ref = i, r
				break
			}
		}
		if refIdx < 0 {
			return Selection{}, fmt.Errorf("%w: %q", ErrNotFound, s.ID)
		}
	case File:
		if len(external) == 0 {
			return Selection{}, fmt.Errorf("%w: reference file holds no records", ErrNotFound)
		}
		ref = external[0]
	default:
		return Selection{}, fmt.Errorf("invalid reference strategy %q", s.Kind)
	}

	samples := records
	if excludeRef && refIdx >= 0 {
		samples = make([]fasta.Record, 0, len(records)-1)
		samples = append(samples, records[:refIdx]...)
		samples = append(samples, records[refIdx+1:]...)
	}
	return Selection{Reference: ref, Samples: samples}, nil
}
