// internal/mutation/mutation.go
package mutation

import (
	"fmt"
	"strconv"

	"mutfreq/internal/civil"
)

// Substitution is one differing, gap-free alignment column.
// Pos is 1-based in reference coordinates.
type Substitution struct {
	Pos int
	Ref byte
	Alt byte
}

// Label encodes s as ref + pos + alt, e.g. "A23403G".
func (s Substitution) Label() string { return Label(s.Ref, s.Pos, s.Alt) }

// Event is a Substitution attributed to a sample. A zero Date means the
// sample's collection date is unknown.
type Event struct {
	Key  string
	Date civil.Date
	Substitution
}

func Label(ref byte, pos int, alt byte) string {
	return string(ref) + strconv.Itoa(pos) + string(alt)
}

// ParseLabel is the inverse of Label.
func ParseLabel(label string) (Substitution, error) {
	if len(label) < 3 {
		return Substitution{}, fmt.Errorf("label %q too short", label)
	}
	pos, err := strconv.Atoi(label[1 : len(label)-1])
	if err != nil || pos < 1 {
		return Substitution{}, fmt.Errorf("label %q: bad position", label)
	}
	if label[1] == '+' || label[1] == '0' {
		return Substitution{}, fmt.Errorf("label %q: non-canonical position", label)
	}
	return Substitution{Pos: pos, Ref: label[0], Alt: label[len(label)-1]}, nil
}
