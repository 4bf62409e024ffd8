// internal/mutation/extract.go
package mutation

import "mutfreq/internal/align"

// Indel is a gap column seen during extraction. Pos is the reference
// coordinate reached at that column: for a gap in the query it is the
// deleted base; for a gap in the reference it is the base preceding the
// insertion (0 before the first base).
type Indel struct {
	Pos int
	Ref byte
	Alt byte
}

// IndelSink receives indel columns. Indels are never reported as
// substitutions; the sink is the hook for tracking them separately.
type IndelSink interface {
	Indel(Indel)
}

type Options struct {
	// SkipAmbiguous drops columns whose query symbol is not A, C, G or T.
	SkipAmbiguous bool
	Indels        IndelSink
}

// Extract walks aln and returns its substitutions in ascending position.
// The reference counter advances on every column whose reference symbol is
// not a gap, whatever the query holds.
func Extract(aln align.Alignment, opt Options) []Substitution {
	var out []Substitution
	pos := 0
	for i := range aln.Ref {
		r, q := aln.Ref[i], aln.Query[i]
		if r != align.Gap {
			pos++
		}
		if r == align.Gap || q == align.Gap {
			if opt.Indels != nil {
				opt.Indels.Indel(Indel{Pos: pos, Ref: r, Alt: q})
			}
			continue
		}
		if r == q {
			continue
		}
		if opt.SkipAmbiguous && !isACGT(q) {
			continue
		}
		out = append(out, Substitution{Pos: pos, Ref: r, Alt: q})
	}
	return out
}

func isACGT(b byte) bool {
	switch b {
	case 'A', 'C', 'G', 'T':
		return true
	}
	return false
}
