// internal/align/align.go
package align

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
)

// Gap is the symbol written into aligned rows for a gap column.
const Gap = '-'

// ErrTooLong is returned when a query exceeds Options.MaxLen.
var ErrTooLong = errors.New("sequence exceeds alignment length budget")

// Scoring is an affine scheme. A gap of length k scores
// GapOpen + (k-1)*GapExtend; end gaps are scored like interior gaps.
type Scoring struct {
	Match     float64
	Mismatch  float64
	GapOpen   float64
	GapExtend float64
}

// DefaultScoring is +2 / -1 / -2 / -0.5.
var DefaultScoring = Scoring{Match: 2, Mismatch: -1, GapOpen: -2, GapExtend: -0.5}

func (s Scoring) Validate() error {
	for _, v := range []float64{s.Match, s.Mismatch, s.GapOpen, s.GapExtend} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("scoring values must be finite: %+v", s)
		}
	}
	return nil
}

// Options bounds a single alignment.
type Options struct {
	MaxLen int // 0 = unlimited; applies to the query
}

// Alignment is a global alignment of a reference and a query.
// len(Ref) == len(Query); gap columns carry Gap.
type Alignment struct {
	Ref   []byte
	Query []byte
	Score float64
}

// Aligner computes globally optimal alignments against any reference.
// It holds no per-call state and is safe for concurrent use.
type Aligner struct {
	sc  Scoring
	opt Options
}

func New(sc Scoring, opt Options) *Aligner { return &Aligner{sc: sc, opt: opt} }

func (a *Aligner) Scoring() Scoring { return a.sc }

// DP layers.
const (
	stM byte = iota // ref[i-1] aligned to query[j-1]
	stX             // ref[i-1] aligned to a gap
	stY             // query[j-1] aligned to a gap
)

// initialBand is the diagonal half-width of the first banded pass.
const initialBand = 32

// Align returns one optimal global alignment of query against ref.
//
// Ties are broken deterministically during traceback: the final state and
// every predecessor prefer M over X over Y, except inside a gap layer where
// extending the gap is preferred over leaving it. Tracing from the end, a
// co-optimal diagonal step is always taken first, so gaps land as far left
// as the score allows.
//
// The DP runs in a band around the diagonals 0 and len(query)-len(ref). The
// band result is returned only when its score is strictly above the best
// score any path leaving the band could reach; otherwise the band is
// widened, up to the full matrix. Every optimal path then lies in the band
// and the traceback is the same as on the full matrix. Memory is one
// traceback byte per banded cell, so closely related sequences cost
// O(len * band) rather than O(len(ref) * len(query)).
//
// ctx is checked every 64 DP rows.
func (a *Aligner) Align(ctx context.Context, ref, query []byte) (Alignment, error) {
	if a.opt.MaxLen > 0 && len(query) > a.opt.MaxLen {
		return Alignment{}, fmt.Errorf("%w: %d > %d", ErrTooLong, len(query), a.opt.MaxLen)
	}
	r := bytes.ToUpper(ref)
	q := bytes.ToUpper(query)
	if len(r) == 0 && len(q) == 0 {
		return Alignment{Ref: []byte{}, Query: []byte{}}, nil
	}

	k := initialBand
	if max(a.sc.GapOpen, a.sc.GapExtend) > 0 {
		k = -1 // no useful bound when gaps can score
	}
	for {
		aln, full, err := a.align(ctx, r, q, k)
		if err != nil {
			return Alignment{}, err
		}
		if full || aln.Score > a.outsideBound(len(r), len(q), k) {
			return aln, nil
		}
		k *= 4
	}
}

// outsideBound is an upper bound on the score of any path that leaves the
// band of half-width k. Such a path has at least |m-n| + 2(k+1) gap columns
// and at most min(n,m) - (k+1) aligned columns. Requires gap scores <= 0.
func (a *Aligner) outsideBound(n, m, k int) float64 {
	d := m - n
	if d < 0 {
		d = -d
	}
	aligned := max(min(n, m)-k-1, 0)
	sub := max(a.sc.Match, a.sc.Mismatch, 0)
	gap := max(a.sc.GapOpen, a.sc.GapExtend)
	return sub*float64(aligned) + float64(d+2*(k+1))*gap
}

// align fills the DP restricted to diagonals [offLo, offHi] (k < 0 means the
// full matrix) and traces back. full reports whether the band covered every
// cell.
func (a *Aligner) align(ctx context.Context, r, q []byte, k int) (aln Alignment, full bool, err error) {
	n, m := len(r), len(q)
	offLo, offHi := -n, m
	if k >= 0 {
		d := m - n
		offLo = max(min(0, d)-k, -n)
		offHi = min(max(0, d)+k, m)
	}
	full = offLo == -n && offHi == m
	lo := func(i int) int { return max(0, i+offLo) }
	hi := func(i int) int { return min(m, i+offHi) }

	// tb packs the predecessor of M (bits 0-1), X (bits 2-3), Y (bits 4-5).
	// Row i holds columns lo(i)..hi(i) starting at start[i].
	start := make([]int, n+2)
	for i := 0; i <= n; i++ {
		start[i+1] = start[i] + hi(i) - lo(i) + 1
	}
	tb := make([]byte, start[n+1])

	neg := math.Inf(-1)
	sc := a.sc
	w := m + 2

	// Rolling rows of the three layers. Reads just outside a row's band
	// see -Inf.
	pM, pX, pY := make([]float64, w), make([]float64, w), make([]float64, w)
	cM, cX, cY := make([]float64, w), make([]float64, w), make([]float64, w)

	pM[0], pX[0], pY[0] = 0, neg, neg
	h := hi(0)
	for j := 1; j <= h; j++ {
		pM[j], pX[j] = neg, neg
		v, from := bestGapY(pM[j-1]+sc.GapOpen, pY[j-1]+sc.GapExtend, pX[j-1]+sc.GapOpen)
		pY[j] = v
		tb[j] = from << 4
	}
	pM[h+1], pX[h+1], pY[h+1] = neg, neg, neg

	for i := 1; i <= n; i++ {
		if i&63 == 0 {
			if err := ctx.Err(); err != nil {
				return Alignment{}, false, err
			}
		}
		l, h := lo(i), hi(i)
		row := start[i] - l
		j0 := l
		if l == 0 {
			cM[0], cY[0] = neg, neg
			v, from := bestGapX(pM[0]+sc.GapOpen, pX[0]+sc.GapExtend, pY[0]+sc.GapOpen)
			cX[0] = v
			tb[row] = from << 2
			j0 = 1
		} else {
			cM[l-1], cX[l-1], cY[l-1] = neg, neg, neg
		}

		ri := r[i-1]
		for j := j0; j <= h; j++ {
			s := sc.Mismatch
			if ri == q[j-1] {
				s = sc.Match
			}
			mv, mf := best3(pM[j-1], pX[j-1], pY[j-1])
			cM[j] = mv + s

			xv, xf := bestGapX(pM[j]+sc.GapOpen, pX[j]+sc.GapExtend, pY[j]+sc.GapOpen)
			cX[j] = xv

			yv, yf := bestGapY(cM[j-1]+sc.GapOpen, cY[j-1]+sc.GapExtend, cX[j-1]+sc.GapOpen)
			cY[j] = yv

			tb[row+j] = mf | xf<<2 | yf<<4
		}
		cM[h+1], cX[h+1], cY[h+1] = neg, neg, neg
		pM, cM = cM, pM
		pX, cX = cX, pX
		pY, cY = cY, pY
	}

	score, state := best3(pM[m], pX[m], pY[m])

	ra := make([]byte, 0, n+m)
	qa := make([]byte, 0, n+m)
	i, j := n, m
	for i > 0 || j > 0 {
		t := tb[start[i]+j-lo(i)]
		switch state {
		case stM:
			ra = append(ra, r[i-1])
			qa = append(qa, q[j-1])
			state = t & 3
			i--
			j--
		case stX:
			ra = append(ra, r[i-1])
			qa = append(qa, Gap)
			state = (t >> 2) & 3
			i--
		default:
			ra = append(ra, Gap)
			qa = append(qa, q[j-1])
			state = (t >> 4) & 3
			j--
		}
	}
	reverse(ra)
	reverse(qa)
	return Alignment{Ref: ra, Query: qa, Score: score}, full, nil
}

// best3 picks the maximum with preference M, X, Y.
func best3(m, x, y float64) (float64, byte) {
	v, from := m, stM
	if x > v {
		v, from = x, stX
	}
	if y > v {
		v, from = y, stY
	}
	return v, from
}

// bestGapX prefers extending (X), then M, then Y.
func bestGapX(fromM, fromX, fromY float64) (float64, byte) {
	v, from := fromX, stX
	if fromM > v {
		v, from = fromM, stM
	}
	if fromY > v {
		v, from = fromY, stY
	}
	return v, from
}

// bestGapY prefers extending (Y), then M, then X.
func bestGapY(fromM, fromY, fromX float64) (float64, byte) {
	v, from := fromY, stY
	if fromM > v {
		v, from = fromM, stM
	}
	if fromX > v {
		v, from = fromX, stX
	}
	return v, from
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// Rescore recomputes the score of an existing alignment under sc.
// Adjacent gap columns in the same row form one gap; a gap switching rows
// opens a new gap.
func Rescore(aln Alignment, sc Scoring) float64 {
	var (
		total float64
		prev  byte = stM
	)
	for k := range aln.Ref {
		rg, qg := aln.Ref[k] == Gap, aln.Query[k] == Gap
		switch {
		case qg:
			if prev == stX {
				total += sc.GapExtend
			} else {
				total += sc.GapOpen
			}
			prev = stX
		case rg:
			if prev == stY {
				total += sc.GapExtend
			} else {
				total += sc.GapOpen
			}
			prev = stY
		default:
			if aln.Ref[k] == aln.Query[k] {
				total += sc.Match
			} else {
				total += sc.Mismatch
			}
			prev = stM
		}
	}
	return total
}
