package mutation

import (
	"reflect"
	"testing"

	"mutfreq/internal/align"
)

func aln(ref, q string) align.Alignment {
	return align.Alignment{Ref: []byte(ref), Query: []byte(q)}
}

func positions(subs []Substitution) []int {
	var out []int
	for _, s := range subs {
		out = append(out, s.Pos)
	}
	return out
}

func TestExtractGapFree(t *testing.T) {
	got := Extract(aln("ACGTACGTAC", "TCGTACCTAG"), Options{})
	want := []Substitution{
		{Pos: 1, Ref: 'A', Alt: 'T'},
		{Pos: 7, Ref: 'G', Alt: 'C'},
		{Pos: 10, Ref: 'C', Alt: 'G'},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestExtractNoDifferences(t *testing.T) {
	if got := Extract(aln("ACGT", "ACGT"), Options{}); len(got) != 0 {
		t.Fatalf("want none, got %+v", got)
	}
}

func TestInsertionDoesNotShiftCoordinates(t *testing.T) {
	base := Extract(aln("ACGTACGTAC", "ACGTACGTAG"), Options{})
	ins := Extract(aln("ACGT---ACGTAC", "ACGTTTTACGTAG"), Options{})
	if !reflect.DeepEqual(base, ins) {
		t.Fatalf("insertion shifted positions: base %+v, with insertion %+v", base, ins)
	}
	if !reflect.DeepEqual(positions(ins), []int{10}) {
		t.Fatalf("positions = %v", positions(ins))
	}
}

func TestDeletionAdvancesCounter(t *testing.T) {
	got := Extract(aln("ACGTACGT", "AC--ACGA"), Options{})
	want := []Substitution{{Pos: 8, Ref: 'T', Alt: 'A'}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

type collect []Indel

func (c *collect) Indel(i Indel) { *c = append(*c, i) }

func TestIndelSinkSeesGapColumns(t *testing.T) {
	var sink collect
	got := Extract(aln("AC-GT", "A-TGA"), Options{Indels: &sink})
	if !reflect.DeepEqual(got, []Substitution{{Pos: 4, Ref: 'T', Alt: 'A'}}) {
		t.Fatalf("substitutions: %+v", got)
	}
	want := collect{{Pos: 2, Ref: 'C', Alt: '-'}, {Pos: 2, Ref: '-', Alt: 'T'}}
	if !reflect.DeepEqual(sink, want) {
		t.Fatalf("indels: %+v want %+v", sink, want)
	}
}

func TestSkipAmbiguous(t *testing.T) {
	a := aln("ACGT", "NCGA")
	if got := Extract(a, Options{}); len(got) != 2 {
		t.Fatalf("default keeps N: %+v", got)
	}
	if got := Extract(a, Options{SkipAmbiguous: true}); !reflect.DeepEqual(positions(got), []int{4}) {
		t.Fatalf("skip ambiguous: %+v", got)
	}
}

func TestLabelRoundTrip(t *testing.T) {
	for _, s := range []Substitution{{Pos: 123, Ref: 'A', Alt: 'T'}, {Pos: 1, Ref: 'C', Alt: 'N'}, {Pos: 29903, Ref: 'G', Alt: 'A'}} {
		lab := s.Label()
		back, err := ParseLabel(lab)
		if err != nil || back != s {
			t.Fatalf("%q: back=%+v err=%v", lab, back, err)
		}
	}
	if got := Label('A', 123, 'T'); got != "A123T" {
		t.Fatalf("label = %q", got)
	}
}

func TestParseLabelRejects(t *testing.T) {
	for _, s := range []string{"", "AT", "A0T", "AxT", "A-1T", "A+1T", "A01T"} {
		if _, err := ParseLabel(s); err == nil {
			t.Fatalf("%q: expected error", s)
		}
	}
}
