package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mutfreq/internal/civil"
)

func TestParsePicksRecognizedColumns(t *testing.T) {
	in := "strain,Accession,region,date\n" +
		"hCoV-1,EPI_1,EU,2021-01-01\n" +
		"hCoV-2,EPI_2,EU,2021-01-02T08:00:00\n"
	v, warns, err := Parse(strings.NewReader(in), ',')
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}
	// "Accession" outranks "strain"
	d, ok := v.Lookup("EPI_2")
	if !ok || d != civil.MustParse("2021-01-02") {
		t.Fatalf("lookup EPI_2: %v %v", d, ok)
	}
	if _, ok := v.Lookup("hCoV-1"); ok {
		t.Fatalf("strain column should not be the key")
	}
}

func TestParseDatePriority(t *testing.T) {
	in := "id,date,collection_date\nS1,2020-01-01,2021-05-05\n"
	v, _, err := Parse(strings.NewReader(in), ',')
	if err != nil {
		t.Fatal(err)
	}
	if d, _ := v.Lookup("S1"); d != civil.MustParse("2021-05-05") {
		t.Fatalf("collection_date must win, got %v", d)
	}
}

func TestMissingColumnsAreFatal(t *testing.T) {
	_, _, err := Parse(strings.NewReader("accession,region\nA,EU\n"), ',')
	if !errors.Is(err, ErrNoDateColumn) {
		t.Fatalf("want ErrNoDateColumn, got %v", err)
	}
	_, _, err = Parse(strings.NewReader("name,date\nA,2021-01-01\n"), ',')
	if !errors.Is(err, ErrNoKeyColumn) {
		t.Fatalf("want ErrNoKeyColumn, got %v", err)
	}
	_, _, err = Parse(strings.NewReader(""), ',')
	if !errors.Is(err, ErrNoDateColumn) {
		t.Fatalf("empty table: %v", err)
	}
}

func TestSoftFailures(t *testing.T) {
	in := "id,date\nA,2021-01-01\nB,sometime in March\nA,2021-02-02\n,2021-01-01\nC,\n"
	v, warns, err := Parse(strings.NewReader(in), ',')
	if err != nil {
		t.Fatal(err)
	}
	if v.Len() != 3 {
		t.Fatalf("want 3 entries, got %d", v.Len())
	}
	if d, _ := v.Lookup("A"); d != civil.MustParse("2021-01-01") {
		t.Fatalf("first row must win, got %v", d)
	}
	if d, ok := v.Lookup("B"); !ok || !d.IsZero() {
		t.Fatalf("B should be present with missing date: %v %v", d, ok)
	}
	if d, ok := v.Lookup("C"); !ok || !d.IsZero() {
		t.Fatalf("C should be present with missing date: %v %v", d, ok)
	}
	if len(warns) != 3 {
		t.Fatalf("want 3 warnings, got %v", warns)
	}
	if _, ok := v.Lookup("Z"); ok {
		t.Fatalf("unknown key matched")
	}
}

func TestLoadTSV(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "meta.tsv")
	if err := os.WriteFile(fn, []byte("ID\tsample_date\nX\t2022/03/04\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	v, _, err := Load(fn)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d, _ := v.Lookup("X"); d.String() != "2022-03-04" {
		t.Fatalf("date = %q", d.String())
	}
}
