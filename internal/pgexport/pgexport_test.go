package pgexport

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"mutfreq/internal/civil"
	"mutfreq/internal/trends"
)

func TestRows(t *testing.T) {
	f := 0.25
	recs := []trends.Record{
		{Label: "A1T", Date: civil.MustParse("2021-01-01"), NWithMut: 1, NSequences: 4, Freq: &f},
		{Label: "A1T", Date: civil.MustParse("2021-01-02"), NWithMut: 1},
	}
	rows := Rows("run", recs)
	if len(rows) != 2 || len(rows[0]) != len(Columns) {
		t.Fatalf("rows = %v", rows)
	}
	if rows[0][0] != "run" || rows[0][2] != "A1T" || rows[0][3] != int32(1) || rows[0][5] != 0.25 {
		t.Fatalf("row0 = %v", rows[0])
	}
	if d := rows[0][1].(time.Time); !d.Equal(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date = %v", d)
	}
	if rows[1][5] != nil {
		t.Fatalf("undefined freq must be NULL, got %v", rows[1][5])
	}
}

func TestCreateTableSQLQuotesName(t *testing.T) {
	sql := CreateTableSQL(`weird"name`)
	if !strings.Contains(sql, `"weird""name"`) {
		t.Fatalf("identifier not sanitized: %s", sql)
	}
}

// Runs only when MUTFREQ_TEST_PG_URL points at a scratch database.
func TestLoadLive(t *testing.T) {
	url := os.Getenv("MUTFREQ_TEST_PG_URL")
	if url == "" {
		t.Skip("MUTFREQ_TEST_PG_URL not set")
	}
	ctx := context.Background()
	e, err := Connect(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = e.Close(ctx) }()
	e.Table = "mutfreq_test_freq"

	f := 0.5
	recs := []trends.Record{{Label: "A1T", Date: civil.MustParse("2021-01-01"), NWithMut: 1, NSequences: 2, Freq: &f}}
	for i := 0; i < 2; i++ {
		n, err := e.Load(ctx, "t", recs)
		if err != nil || n != 1 {
			t.Fatalf("load %d: n=%d err=%v", i, n, err)
		}
	}
}
