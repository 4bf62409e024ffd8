// Loads the final frequency table into PostgreSQL.
//
// One table holds every run; rows are keyed by run id, and loading a run
// replaces its previous rows in a single transaction.

package pgexport

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"mutfreq/internal/trends"
)

// DefaultTable is used when Exporter.Table is empty.
const DefaultTable = "mutation_freq_by_day"

// Columns in COPY order.
var Columns = []string{"run_id", "date", "label", "n_with_mut", "n_sequences", "freq"}

type Exporter struct {
	conn  *pgx.Conn
	Table string
}

func Connect(ctx context.Context, url string) (*Exporter, error) {
	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &Exporter{conn: conn, Table: DefaultTable}, nil
}

func (e *Exporter) Close(ctx context.Context) error { return e.conn.Close(ctx) }

func (e *Exporter) table() string {
	if e.Table == "" {
		return DefaultTable
	}
	return e.Table
}

// CreateTableSQL is the DDL for table name t.
func CreateTableSQL(t string) string {
	id := pgx.Identifier{t}.Sanitize()
	return "CREATE TABLE IF NOT EXISTS " + id + ` (
	run_id      text    NOT NULL,
	date        date    NOT NULL,
	label       text    NOT NULL,
	n_with_mut  integer NOT NULL,
	n_sequences integer NOT NULL,
	freq        double precision,
	PRIMARY KEY (run_id, label, date)
)`
}

// Rows converts records to COPY rows. Undefined frequencies become NULL.
func Rows(runID string, recs []trends.Record) [][]any {
	out := make([][]any, len(recs))
	for i, r := range recs {
		var freq any
		if r.Freq != nil {
			freq = *r.Freq
		}
		out[i] = []any{runID, r.Date.Time(), r.Label, int32(r.NWithMut), int32(r.NSequences), freq}
	}
	return out
}

// Load replaces the rows of runID with recs and returns the number copied.
func (e *Exporter) Load(ctx context.Context, runID string, recs []trends.Record) (int64, error) {
	tx, err := e.conn.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	t := e.table()
	if _, err := tx.Exec(ctx, CreateTableSQL(t)); err != nil {
		return 0, fmt.Errorf("create %s: %w", t, err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM "+pgx.Identifier{t}.Sanitize()+" WHERE run_id = $1", runID); err != nil {
		return 0, fmt.Errorf("clear run %q: %w", runID, err)
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{t}, Columns, pgx.CopyFromRows(Rows(runID, recs)))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", t, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return n, nil
}
