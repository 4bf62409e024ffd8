// internal/fasta/reader.go
package fasta

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrEmpty is returned when an input holds no FASTA records at all.
var ErrEmpty = errors.New("no sequences found in FASTA input")

// Record is one parsed FASTA entry. Seq is upper-cased.
type Record struct {
	ID  string
	Seq []byte
}

// Ungapped returns Seq with alignment gap symbols removed.
// Pre-aligned inputs would otherwise shift reference coordinates.
func (r Record) Ungapped() []byte {
	if bytes.IndexByte(r.Seq, '-') < 0 {
		return r.Seq
	}
	return bytes.ReplaceAll(r.Seq, []byte{'-'}, nil)
}

// Stream scans FASTA from r and calls emit once per record, in file order.
// Cancellation via ctx is checked between lines.
// Return a non-nil error from emit to stop early.
func Stream(ctx context.Context, r io.Reader, emit func(Record) error) error {
	sc := bufio.NewScanner(r)
	const maxLine = 64 * 1024 * 1024 // allow very long single-line sequences (64 MiB)
	buf := make([]byte, 64*1024)
	sc.Buffer(buf, maxLine)

	var (
		id     string
		inside bool
		seq    = make([]byte, 0, 1<<15)
	)
	flush := func() error {
		if !inside {
			return nil
		}
		return emit(Record{ID: id, Seq: bytes.ToUpper(seq)})
	}

	for sc.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if err := flush(); err != nil {
				return err
			}
			id = parseHeaderID(line[1:])
			inside = true
			seq = seq[:0]
			continue
		}
		if !inside {
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			return fmt.Errorf("fasta: sequence data before first header")
		}
		seq = append(seq, bytes.TrimSpace(line)...)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("fasta scan: %w", err)
	}
	return flush()
}

// ReadAll loads every record of path. An input without records is ErrEmpty.
func ReadAll(ctx context.Context, path string) ([]Record, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var out []Record
	if err := Stream(ctx, rc, func(r Record) error {
		out = append(out, r)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return out, nil
}

// parseHeaderID returns the first whitespace-delimited token of a header.
func parseHeaderID(h []byte) string {
	f := bytes.Fields(h)
	if len(f) == 0 {
		return ""
	}
	return string(f[0])
}
