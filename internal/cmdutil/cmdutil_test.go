package cmdutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{errors.New("disk full"), ExitRuntime},
		{Usage(errors.New("bad flag")), ExitUsage},
		{fmt.Errorf("wrapped: %w", Usage(errors.New("bad"))), ExitUsage},
		{fmt.Errorf("align: %w", context.Canceled), ExitCanceled},
	}
	for _, c := range cases {
		if got := ExitCode(c.err); got != c.want {
			t.Fatalf("ExitCode(%v) = %d, want %d", c.err, got, c.want)
		}
	}
	if Usage(nil) != nil {
		t.Fatal("Usage(nil) must be nil")
	}
}

func TestLoggerQuiet(t *testing.T) {
	var b bytes.Buffer
	l := NewLogger(&b, true)
	l.Infof("hidden")
	Warnf(l, "shown %d", 1)
	out := b.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown 1") {
		t.Fatalf("quiet logger output: %q", out)
	}

	b.Reset()
	NewLogger(&b, false).Infof("wrote %s", "x.csv")
	if !strings.Contains(b.String(), "level=info") || !strings.Contains(b.String(), "wrote x.csv") {
		t.Fatalf("info output: %q", b.String())
	}
}
