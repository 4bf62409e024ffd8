// internal/integration/cancel_integration_test.go
package integration

import (
	"context"
	"io"
	"os"
	"testing"

	"mutfreq/internal/app"
)

func TestCanceledRunExits130(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code := app.RunContext(ctx, f.args(), io.Discard, io.Discard)
	if code != 130 {
		t.Fatalf("expected exit 130 on cancel, got %d", code)
	}
	if _, err := os.Stat(f.out); !os.IsNotExist(err) {
		t.Fatalf("canceled run left artifacts, stat err=%v", err)
	}
}
