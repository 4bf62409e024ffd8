// internal/callapp/app.go
package callapp

import (
	"context"
	"io"

	"mutfreq/internal/appcore"
	"mutfreq/internal/cli"
)

func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	return appcore.Run(parent, "mutfreq-call", cli.ModeCall, argv, stdout, stderr)
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
