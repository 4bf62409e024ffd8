// internal/cmdutil/log.go
package cmdutil

import (
	"io"

	log "github.com/sirupsen/logrus"
)

// NewLogger returns a plain-text logger on dst. Quiet keeps warnings and
// errors only.
func NewLogger(dst io.Writer, quiet bool) *log.Logger {
	l := log.New()
	l.SetOutput(dst)
	l.SetFormatter(&log.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableQuote:     true,
	})
	l.SetLevel(log.InfoLevel)
	if quiet {
		l.SetLevel(log.WarnLevel)
	}
	return l
}

// Warnf logs a soft failure.
func Warnf(l *log.Logger, format string, a ...any) {
	l.Warnf(format, a...)
}
