package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger that writes to w with sub-second
// timestamps, filtering below level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// timed returns a completion logger for a long-running step. The
// returned func logs msg with the elapsed time appended, rounded to the
// millisecond: "Assembled 64×128 matrix (1.234s)".
func timed(l *log.Logger) func(msg string) {
	start := time.Now()
	return func(msg string) {
		l.Infof("%s (%s)", msg, time.Since(start).Round(time.Millisecond))
	}
}
