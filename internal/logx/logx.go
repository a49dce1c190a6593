// Package logx is the ambient structured-logging setup shared by both
// demo binaries: a charmbracelet/log logger with colored, leveled
// console output, plus an optional session trace file whose name is
// built from a strftime pattern (lestrrat-go/strftime) rather than a
// hand-rolled date format.
package logx

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
)

func parseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// OpenTraceFile resolves pattern (a strftime pattern, e.g.
// "cwgen-%Y%m%d.log") against the current time under dir and opens it
// for appending, creating dir if needed.
func OpenTraceFile(dir, pattern string) (io.WriteCloser, error) {
	if dir == "" || pattern == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logx: create log dir %s: %w", dir, err)
	}

	f, err := strftime.New(pattern)
	if err != nil {
		return nil, fmt.Errorf("logx: parse pattern %q: %w", pattern, err)
	}
	name := f.FormatString(time.Now())

	file, err := os.OpenFile(dir+"/"+name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logx: open trace file: %w", err)
	}
	return file, nil
}

// WithTraceFile returns a logger that writes to os.Stderr and, if one
// was opened (trace is non-nil), to the session trace file as well.
func WithTraceFile(level string, trace io.Writer) *log.Logger {
	var out io.Writer = os.Stderr
	if trace != nil {
		out = io.MultiWriter(os.Stderr, trace)
	}
	l := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
	l.SetLevel(parseLevel(level))
	return l
}
