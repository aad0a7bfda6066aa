// Package logging builds the structured loggers used by every binary.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/invaders/internal/config"
)

// New returns a logger writing to stderr. The level comes from LOG_LEVEL.
func New(prefix string) *log.Logger {
	return NewWriter(os.Stderr, prefix)
}

// NewWriter returns a logger writing to w.
func NewWriter(w io.Writer, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           Level(),
	})
}

// Level parses LOG_LEVEL, falling back to info.
func Level() log.Level {
	lvl, err := log.ParseLevel(config.GetEnv("LOG_LEVEL", "info"))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// OpenFile opens LOG_FILE for appending and returns a logger on it together
// with a close func. Without LOG_FILE the logger discards.
func OpenFile(prefix string) (*log.Logger, func() error, error) {
	path := config.GetEnv("LOG_FILE", "")
	if path == "" {
		return Discard(), func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return NewWriter(f, prefix), f.Close, nil
}
