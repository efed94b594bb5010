// package shared holds the cross-cutting pieces: logging, config,
// storage setup, sentinel errors, and ID generation.
package shared

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates a [log.Logger] writing to w with timestamps and
// caller reporting enabled. A nil writer falls back to [os.Stderr].
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// WithLogger returns a child [log.Logger] carrying the key-value pairs
// on every entry. Long-running tasks tag their loggers with a component
// field so interleaved output stays attributable.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the minimum [log.Level] emitted by the logger.
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// GenerateID returns a fresh v4 UUID string, used for album IDs created
// locally before the remote has assigned one.
func GenerateID() string {
	return uuid.New().String()
}
