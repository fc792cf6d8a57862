// Package logging builds the zerolog logger shared by every component.
// Output is one JSON object per line with the timestamp under "ts".
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimestampFieldName = "ts"
	zerolog.MessageFieldName = "msg"
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// New returns a JSON logger writing to w with timestamps rendered in loc.
// A nil loc means UTC; an unknown level falls back to info.
//
// The timestamp zone is process-wide (zerolog.TimestampFunc), the last call wins.
func New(w io.Writer, level string, loc *time.Location) zerolog.Logger {
	if loc == nil {
		loc = time.UTC
	}
	zerolog.TimestampFunc = func() time.Time { return time.Now().In(loc) }

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// NewStdout is New bound to os.Stdout.
func NewStdout(level, timezone string) zerolog.Logger {
	return New(os.Stdout, level, Location(timezone))
}

// Location resolves an IANA zone name, falling back to UTC.
func Location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
