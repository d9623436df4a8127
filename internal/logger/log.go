// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/wneessen/dist2coast/internal/geo"
)

// Logger wraps a slog.Logger so it can be passed around the service packages.
type Logger struct {
	*slog.Logger
}

// New returns a Logger that writes text formatted log lines to stderr.
func New(level slog.Level) *Logger {
	return NewLogger(level, os.Stderr)
}

// NewLogger returns a Logger with the given level that writes to output.
func NewLogger(level slog.Level, output io.Writer) *Logger {
	return &Logger{slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level}))}
}

// Err returns an slog attribute for the given error.
func Err(err error) slog.Attr {
	return slog.Any("error", err)
}

// Coord returns an slog attribute group for the given coordinate.
func Coord(c geo.Coordinate) slog.Attr {
	return slog.Group("coord", slog.Float64("lat", c.Lat), slog.Float64("lon", c.Lon))
}

// With returns a Logger that includes the given attributes in every log line.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{l.Logger.With(args...)}
}
