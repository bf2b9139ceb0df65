package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const simpleTimeFormat = "02-01-2006 15:04:05"

// Logger wraps a zerolog logger and the optional log file behind it.
type Logger struct {
	zerolog.Logger
	file *os.File
}

// NewLogger builds a logger for env. Development gets a console writer,
// everything else JSON on stdout. A non-empty filePath also appends JSON lines
// to that file. Extra writers replace stdout, which tests use to capture output.
func NewLogger(env, level, filePath string, writers ...io.Writer) (*Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	zerolog.TimeFieldFormat = simpleTimeFormat
	zerolog.DurationFieldUnit = time.Millisecond

	var outputs []io.Writer
	switch {
	case len(writers) > 0:
		outputs = append(outputs, writers...)
	case isDev(env):
		cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: simpleTimeFormat}
		outputs = append(outputs, cw)
	default:
		outputs = append(outputs, os.Stdout)
	}

	l := &Logger{}
	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = file
		outputs = append(outputs, file)
	}

	l.Logger = zerolog.New(io.MultiWriter(outputs...)).With().Timestamp().Logger().Level(lvl)
	return l, nil
}

// Close closes the log file, if any.
func (l *Logger) Close() {
	if l.file != nil {
		_ = l.file.Close()
	}
}

func parseLevel(level string) (zerolog.Level, error) {
	level = strings.TrimSpace(level)
	if level == "" {
		level = zerolog.InfoLevel.String()
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, err
	}
	return lvl, nil
}

func isDev(env string) bool {
	return strings.EqualFold(env, "development") || strings.EqualFold(env, "dev")
}
