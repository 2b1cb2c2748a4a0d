// Package log holds the process wide component loggers.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type LoggerType uint8

const (
	ConsoleLogger LoggerType = iota
	JSONLogger
)

var (
	Root  = zerolog.Nop()
	VM    = zerolog.Nop()
	Store = zerolog.Nop()
)

// Options for Init
type Options struct {
	// LogLevel defaults to zerolog.DebugLevel, the zero value
	LogLevel zerolog.Level
	Type     LoggerType
	// Output defaults to stderr so that guest output on stdout stays clean
	Output io.Writer
}

func ParseLogLevel(level string) (zerolog.Level, error) {
	return zerolog.ParseLevel(level)
}

func ParseLoggerType(name string) (LoggerType, error) {
	switch strings.ToLower(name) {
	case "", "console":
		return ConsoleLogger, nil
	case "json":
		return JSONLogger, nil
	}
	return 0, fmt.Errorf("unknown logger type %q", name)
}

func Init(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.Type == ConsoleLogger {
		out = newConsoleWriter(out)
	}
	Root = zerolog.New(out).Level(opts.LogLevel).With().Timestamp().Logger()
	VM = Root.With().Str("component", "vm").Logger()
	Store = Root.With().Str("component", "store").Logger()
}

func newConsoleWriter(out io.Writer) zerolog.ConsoleWriter {
	cw := zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: time.RFC3339}

	cw.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	cw.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s |", i)
	}
	cw.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s=", i)
	}
	cw.FormatFieldValue = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	return cw
}
