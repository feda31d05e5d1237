package swp

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewConsoleLogger returns a logger writing human-readable events to stdout,
// tagged with the endpoint name ("tx" or "rx").
func NewConsoleLogger(endpoint string) zerolog.Logger {
	writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.StampMilli}
	return zerolog.New(writer).With().Timestamp().Str("endpoint", endpoint).Logger()
}

// NewFileLogger returns a logger appending structured events to a rotated
// log file.
func NewFileLogger(endpoint, path string) zerolog.Logger {
	return zerolog.New(rotatingWriter(path)).With().Timestamp().Str("endpoint", endpoint).Logger()
}

// NewMultiLogger combines console and rotated file output.
func NewMultiLogger(endpoint, path string) zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.StampMilli}
	multi := io.MultiWriter(console, rotatingWriter(path))
	return zerolog.New(multi).With().Timestamp().Str("endpoint", endpoint).Logger()
}

func rotatingWriter(path string) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}
}
