package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the logging surface used across the toolkit
type Logger interface {
	Debugf(format string, args ...any)
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger implements Logger with no-op methods.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// Options configures the process-wide log sink
type Options struct {
	Level      string `json:"level"`
	File       string `json:"file"` // Rotated log file; empty logs to stderr only
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

var (
	mu     sync.RWMutex
	output io.Writer = os.Stderr
	level            = zerolog.InfoLevel
)

// Configure sets the level and destination of every logger created afterwards. Logs go to stderr so that
// command output on stdout stays machine readable
func Configure(options Options) error {
	parsed := zerolog.InfoLevel
	if options.Level != "" {
		var err error
		if parsed, err = zerolog.ParseLevel(strings.ToLower(options.Level)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", options.Level, err)
		}
	}

	var writer io.Writer = os.Stderr
	if options.File != "" {
		if dir := filepath.Dir(options.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("cannot create log directory: %w", err)
			}
		}
		writer = zerolog.MultiLevelWriter(os.Stderr, &lumberjack.Logger{
			Filename:   options.File,
			MaxSize:    options.MaxSizeMB,
			MaxBackups: options.MaxBackups,
			MaxAge:     options.MaxAgeDays,
		})
	}

	mu.Lock()
	defer mu.Unlock()
	output, level = writer, parsed
	return nil
}

// New returns a Logger for the given component. The environment is detected via
// the APP_ENV variable.
func New(component string) Logger {
	mu.RLock()
	writer, minimum := output, level
	mu.RUnlock()

	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.RFC3339}
	}
	return NewZerologLogger(component, writer, minimum)
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a logger writing JSON lines to writer. All logs include the component field.
func NewZerologLogger(component string, writer io.Writer, minimum zerolog.Level) *ZerologLogger {
	z := zerolog.New(writer).Level(minimum).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
