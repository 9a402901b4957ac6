package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Logger struct {
	zl        zerolog.Logger
	collector *LogCollector
}

type Config struct {
	Level      string // debug, info, warn, error, fatal, panic
	Format     string // json or console
	Output     string // stdout, stderr, or file path
	TimeFormat string // time format for log messages
}

func New(cfg *Config) (*Logger, error) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	// Configure output writer
	var output io.Writer
	switch cfg.Output {
	case "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("could not open log file: %w", err)
		}
		output = file
	}

	// Configure time format (ensure it's not empty)
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339Nano
	}
	zerolog.TimeFieldFormat = cfg.TimeFormat

	// If format is "console", use human-readable, otherwise use JSON
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: cfg.TimeFormat,
			NoColor:    false,
		}
	}

	return NewWithWriter(output), nil
}

// NewWithWriter builds a logger on an already configured writer.
func NewWithWriter(w io.Writer) *Logger {
	logger := zerolog.New(w).
		With().
		Timestamp().
		CallerWithSkipFrameCount(3).
		Logger()

	return &Logger{zl: logger}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// With returns a child logger that always carries fields. The collector is shared.
func (l *Logger) With(fields ...Field) *Logger {
	ctx := l.zl.With()
	for _, field := range fields {
		key, value := field.GetKeyValue()
		ctx = ctx.Interface(key, value)
	}
	return &Logger{zl: ctx.Logger(), collector: l.collector}
}

// collect hands errors and warnings to the collector. skip counts the frames
// between the caller of Error/Warn and runtime.Caller.
func (l *Logger) collect(level zerolog.Level, msg string, fields []Field, skip int) {
	if l.collector == nil || level < zerolog.WarnLevel {
		return
	}

	caller := "unknown"
	if _, file, line, ok := runtime.Caller(skip); ok {
		if idx := strings.LastIndex(file, "EdgeFinder"); idx >= 0 {
			file = file[idx+len("EdgeFinder"):]
		}
		caller = fmt.Sprintf("%s:%d", file, line)
	}

	fieldMap := make(map[string]interface{}, len(fields))
	for _, field := range fields {
		key, value := field.GetKeyValue()
		fieldMap[key] = value
	}

	l.collector.AddLog(level.String(), msg, fieldMap, caller)
}

func (l *Logger) write(event *zerolog.Event, level zerolog.Level, msg string, fields []Field) {
	for _, field := range fields {
		field.AddTo(event)
	}
	event.Msg(msg)
	l.collect(level, msg, fields, 3)
}

func (l *Logger) Debug(msg string, fields ...Field) {
	l.write(l.zl.Debug(), zerolog.DebugLevel, msg, fields)
}

func (l *Logger) Info(msg string, fields ...Field) {
	l.write(l.zl.Info(), zerolog.InfoLevel, msg, fields)
}

// Warn logs and, with a collector attached, aggregates the entry for shipping.
func (l *Logger) Warn(msg string, fields ...Field) {
	l.write(l.zl.Warn(), zerolog.WarnLevel, msg, fields)
}

// Error logs and, with a collector attached, aggregates the entry for shipping.
func (l *Logger) Error(msg string, fields ...Field) {
	l.write(l.zl.Error(), zerolog.ErrorLevel, msg, fields)
}

// Fatal logs and exits the process.
func (l *Logger) Fatal(msg string, fields ...Field) {
	l.write(l.zl.Fatal(), zerolog.FatalLevel, msg, fields)
}

// AddCollector attaches a collector, closing the previous one.
func (l *Logger) AddCollector(config *CollectionConfig) {
	if l.collector != nil {
		l.collector.Close()
	}
	l.collector = NewLogCollector(config)
}

// RemoveCollector flushes and detaches the collector.
func (l *Logger) RemoveCollector() {
	if l.collector != nil {
		l.collector.Close()
		l.collector = nil
	}
}

// Field is one structured key/value pair.
type Field interface {
	AddTo(event *zerolog.Event)
	GetKeyValue() (string, interface{})
}

type field[T any] struct {
	key   string
	value T
	add   func(e *zerolog.Event, key string, v T)
}

func (f field[T]) AddTo(event *zerolog.Event) { f.add(event, f.key, f.value) }

func (f field[T]) GetKeyValue() (string, interface{}) { return f.key, f.value }

type errorField struct {
	err error
}

func (f errorField) AddTo(event *zerolog.Event) { event.Err(f.err) }

func (f errorField) GetKeyValue() (string, interface{}) {
	if f.err == nil {
		return zerolog.ErrorFieldName, nil
	}
	return zerolog.ErrorFieldName, f.err.Error()
}

func String(key, value string) Field {
	return field[string]{key, value, func(e *zerolog.Event, k string, v string) { e.Str(k, v) }}
}

func Int(key string, value int) Field {
	return field[int]{key, value, func(e *zerolog.Event, k string, v int) { e.Int(k, v) }}
}

func Int64(key string, value int64) Field {
	return field[int64]{key, value, func(e *zerolog.Event, k string, v int64) { e.Int64(k, v) }}
}

func Float64(key string, value float64) Field {
	return field[float64]{key, value, func(e *zerolog.Event, k string, v float64) { e.Float64(k, v) }}
}

func Bool(key string, value bool) Field {
	return field[bool]{key, value, func(e *zerolog.Event, k string, v bool) { e.Bool(k, v) }}
}

// Duration is logged in milliseconds.
func Duration(key string, value time.Duration) Field {
	return Int64(key, value.Milliseconds())
}

func Any(key string, value interface{}) Field {
	return field[interface{}]{key, value, func(e *zerolog.Event, k string, v interface{}) { e.Interface(k, v) }}
}

func Error(err error) Field {
	return errorField{err: err}
}
