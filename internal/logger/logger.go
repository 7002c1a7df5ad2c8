// Package logger provides structured logging for refgraph builds
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger wraps zerolog with build-specific helpers
type Logger struct {
	zlog zerolog.Logger
}

// Config holds logger configuration
type Config struct {
	Level      string // debug, info, warn, error
	Pretty     bool   // human-readable console output
	Output     io.Writer
	WithCaller bool
}

// ParseLevel maps a config level to zerolog, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new structured logger
func NewLogger(cfg Config) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	zlog := zerolog.New(output).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", "refgraph").
		Logger()

	if cfg.WithCaller {
		zlog = zlog.With().Caller().Logger()
	}

	return &Logger{zlog: zlog}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// GetZerolog returns the underlying zerolog logger
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zlog
}

// Info starts an info event
func (l *Logger) Info() *zerolog.Event {
	return l.zlog.Info()
}

// Debug starts a debug event
func (l *Logger) Debug() *zerolog.Event {
	return l.zlog.Debug()
}

// Warn starts a warning event
func (l *Logger) Warn() *zerolog.Event {
	return l.zlog.Warn()
}

// Error starts an error event
func (l *Logger) Error() *zerolog.Event {
	return l.zlog.Error()
}

// WithFields returns a logger with additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	ctx := l.zlog.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{zlog: ctx.Logger()}
}

// StageLogger returns a logger for one pipeline stage
func (l *Logger) StageLogger(stage string) *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "pipeline").
			Str("stage", stage).
			Logger(),
	}
}

// RefLogger returns a logger for reference diagnostics of one document
func (l *Logger) RefLogger(docID string) *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "refs").
			Str("doc_id", docID).
			Logger(),
	}
}

// LogStage logs a completed pipeline stage
func (l *Logger) LogStage(stage string, duration time.Duration, count int, err error) {
	event := l.zlog.Debug().
		Str("component", "pipeline").
		Str("stage", stage).
		Dur("duration_ms", duration).
		Int("count", count)

	if err != nil {
		event = l.zlog.Error().
			Str("component", "pipeline").
			Str("stage", stage).
			Dur("duration_ms", duration).
			Err(err)
	}

	event.Msg("Stage completed")
}

// LogMissingLineage logs an undated reference with no derivable lineage key.
// Call it on a RefLogger so the citing document is attached.
func (l *Logger) LogMissingLineage(ref, kind string) {
	l.zlog.Warn().
		Str("ref", ref).
		Str("kind", kind).
		Msg("No lineage key derivable")
}

// LogRefSummary logs the count of unique missing-lineage references of one document
func (l *Logger) LogRefSummary(missing int) {
	l.zlog.Info().
		Int("missing", missing).
		Msg("Missing-lineage refs (unique)")
}

// LogBuildStart logs the inputs of a build
func (l *Logger) LogBuildStart(runID, registryPath, msiPath string) {
	l.zlog.Info().
		Str("event", "build_start").
		Str("run_id", runID).
		Str("registry", registryPath).
		Str("msi", msiPath).
		Msg("Build starting")
}

// LogBuildDone logs a finished build
func (l *Logger) LogBuildDone(runID string, docs int, diagnostics int, duration time.Duration) {
	l.zlog.Info().
		Str("event", "build_done").
		Str("run_id", runID).
		Int("documents", docs).
		Int("diagnostics", diagnostics).
		Dur("duration_ms", duration).
		Msg("Build finished")
}

// Global logger instance
var globalLogger *Logger

// InitGlobalLogger initializes the global logger
func InitGlobalLogger(cfg Config) {
	globalLogger = NewLogger(cfg)
	log.Logger = *globalLogger.GetZerolog()
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		InitGlobalLogger(Config{
			Level:  "info",
			Pretty: true,
		})
	}
	return globalLogger
}
