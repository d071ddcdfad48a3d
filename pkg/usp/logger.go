package usp

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog the way this module's ancestry wraps it: a thin
// struct around zerolog.Logger with With* chaining and a handful of
// structured-event helpers for the concerns this package actually emits.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger builds a Logger writing to w at the given level. Pretty output
// is suitable for CLI use; set pretty=false for service/production use.
func NewLogger(w *os.File, level zerolog.Level, pretty bool) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var zl zerolog.Logger
	if pretty {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen})
	} else {
		zl = zerolog.New(w)
	}
	zl = zl.Level(level).With().Timestamp().Logger()

	return &Logger{logger: zl}
}

func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{logger: l.logger.With().Str("component", component).Logger()}
}

func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{logger: l.logger.With().Interface(key, value).Logger()}
}

func (l *Logger) Debug(msg string) { l.logger.Debug().Msg(msg) }
func (l *Logger) Info(msg string)  { l.logger.Info().Msg(msg) }
func (l *Logger) Warn(msg string)  { l.logger.Warn().Msg(msg) }
func (l *Logger) Error(msg string) { l.logger.Error().Msg(msg) }

// LogConnectionEvent logs a connection lifecycle transition.
func (l *Logger) LogConnectionEvent(event string, state ConnectionState, connectionID string) {
	l.logger.Info().
		Str("event_type", "connection").
		Str("event", event).
		Str("state", string(state)).
		Str("connection_id", connectionID).
		Msg("connection event")
}

// LogRequestID logs assignment of a new request-id (spec.md §4.3).
func (l *Logger) LogRequestID(rid RequestID) {
	l.logger.Info().Str("event_type", "request_id").Str("request_id", string(rid)).Msg("request id assigned")
}

// LogProtocolViolation logs a tolerated, non-fatal grammar violation
// (spec.md §7: "logged at a dedicated level and otherwise ignored").
func (l *Logger) LogProtocolViolation(reason string, path string, requestID string) {
	l.logger.Warn().
		Str("event_type", "protocol_violation").
		Str("reason", reason).
		Str("path", path).
		Str("request_id", requestID).
		Msg("protocol violation")
}

// LogUserError logs a classified error immediately before it is delivered
// to the caller's OnError callback.
func (l *Logger) LogUserError(err *UserError) {
	l.logger.Error().
		Bool("recoverable", err.Recoverable).
		Str("kind", string(err.Kind)).
		Msg(err.Message)
}

var defaultLogger = NewLogger(os.Stdout, zerolog.InfoLevel, true)

// Log returns the package-level default Logger.
func Log() *Logger { return defaultLogger }

// SetLogger replaces the package-level default Logger.
func SetLogger(l *Logger) { defaultLogger = l }
