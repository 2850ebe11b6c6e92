// Package logging provides the engine's structured logger: a thin
// zap wrapper that tags every entry with a Category, mirroring the
// teacher's categorized logging scheme (there, one log file per
// category; here, one zap field per category, since this module has
// no per-session log directory to partition files under).
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category identifies which engine subsystem emitted a log entry.
type Category string

const (
	CategoryParser     Category = "parser"
	CategoryUnify      Category = "unify"
	CategoryIndex      Category = "index"
	CategoryKnowledge  Category = "knowledge"
	CategoryTMS        Category = "tms"
	CategoryCognition  Category = "cognition"
	CategoryQuery      Category = "query"
	CategoryEvents     Category = "events"
)

// Logger wraps a *zap.Logger with a fixed Category field and
// convenience methods matching the level vocabulary spec.md §4.5 uses
// ("warn at 80%", "error-log at 95%").
type Logger struct {
	z        *zap.Logger
	category Category
}

// New builds a production zap.Logger (JSON encoder, info level) and
// wraps it for category.
func New(category Category) *Logger {
	z, err := zap.NewProduction()
	if err != nil {
		z = zap.NewNop()
	}
	return &Logger{z: z, category: category}
}

// NewFromZap wraps an already-constructed zap.Logger (e.g. one
// configured by cmd/reason from flags) for category.
func NewFromZap(z *zap.Logger, category Category) *Logger {
	return &Logger{z: z, category: category}
}

// Nop returns a Logger that discards everything, for tests that don't
// care about log output.
func Nop() *Logger {
	return &Logger{z: zap.NewNop(), category: ""}
}

// With returns a child Logger with the same category plus extra
// structured fields (e.g. kb id, note id) attached to every entry.
func (l *Logger) With(fields ...zapcore.Field) *Logger {
	return &Logger{z: l.z.With(fields...), category: l.category}
}

func (l *Logger) fields(extra []zapcore.Field) []zapcore.Field {
	return append([]zapcore.Field{zap.String("category", string(l.category))}, extra...)
}

// sugar returns a SugaredLogger with the category field already
// attached, so every Debugf/Infof/Warnf/Errorf call carries it.
func (l *Logger) sugar() *zap.SugaredLogger {
	return l.z.With(l.fields(nil)...).Sugar()
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.sugar().Debugf(format, args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.sugar().Infof(format, args...)
}

// Warnf logs at warning level. Used, among other call sites, for
// spec.md §4.5's 80%-capacity KB warning.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.sugar().Warnf(format, args...)
}

// Errorf logs at error level. Used for spec.md §4.5's 95%-capacity
// KB error-log and for TMS-invariant failures (spec.md §7: "TMS
// invariants are fatal... log, and leave the store unchanged").
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.sugar().Errorf(format, args...)
}

// Sync flushes buffered log entries; call during shutdown.
func (l *Logger) Sync() error {
	return l.z.Sync()
}
