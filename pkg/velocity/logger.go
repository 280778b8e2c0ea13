package velocity

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
)

type LogLevel int

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarn
	LogError
	LogOff
)

func (l LogLevel) String() string {
	switch l {
	case LogDebug:
		return "DEBUG"
	case LogInfo:
		return "INFO"
	case LogWarn:
		return "WARN"
	case LogError:
		return "ERROR"
	case LogOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// slogLevel maps a LogLevel onto the slog scale. LogOff sits above every
// level slog emits.
func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogInfo:
		return slog.LevelInfo
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelError + 4
	}
}

type Fields map[string]interface{}

// Logger is a leveled logger with printf-style messages and structured
// fields, written through a slog handler.
type Logger struct {
	handler slog.Handler
	level   *slog.LevelVar
	fields  Fields
}

var (
	globalLogger     *Logger
	globalLoggerOnce sync.Once
	globalLoggerMu   sync.RWMutex
)

func initGlobalLogger() {
	globalLoggerOnce.Do(func() {
		config := GetGlobalConfig()
		l := NewLoggerWithFormat(os.Stderr, ParseLogLevel(config.LogLevel), config.LogFormat)
		globalLoggerMu.Lock()
		globalLogger = l
		globalLoggerMu.Unlock()
	})
}

// ParseLogLevel converts a level name to a LogLevel; unknown names map to LogInfo.
func ParseLogLevel(levelStr string) LogLevel {
	switch strings.ToLower(levelStr) {
	case "debug":
		return LogDebug
	case "info":
		return LogInfo
	case "warn":
		return LogWarn
	case "error":
		return LogError
	case "off":
		return LogOff
	default:
		return LogInfo
	}
}

// NewLogger creates a text-format logger writing to w.
func NewLogger(w io.Writer, level LogLevel) *Logger {
	return NewLoggerWithFormat(w, level, "text")
}

// NewLoggerWithFormat creates a logger writing to w; format is "text" or "json".
func NewLoggerWithFormat(w io.Writer, level LogLevel, format string) *Logger {
	if w == nil {
		w = io.Discard
	}
	lv := new(slog.LevelVar)
	lv.Set(level.slogLevel())
	opts := &slog.HandlerOptions{Level: lv}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &Logger{
		handler: handler,
		level:   lv,
		fields:  make(Fields),
	}
}

func (l *Logger) SetLevel(level LogLevel) {
	l.level.Set(level.slogLevel())
}

func (l *Logger) IsDebugMode() bool {
	return l.level.Level() <= slog.LevelDebug
}

// Slog exposes the logger as a *slog.Logger carrying the current fields.
func (l *Logger) Slog() *slog.Logger {
	return slog.New(l.handler).With(l.attrs()...)
}

func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(Fields{key: value})
}

func (l *Logger) WithFields(fields Fields) *Logger {
	newLogger := &Logger{
		handler: l.handler,
		level:   l.level,
		fields:  make(Fields, len(l.fields)+len(fields)),
	}
	for k, v := range l.fields {
		newLogger.fields[k] = v
	}
	for k, v := range fields {
		newLogger.fields[k] = v
	}
	return newLogger
}

// attrs returns the fields as slog key/value pairs in key order.
func (l *Logger) attrs() []any {
	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		args = append(args, k, l.fields[k])
	}
	return args
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	ctx := context.Background()
	if !l.handler.Enabled(ctx, level.slogLevel()) {
		return
	}
	slog.New(l.handler).Log(ctx, level.slogLevel(), fmt.Sprintf(format, args...), l.attrs()...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LogDebug, format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LogInfo, format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LogWarn, format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LogError, format, args...)
}

// DebugTemplate logs a template source and its context in debug mode.
func (l *Logger) DebugTemplate(template string, ctx Context) {
	if !l.IsDebugMode() {
		return
	}
	l.WithField("keys", len(ctx)).Debug("Template: %q", template)
}

// Global logging functions
func SetLogger(logger *Logger) {
	initGlobalLogger()
	globalLoggerMu.Lock()
	globalLogger = logger
	globalLoggerMu.Unlock()
}

func GetLogger() *Logger {
	initGlobalLogger()
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// UpdateLoggerFromConfig updates the global logger level from the current global configuration
func UpdateLoggerFromConfig() {
	config := GetGlobalConfig()
	GetLogger().SetLevel(ParseLogLevel(config.LogLevel))
}
