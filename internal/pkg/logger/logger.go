package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents the severity of a log entry.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel maps a config string ("debug", "info", "warn", "error") to a Level.
// Unknown values fall back to INFO.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// Logger provides structured logging with optional PII redaction on top of zap.
type Logger struct {
	mu        sync.RWMutex
	zl        *zap.Logger
	level     zap.AtomicLevel
	redactPII bool
}

var defaultLogger = newLogger("production", nil)

func newLogger(env string, sink zapcore.WriteSyncer) *Logger {
	var cfg zap.Config
	if env == "development" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)

	if sink == nil {
		sink = zapcore.Lock(os.Stderr)
	}
	var enc zapcore.Encoder
	if env == "development" {
		enc = zapcore.NewConsoleEncoder(cfg.EncoderConfig)
	} else {
		enc = zapcore.NewJSONEncoder(cfg.EncoderConfig)
	}
	core := zapcore.NewCore(enc, sink, level)
	return &Logger{
		zl:        zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)),
		level:     level,
		redactPII: true,
	}
}

// Init rebuilds the default logger for the given environment ("production"
// or "development") and minimum level.
func Init(env string, level Level) {
	l := newLogger(env, nil)
	l.level.SetLevel(level.zapLevel())
	replaceDefault(l)
}

func replaceDefault(l *Logger) {
	defaultLogger.mu.Lock()
	defaultLogger.zl = l.zl
	defaultLogger.level = l.level
	defaultLogger.mu.Unlock()
}

// SetLevel sets the minimum log level for the default logger.
func SetLevel(l Level) {
	defaultLogger.mu.RLock()
	defaultLogger.level.SetLevel(l.zapLevel())
	defaultLogger.mu.RUnlock()
}

// SetRedactPII enables or disables PII redaction for the default logger.
func SetRedactPII(r bool) {
	defaultLogger.mu.Lock()
	defaultLogger.redactPII = r
	defaultLogger.mu.Unlock()
}

// Sync flushes buffered entries. Call before exit.
func Sync() {
	defaultLogger.mu.RLock()
	_ = defaultLogger.zl.Sync()
	defaultLogger.mu.RUnlock()
}

// Zap exposes the underlying zap logger for libraries that want one.
func Zap() *zap.Logger {
	defaultLogger.mu.RLock()
	defer defaultLogger.mu.RUnlock()
	return defaultLogger.zl
}

// Debug emits a DEBUG-level structured log entry.
func Debug(msg string, fields ...interface{}) { defaultLogger.log(DEBUG, msg, fields...) }

// Info emits an INFO-level structured log entry.
func Info(msg string, fields ...interface{}) { defaultLogger.log(INFO, msg, fields...) }

// Warn emits a WARN-level structured log entry.
func Warn(msg string, fields ...interface{}) { defaultLogger.log(WARN, msg, fields...) }

// Error emits an ERROR-level structured log entry.
func Error(msg string, fields ...interface{}) { defaultLogger.log(ERROR, msg, fields...) }

func (l *Logger) log(level Level, msg string, fields ...interface{}) {
	l.mu.RLock()
	zl, redact := l.zl, l.redactPII
	l.mu.RUnlock()

	ce := zl.Check(level.zapLevel(), msg)
	if ce == nil {
		return
	}
	ce.Write(toFields(redact, fields)...)
}

// toFields turns alternating key/value pairs into zap fields. A trailing key
// without a value is dropped.
func toFields(redact bool, kv []interface{}) []zap.Field {
	out := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i < len(kv)-1; i += 2 {
		key := fmt.Sprintf("%v", kv[i])
		switch v := kv[i+1].(type) {
		case error:
			val := v.Error()
			if redact {
				val = redactPIIValue(key, val)
			}
			out = append(out, zap.String(key, val))
		case string:
			if redact {
				v = redactPIIValue(key, v)
			}
			out = append(out, zap.String(key, v))
		case int, int64, int32, float64, bool:
			out = append(out, zap.Any(key, v))
		default:
			val := fmt.Sprintf("%v", v)
			if redact {
				val = redactPIIValue(key, val)
			}
			out = append(out, zap.String(key, val))
		}
	}
	return out
}
