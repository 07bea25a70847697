package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a structured key/value logger. Values under sensitive keys are scrubbed before they
// reach the encoder (see redact.go).
type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

// New builds a logger for mode. "prod"/"production" writes JSON at info level, "test" discards
// everything and any other value uses the development console encoder at debug level.
func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "test":
		return Nop(), nil
	case "prod", "production":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: z.Sugar()}, nil
}

func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) sugar() *zap.SugaredLogger {
	if l == nil || l.SugaredLogger == nil {
		return zap.NewNop().Sugar()
	}
	return l.SugaredLogger
}

func (l *Logger) Debug(msg string, kv ...any) { l.sugar().Debugw(msg, scrub(kv)...) }
func (l *Logger) Info(msg string, kv ...any)  { l.sugar().Infow(msg, scrub(kv)...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.sugar().Warnw(msg, scrub(kv)...) }
func (l *Logger) Error(msg string, kv ...any) { l.sugar().Errorw(msg, scrub(kv)...) }
func (l *Logger) Fatal(msg string, kv ...any) { l.sugar().Fatalw(msg, scrub(kv)...) }

// With returns a child logger that prepends kv to every entry.
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{SugaredLogger: l.sugar().With(scrub(kv)...)}
}

func (l *Logger) Sync() {
	if l == nil || l.SugaredLogger == nil {
		return
	}
	_ = l.SugaredLogger.Sync()
}
