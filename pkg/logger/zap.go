package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ZapConfig configures the zap backend.
type ZapConfig struct {
	Level  string `json:"level" yaml:"level" env:"LOG_LEVEL"`
	Format string `json:"format" yaml:"format" env:"LOG_FORMAT"` // json or console
	// Output is "stdout", "stderr" or a file path. File output is rotated.
	Output     string `json:"output" yaml:"output" env:"LOG_OUTPUT"`
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb" env:"LOG_MAX_SIZE_MB"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups" env:"LOG_MAX_BACKUPS"`
	MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days" env:"LOG_MAX_AGE_DAYS"`
	Compress   bool   `json:"compress" yaml:"compress" env:"LOG_COMPRESS"`
}

// ZapLogger adapts a zap logger to the Logger interface.
type ZapLogger struct {
	base  *zap.Logger
	sugar *zap.SugaredLogger
	level LogLevel
}

// NewZapLogger wraps an existing zap logger.
func NewZapLogger(z *zap.Logger, level LogLevel) *ZapLogger {
	z = z.WithOptions(zap.AddCallerSkip(1))
	return &ZapLogger{base: z, sugar: z.Sugar(), level: level}
}

// NewZap builds a zap-backed Logger from cfg.
func NewZap(cfg ZapConfig) (*ZapLogger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var encCfg zapcore.EncoderConfig
	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "console", "text":
		encCfg = zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	case "json", "":
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	core := zapcore.NewCore(encoder, writeSyncer(cfg), zap.NewAtomicLevelAt(zapcore.DebugLevel))
	return NewZapLogger(zap.New(core, zap.AddCaller()), level), nil
}

func writeSyncer(cfg ZapConfig) zapcore.WriteSyncer {
	switch cfg.Output {
	case "", "stdout":
		return zapcore.Lock(os.Stdout)
	case "stderr":
		return zapcore.Lock(os.Stderr)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.Output,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	})
}

// LogMode sets the log level and returns a new logger instance.
func (l *ZapLogger) LogMode(level LogLevel) Logger {
	newLogger := *l
	newLogger.level = level
	return &newLogger
}

// Info logs an informational message.
func (l *ZapLogger) Info(msg string, args ...any) {
	if l.level >= Info {
		l.sugar.Infow(msg, args...)
	}
}

// Warn logs a warning message.
func (l *ZapLogger) Warn(msg string, args ...any) {
	if l.level >= Warn {
		l.sugar.Warnw(msg, args...)
	}
}

// Error logs an error message.
func (l *ZapLogger) Error(msg string, args ...any) {
	if l.level >= Error {
		l.sugar.Errorw(msg, args...)
	}
}

// Debug logs a debug message.
func (l *ZapLogger) Debug(msg string, args ...any) {
	if l.level >= Debug {
		l.sugar.Debugw(msg, args...)
	}
}

// Zap returns the underlying zap logger.
func (l *ZapLogger) Zap() *zap.Logger { return l.base }

// Sync flushes buffered log entries.
func (l *ZapLogger) Sync() error { return l.base.Sync() }
