// Package logging provides centralized structured logging for keeperd.
// It wraps zap.Logger and allows configurable level, output streams, and
// rotated file logging.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config represents the logging section of the keeperd configuration.
type Config struct {
	Level      string `mapstructure:"level" yaml:"level"`             // "debug", "info", "warn", "error"
	ToStdout   bool   `mapstructure:"to_stdout" yaml:"to_stdout"`     // enable output to stdout
	ToStderr   bool   `mapstructure:"to_stderr" yaml:"to_stderr"`     // enable output to stderr
	ToFile     bool   `mapstructure:"to_file" yaml:"to_file"`         // enable output to file
	FilePath   string `mapstructure:"file" yaml:"file"`               // log file path
	MaxSizeMB  int    `mapstructure:"max_size" yaml:"max_size"`       // max size before rotation (MB)
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`         // max age of logs (days)
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"` // rotated backups to keep
	Compress   bool   `mapstructure:"compress" yaml:"compress"`       // gzip compress old log files
}

// Log is the globally accessible sugared logger instance.
var Log *zap.SugaredLogger

// Init initializes the global logger based on the provided config.
func Init(cfg Config) error {
	var cores []zapcore.Core

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewConsoleEncoder(encoderCfg)

	level := zapcore.InfoLevel
	_ = level.Set(cfg.Level) // invalid level keeps the info default

	if cfg.ToStdout {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level))
	}

	if cfg.ToStderr {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), level))
	}

	if cfg.ToFile && cfg.FilePath != "" {
		writer := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
		cores = append(cores, zapcore.NewCore(encoder, writer, level))
	}

	if len(cores) == 0 {
		// Fallback: always log to stdout
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	Log = logger.Sugar()
	return nil
}

func init() {
	_ = Init(Config{Level: "info", ToStdout: true})
}
