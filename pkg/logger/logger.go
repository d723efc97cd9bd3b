// Package logger provides opinionated logging for the chatbot server and CLI.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a colored console logger writing to stdout.
func NewLogger(debug bool) *zap.Logger {
	encoderConfig := encoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	return newLogger(zapcore.NewConsoleEncoder(encoderConfig), debug)
}

// NewJSONLogger returns a logger that writes one JSON object per line to stdout.
func NewJSONLogger(debug bool) *zap.Logger {
	encoderConfig := encoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	return newLogger(zapcore.NewJSONEncoder(encoderConfig), debug)
}

// New picks the encoder by format name. Anything other than "json" gets the
// console encoder.
func New(format string, debug bool) *zap.Logger {
	if format == "json" {
		return NewJSONLogger(debug)
	}
	return NewLogger(debug)
}

func encoderConfig() zapcore.EncoderConfig {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return encoderConfig
}

func newLogger(encoder zapcore.Encoder, debug bool) *zap.Logger {
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)

	return zap.New(core, zap.AddCaller())
}
