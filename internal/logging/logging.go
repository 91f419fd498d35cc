// Package logging builds the process-wide structured logger.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the root logger. With debug enabled it uses a console
// encoder at debug level, otherwise JSON at info level.
func New(debug bool) *zap.Logger {
	var encoder zapcore.Encoder
	var minLevel zapcore.Level
	if debug {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		minLevel = zapcore.DebugLevel
	} else {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		minLevel = zapcore.InfoLevel
	}
	filter := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= minLevel
	})
	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), filter)
	return zap.New(core)
}
