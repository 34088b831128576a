package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 创建日志记录器。quiet 模式只输出错误（进度条接管终端时使用），
// debug 模式开启调试级别。
func New(debug, quiet bool) *zap.Logger {
	config := zap.NewProductionConfig()

	switch {
	case quiet:
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	case debug:
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	config.DisableStacktrace = true
	config.OutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		panic("failed to initialize logging: " + err.Error())
	}

	return logger
}
