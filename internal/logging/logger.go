package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var globalLogger *zap.SugaredLogger

// Init 初始化全局 JSON logger
func Init(appEnv string) error {
	var config zap.Config

	if appEnv == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Encoding = "json"

	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	globalLogger = logger.Sugar()
	return nil
}

// L 返回全局 logger；未初始化时退化为 Nop，测试里不会输出噪音
func L() *zap.SugaredLogger {
	if globalLogger == nil {
		globalLogger = zap.NewNop().Sugar()
	}
	return globalLogger
}

// Set 替换全局 logger（测试用 observer）
func Set(l *zap.SugaredLogger) {
	globalLogger = l
}

func Close() error {
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}

func Info(message string, fields ...interface{}) {
	L().Infow(message, fields...)
}

func Debug(message string, fields ...interface{}) {
	L().Debugw(message, fields...)
}

func Warn(message string, fields ...interface{}) {
	L().Warnw(message, fields...)
}

func Error(message string, fields ...interface{}) {
	L().Errorw(message, fields...)
}

// WithRequest 带请求上下文的 logger
func WithRequest(requestID, userID, endpoint string) *zap.SugaredLogger {
	return L().With(
		"request_id", requestID,
		"user_id", userID,
		"endpoint", endpoint,
	)
}
