package xlog

import (
	"context"
	"log/slog"
)

// Logger 日志接口
//
// 方法只接受 slog.Attr，避免隐式 key-value 转换。
type Logger interface {
	Debug(ctx context.Context, msg string, attrs ...slog.Attr)
	Info(ctx context.Context, msg string, attrs ...slog.Attr)
	Warn(ctx context.Context, msg string, attrs ...slog.Attr)
	Error(ctx context.Context, msg string, attrs ...slog.Attr)

	// With 返回带固定属性的派生 Logger，派生 Logger 共享级别和错误计数
	With(attrs ...slog.Attr) Logger
}

// Leveler 级别控制接口
type Leveler interface {
	SetLevel(level Level)
	GetLevel() Level
	Enabled(ctx context.Context, level Level) bool
}

// LoggerWithLevel Build 返回的组合接口
type LoggerWithLevel interface {
	Logger
	Leveler

	// ErrorCount 返回 Handler 写入失败的累计次数
	ErrorCount() uint64
}
