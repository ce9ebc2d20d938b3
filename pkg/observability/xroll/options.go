package xroll

import (
	"context"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/omeyang/xroll/pkg/observability/xlog"
)

const (
	// DefaultQueueSize 默认队列长度
	DefaultQueueSize = 1024

	// DefaultFileMode 默认文件权限
	DefaultFileMode os.FileMode = 0o640
)

type options struct {
	clock         Clock
	onError       func(error)
	queueSize     int
	meterProvider metric.MeterProvider
	openAttempts  uint
	openDelay     time.Duration
	fileMode      os.FileMode
	callerSkip    int
	opener        fileOpener
}

func defaultOptions() *options {
	return &options{
		clock:        SystemClock,
		queueSize:    DefaultQueueSize,
		openAttempts: 1,
		fileMode:     DefaultFileMode,
		opener:       osOpener{},
	}
}

// Option Logger 选项
type Option func(*options)

// WithClock 替换时钟，nil 忽略
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithOnError 设置内部错误回调。
//
// 回调在后台写入协程中同步执行，回调 panic 会被恢复并计数。
// 回调中不要同步写入同一个 Logger，队列满时会死锁。
func WithOnError(fn func(error)) Option {
	return func(o *options) {
		o.onError = fn
	}
}

// WithErrorLogger 将内部错误以 Error 级别写入 xlog 日志器，nil 忽略
func WithErrorLogger(logger xlog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			return
		}
		logger = logger.With(xlog.Component("xroll"))
		o.onError = func(err error) {
			logger.Error(context.Background(), "internal error", xlog.Err(err))
		}
	}
}

// WithQueueSize 设置队列长度，小于 1 忽略
func WithQueueSize(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.queueSize = n
		}
	}
}

// WithMeterProvider 设置指标 MeterProvider，默认使用 otel 全局 Provider
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithOpenRetry 打开文件失败时的重试次数（含首次）与固定间隔，attempts 为 0 忽略
func WithOpenRetry(attempts uint, delay time.Duration) Option {
	return func(o *options) {
		if attempts == 0 {
			return
		}
		o.openAttempts = attempts
		if delay > 0 {
			o.openDelay = delay
		}
	}
}

// WithFileMode 设置 epoch 文件权限，0 忽略
func WithFileMode(mode os.FileMode) Option {
	return func(o *options) {
		if mode != 0 {
			o.fileMode = mode
		}
	}
}

// WithCallerSkip 封装 Logger 时跳过的额外栈帧数，负数忽略
func WithCallerSkip(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.callerSkip = n
		}
	}
}

// withOpener 测试用：替换文件打开方式
func withOpener(op fileOpener) Option {
	return func(o *options) {
		if op != nil {
			o.opener = op
		}
	}
}

func (o *options) provider() metric.MeterProvider {
	if o.meterProvider != nil {
		return o.meterProvider
	}
	return otel.GetMeterProvider()
}
