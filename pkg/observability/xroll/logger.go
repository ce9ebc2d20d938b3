package xroll

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v5"

	"github.com/omeyang/xroll/pkg/util/xcaller"
	"github.com/omeyang/xroll/pkg/util/xfile"
)

// Logger 按级别过滤、写入本地文件并按时间或大小滚动的日志器。
//
// 零值不可用，通过 WithDefaults 或 WithConfig 创建。所有方法并发安全。
type Logger struct {
	cfg     Config
	opts    *options
	metrics *metrics

	// mu 保护活动文件，写入协程、Init、Close 共用
	mu        sync.Mutex
	active    *epochFile
	lastEpoch time.Time
	pending   []opError

	ready   atomic.Bool // 存在活动文件
	closed  atomic.Bool
	started atomic.Bool

	// sendMu 读锁覆盖入队，Close 持写锁关闭 stopped，
	// 保证 stopped 关闭后不再有日志进入队列
	sendMu   sync.RWMutex
	queue    chan request
	stopped  chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	errorCount     atomic.Uint64
	droppedCount   atomic.Uint64
	inErrorHandler atomic.Bool
}

// request 队列元素：一行日志，或一个刷盘屏障
type request struct {
	line    []byte
	barrier chan struct{}
}

type opError struct {
	op  string
	err error
}

// WithDefaults 使用 DefaultConfig 创建 Logger
func WithDefaults(opts ...Option) *Logger {
	return newLogger(DefaultConfig(), opts)
}

// WithConfig 校验配置并创建 Logger，不做任何 I/O。
// 配置非法时返回的错误包装 ErrInvalidConfig。
func WithConfig(cfg Config, opts ...Option) (*Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newLogger(cfg.normalized(), opts), nil
}

func newLogger(cfg Config, opts []Option) *Logger {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	l := &Logger{
		cfg:     cfg,
		opts:    o,
		queue:   make(chan request, o.queueSize),
		stopped: make(chan struct{}),
		done:    make(chan struct{}),
	}

	m, err := newMetrics(o.provider())
	if err != nil {
		// 指标不可用不影响写日志
		l.report(opError{op: "metrics", err: err})
	}
	l.metrics = m
	return l
}

// Level 最低输出级别
func (l *Logger) Level() Level { return l.cfg.Level }

// FilePrefix 文件名前缀
func (l *Logger) FilePrefix() string { return l.cfg.FilePrefix }

// Dir 日志根目录
func (l *Logger) Dir() string { return l.cfg.Dir }

// SizeThreshold 大小阈值（字节）
func (l *Logger) SizeThreshold() int64 { return l.cfg.Rolling.SizeThreshold }

// TimeThreshold 时间阈值（秒）
func (l *Logger) TimeThreshold() int64 { return l.cfg.Rolling.TimeThreshold }

// Config 返回配置副本
func (l *Logger) Config() Config { return l.cfg }

// ActivePath 活动文件路径，没有活动文件时为空
func (l *Logger) ActivePath() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active == nil {
		return ""
	}
	return l.active.path
}

// ErrorCount 内部错误次数（写入、stat、关闭、滚动失败，回调 panic）
func (l *Logger) ErrorCount() uint64 { return l.errorCount.Load() }

// DroppedCount 因无可用文件而丢弃的日志条数
func (l *Logger) DroppedCount() uint64 { return l.droppedCount.Load() }

// Init 创建目录并打开新的 epoch 文件，替换当前文件，首次调用时启动写入协程。
//
// 旧文件先关闭，关闭失败通过错误回调上报，不影响本次 Init。
// 失败时 Logger 没有活动文件，可再次调用 Init 恢复。
// 错误包装 ErrCreateDir 或 ErrOpenFile；Close 之后返回 ErrClosed。
func (l *Logger) Init(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	l.mu.Lock()
	if l.closed.Load() {
		l.mu.Unlock()
		return ErrClosed
	}
	err := l.openLocked(ctx)
	if err == nil && !l.started.Load() {
		l.started.Store(true)
		go l.run()
	}
	pending := l.takePendingLocked()
	l.mu.Unlock()

	l.deliver(pending)
	return err
}

// Enabled 报告该级别的日志当前是否会被写入
func (l *Logger) Enabled(level Level) bool {
	return level.Valid() && level >= l.cfg.Level && l.ready.Load() && !l.closed.Load()
}

// Debug 记录 Debug 级别日志
func (l *Logger) Debug(msg string) { l.log(LevelDebug, msg) }

// Info 记录 Info 级别日志
func (l *Logger) Info(msg string) { l.log(LevelInfo, msg) }

// Warn 记录 Warn 级别日志
func (l *Logger) Warn(msg string) { l.log(LevelWarn, msg) }

// Error 记录 Error 级别日志
func (l *Logger) Error(msg string) { l.log(LevelError, msg) }

// Critical 记录 Critical 级别日志
func (l *Logger) Critical(msg string) { l.log(LevelCritical, msg) }

// Log 按指定级别记录日志，未定义的级别被忽略
func (l *Logger) Log(level Level, msg string) { l.log(level, msg) }

// Debugf 按格式记录 Debug 级别日志，级别未启用时不格式化
func (l *Logger) Debugf(format string, args ...any) {
	if l.Enabled(LevelDebug) {
		l.log(LevelDebug, fmt.Sprintf(format, args...))
	}
}

// Infof 按格式记录 Info 级别日志，级别未启用时不格式化
func (l *Logger) Infof(format string, args ...any) {
	if l.Enabled(LevelInfo) {
		l.log(LevelInfo, fmt.Sprintf(format, args...))
	}
}

// Warnf 按格式记录 Warn 级别日志，级别未启用时不格式化
func (l *Logger) Warnf(format string, args ...any) {
	if l.Enabled(LevelWarn) {
		l.log(LevelWarn, fmt.Sprintf(format, args...))
	}
}

// Errorf 按格式记录 Error 级别日志，级别未启用时不格式化
func (l *Logger) Errorf(format string, args ...any) {
	if l.Enabled(LevelError) {
		l.log(LevelError, fmt.Sprintf(format, args...))
	}
}

// Criticalf 按格式记录 Critical 级别日志，级别未启用时不格式化
func (l *Logger) Criticalf(format string, args ...any) {
	if l.Enabled(LevelCritical) {
		l.log(LevelCritical, fmt.Sprintf(format, args...))
	}
}

// log 所有级别方法的统一入口，调用位置在调用方协程中获取。
//
// skip=2：log → Debug/Info/... → 业务代码
func (l *Logger) log(level Level, msg string) {
	if !l.Enabled(level) {
		return
	}
	site := xcaller.Site(2 + l.opts.callerSkip)
	l.enqueue(formatLine(l.opts.clock.Now(), level, site, msg))
}

// enqueue 将一行日志交给写入协程；Close 正在停止或已停止写入协程时计为丢弃。
// 队列满时阻塞，写入协程在 stopped 关闭前持续消费。
func (l *Logger) enqueue(line []byte) {
	if !l.sendMu.TryRLock() {
		l.drop()
		return
	}
	defer l.sendMu.RUnlock()

	select {
	case <-l.stopped:
		l.drop()
		return
	default:
	}
	l.queue <- request{line: line}
}

// formatLine "[" + ISO8601 + "] [" + LEVEL + "]: " + caller + " " + msg + "\n"
func formatLine(t time.Time, level Level, site, msg string) []byte {
	b := make([]byte, 0, len(isoLayout)+len(site)+len(msg)+20)
	b = append(b, '[')
	b = t.UTC().AppendFormat(b, isoLayout)
	b = append(b, "] ["...)
	b = append(b, level.String()...)
	b = append(b, "]: "...)
	b = append(b, site...)
	b = append(b, ' ')
	b = append(b, msg...)
	return append(b, '\n')
}

// Flush 等待调用前已入队的日志全部处理完毕
func (l *Logger) Flush(ctx context.Context) error {
	if !l.started.Load() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	barrier := make(chan struct{})
	select {
	case l.queue <- request{barrier: barrier}:
	case <-l.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-barrier:
		return nil
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close 刷盘、停止写入协程并关闭活动文件。
//
// ctx 只限制刷盘等待；超时后队列中剩余的日志仍会被写入协程处理完。
// 重复调用返回 nil。Close 之后的日志调用为空操作。
func (l *Logger) Close(ctx context.Context) error {
	l.mu.Lock()
	if l.closed.Load() {
		l.mu.Unlock()
		return nil
	}
	l.closed.Store(true)
	l.mu.Unlock()

	var errs []error
	if l.started.Load() {
		if err := l.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
		l.stopOnce.Do(func() {
			l.sendMu.Lock()
			close(l.stopped)
			l.sendMu.Unlock()
		})
		<-l.done
		l.drainDropped()
	}

	l.mu.Lock()
	l.ready.Store(false)
	if l.active != nil {
		if err := l.active.f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrCloseFile, l.active.path, err))
		}
		l.active = nil
	}
	l.mu.Unlock()

	return errors.Join(errs...)
}

// run 写入协程：逐条处理直到 stopped 关闭，然后处理完队列剩余部分
func (l *Logger) run() {
	defer close(l.done)
	for {
		select {
		case req := <-l.queue:
			l.process(req)
		case <-l.stopped:
			for {
				select {
				case req := <-l.queue:
					l.process(req)
				default:
					return
				}
			}
		}
	}
}

// drainDropped 写入协程退出后仍留在队列中的日志计为丢弃
func (l *Logger) drainDropped() {
	for {
		select {
		case req := <-l.queue:
			if req.barrier == nil {
				l.drop()
			}
		default:
			return
		}
	}
}

func (l *Logger) process(req request) {
	if req.barrier != nil {
		close(req.barrier)
		return
	}

	l.mu.Lock()
	l.writeLocked(req.line)
	pending := l.takePendingLocked()
	l.mu.Unlock()

	l.deliver(pending)
}

// writeLocked 写入 → stat → 滚动判断
func (l *Logger) writeLocked(line []byte) {
	ef := l.active
	if ef == nil {
		l.drop()
		return
	}

	if _, err := ef.f.Write(line); err != nil {
		l.reportLocked(opWrite, fmt.Errorf("%w: %s: %w", ErrWriteFile, ef.path, err))
		l.discardLocked()
		l.ready.Store(false)
		l.drop()
		return
	}
	l.metrics.recordWritten()

	info, err := ef.f.Stat()
	if err != nil {
		l.reportLocked(opStat, fmt.Errorf("%w: %s: %w", ErrStatFile, ef.path, err))
		return
	}

	trigger := Decide(FileStats{Size: info.Size(), Created: ef.created}, l.cfg.Rolling, l.opts.clock.Now())
	if trigger == TriggerNone {
		return
	}
	l.metrics.recordRollover(trigger)
	if err := l.openLocked(context.Background()); err != nil {
		l.reportLocked(opRollover, err)
	}
}

// openLocked 关闭旧文件，确保目录存在并打开新的 epoch 文件。
// 仅在最终失败时清除 ready，滚动期间的并发调用不会被误丢弃。
func (l *Logger) openLocked(ctx context.Context) error {
	l.discardLocked()

	dir, err := xfile.EnsureDirectory(l.cfg.Dir)
	if err != nil {
		l.ready.Store(false)
		return fmt.Errorf("%w: %w", ErrCreateDir, err)
	}

	start := l.nextEpochLocked()
	path, err := xfile.SafeJoin(dir, FileName(l.cfg.FilePrefix, start))
	if err != nil {
		l.ready.Store(false)
		return fmt.Errorf("%w: %w", ErrOpenFile, err)
	}

	f, err := retry.NewWithData[logFile](
		retry.Context(ctx),
		retry.Attempts(l.opts.openAttempts),
		retry.Delay(l.opts.openDelay),
		retry.MaxJitter(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	).Do(func() (logFile, error) {
		return l.opts.opener.OpenFile(path, openFlags, l.opts.fileMode)
	})
	if err != nil {
		l.ready.Store(false)
		return fmt.Errorf("%w: %s: %w", ErrOpenFile, path, err)
	}

	l.active = &epochFile{f: f, path: path, created: start}
	l.ready.Store(true)
	return nil
}

// discardLocked 关闭并丢弃活动文件，关闭失败只上报
func (l *Logger) discardLocked() {
	if l.active == nil {
		return
	}
	if err := l.active.f.Close(); err != nil {
		l.reportLocked(opClose, fmt.Errorf("%w: %s: %w", ErrCloseFile, l.active.path, err))
	}
	l.active = nil
}

// nextEpochLocked 新 epoch 的起始时间，毫秒精度且严格递增
func (l *Logger) nextEpochLocked() time.Time {
	t := l.opts.clock.Now().UTC().Truncate(time.Millisecond)
	if !t.After(l.lastEpoch) {
		t = l.lastEpoch.Add(time.Millisecond)
	}
	l.lastEpoch = t
	return t
}

func (l *Logger) drop() {
	l.droppedCount.Add(1)
	l.metrics.recordDropped()
}

// reportLocked 暂存错误，释放锁后由 deliver 回调，回调中可以安全调用 Logger 的只读方法
func (l *Logger) reportLocked(op string, err error) {
	l.pending = append(l.pending, opError{op: op, err: err})
}

func (l *Logger) takePendingLocked() []opError {
	pending := l.pending
	l.pending = nil
	return pending
}

func (l *Logger) deliver(pending []opError) {
	for _, e := range pending {
		l.report(e)
	}
}

// report 计数并通知 onError；回调期间再次出错只计数不回调
func (l *Logger) report(e opError) {
	l.errorCount.Add(1)
	l.metrics.recordError(e.op)

	fn := l.opts.onError
	if fn == nil {
		return
	}
	if !l.inErrorHandler.CompareAndSwap(false, true) {
		return
	}
	defer l.inErrorHandler.Store(false)

	defer func() {
		if r := recover(); r != nil {
			l.errorCount.Add(1)
		}
	}()
	fn(e.err)
}
