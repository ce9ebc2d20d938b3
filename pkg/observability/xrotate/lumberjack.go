package xrotate

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/omeyang/xroll/pkg/util/xfile"

	"gopkg.in/natefinch/lumberjack.v2"
)

// 默认值
const (
	DefaultMaxSizeMB  = 100
	DefaultMaxBackups = 7
	DefaultMaxAgeDays = 30
)

// 上限
const (
	maxSizeMB  = 10240
	maxBackups = 1024
	maxAgeDays = 3650
)

type lumberjackConfig struct {
	maxSizeMB  int
	maxBackups int
	maxAgeDays int
	localTime  bool
	fileMode   os.FileMode
	onError    func(error)
}

// Option lumberjack 轮转器选项
type Option func(*lumberjackConfig)

// WithMaxSize 设置单个文件最大大小（MB）
func WithMaxSize(mb int) Option {
	return func(c *lumberjackConfig) { c.maxSizeMB = mb }
}

// WithMaxBackups 设置保留的备份数量，0 表示不按数量清理
func WithMaxBackups(n int) Option {
	return func(c *lumberjackConfig) { c.maxBackups = n }
}

// WithMaxAge 设置备份保留天数，0 表示不按天数清理
func WithMaxAge(days int) Option {
	return func(c *lumberjackConfig) { c.maxAgeDays = days }
}

// WithLocalTime 备份文件名使用本地时间（默认 UTC）
func WithLocalTime(local bool) Option {
	return func(c *lumberjackConfig) { c.localTime = local }
}

// WithFileMode 设置日志文件权限
//
// lumberjack 以 0600 创建文件，此选项在写入和轮转后通过 chmod 调整，
// 调整前存在短暂的 0600 窗口。
func WithFileMode(mode os.FileMode) Option {
	return func(c *lumberjackConfig) { c.fileMode = mode }
}

// WithOnError 设置内部错误回调（如 chmod 失败）
//
// 回调不得向同一 Rotator 写入。
func WithOnError(fn func(error)) Option {
	return func(c *lumberjackConfig) { c.onError = fn }
}

type lumberjackRotator struct {
	logger   *lumberjack.Logger
	path     string
	fileMode os.FileMode
	onError  func(error)

	mu     sync.Mutex // 保护 Stat+Chmod
	closed atomic.Bool

	// lumberjack 自动轮转不通知调用方，累计写入量达到 maxSizeBytes 时重新检查权限
	modeApplied  atomic.Bool
	maxSizeBytes int64
	bytesWritten atomic.Int64
}

// NewLumberjack 创建基于 lumberjack 的按大小轮转器
//
// 会规范化 filename 并创建缺失的父目录（0750）。
func NewLumberjack(filename string, opts ...Option) (Rotator, error) {
	if filename == "" {
		return nil, ErrEmptyFilename
	}

	cfg := lumberjackConfig{
		maxSizeMB:  DefaultMaxSizeMB,
		maxBackups: DefaultMaxBackups,
		maxAgeDays: DefaultMaxAgeDays,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	safePath, err := xfile.SanitizePath(filename)
	if err != nil {
		return nil, err
	}
	if err := xfile.EnsureDir(safePath); err != nil {
		return nil, err
	}

	return &lumberjackRotator{
		logger: &lumberjack.Logger{
			Filename:   safePath,
			MaxSize:    cfg.maxSizeMB,
			MaxBackups: cfg.maxBackups,
			MaxAge:     cfg.maxAgeDays,
			LocalTime:  cfg.localTime,
		},
		path:         safePath,
		fileMode:     cfg.fileMode,
		onError:      cfg.onError,
		maxSizeBytes: int64(cfg.maxSizeMB) * 1024 * 1024,
	}, nil
}

func (c *lumberjackConfig) validate() error {
	if c.maxSizeMB <= 0 || c.maxSizeMB > maxSizeMB {
		return fmt.Errorf("%w: got %d, want 1~%d", ErrInvalidMaxSize, c.maxSizeMB, maxSizeMB)
	}
	if c.maxBackups < 0 || c.maxBackups > maxBackups {
		return fmt.Errorf("%w: got %d, want 0~%d", ErrInvalidMaxBackups, c.maxBackups, maxBackups)
	}
	if c.maxAgeDays < 0 || c.maxAgeDays > maxAgeDays {
		return fmt.Errorf("%w: got %d, want 0~%d", ErrInvalidMaxAge, c.maxAgeDays, maxAgeDays)
	}
	if c.maxBackups == 0 && c.maxAgeDays == 0 {
		return fmt.Errorf("%w: MaxBackups and MaxAgeDays cannot both be 0", ErrNoCleanupPolicy)
	}
	if c.fileMode&^os.FileMode(0o777) != 0 {
		return fmt.Errorf("%w: got %04o, only permission bits allowed", ErrInvalidFileMode, c.fileMode)
	}
	return nil
}

// Write 实现 io.Writer
func (r *lumberjackRotator) Write(p []byte) (int, error) {
	if r.closed.Load() {
		return 0, ErrClosed
	}

	n, err := r.logger.Write(p)
	if err != nil {
		// Close 可能在 logger.Write 期间完成，此时统一返回 ErrClosed
		if r.closed.Load() {
			return n, ErrClosed
		}
		return n, err
	}

	if r.fileMode != 0 {
		needCheck := !r.modeApplied.Load()
		if !needCheck && r.bytesWritten.Add(int64(n)) >= r.maxSizeBytes {
			needCheck = true
		}
		if needCheck {
			r.reportError(r.applyFileMode())
		}
	}
	return n, nil
}

// Close 实现 io.Closer，重复调用返回 ErrClosed
func (r *lumberjackRotator) Close() error {
	if r.closed.Swap(true) {
		return ErrClosed
	}
	return r.logger.Close()
}

// Rotate 立即轮转
func (r *lumberjackRotator) Rotate() error {
	if r.closed.Load() {
		return ErrClosed
	}
	if err := r.logger.Rotate(); err != nil {
		if r.closed.Load() {
			return ErrClosed
		}
		return err
	}
	if r.fileMode != 0 {
		r.modeApplied.Store(false)
		r.reportError(r.applyFileMode())
	}
	return nil
}

func (r *lumberjackRotator) applyFileMode() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, err := os.Stat(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Mode().Perm() != r.fileMode {
		//#nosec G302 -- 权限由调用方配置
		if err := os.Chmod(r.path, r.fileMode); err != nil {
			return err
		}
	}
	r.modeApplied.Store(true)
	r.bytesWritten.Store(0)
	return nil
}

// reportError 通过回调上报内部错误，回调 panic 被隔离
func (r *lumberjackRotator) reportError(err error) {
	if err == nil || r.onError == nil {
		return
	}
	defer func() { recover() }() //nolint:errcheck // recover 返回值无需检查
	r.onError(err)
}
