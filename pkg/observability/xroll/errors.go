package xroll

import "errors"

// 配置错误
var (
	// ErrInvalidConfig 配置非法，所有配置错误都包装它
	ErrInvalidConfig = errors.New("xroll: invalid config")

	// ErrInvalidLevel 未知的日志级别
	ErrInvalidLevel = errors.New("xroll: invalid level")

	// ErrEmptyPrefix 文件前缀为空
	ErrEmptyPrefix = errors.New("xroll: empty file prefix")

	// ErrInvalidPrefix 文件前缀包含路径分隔符或 NUL
	ErrInvalidPrefix = errors.New("xroll: invalid file prefix")

	// ErrInvalidThreshold 滚动阈值为负数
	ErrInvalidThreshold = errors.New("xroll: invalid rolling threshold")

	// ErrMissingField 配置文件缺少必填字段
	ErrMissingField = errors.New("xroll: missing config field")
)

// I/O 错误
var (
	ErrCreateDir = errors.New("xroll: create directory failed")
	ErrOpenFile  = errors.New("xroll: open file failed")
	ErrWriteFile = errors.New("xroll: write file failed")
	ErrStatFile  = errors.New("xroll: stat file failed")
	ErrCloseFile = errors.New("xroll: close file failed")
)

var (
	// ErrClosed Logger 已关闭
	ErrClosed = errors.New("xroll: logger closed")

	// ErrInvalidFileName 文件名不是本前缀生成的 epoch 文件名
	ErrInvalidFileName = errors.New("xroll: invalid epoch file name")
)
