package xfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDirPerm 默认目录权限（所有者 rwx，组 r-x，其他无权限）
const DefaultDirPerm = 0750

// EnsureDirectory 确保目录 dir 存在，返回其规范化后的绝对路径
//
// 目录不存在时以 [DefaultDirPerm] 逐级创建；已存在时不修改权限。
// dir 已存在但不是目录时返回 [ErrNotDirectory]。
func EnsureDirectory(dir string) (string, error) {
	return EnsureDirectoryWithPerm(dir, DefaultDirPerm)
}

// EnsureDirectoryWithPerm 与 [EnsureDirectory] 相同，使用指定权限创建目录
func EnsureDirectoryWithPerm(dir string, perm os.FileMode) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("directory is required: %w", ErrEmptyPath)
	}
	if containsNullByte(dir) {
		return "", fmt.Errorf("directory contains null byte: %w", ErrNullByte)
	}
	if perm&0100 == 0 {
		return "", fmt.Errorf("directory permission %04o missing owner execute bit: %w", perm, ErrInvalidPerm)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve directory %q: %w", dir, err)
	}

	if info, err := os.Stat(abs); err == nil {
		if !info.IsDir() {
			return "", fmt.Errorf("%s: %w", abs, ErrNotDirectory)
		}
		return abs, nil
	}

	if err := os.MkdirAll(abs, perm); err != nil {
		return "", fmt.Errorf("create directory %s: %w", abs, err)
	}
	return abs, nil
}

// EnsureDir 确保文件的父目录存在，使用默认权限 0750
//
// filename 是文件路径而不是目录路径。父目录为当前目录时直接返回。
func EnsureDir(filename string) error {
	return EnsureDirWithPerm(filename, DefaultDirPerm)
}

// EnsureDirWithPerm 确保文件的父目录存在，使用指定权限
//
// perm 必须包含所有者执行位（0100），否则目录无法遍历。
// 本函数不拒绝 ".." 路径段，不可信输入应先经 [SanitizePath] 或 [SafeJoin] 校验。
func EnsureDirWithPerm(filename string, perm os.FileMode) error {
	if filename == "" {
		return fmt.Errorf("filename is required: %w", ErrEmptyPath)
	}
	if containsNullByte(filename) {
		return fmt.Errorf("filename contains null byte: %w", ErrNullByte)
	}
	if perm&0100 == 0 {
		return fmt.Errorf("directory permission %04o missing owner execute bit: %w", perm, ErrInvalidPerm)
	}
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, perm)
}
