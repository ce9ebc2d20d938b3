package xroll

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

const (
	// isoLayout UTC 毫秒精度的 ISO8601
	isoLayout = "2006-01-02T15:04:05.000Z"

	// LogExt epoch 文件扩展名
	LogExt = ".log"
)

var fileNameReplacer = strings.NewReplacer(":", "-", ".", "-")

// FormatTimestamp 日志行与文件名使用的 ISO8601 时间（UTC，毫秒）
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// FileName 生成 epoch 文件名：prefix + 时间（":"、"." 替换为 "-"）+ ".log"
func FileName(prefix string, t time.Time) string {
	return prefix + fileNameReplacer.Replace(FormatTimestamp(t)) + LogExt
}

// ParseFileName 从文件名还原 epoch 起始时间（UTC，毫秒精度）。
// name 只取文件名部分，不含目录。
func ParseFileName(prefix, name string) (time.Time, error) {
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, LogExt) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}
	stamp := name[len(prefix) : len(name)-len(LogExt)]
	if len(stamp) != len(isoLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}

	// 只还原时间部分的分隔符，日期部分的 "-" 保持不变
	b := []byte(stamp)
	for i, want := range map[int]byte{13: ':', 16: ':', 19: '.'} {
		if b[i] != '-' {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFileName, name)
		}
		b[i] = want
	}

	t, err := time.Parse(isoLayout, string(b))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", ErrInvalidFileName, name, err)
	}
	return t, nil
}

// Epoch 一个滚动周期的日志文件
type Epoch struct {
	Name  string
	Path  string
	Start time.Time
	Size  int64
}

// ListEpochs 列出 dir 下以 prefix 命名的 epoch 文件，按起始时间升序。
// 名称不符合格式的文件被忽略。
func ListEpochs(dir, prefix string) ([]Epoch, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var epochs []Epoch
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		start, err := ParseFileName(prefix, entry.Name())
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// 列目录与 stat 之间文件被删除
			continue
		}
		epochs = append(epochs, Epoch{
			Name:  entry.Name(),
			Path:  filepath.Join(dir, entry.Name()),
			Start: start,
			Size:  info.Size(),
		})
	}

	slices.SortFunc(epochs, func(a, b Epoch) int {
		return a.Start.Compare(b.Start)
	})
	return epochs, nil
}
