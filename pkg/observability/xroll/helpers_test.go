package xroll

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

// fakeClock 手动推进的时钟
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeInfo 只有 Size 有意义的 os.FileInfo
type fakeInfo struct {
	os.FileInfo
	size int64
}

func (fi fakeInfo) Size() int64 { return fi.size }

func testConfig(dir string) Config {
	return Config{
		Level:      LevelDebug,
		FilePrefix: "app-",
		Dir:        dir,
		Rolling:    RollingConfig{SizeThreshold: 1 << 20, TimeThreshold: 3600},
	}
}

// newTestLogger 创建 Logger，测试结束时关闭
func newTestLogger(t *testing.T, cfg Config, opts ...Option) *Logger {
	t.Helper()
	l, err := WithConfig(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close(context.Background()) })
	return l
}

func mustInit(t *testing.T, l *Logger) {
	t.Helper()
	require.NoError(t, l.Init(context.Background()))
}

func mustFlush(t *testing.T, l *Logger) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, l.Flush(ctx))
}

// readEpochLines 按 epoch 顺序返回每个文件的行
func readEpochLines(t *testing.T, dir, prefix string) [][]string {
	t.Helper()
	epochs, err := ListEpochs(dir, prefix)
	require.NoError(t, err)

	out := make([][]string, 0, len(epochs))
	for _, e := range epochs {
		data, err := os.ReadFile(e.Path)
		require.NoError(t, err)
		var lines []string
		for _, line := range strings.SplitAfter(string(data), "\n") {
			if line != "" {
				lines = append(lines, line)
			}
		}
		out = append(out, lines)
	}
	return out
}

// emit 固定调用位置，使每行长度只取决于消息
func emit(l *Logger, msg string) {
	l.Info(msg)
}
