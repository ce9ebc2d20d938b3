package xroll

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xroll/pkg/observability/xlog"
)

var lineRe = regexp.MustCompile(`^\[\d{4}-\d\d-\d\dT\d\d:\d\d:\d\d\.\d{3}Z\] \[(DEBUG|INFO|WARN|ERROR|CRITICAL)\]: \S+:\d+ .*\n$`)

func TestWithConfig_Invalid(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Rolling.SizeThreshold = -1

	l, err := WithConfig(cfg)
	assert.Nil(t, l)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestWithDefaults(t *testing.T) {
	l := WithDefaults()
	t.Cleanup(func() { _ = l.Close(context.Background()) })

	assert.Equal(t, LevelInfo, l.Level())
	assert.Equal(t, "app-", l.FilePrefix())
	assert.Equal(t, "logs", l.Dir())
	assert.Equal(t, int64(10<<20), l.SizeThreshold())
	assert.Equal(t, int64(86400), l.TimeThreshold())
	assert.Equal(t, DefaultConfig(), l.Config())
	assert.Empty(t, l.ActivePath())
}

func TestWithConfig_NoIO(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "not-yet")
	l := newTestLogger(t, testConfig(dir))
	l.Info("before init")

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "构造与未 Init 的写入不创建目录")
	assert.Zero(t, l.DroppedCount())
}

func TestWithConfig_EmptyDirUsesDefault(t *testing.T) {
	cfg := testConfig("")
	l := newTestLogger(t, cfg)
	assert.Equal(t, DefaultDir, l.Dir())
}

// 配置 Warn、大小 100、时间 3600：debug("x") 后 warn("y") 只产生一个文件，
// 其中只有 y 的 WARN 行。
func TestLogger_WarnScenario(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Level:      LevelWarn,
		FilePrefix: "app-",
		Dir:        dir,
		Rolling:    RollingConfig{SizeThreshold: 100, TimeThreshold: 3600},
	}
	l := newTestLogger(t, cfg)
	mustInit(t, l)

	l.Debug("x")
	l.Warn("y")
	require.NoError(t, l.Close(context.Background()))

	files := readEpochLines(t, dir, "app-")
	require.Len(t, files, 1)
	require.Len(t, files[0], 1)
	assert.Regexp(t, lineRe, files[0][0])
	assert.Contains(t, files[0][0], "] [WARN]: ")
	assert.True(t, strings.HasSuffix(files[0][0], " y\n"))
}

func TestLogger_LineFormat(t *testing.T) {
	dir := t.TempDir()
	clock := newFakeClock(time.Date(2024, 5, 1, 8, 30, 0, 123_000_000, time.UTC))
	l := newTestLogger(t, testConfig(dir), WithClock(clock))
	mustInit(t, l)

	_, _, line, _ := runtime.Caller(0)
	l.Info("hello world")
	mustFlush(t, l)

	files := readEpochLines(t, dir, "app-")
	require.Len(t, files, 1)
	want := fmt.Sprintf("[2024-05-01T08:30:00.123Z] [INFO]: xroll/logger_test.go:%d hello world\n", line+1)
	assert.Equal(t, []string{want}, files[0])
	assert.Equal(t, filepath.Join(dir, "app-2024-05-01T08-30-00-123Z.log"), l.ActivePath())
}

func TestLogger_LevelFilter(t *testing.T) {
	levels := []Level{LevelDebug, LevelInfo, LevelWarn, LevelError, LevelCritical}
	for _, minLevel := range levels {
		t.Run(minLevel.String(), func(t *testing.T) {
			dir := t.TempDir()
			cfg := testConfig(dir)
			cfg.Level = minLevel
			l := newTestLogger(t, cfg)
			mustInit(t, l)

			l.Debug("d")
			l.Info("i")
			l.Warn("w")
			l.Error("e")
			l.Critical("c")
			l.Log(Level(99), "ignored")
			mustFlush(t, l)

			files := readEpochLines(t, dir, "app-")
			require.Len(t, files, 1)
			require.Len(t, files[0], len(levels)-int(minLevel))
			for i, line := range files[0] {
				assert.Contains(t, line, "["+levels[int(minLevel)+i].String()+"]")
			}
		})
	}
}

func TestLogger_Formatted(t *testing.T) {
	dir := t.TempDir()
	l := newTestLogger(t, testConfig(dir))
	mustInit(t, l)

	l.Debugf("a=%d", 1)
	l.Infof("b=%s", "x")
	l.Warnf("c=%v", true)
	l.Errorf("d=%.1f", 1.5)
	l.Criticalf("e=%q", "q")
	mustFlush(t, l)

	files := readEpochLines(t, dir, "app-")
	require.Len(t, files, 1)
	require.Len(t, files[0], 5)
	for i, suffix := range []string{" a=1\n", " b=x\n", " c=true\n", " d=1.5\n", " e=\"q\"\n"} {
		assert.True(t, strings.HasSuffix(files[0][i], suffix), files[0][i])
		assert.Contains(t, files[0][i], "logger_test.go:")
	}
}

func TestLogger_CallerSkip(t *testing.T) {
	dir := t.TempDir()
	l := newTestLogger(t, testConfig(dir), WithCallerSkip(1))
	mustInit(t, l)

	wrapper := func(msg string) { l.Warn(msg) }
	_, _, line, _ := runtime.Caller(0)
	wrapper("via wrapper")
	mustFlush(t, l)

	files := readEpochLines(t, dir, "app-")
	require.Len(t, files, 1)
	assert.Contains(t, files[0][0], fmt.Sprintf("logger_test.go:%d via wrapper", line+1))
}

func TestLogger_InitTwice(t *testing.T) {
	dir := t.TempDir()
	clock := newFakeClock(testEpoch)
	l := newTestLogger(t, testConfig(dir), WithClock(clock))

	mustInit(t, l)
	first := l.ActivePath()
	mustInit(t, l)
	second := l.ActivePath()
	mustInit(t, l)
	third := l.ActivePath()

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, second, third)

	epochs, err := ListEpochs(dir, "app-")
	require.NoError(t, err)
	require.Len(t, epochs, 3)
	// 时钟不动时按毫秒递增
	for i, e := range epochs {
		assert.True(t, e.Start.Equal(testEpoch.Add(time.Duration(i)*time.Millisecond)))
	}
	assert.Equal(t, third, epochs[2].Path)
}

func TestLogger_InitClockSkew(t *testing.T) {
	dir := t.TempDir()
	clock := newFakeClock(testEpoch)
	l := newTestLogger(t, testConfig(dir), WithClock(clock))
	mustInit(t, l)

	clock.Advance(-time.Hour)
	emit(l, "after skew")
	mustFlush(t, l)
	mustInit(t, l)

	epochs, err := ListEpochs(dir, "app-")
	require.NoError(t, err)
	require.Len(t, epochs, 2, "回拨不触发时间滚动")
	assert.True(t, epochs[1].Start.After(epochs[0].Start), "回拨后文件名仍递增")
}

func TestLogger_SizeRollover(t *testing.T) {
	// 先测出一行的长度
	probeDir := t.TempDir()
	probe := newTestLogger(t, testConfig(probeDir))
	mustInit(t, probe)
	emit(probe, "msg-00")
	require.NoError(t, probe.Close(context.Background()))
	lineLen := int64(len(readEpochLines(t, probeDir, "app-")[0][0]))

	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.Rolling.SizeThreshold = 2*lineLen + lineLen/2
	l := newTestLogger(t, cfg)
	mustInit(t, l)

	for i := range 5 {
		emit(l, fmt.Sprintf("msg-%02d", i))
	}
	mustFlush(t, l)

	files := readEpochLines(t, dir, "app-")
	require.Len(t, files, 2, "第 3 行越过阈值，恰好滚动一次")
	assert.Len(t, files[0], 3)
	assert.Len(t, files[1], 2)
	assert.True(t, strings.HasSuffix(files[1][0], " msg-03\n"))
}

func TestLogger_TimeRollover(t *testing.T) {
	dir := t.TempDir()
	clock := newFakeClock(testEpoch)
	cfg := testConfig(dir)
	cfg.Rolling.TimeThreshold = 60
	l := newTestLogger(t, cfg, WithClock(clock))
	mustInit(t, l)

	emit(l, "a")
	mustFlush(t, l)
	clock.Advance(59 * time.Second)
	emit(l, "b")
	mustFlush(t, l)
	clock.Advance(2 * time.Second)
	emit(l, "c")
	mustFlush(t, l)
	emit(l, "d")
	mustFlush(t, l)

	epochs, err := ListEpochs(dir, "app-")
	require.NoError(t, err)
	require.Len(t, epochs, 2)
	assert.True(t, epochs[1].Start.Equal(testEpoch.Add(61*time.Second)))

	files := readEpochLines(t, dir, "app-")
	assert.Len(t, files[0], 3, "越过阈值的那次写入仍落在旧文件")
	require.Len(t, files[1], 1)
	assert.True(t, strings.HasSuffix(files[1][0], " d\n"))
}

func TestLogger_ZeroThresholds(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.Rolling = RollingConfig{}
	l := newTestLogger(t, cfg)
	mustInit(t, l)

	for i := range 3 {
		emit(l, fmt.Sprintf("n%d", i))
	}
	mustFlush(t, l)

	files := readEpochLines(t, dir, "app-")
	require.Len(t, files, 4, "每次写入后都滚动")
	for i := range 3 {
		assert.Len(t, files[i], 1)
	}
	assert.Empty(t, files[3])
}

func TestLogger_InitCreateDirError(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	l := newTestLogger(t, testConfig(blocker))
	err := l.Init(context.Background())
	require.ErrorIs(t, err, ErrCreateDir)
	assert.Empty(t, l.ActivePath())
	assert.False(t, l.Enabled(LevelCritical))

	// 失败后写入是空操作
	l.Critical("lost")
	require.NoError(t, l.Flush(context.Background()))
	assert.Zero(t, l.DroppedCount())
}

func TestLogger_Close(t *testing.T) {
	dir := t.TempDir()
	l := newTestLogger(t, testConfig(dir))
	mustInit(t, l)

	emit(l, "kept")
	require.NoError(t, l.Close(context.Background()))
	require.NoError(t, l.Close(context.Background()), "重复 Close 返回 nil")

	emit(l, "after close")
	assert.False(t, l.Enabled(LevelCritical))
	assert.Empty(t, l.ActivePath())
	assert.ErrorIs(t, l.Init(context.Background()), ErrClosed)
	assert.NoError(t, l.Flush(context.Background()))

	files := readEpochLines(t, dir, "app-")
	require.Len(t, files, 1)
	require.Len(t, files[0], 1)
	assert.Contains(t, files[0][0], "kept")
}

func TestLogger_CloseBeforeInit(t *testing.T) {
	l := newTestLogger(t, testConfig(t.TempDir()))
	assert.NoError(t, l.Flush(context.Background()))
	assert.NoError(t, l.Close(context.Background()))
	assert.ErrorIs(t, l.Init(context.Background()), ErrClosed)
}

func TestLogger_EnqueueAfterStopIsCounted(t *testing.T) {
	l := newTestLogger(t, testConfig(t.TempDir()))
	mustInit(t, l)
	require.NoError(t, l.Close(context.Background()))

	// 写入协程已退出，队列有空位也不能再入队
	const n = 1000
	for range n {
		l.enqueue([]byte("late\n"))
	}
	assert.Equal(t, uint64(n), l.DroppedCount())
	assert.Empty(t, l.queue)
}

func TestLogger_CloseRacingWriters(t *testing.T) {
	const workers = 8
	dir := t.TempDir()
	l := newTestLogger(t, testConfig(dir), WithQueueSize(2))
	mustInit(t, l)

	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
	)
	started.Add(workers)
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			for i := 0; ; i++ {
				l.enqueue([]byte(fmt.Sprintf("w%d-%d\n", w, i)))
				if l.closed.Load() {
					// 再提交一次，覆盖 closed 之后仍在途的入队
					l.enqueue([]byte("tail\n"))
					return
				}
			}
		}()
	}
	started.Wait()
	require.NoError(t, l.Close(context.Background()))
	wg.Wait()

	assert.Empty(t, l.queue, "Close 之后队列中不能残留未计数的日志")

	var written int
	for _, lines := range readEpochLines(t, dir, "app-") {
		written += len(lines)
	}
	assert.Positive(t, written+int(l.DroppedCount()))
}

func TestLogger_Concurrent(t *testing.T) {
	const (
		workers = 8
		perWork = 100
	)
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.Rolling.SizeThreshold = 512
	l := newTestLogger(t, cfg, WithQueueSize(4))
	mustInit(t, l)

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWork {
				l.Infof("worker=%d seq=%d", w, i)
			}
		}()
	}
	wg.Wait()
	require.NoError(t, l.Close(context.Background()))

	files := readEpochLines(t, dir, "app-")
	total := 0
	lastSeq := make(map[string]int)
	for i, lines := range files {
		if i < len(files)-1 {
			size := 0
			for _, line := range lines {
				size += len(line)
			}
			assert.GreaterOrEqual(t, size, 512, "已滚动的文件达到阈值")
		}
		for _, line := range lines {
			require.Regexp(t, lineRe, line)
			var w, seq int
			idx := strings.Index(line, "worker=")
			require.GreaterOrEqual(t, idx, 0)
			_, err := fmt.Sscanf(line[idx:], "worker=%d seq=%d", &w, &seq)
			require.NoError(t, err)
			key := fmt.Sprint(w)
			if prev, ok := lastSeq[key]; ok {
				assert.Greater(t, seq, prev, "同一协程的日志按提交顺序写入")
			}
			lastSeq[key] = seq
			total++
		}
	}
	assert.Equal(t, workers*perWork, total)
	assert.Zero(t, l.DroppedCount())
	assert.Zero(t, l.ErrorCount())
}

func TestLogger_WithErrorLogger(t *testing.T) {
	var buf bytes.Buffer
	diag, cleanup, err := xlog.New().SetOutput(&buf).Build()
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	l := newTestLogger(t, testConfig(t.TempDir()), WithErrorLogger(diag))
	l.report(opError{op: opStat, err: ErrStatFile})

	assert.Contains(t, buf.String(), "internal error")
	assert.Contains(t, buf.String(), "component=xroll")
	assert.Contains(t, buf.String(), ErrStatFile.Error())
	assert.Equal(t, uint64(1), l.ErrorCount())
}

func TestLogger_OnErrorPanicIsolated(t *testing.T) {
	l := newTestLogger(t, testConfig(t.TempDir()), WithOnError(func(error) { panic("boom") }))

	assert.NotPanics(t, func() { l.report(opError{op: opWrite, err: ErrWriteFile}) })
	assert.Equal(t, uint64(2), l.ErrorCount())
	assert.False(t, l.inErrorHandler.Load())
}

func TestLogger_OnErrorNoReentry(t *testing.T) {
	var calls int
	var l *Logger
	l = newTestLogger(t, testConfig(t.TempDir()), WithOnError(func(error) {
		calls++
		l.report(opError{op: opClose, err: ErrCloseFile})
	}))

	l.report(opError{op: opWrite, err: ErrWriteFile})
	assert.Equal(t, 1, calls)
	assert.Equal(t, uint64(2), l.ErrorCount())
}

func TestOptions_IgnoreInvalid(t *testing.T) {
	o := defaultOptions()
	for _, opt := range []Option{
		WithClock(nil),
		WithQueueSize(0),
		WithOpenRetry(0, time.Second),
		WithFileMode(0),
		WithCallerSkip(-1),
		WithErrorLogger(nil),
		withOpener(nil),
	} {
		opt(o)
	}
	assert.Equal(t, defaultOptions(), o)

	WithOpenRetry(3, 0)(o)
	assert.Equal(t, uint(3), o.openAttempts)
	assert.Zero(t, o.openDelay)
}

func TestFormatLine(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 600_000_000, time.FixedZone("X", 3600))
	got := formatLine(ts, LevelCritical, "pkg/file.go:42", "multi\nline")
	assert.Equal(t, "[2024-01-02T02:04:05.600Z] [CRITICAL]: pkg/file.go:42 multi\nline\n", string(got))
}
