package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xroll/pkg/config/xconf"
	"github.com/omeyang/xroll/pkg/observability/xlog"
	"github.com/omeyang/xroll/pkg/observability/xroll"
	"github.com/omeyang/xroll/pkg/observability/xrotate"
	"github.com/omeyang/xroll/pkg/util/xjson"
)

// exitError 命令已完成输出，只需设置退出码
type exitError struct {
	code int
}

func (e *exitError) Error() string { return "" }

// usageError 参数或配置错误，退出码 2
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// knownKeys 配置文件中可识别的键
var knownKeys = []string{
	"level",
	"file_prefix",
	"dir",
	"rolling_config.size_threshold",
	"rolling_config.time_threshold",
}

// 创建所有子命令
func createCommands() []*cli.Command {
	return []*cli.Command{
		createEmitCommand(),
		createFilesCommand(),
		createTailCommand(),
		createCheckCommand(),
	}
}

func createEmitCommand() *cli.Command {
	return &cli.Command{
		Name:      "emit",
		Aliases:   []string{"e"},
		Usage:     "按配置写入日志",
		ArgsUsage: "<message...>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "写入条数",
				Value:   1,
			},
			&cli.StringFlag{
				Name:  "as",
				Usage: "日志级别 (debug/info/warn/error/critical)",
				Value: "info",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "两条日志之间的间隔",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			msg := strings.Join(cmd.Args().Slice(), " ")
			if msg == "" {
				return usagef("emit 需要日志内容")
			}
			level, err := xroll.ParseLevel(cmd.String("as"))
			if err != nil {
				return &usageError{err: err}
			}
			count := cmd.Int("count")
			if count < 1 {
				return usagef("--count 必须大于 0: %d", count)
			}

			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			return cmdEmit(ctx, e, level, msg, count, cmd.Duration("interval"))
		},
	}
}

func createFilesCommand() *cli.Command {
	return &cli.Command{
		Name:    "files",
		Aliases: []string{"ls"},
		Usage:   "列出 epoch 文件",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			return cmdFiles(ctx, e)
		},
	}
}

func createTailCommand() *cli.Command {
	return &cli.Command{
		Name:  "tail",
		Usage: "输出最新 epoch 文件的末尾",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "lines",
				Aliases: []string{"n"},
				Usage:   "初始输出的行数，0 表示全部",
				Value:   10,
			},
			&cli.BoolFlag{
				Name:    "follow",
				Aliases: []string{"f"},
				Usage:   "持续输出新内容，滚动后切换到新文件",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			lines := cmd.Int("lines")
			if lines < 0 {
				return usagef("--lines 不能为负数: %d", lines)
			}
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			return cmdTail(ctx, e, lines, cmd.Bool("follow"))
		},
	}
}

func createCheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "校验配置文件并输出生效配置",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.String("config") == "" {
				return usagef("check 需要 --config")
			}
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			return cmdCheck(ctx, e, cmd.String("config"))
		},
	}
}

// env 命令运行环境：生效配置、诊断日志、输出
type env struct {
	cfg     xroll.Config
	diag    xlog.Logger
	cleanup func() error
	out     io.Writer
}

func newEnv(cmd *cli.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	root := cmd.Root()
	b := xlog.New().
		SetOutput(root.ErrWriter).
		SetLevelString(cmd.String("diag-level")).
		SetAttrs(xlog.Component("xrollctl"))
	if path := cmd.String("diag-file"); path != "" {
		b.SetRotation(path, xrotate.WithMaxSize(10), xrotate.WithMaxBackups(3))
	}
	diag, cleanup, err := b.Build()
	if err != nil {
		return nil, &usageError{err: err}
	}

	return &env{cfg: cfg, diag: diag, cleanup: cleanup, out: root.Writer}, nil
}

func (e *env) close() {
	if err := e.cleanup(); err != nil {
		fmt.Fprintf(os.Stderr, "关闭诊断日志失败: %v\n", err)
	}
}

// loadConfig 配置文件（可选）+ 命令行覆盖，结果经过校验
func loadConfig(cmd *cli.Command) (xroll.Config, error) {
	cfg := xroll.DefaultConfig()
	if path := cmd.String("config"); path != "" {
		loaded, err := xroll.LoadConfig(path)
		if err != nil {
			return xroll.Config{}, &usageError{err: err}
		}
		cfg = loaded
	}
	if cmd.IsSet("dir") {
		cfg.Dir = cmd.String("dir")
	}
	if cmd.IsSet("prefix") {
		cfg.FilePrefix = cmd.String("prefix")
	}
	if cmd.IsSet("level") {
		level, err := xroll.ParseLevel(cmd.String("level"))
		if err != nil {
			return xroll.Config{}, &usageError{err: err}
		}
		cfg.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return xroll.Config{}, &usageError{err: err}
	}
	return cfg, nil
}

// cmdEmit 写入 count 条日志，输出最后的活动文件
func cmdEmit(ctx context.Context, e *env, level xroll.Level, msg string, count int, interval time.Duration) error {
	logger, err := xroll.WithConfig(e.cfg, xroll.WithErrorLogger(e.diag))
	if err != nil {
		return &usageError{err: err}
	}
	if err := logger.Init(ctx); err != nil {
		return err
	}

	start := time.Now()
	submitted := 0
	for submitted < count && ctx.Err() == nil {
		logger.Log(level, msg)
		submitted++
		if interval > 0 && submitted < count {
			select {
			case <-time.After(interval):
			case <-ctx.Done():
			}
		}
	}

	flushErr := logger.Flush(context.WithoutCancel(ctx))
	active := logger.ActivePath()
	closeErr := logger.Close(context.WithoutCancel(ctx))

	e.diag.Info(ctx, "emit done",
		xlog.Count(int64(submitted)),
		xlog.Path(active),
		xlog.Duration(time.Since(start)),
	)
	fmt.Fprintf(e.out, "submitted=%d level=%s active=%s\n", submitted, level, active)

	if err := errors.Join(flushErr, closeErr); err != nil {
		return err
	}
	if n := logger.ErrorCount(); n > 0 {
		return fmt.Errorf("写入过程中出现 %d 个错误，丢弃 %d 条", n, logger.DroppedCount())
	}
	return nil
}

// cmdFiles 按起始时间列出 epoch 文件
func cmdFiles(_ context.Context, e *env) error {
	epochs, err := xroll.ListEpochs(e.cfg.Dir, e.cfg.FilePrefix)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "START\tSIZE\tNAME")
	for _, ep := range epochs {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", xroll.FormatTimestamp(ep.Start), ep.Size, ep.Name)
	}
	return tw.Flush()
}

// cmdCheck 输出生效配置，未识别的键给出警告
func cmdCheck(ctx context.Context, e *env, path string) error {
	src, err := xconf.New(path)
	if err != nil {
		return &usageError{err: err}
	}
	for _, key := range src.Client().Keys() {
		if !slices.Contains(knownKeys, key) {
			e.diag.Warn(ctx, "unknown config key", xlog.Path(path), xlog.Operation(key))
			fmt.Fprintf(e.out, "warning: unknown key %q\n", key)
		}
	}

	out, err := xjson.PrettyE(e.cfg)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, out)
	return nil
}

// cmdTail 输出最新 epoch 文件最后 lines 行，follow 时持续跟随
func cmdTail(ctx context.Context, e *env, lines int, follow bool) error {
	epochs, err := xroll.ListEpochs(e.cfg.Dir, e.cfg.FilePrefix)
	if err != nil {
		return err
	}
	if len(epochs) == 0 && !follow {
		fmt.Fprintf(e.out, "%s 下没有 %s 开头的日志文件\n", e.cfg.Dir, e.cfg.FilePrefix)
		return &exitError{code: 1}
	}

	var cur cursor
	if len(epochs) > 0 {
		last := epochs[len(epochs)-1]
		cur = cursor{path: last.Path, start: last.Start}
		if err := cur.printLast(e.out, lines); err != nil {
			return err
		}
	}
	if !follow {
		return nil
	}
	return followEpochs(ctx, e, cur)
}

// cursor 正在跟随的 epoch 文件与已输出的偏移
type cursor struct {
	path   string
	start  time.Time
	offset int64
}

// printLast 输出最后 n 行（n 为 0 输出全部），并把偏移移到文件末尾
func (c *cursor) printLast(w io.Writer, n int) error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return err
	}
	c.offset = int64(len(data))

	if n > 0 {
		trimmed := strings.TrimSuffix(string(data), "\n")
		all := strings.SplitAfter(trimmed, "\n")
		if len(all) > n {
			data = []byte(strings.Join(all[len(all)-n:], "") + "\n")
		}
	}
	_, err = w.Write(data)
	return err
}

// copyNew 输出上次偏移之后追加的内容
func (c *cursor) copyNew(w io.Writer) error {
	if c.path == "" {
		return nil
	}
	f, err := os.Open(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	if _, err := f.Seek(c.offset, io.SeekStart); err != nil {
		return err
	}
	n, err := io.Copy(w, f)
	c.offset += n
	return err
}

// followEpochs 监听目录：当前文件追加时输出新内容，出现更新的 epoch 文件时
// 先输出旧文件剩余部分再切换。ctx 取消时返回 nil。
func followEpochs(ctx context.Context, e *env, cur cursor) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir, err := filepath.Abs(e.cfg.Dir)
	if err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		return err
	}

	changed := make(chan string, 64)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(changed)
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
					continue
				}
				select {
				case changed <- ev.Name:
				case <-gctx.Done():
					return nil
				}
			case werr, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				e.diag.Warn(gctx, "watch error", xlog.Err(werr), xlog.Path(dir))
			}
		}
	})

	g.Go(func() error {
		for name := range changed {
			start, err := xroll.ParseFileName(e.cfg.FilePrefix, filepath.Base(name))
			if err != nil {
				continue
			}
			if filepath.Base(name) != filepath.Base(cur.path) {
				if cur.path != "" && !start.After(cur.start) {
					continue
				}
				if err := cur.copyNew(e.out); err != nil {
					return err
				}
				e.diag.Debug(gctx, "switch epoch", xlog.Path(name))
				cur = cursor{path: name, start: start}
			}
			if err := cur.copyNew(e.out); err != nil {
				return err
			}
		}
		return nil
	})

	return g.Wait()
}
