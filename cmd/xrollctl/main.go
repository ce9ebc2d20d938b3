// xrollctl 是 xroll 滚动日志的命令行工具。
//
// 用法:
//
//	xrollctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config      配置文件（JSON/YAML），缺省使用默认配置
//	-d, --dir         日志目录，覆盖配置
//	-p, --prefix      文件名前缀，覆盖配置
//	-l, --level       最低级别，覆盖配置
//	    --diag-file   诊断日志文件（按大小轮转），缺省输出到 stderr
//	    --diag-level  诊断日志级别 (默认: warn)
//
// 命令:
//
//	emit <msg...>     按配置写入日志并滚动
//	files             列出 epoch 文件
//	tail              输出最新 epoch 文件，--follow 持续跟随滚动
//	check             校验配置文件并输出生效配置
//
// 退出码:
//
//	0: 成功
//	1: 运行时错误
//	2: 参数或配置错误
//
// 示例:
//
//	xrollctl -c config.json emit --count 100 "hello"
//	xrollctl -d logs -p app- files
//	xrollctl -d logs tail --follow
//	xrollctl -c config.json check
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入）
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupSignalHandler(cancel)

	return execute(ctx, os.Args, os.Stdout, os.Stderr)
}

// execute 运行 CLI 并映射退出码
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := createApp(stdout, stderr)

	if err := app.Run(ctx, args); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		// 未知命令等由 cli 产生的错误已在 ExitErrHandler 中输出
		var coder cli.ExitCoder
		if errors.As(err, &coder) {
			return 2
		}
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}

// createApp 创建 CLI 应用
func createApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "xrollctl",
		Usage:     "xroll 滚动日志命令行工具",
		Version:   fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径（.json/.yaml/.yml）",
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "日志目录，覆盖配置",
			},
			&cli.StringFlag{
				Name:    "prefix",
				Aliases: []string{"p"},
				Usage:   "文件名前缀，覆盖配置",
			},
			&cli.StringFlag{
				Name:    "level",
				Aliases: []string{"l"},
				Usage:   "最低级别 (debug/info/warn/error/critical)，覆盖配置",
			},
			&cli.StringFlag{
				Name:  "diag-file",
				Usage: "诊断日志文件，缺省输出到 stderr",
			},
			&cli.StringFlag{
				Name:  "diag-level",
				Usage: "诊断日志级别 (debug/info/warn/error)",
				Value: "warn",
			},
		},
		Commands: createCommands(),
		OnUsageError: func(_ context.Context, _ *cli.Command, err error, _ bool) error {
			return &usageError{err: err}
		},
		// 由 execute 统一映射退出码，不让 cli 直接调用 os.Exit
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(stderr, err)
			}
		},
	}
}

// setupSignalHandler 第一次信号取消 ctx，第二次强制退出（130 = 128 + SIGINT）
func setupSignalHandler(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()

		<-sigCh
		signal.Stop(sigCh)
		os.Exit(130)
	}()
}
