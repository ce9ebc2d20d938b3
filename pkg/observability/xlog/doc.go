// Package xlog 基于 log/slog 的诊断日志库。
//
// xlog 用于组件自身的运行诊断（CLI 输出、内部错误通知），
// 与按时间/大小切换文件的业务日志 xroll 相互独立。
//
// # 创建 Logger
//
// 使用 Builder 模式，first-error-wins：第一个配置错误之后的 Set 调用被跳过，
// 错误在 Build 时返回。
//
//	logger, cleanup, err := xlog.New().
//		SetLevel(xlog.LevelDebug).
//		SetFormat("json").
//		SetRotation("/var/log/app/diag.log").
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
// # 日志级别
//
// LevelDebug(-4)、LevelInfo(0)、LevelWarn(4)、LevelError(8)，与 slog 一致，
// 可通过 [ParseLevel] 从字符串解析，支持运行时 SetLevel。
//
// # 内部错误
//
// Handler 写入失败不会向调用方返回错误，而是计入 ErrorCount 并调用 SetOnError
// 注册的回调。回调 panic 被隔离，回调内再次触发的日志错误不会递归。
package xlog
