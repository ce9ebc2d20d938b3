// Package xroll 提供按级别过滤、写入本地文件、按时间或大小自动滚动的日志器。
//
// # 文件布局
//
// 每个滚动周期（epoch）对应一个文件，文件名为：
//
//	<prefix><ISO8601 时间，":" 与 "." 替换为 "-">.log
//
// 例如 app-2024-05-01T08-30-00-123Z.log。每行格式：
//
//	[<ISO8601 时间>] [<LEVEL>]: <file:line> <message>
//
// # 生命周期
//
// WithDefaults / WithConfig 只校验配置，不做 I/O。Init 创建目录并打开第一个文件，
// 启动后台写入协程。Debug/Info/Warn/Error/Critical 不返回错误，也不会 panic：
// 级别不足或尚无可用文件时静默丢弃。Close 刷盘并关闭文件，之后的调用均为空操作。
//
// # 并发模型
//
// 每个 Logger 一个有界队列和一个写入协程，写入、stat、滚动判断在同一把锁内串行完成，
// Init/Close 也持有这把锁，因此任一时刻最多只有一个打开的文件。队列满时调用方阻塞。
// 写入失败后文件句柄被丢弃，此后出队的日志计入 DroppedCount，直到再次 Init。
//
// # 错误旁路
//
// 写入、stat、关闭、滚动时打开文件的失败不会返回给调用方，而是通过 WithOnError
// 回调（或 WithErrorLogger）上报，并计入 ErrorCount。
//
// # 用法
//
//	logger, err := xroll.WithConfig(cfg)
//	if err != nil {
//	    return err
//	}
//	if err := logger.Init(ctx); err != nil {
//	    return err
//	}
//	defer logger.Close(context.Background())
//
//	logger.Warn("disk usage above 90%")
package xroll
