// Package xrotate 提供按大小轮转的日志文件写入器。
//
// [Rotator] 是 io.WriteCloser 的超集，额外提供 Rotate 手动轮转。
// 当前实现 [NewLumberjack] 基于 lumberjack v2，用于诊断日志等只需按大小轮转、
// 文件名固定的场景；按时间或大小切换到带时间戳新文件的业务日志见 xroll。
//
// 备份文件不压缩。lumberjack 默认以 0600 创建文件，需要其他权限时使用 [WithFileMode]。
package xrotate
