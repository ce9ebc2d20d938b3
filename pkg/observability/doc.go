// Package observability 提供日志相关的子包。
//
// 子包列表：
//   - xroll: 分级文件日志，按时间或大小切换 epoch 文件
//   - xlog: 结构化诊断日志，基于 log/slog 扩展
//   - xrotate: 诊断日志文件轮转（lumberjack）
//
// 设计原则：
//   - 库代码的内部错误通过回调上报，不写入自身
//   - 指标基于 OpenTelemetry metric API
package observability
