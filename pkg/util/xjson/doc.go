// Package xjson 提供面向人读的 JSON 输出。
//
//   - [PrettyE]: 两空格缩进的 JSON，失败时返回 [ErrMarshal] 包装的错误。
//   - [Pretty]: 便捷版本，失败时返回 "<marshal error: ...>" 标记字符串，
//     用于诊断日志等不关心错误的场景。
//
// 遵循 encoding/json 的默认行为，实现了 encoding.TextMarshaler 的类型
// （如日志级别）按文本输出。
package xjson
