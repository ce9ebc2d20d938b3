// Package xcaller 提供调用点（caller site）捕获工具。
//
// [Site] 返回 "dir/file.go:line" 形式的短标识，用于嵌入日志行。
// 文件路径只保留最后两段，与 log.Lshortfile 相比多保留一层目录，
// 同名文件分布在不同包时仍可区分。
//
// skip 语义与 runtime.Caller 一致：0 表示调用 Site 的函数本身，
// 1 表示它的调用方，依此类推。封装层每多一层函数调用就需要 skip+1。
//
// 调用栈不可用时返回 [Unknown]，不会返回错误。
package xcaller
