package xcaller

import (
	"runtime"
	"strconv"
	"strings"
)

// Unknown 调用点不可用时的占位符
const Unknown = "???:0"

// Site 返回调用栈上第 skip 层调用方的 "file:line"
//
//go:noinline
func Site(skip int) string {
	// +1 跳过 Site 自身
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Unknown
	}
	return ShortFile(file) + ":" + strconv.Itoa(line)
}

// Func 返回调用栈上第 skip 层调用方的函数名（不含包路径前缀的目录部分）
//
//go:noinline
func Func(skip int) string {
	pc, _, _, ok := runtime.Caller(skip + 1)
	if !ok {
		return "???"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "???"
	}
	name := fn.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// ShortFile 保留路径的最后两段（"dir/file.go"），统一使用 '/' 分隔
func ShortFile(file string) string {
	if file == "" {
		return "???"
	}
	file = strings.ReplaceAll(file, "\\", "/")
	last := strings.LastIndexByte(file, '/')
	if last < 0 {
		return file
	}
	prev := strings.LastIndexByte(file[:last], '/')
	return file[prev+1:]
}
