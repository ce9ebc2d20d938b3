// Package xfile 提供日志目录和文件路径相关的工具函数。
//
// # 目录
//
//   - [EnsureDirectory]: 确保目录存在并返回其绝对路径（日志根目录使用）
//   - [EnsureDir]、[EnsureDirWithPerm]: 确保文件的父目录存在
//
// 目录默认以 [DefaultDirPerm]（0750）创建，已存在的目录不会被修改权限。
//
// # 路径
//
//   - [SanitizePath]: 格式净化，拒绝空路径、空字节、相对路径穿越和目录路径
//   - [SafeJoin]: 将相对路径拼接到基准目录，保证结果不逃逸出基准目录
//
// 穿越检测按路径段精确匹配，".." 只有作为独立路径段时才会被拒绝，
// "app..2024.log" 这类文件名是合法的。
//
// 本包只处理路径字符串，不解析符号链接，检查与实际文件操作之间存在 TOCTOU 窗口。
//
// # 错误处理
//
// 预定义错误变量支持 [errors.Is] 判断：
//
//	_, err := xfile.SafeJoin("/var/log", "../etc/passwd")
//	if errors.Is(err, xfile.ErrPathTraversal) {
//	    // 处理路径穿越
//	}
package xfile
