// Package xconf 提供基于 koanf 的配置加载功能。
//
// xconf 只负责把文件或字节数据解析为 koanf 实例并反序列化到结构体，
// 不负责必选字段校验和默认值注入，这些由使用方（如 xroll.LoadConfig）完成。
//
// # 支持的格式
//
//   - JSON：.json
//   - YAML：.yaml, .yml
//
// # 反序列化
//
// Unmarshal 使用 mapstructure，默认允许弱类型转换（字符串 "100" 可转为 int 100），
// 结构体标签默认为 "koanf"。
//
// # 键存在性
//
// 需要区分“缺失”与“零值”时，通过 [Config.Has] 判断键是否出现在配置中。
package xconf
