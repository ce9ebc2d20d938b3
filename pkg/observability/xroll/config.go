package xroll

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/omeyang/xroll/pkg/config/xconf"
)

// 默认配置
const (
	DefaultLevel         = LevelInfo
	DefaultFilePrefix    = "app-"
	DefaultDir           = "logs"
	DefaultSizeThreshold = 10 << 20 // 10 MiB
	DefaultTimeThreshold = 86400    // 1 天
)

// 配置文件中必须出现的键
var requiredKeys = []string{
	"level",
	"file_prefix",
	"rolling_config.size_threshold",
	"rolling_config.time_threshold",
}

// RollingConfig 滚动阈值，任一满足即滚动
type RollingConfig struct {
	// SizeThreshold 文件大小阈值（字节）
	SizeThreshold int64 `koanf:"size_threshold" json:"size_threshold"`
	// TimeThreshold 文件存活时间阈值（秒）
	TimeThreshold int64 `koanf:"time_threshold" json:"time_threshold"`
}

// Config Logger 配置，构造后只读
type Config struct {
	Level      Level  `koanf:"level" json:"level"`
	FilePrefix string `koanf:"file_prefix" json:"file_prefix"`
	// Dir 日志根目录，相对路径相对于进程工作目录，空值使用 DefaultDir
	Dir     string        `koanf:"dir" json:"dir"`
	Rolling RollingConfig `koanf:"rolling_config" json:"rolling_config"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      DefaultLevel,
		FilePrefix: DefaultFilePrefix,
		Dir:        DefaultDir,
		Rolling: RollingConfig{
			SizeThreshold: DefaultSizeThreshold,
			TimeThreshold: DefaultTimeThreshold,
		},
	}
}

// Validate 校验配置，错误同时包装 ErrInvalidConfig 与具体原因
func (c Config) Validate() error {
	if !c.Level.Valid() {
		return invalid(ErrInvalidLevel, "level %d", int8(c.Level))
	}
	if c.FilePrefix == "" {
		return invalid(ErrEmptyPrefix, "file_prefix")
	}
	if strings.ContainsAny(c.FilePrefix, "/\\\x00") {
		return invalid(ErrInvalidPrefix, "file_prefix %q", c.FilePrefix)
	}
	if strings.ContainsRune(c.Dir, 0) {
		return fmt.Errorf("%w: dir contains NUL", ErrInvalidConfig)
	}
	if c.Rolling.SizeThreshold < 0 {
		return invalid(ErrInvalidThreshold, "size_threshold %d", c.Rolling.SizeThreshold)
	}
	if c.Rolling.TimeThreshold < 0 {
		return invalid(ErrInvalidThreshold, "time_threshold %d", c.Rolling.TimeThreshold)
	}
	return nil
}

func invalid(reason error, format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrInvalidConfig, reason, fmt.Sprintf(format, args...))
}

// normalized 填充可省略字段
func (c Config) normalized() Config {
	if c.Dir == "" {
		c.Dir = DefaultDir
	}
	return c
}

// rawConfig 配置文件的形状，级别以字符串出现。
// 阈值保留解析器给出的原始值，由 threshold 严格转换，避免弱类型解码把 true 或 100.7 当作整数。
type rawConfig struct {
	Level      string     `koanf:"level"`
	FilePrefix string     `koanf:"file_prefix"`
	Dir        string     `koanf:"dir"`
	Rolling    rawRolling `koanf:"rolling_config"`
}

type rawRolling struct {
	SizeThreshold any `koanf:"size_threshold"`
	TimeThreshold any `koanf:"time_threshold"`
}

// 2^63，float64 可精确表示；int64 范围为 [-2^63, 2^63)
const float64Int64Bound = float64(1 << 63)

// threshold 将阈值原始值转换为 int64。
// 接受整数、无小数部分且不溢出的浮点数、十进制整数字符串。
func threshold(key string, v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, invalid(ErrInvalidThreshold, "%s %d out of range", key, n)
		}
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) || n < -float64Int64Bound || n >= float64Int64Bound {
			return 0, invalid(ErrInvalidThreshold, "%s %v is not an int64", key, n)
		}
		return int64(n), nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, invalid(ErrInvalidThreshold, "%s %q is not an integer", key, n)
		}
		return i, nil
	default:
		return 0, invalid(ErrInvalidThreshold, "%s has type %T", key, v)
	}
}

// LoadConfig 从 JSON 或 YAML 文件（按扩展名识别）加载并校验配置。
//
// level、file_prefix、rolling_config.size_threshold、rolling_config.time_threshold
// 必须出现；dir 可省略。所有错误都包装 ErrInvalidConfig。
func LoadConfig(path string) (Config, error) {
	src, err := xconf.New(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return fromSource(src)
}

// ParseConfig 同 LoadConfig，从字节数据加载
func ParseConfig(data []byte, format xconf.Format) (Config, error) {
	src, err := xconf.NewFromBytes(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return fromSource(src)
}

func fromSource(src *xconf.Config) (Config, error) {
	for _, key := range requiredKeys {
		if !src.Has(key) {
			return Config{}, fmt.Errorf("%w: %w: %s", ErrInvalidConfig, ErrMissingField, key)
		}
	}

	def := DefaultConfig()
	raw := rawConfig{Dir: def.Dir}
	if err := src.Unmarshal("", &raw); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	level, err := ParseLevel(raw.Level)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	size, err := threshold("size_threshold", raw.Rolling.SizeThreshold)
	if err != nil {
		return Config{}, err
	}
	age, err := threshold("time_threshold", raw.Rolling.TimeThreshold)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Level:      level,
		FilePrefix: raw.FilePrefix,
		Dir:        raw.Dir,
		Rolling:    RollingConfig{SizeThreshold: size, TimeThreshold: age},
	}.normalized()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
