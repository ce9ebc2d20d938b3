package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Format 配置文件格式。
type Format string

const (
	// FormatJSON JSON 格式。
	FormatJSON Format = "json"

	// FormatYAML YAML 格式。
	FormatYAML Format = "yaml"
)

// Config 已解析的只读配置。
//
// 加载完成后不再变化，可并发读取。
type Config struct {
	k      *koanf.Koanf
	path   string
	format Format
	opts   *Options
}

// New 从文件加载配置，根据扩展名识别格式。
func New(path string, opts ...Option) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	cfg, err := NewFromBytes(data, format, opts...)
	if err != nil {
		return nil, err
	}
	cfg.path = path
	return cfg, nil
}

// NewFromBytes 从字节数据加载配置，需要显式指定格式。
//
// 空数据得到一个空配置，Unmarshal 后目标结构体保持原值。
func NewFromBytes(data []byte, format Format, opts ...Option) (*Config, error) {
	parser, err := parserFor(format)
	if err != nil {
		return nil, err
	}

	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	k := koanf.New(options.Delim)
	if len(data) > 0 {
		if err := k.Load(rawbytes.Provider(data), parser); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
		}
	}

	return &Config{k: k, format: format, opts: options}, nil
}

// Client 返回底层 koanf 实例，用于 Keys/All 等只读查询。
func (c *Config) Client() *koanf.Koanf {
	return c.k
}

// Has 报告键 key 是否出现在配置中。
func (c *Config) Has(key string) bool {
	return c.k.Exists(key)
}

// Unmarshal 将 path 下的配置反序列化到 target，path 为空时反序列化整个配置。
func (c *Config) Unmarshal(path string, target any) error {
	if err := c.k.UnmarshalWithConf(path, target, koanf.UnmarshalConf{
		Tag: c.opts.Tag,
	}); err != nil {
		return fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	return nil
}

// Path 返回配置文件路径，从字节数据加载时为空。
func (c *Config) Path() string {
	return c.path
}

// Format 返回配置格式。
func (c *Config) Format() Format {
	return c.format
}

// DetectFormat 根据文件扩展名识别配置格式。
func DetectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}

func parserFor(format Format) (koanf.Parser, error) {
	switch format {
	case FormatJSON:
		return json.Parser(), nil
	case FormatYAML:
		return yaml.Parser(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
