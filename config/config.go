// Package config 读取命令行工具的 YAML 配置文件。
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/logoforge/capture"
	"github.com/ByLCY/logoforge/settings"
)

// 可选的捕获后端。
const (
	BackendCanvas    = "canvas"
	BackendSVGRaster = "svgraster"
)

// 文件命名方式。
const (
	NamingLogo      = "logo"
	NamingTimestamp = "timestamp"
)

// Config 是配置文件的完整结构，零值字段由 Default 补齐。
type Config struct {
	Backend     string   `yaml:"backend"`
	Formats     []string `yaml:"formats"`
	Scale       float64  `yaml:"scale"`
	OutDir      string   `yaml:"out_dir"`
	MeasureText bool     `yaml:"measure_text"`
	Naming      string   `yaml:"naming"`
	Prefix      string   `yaml:"prefix"`
	Width       int      `yaml:"viewport_width"`
	Presets     Presets  `yaml:"presets"`
}

// Presets 覆盖两套视口预设，缺省字段沿用内置值。
type Presets struct {
	Regular *settings.Preset `yaml:"regular"`
	Compact *settings.Preset `yaml:"compact"`
}

// Default 返回内置配置。
func Default() Config {
	return Config{
		Backend: BackendCanvas,
		Formats: []string{string(capture.FormatPNG)},
		Scale:   capture.DefaultScale,
		OutDir:  "output",
		Naming:  NamingLogo,
		Prefix:  "beautified-screenshot",
		Width:   1280,
	}
}

// Load 读取 path 指向的 YAML 文件并与默认值合并。path 为空时直接返回默认值。
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}
	return Parse(data)
}

// Parse 解析 YAML 内容，未知字段视为错误。
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate 检查取值范围。
func (c Config) Validate() error {
	switch c.Backend {
	case BackendCanvas, BackendSVGRaster:
	default:
		return fmt.Errorf("未知的捕获后端 %q", c.Backend)
	}
	if _, err := c.ExportFormats(); err != nil {
		return err
	}
	if c.Scale <= 0 {
		return fmt.Errorf("scale 必须大于 0，实际 %g", c.Scale)
	}
	switch c.Naming {
	case NamingLogo, NamingTimestamp:
	default:
		return fmt.Errorf("未知的命名方式 %q", c.Naming)
	}
	if c.Width < 0 {
		return fmt.Errorf("viewport_width 不能为负数")
	}
	return nil
}

// ExportFormats 返回解析后的导出格式列表。
func (c Config) ExportFormats() ([]capture.Format, error) {
	out := make([]capture.Format, 0, len(c.Formats))
	for _, f := range c.Formats {
		format, err := capture.ParseFormat(f)
		if err != nil {
			return nil, err
		}
		out = append(out, format)
	}
	return out, nil
}

// RegularPreset 返回生效的常规预设。
func (c Config) RegularPreset() settings.Preset {
	return mergePreset(settings.RegularPreset, c.Presets.Regular)
}

// CompactPreset 返回生效的紧凑预设。
func (c Config) CompactPreset() settings.Preset {
	return mergePreset(settings.CompactPreset, c.Presets.Compact)
}

func mergePreset(base settings.Preset, override *settings.Preset) settings.Preset {
	if override == nil {
		return base
	}
	if override.Size > 0 {
		base.Size = override.Size
	}
	if override.Padding > 0 {
		base.Padding = override.Padding
	}
	if override.FontSize > 0 {
		base.FontSize = override.FontSize
	}
	if override.Gap > 0 {
		base.Gap = override.Gap
	}
	return base
}

// Marshal 将配置写回 YAML，用于生成示例配置。
func (c Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("序列化配置失败: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return []byte(strings.TrimSpace(buf.String()) + "\n"), nil
}
