package settings

import (
	"fmt"
	"strconv"
	"strings"
)

// Color 采用 0-255 的 RGBA 数值。
type Color struct {
	R int `json:"r" yaml:"r"`
	G int `json:"g" yaml:"g"`
	B int `json:"b" yaml:"b"`
	A int `json:"a" yaml:"a"`
}

// Transparent 是“无背景”的哨兵值，捕获服务据此保持透明输出。
var Transparent = Color{}

// RGB 构造一个不透明颜色。
func RGB(r, g, b int) Color { return Color{R: r, G: g, B: b, A: 255} }

// IsTransparent 判断颜色是否完全透明。
func (c Color) IsTransparent() bool { return c.A <= 0 }

// Hex 输出 #rrggbb，带透明度时输出 #rrggbbaa。
func (c Color) Hex() string {
	c = c.clamped()
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Alpha 返回 0..1 的透明度。
func (c Color) Alpha() float64 { return float64(c.clamped().A) / 255.0 }

func (c Color) clamped() Color {
	return Color{R: clampByte(c.R), G: clampByte(c.G), B: clampByte(c.B), A: clampByte(c.A)}
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// ParseColor 解析 #rgb、#rrggbb、#rrggbbaa 形式的颜色。
func ParseColor(value string) (Color, error) {
	raw := strings.TrimSpace(value)
	if strings.EqualFold(raw, "transparent") || strings.EqualFold(raw, "none") {
		return Transparent, nil
	}
	hex := strings.TrimPrefix(raw, "#")
	switch len(hex) {
	case 3:
		expanded := strings.Repeat(string(hex[0]), 2) + strings.Repeat(string(hex[1]), 2) + strings.Repeat(string(hex[2]), 2)
		return parseHexBytes(expanded+"ff", value)
	case 6:
		return parseHexBytes(hex+"ff", value)
	case 8:
		return parseHexBytes(hex, value)
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
}

func parseHexBytes(hex, original string) (Color, error) {
	var parts [4]int
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", original, err)
		}
		parts[i] = int(v)
	}
	return Color{R: parts[0], G: parts[1], B: parts[2], A: parts[3]}, nil
}

// MarshalText 让颜色在 JSON/YAML 中以十六进制字符串出现。
func (c Color) MarshalText() ([]byte, error) { return []byte(c.Hex()), nil }

// UnmarshalText 解析十六进制颜色字符串。
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
