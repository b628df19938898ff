package geometry

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ByLCY/logoforge/settings"
)

// Resolve 将 Settings 映射为具体几何尺寸。纯函数：无副作用、结果确定，
// 对任何输入都不会 panic，非法数值（负数、NaN、Inf）一律钳制。
func Resolve(s settings.Settings, opts Options) Geometry {
	size := nonNegative(s.Size)
	padding := math.Min(nonNegative(s.Padding), size/2)
	iconSize := math.Max(0, size-2*padding)

	g := Geometry{
		ContainerSize:   size,
		Padding:         padding,
		IconSize:        iconSize,
		Radius:          resolveRadius(size, s.Radius),
		BorderWidth:     math.Min(nonNegative(s.BorderWidth), size/2),
		IconBorderWidth: nonNegative(s.IconBorderWidth),
		FillOpacity:     clamp01(s.FillOpacity),
		Rotation:        finite(s.Rotation),
		OuterPadding:    OuterPadding,
		Placeholder:     !s.HasIcon(),
	}

	g.IsTextLayout = s.Mode == settings.ModeIconWithText && strings.TrimSpace(s.Text) != ""
	if g.IsTextLayout {
		g.Gap = nonNegative(s.Gap)
		g.FontSize = nonNegative(s.FontSize)
		width, measured := textWidth(s, g.FontSize, opts.Measurer)
		g.TextWidth = width
		g.ExportWidth = size + g.Gap + width + 2*OuterPadding
		g.ExportHeight = math.Max(size+2*OuterPadding, g.FontSize+2*OuterPadding)
		g.Text = &TextBox{
			Content:  s.Text,
			X:        OuterPadding + size + g.Gap,
			Y:        (g.ExportHeight - g.FontSize) / 2,
			Width:    width,
			Height:   g.FontSize,
			FontSize: g.FontSize,
			Measured: measured,
		}
	} else {
		g.ExportWidth = size + 2*OuterPadding
		g.ExportHeight = size + 2*OuterPadding
	}

	// 容器在导出画布中水平靠左（留出 OuterPadding），垂直居中
	g.Container = Rect{
		X:      OuterPadding,
		Y:      (g.ExportHeight - size) / 2,
		Width:  size,
		Height: size,
	}
	g.Icon = Rect{
		X:      g.Container.X + padding,
		Y:      g.Container.Y + padding,
		Width:  iconSize,
		Height: iconSize,
	}
	return g
}

// EstimateTextWidth 是不依赖真实字形度量的宽度估算。
func EstimateTextWidth(content string, fontSize float64) float64 {
	return nonNegative(fontSize) * float64(utf8.RuneCountInString(content)) * TextWidthFactor
}

func textWidth(s settings.Settings, fontSize float64, m TextMeasurer) (float64, bool) {
	if m != nil {
		w, err := m.MeasureText(s.Text, Font{Family: s.FontFamily, Weight: s.FontWeight}, fontSize)
		if err == nil && !math.IsNaN(w) && !math.IsInf(w, 0) && w >= 0 {
			return w, true
		}
	}
	return EstimateTextWidth(s.Text, fontSize), false
}

// resolveRadius 将百分比圆角换算为 px，最大为容器一半（即圆形）。
func resolveRadius(size, percent float64) float64 {
	r := size * nonNegative(percent) / 100
	return math.Min(r, size/2)
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clamp01(v float64) float64 {
	v = nonNegative(v)
	if v > 1 {
		return 1
	}
	return v
}
