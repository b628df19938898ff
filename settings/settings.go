// Package settings 定义徽标的全部样式参数。Settings 是纯数据记录，
// 每次更新都产生一份完整的新记录，而不是局部补丁。
package settings

import (
	"github.com/ByLCY/logoforge/icons"
	"github.com/ByLCY/logoforge/viewport"
)

// Mode 表示布局模式。
type Mode string

const (
	ModeIconOnly     Mode = "icon-only"
	ModeIconWithText Mode = "icon-with-text"
)

// ParseMode 解析布局模式，未知值返回 false。
func ParseMode(v string) (Mode, bool) {
	switch Mode(v) {
	case ModeIconOnly, ModeIconWithText:
		return Mode(v), true
	}
	switch v {
	case "icon", "icon_only":
		return ModeIconOnly, true
	case "text", "icon+text", "icon_with_text":
		return ModeIconWithText, true
	}
	return "", false
}

// DefaultIconBorderWidth 是描边图标的默认线宽（px）。
const DefaultIconBorderWidth = 2.0

// Settings 是所有样式参数的唯一事实来源。
type Settings struct {
	Mode Mode `json:"mode" yaml:"mode"`

	// 图标身份
	Icon     icons.Ref `json:"icon" yaml:"icon"`
	IconName string    `json:"iconName" yaml:"icon_name"`
	Filled   bool      `json:"filled" yaml:"filled"`

	// 容器
	Size        float64 `json:"size" yaml:"size"`                // px
	Padding     float64 `json:"padding" yaml:"padding"`          // px
	Radius      float64 `json:"radius" yaml:"radius"`            // 百分比
	BorderWidth float64 `json:"borderWidth" yaml:"border_width"` // px
	BorderColor Color   `json:"borderColor" yaml:"border_color"`
	Background  Color   `json:"background" yaml:"background"`

	// 图标描边与填充
	IconBorderWidth float64 `json:"iconBorderWidth" yaml:"icon_border_width"`
	IconBorderColor Color   `json:"iconBorderColor" yaml:"icon_border_color"`
	FillOpacity     float64 `json:"fillOpacity" yaml:"fill_opacity"` // 0..1
	FillColor       Color   `json:"fillColor" yaml:"fill_color"`
	// 切换到填充变体前最后一次使用的非零线宽，切回描边变体时恢复
	OutlineWidth float64 `json:"outlineWidth,omitempty" yaml:"outline_width,omitempty"`

	// 旋转只作用于图标
	Rotation float64 `json:"rotation" yaml:"rotation"`

	// 文本（仅 icon-with-text 模式读取）
	Text       string  `json:"text" yaml:"text"`
	FontFamily string  `json:"fontFamily" yaml:"font_family"`
	FontWeight int     `json:"fontWeight" yaml:"font_weight"`
	FontSize   float64 `json:"fontSize" yaml:"font_size"` // px
	TextColor  Color   `json:"textColor" yaml:"text_color"`
	Gap        float64 `json:"gap" yaml:"gap"` // px
}

// HasIcon 判断是否已选择图标。
func (s Settings) HasIcon() bool { return !s.Icon.IsZero() }

// HasFill 只有在填充透明度大于 0 时才读取填充颜色。
func (s Settings) HasFill() bool { return s.FillOpacity > 0 }

// TextActive 判断文本字段是否参与布局与渲染。
func (s Settings) TextActive() bool { return s.Mode == ModeIconWithText }

// SelectIcon 设置图标并按变体调整联动参数：
// 填充变体去掉描边并完全不透明，同时记下此前的非零线宽；
// 描边变体恢复该线宽（没有记录时用 DefaultIconBorderWidth）并取消填充。
func (s Settings) SelectIcon(ref icons.Ref, name string, filled bool) Settings {
	next := s
	next.Icon = ref
	next.IconName = name
	next.Filled = filled
	if next.IconBorderWidth > 0 {
		next.OutlineWidth = next.IconBorderWidth
	}
	if filled {
		next.IconBorderWidth = 0
		next.FillOpacity = 1
		return next
	}
	if next.IconBorderWidth <= 0 {
		next.IconBorderWidth = next.OutlineWidth
		if next.IconBorderWidth <= 0 {
			next.IconBorderWidth = DefaultIconBorderWidth
		}
	}
	next.FillOpacity = 0
	return next
}

// WithViewport 只重新应用与尺寸相关的字段（size/padding/fontSize/gap），
// 颜色与形状等用户自定义字段保持不变。
func (s Settings) WithViewport(class viewport.Class) Settings {
	return s.WithPreset(PresetFor(class))
}

// WithPreset 与 WithViewport 相同，但使用显式给定的预设。
func (s Settings) WithPreset(p Preset) Settings {
	next := s
	next.Size = p.Size
	next.Padding = p.Padding
	next.FontSize = p.FontSize
	next.Gap = p.Gap
	return next
}
