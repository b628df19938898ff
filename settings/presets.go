package settings

import "github.com/ByLCY/logoforge/viewport"

// Preset 是随视口类别变化的尺寸相关字段子集。
type Preset struct {
	Size     float64 `json:"size" yaml:"size"`
	Padding  float64 `json:"padding" yaml:"padding"`
	FontSize float64 `json:"fontSize" yaml:"font_size"`
	Gap      float64 `json:"gap" yaml:"gap"`
}

var (
	// RegularPreset 用于宽度不小于 viewport.Breakpoint 的视口。
	RegularPreset = Preset{Size: 140, Padding: 20, FontSize: 58, Gap: 12}
	// CompactPreset 用于窄视口。
	CompactPreset = Preset{Size: 80, Padding: 12, FontSize: 34, Gap: 8}
)

// PresetFor 返回视口类别对应的预设。
func PresetFor(class viewport.Class) Preset {
	if class == viewport.Compact {
		return CompactPreset
	}
	return RegularPreset
}

// Default 返回会话初始设置。
func Default(class viewport.Class) Settings {
	return DefaultWithPresets(class, RegularPreset, CompactPreset)
}

// DefaultWithPresets 允许调用方（例如配置文件）覆盖两套预设。
func DefaultWithPresets(class viewport.Class, regular, compact Preset) Settings {
	base := Settings{
		Mode:            ModeIconOnly,
		Radius:          24,
		BorderWidth:     0,
		BorderColor:     RGB(0x1f, 0x29, 0x37),
		Background:      RGB(0x0f, 0x62, 0xfe),
		IconBorderWidth: DefaultIconBorderWidth,
		IconBorderColor: RGB(0xff, 0xff, 0xff),
		FillOpacity:     0,
		FillColor:       RGB(0xff, 0xff, 0xff),
		Text:            "Logo",
		FontFamily:      "Go",
		FontWeight:      700,
		TextColor:       RGB(0x11, 0x18, 0x27),
	}
	p := regular
	if class == viewport.Compact {
		p = compact
	}
	return base.WithPreset(p)
}
