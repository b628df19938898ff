package geometry

// Options 配置几何解析阶段的可选依赖。
type Options struct {
	// Measurer 为空时使用 fontSize*字符数*TextWidthFactor 的估算。
	Measurer TextMeasurer
}

// Font 描述测量文本所需的字体信息。
type Font struct {
	Family string
	Weight int
}

// TextMeasurer 返回单行文本的实际渲染宽度（px）。
type TextMeasurer interface {
	MeasureText(content string, font Font, sizePx float64) (float64, error)
}
