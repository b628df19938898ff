package geometry

// 该文件定义几何解析结果，供投影、捕获后端与调试 JSON 共用。所有数值单位均为 px。

// OuterPadding 是导出画布四周的固定留白，仅用于避免阴影与边缘被裁切，不对用户暴露。
const OuterPadding = 20.0

// TextWidthFactor 是文本宽度估算系数：fontSize * 字符数 * TextWidthFactor。
const TextWidthFactor = 0.6

// Rect 表示导出画布坐标系中的矩形（左上角为原点）。
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center 返回矩形中心点。
func (r Rect) Center() (float64, float64) { return r.X + r.Width/2, r.Y + r.Height/2 }

// TextBox 表示一行已排好位置的文本。
type TextBox struct {
	Content  string  `json:"content"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	FontSize float64 `json:"fontSize"`
	Measured bool    `json:"measured"` // 宽度来自 TextMeasurer 而非估算
}

// Geometry 是由 Settings 推导出的全部具体尺寸。
type Geometry struct {
	ContainerSize   float64 `json:"containerSize"`
	Padding         float64 `json:"padding"`
	IconSize        float64 `json:"iconSize"`
	Radius          float64 `json:"radius"`
	BorderWidth     float64 `json:"borderWidth"`
	IconBorderWidth float64 `json:"iconBorderWidth"`
	FillOpacity     float64 `json:"fillOpacity"`
	Rotation        float64 `json:"rotation"`

	IsTextLayout bool    `json:"isTextLayout"`
	Gap          float64 `json:"gap"`
	FontSize     float64 `json:"fontSize"`
	TextWidth    float64 `json:"textWidth"`

	OuterPadding float64 `json:"outerPadding"`
	ExportWidth  float64 `json:"exportWidth"`
	ExportHeight float64 `json:"exportHeight"`

	Container Rect     `json:"container"`
	Icon      Rect     `json:"icon"`
	Text      *TextBox `json:"text,omitempty"`

	// Placeholder 表示尚未选择图标，尺寸仍按容器计算以免导出区域塌缩。
	Placeholder bool `json:"placeholder"`
}
