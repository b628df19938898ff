// Package svgraster 是不依赖 canvas 的捕获后端：
// 先用 svgo 将节点树写成 SVG，位图输出再交给 oksvg/rasterx 光栅化，
// 文字由 x/image 的 opentype 字体直接绘制到位图上。
package svgraster

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"

	"github.com/ByLCY/logoforge/fonts"
	"github.com/ByLCY/logoforge/geometry"
	"github.com/ByLCY/logoforge/projector"
	"github.com/ByLCY/logoforge/settings"
)

// writeSVG 将节点树写为 SVG 文档，单位为 px。
// withText 为 false 时跳过文本层（oksvg 不支持 <text>，由调用方另行绘制）。
func writeSVG(node *projector.Node, background settings.Color, withText bool) []byte {
	var buf bytes.Buffer
	w, h := node.Rect.Width, node.Rect.Height
	doc := svg.New(&buf)
	doc.Startraw(
		fmt.Sprintf(`width="%s"`, num(w)),
		fmt.Sprintf(`height="%s"`, num(h)),
		fmt.Sprintf(`viewBox="0 0 %s %s"`, num(w), num(h)),
	)

	full := geometry.Rect{Width: w, Height: h}
	if !background.IsTransparent() {
		doc.Path(rectPath(full, 0), fillAttrs(background, 1)...)
	}
	chrome := node.Chrome()
	if !chrome.Background.IsTransparent() {
		doc.Path(rectPath(full, 0), fillAttrs(chrome.Background, 1)...)
	}
	for _, child := range node.Children {
		writeNode(doc, child, withText)
	}
	if chrome.OutlineWidth > 0 && !chrome.Outline.IsTransparent() {
		half := chrome.OutlineWidth / 2
		inset := geometry.Rect{X: half, Y: half, Width: w - chrome.OutlineWidth, Height: h - chrome.OutlineWidth}
		attrs := append([]string{`fill="none"`}, strokeAttrs(chrome.Outline, chrome.OutlineWidth)...)
		doc.Path(rectPath(inset, 0), attrs...)
	}
	doc.End()
	return buf.Bytes()
}

func writeNode(doc *svg.SVG, n *projector.Node, withText bool) {
	switch {
	case n.Glyph != nil:
		writeIcon(doc, n)
	case n.Text != "":
		if withText {
			writeText(doc, n)
		}
	default:
		writeShape(doc, n)
	}
	for _, child := range n.Children {
		writeNode(doc, child, withText)
	}
}

func writeShape(doc *svg.SVG, n *projector.Node) {
	if n.Fill == nil && n.StrokeWidth <= 0 {
		return
	}
	var attrs []string
	if n.Fill != nil {
		attrs = fillAttrs(*n.Fill, n.FillOpacity)
	} else {
		attrs = []string{`fill="none"`}
	}
	if n.StrokeWidth > 0 {
		attrs = append(attrs, strokeAttrs(n.Stroke, n.StrokeWidth)...)
	}
	doc.Path(rectPath(n.Rect, n.Radius), attrs...)
}

func writeIcon(doc *svg.SVG, n *projector.Node) {
	glyph := n.Glyph
	if n.Rect.Width <= 0 || glyph.ViewBox <= 0 {
		return
	}
	scale := n.Rect.Width / glyph.ViewBox
	cx, cy := n.Rect.Center()
	transform := fmt.Sprintf("translate(%s %s) scale(%s)", num(n.Rect.X), num(n.Rect.Y), num(scale))
	if n.Rotation != 0 {
		// 绕图标中心旋转，拆成平移组合以兼容只支持单参数 rotate 的解析器
		transform = fmt.Sprintf("translate(%s %s) rotate(%s) translate(%s %s) ",
			num(cx), num(cy), num(n.Rotation), num(-cx), num(-cy)) + transform
	}
	doc.Gtransform(transform)

	var attrs []string
	if n.Fill != nil && n.FillOpacity > 0 {
		attrs = fillAttrs(*n.Fill, n.FillOpacity)
	} else {
		attrs = []string{`fill="none"`}
	}
	if n.StrokeWidth > 0 {
		// 描边宽度以 px 表示，需抵消组变换中的缩放
		attrs = append(attrs, strokeAttrs(n.Stroke, n.StrokeWidth/scale)...)
		attrs = append(attrs, `stroke-linecap="round"`, `stroke-linejoin="round"`)
	}
	doc.Path(escape(glyph.Path), attrs...)
	doc.Gend()
}

func writeText(doc *svg.SVG, n *projector.Node) {
	col := settings.Color{A: 255}
	if n.Fill != nil {
		col = *n.Fill
	}
	face, _ := fonts.Resolve(n.Font.Family, n.Font.Weight)
	family := n.Font.Family
	if family == "" {
		family = face.Family
	}
	weight := n.Font.Weight
	if weight <= 0 {
		weight = face.Weight
	}
	doc.Gtransform(fmt.Sprintf("translate(%s %s)", num(n.Rect.X), num(n.Rect.Y+n.Rect.Height/2)))
	attrs := append(fillAttrs(col, n.FillOpacity),
		attr("font-family", family+", "+face.Family+", sans-serif"),
		fmt.Sprintf(`font-weight="%d"`, weight),
		fmt.Sprintf(`font-size="%s"`, num(n.FontSize)),
		`dominant-baseline="central"`,
	)
	doc.Text(0, 0, n.Text, attrs...)
	doc.Gend()
}

// rectPath 返回（圆角）矩形的路径数据
func rectPath(r geometry.Rect, radius float64) string {
	radius = math.Min(radius, math.Min(r.Width, r.Height)/2)
	if radius <= 0 {
		return fmt.Sprintf("M%s %sH%sV%sH%sZ",
			num(r.X), num(r.Y), num(r.X+r.Width), num(r.Y+r.Height), num(r.X))
	}
	x0, y0 := r.X, r.Y
	x1, y1 := r.X+r.Width, r.Y+r.Height
	rs := num(radius)
	arc := func(x, y float64) string {
		return fmt.Sprintf("A%s %s 0 0 1 %s %s", rs, rs, num(x), num(y))
	}
	return fmt.Sprintf("M%s %sH%s%sV%s%sH%s%sV%s%sZ",
		num(x0+radius), num(y0),
		num(x1-radius), arc(x1, y0+radius),
		num(y1-radius), arc(x1-radius, y1),
		num(x0+radius), arc(x0, y1-radius),
		num(y0+radius), arc(x0+radius, y0),
	)
}

func fillAttrs(c settings.Color, opacity float64) []string {
	attrs := []string{fmt.Sprintf(`fill="%s"`, rgbHex(c))}
	if a := c.Alpha() * opacity; a < 1 {
		attrs = append(attrs, fmt.Sprintf(`fill-opacity="%s"`, num(a)))
	}
	return attrs
}

func strokeAttrs(c settings.Color, width float64) []string {
	attrs := []string{
		fmt.Sprintf(`stroke="%s"`, rgbHex(c)),
		fmt.Sprintf(`stroke-width="%s"`, num(width)),
	}
	if a := c.Alpha(); a < 1 {
		attrs = append(attrs, fmt.Sprintf(`stroke-opacity="%s"`, num(a)))
	}
	return attrs
}

func rgbHex(c settings.Color) string {
	opaque := c
	opaque.A = 255
	return opaque.Hex()
}

// attr 生成属性片段，值经过 XML 转义；svgo 会原样写出属性字符串。
func attr(name, value string) string {
	return name + `="` + escape(value) + `"`
}

func escape(value string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(value)); err != nil {
		return ""
	}
	return buf.String()
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}
