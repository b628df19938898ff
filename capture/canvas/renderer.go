package canvascapture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"

	"github.com/ByLCY/logoforge/capture"
	"github.com/ByLCY/logoforge/fonts"
	"github.com/ByLCY/logoforge/geometry"
	"github.com/ByLCY/logoforge/projector"
	"github.com/ByLCY/logoforge/settings"
)

// Renderer 通过 github.com/tdewolff/canvas 绘制节点树。
// 画布以 mm 为单位，节点几何为 px，字体为 pt，在边界处换算。
type Renderer struct {
	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily
}

var (
	_ capture.Service       = (*Renderer)(nil)
	_ geometry.TextMeasurer = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// New creates a canvas-based capture service.
func New() *Renderer {
	return &Renderer{fontFamilies: map[string]*fontFamilyEntry{}}
}

// Rasterize 输出 ScaleFactor 倍的位图。
func (r *Renderer) Rasterize(ctx context.Context, node *projector.Node, opts capture.Options) (image.Image, error) {
	c, err := r.draw(ctx, node, opts)
	if err != nil {
		return nil, err
	}
	// 1px = PxToMM mm，因此每毫米的像素数为 MMToPx * scale
	img := rasterizer.Draw(c, canvas.DPMM(geometry.MMToPx*opts.Scale()), canvas.DefaultColorSpace)
	if img == nil {
		return nil, fmt.Errorf("光栅化失败")
	}
	return img, nil
}

// Vectorize 输出 SVG 文本。
func (r *Renderer) Vectorize(ctx context.Context, node *projector.Node, opts capture.Options) ([]byte, error) {
	c, err := r.draw(ctx, node, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	writer := svg.New(&buf, c.W, c.H, nil)
	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 SVG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// MeasureText 实现 geometry.TextMeasurer，返回 px 宽度。
func (r *Renderer) MeasureText(content string, font geometry.Font, sizePx float64) (float64, error) {
	if sizePx <= 0 || content == "" {
		return 0, nil
	}
	face, err := r.fontFace(font, sizePx*geometry.PxToPt, color.Black)
	if err != nil {
		return 0, err
	}
	return face.TextWidth(content) * geometry.MMToPx, nil
}

func (r *Renderer) draw(ctx context.Context, node *projector.Node, opts capture.Options) (*canvas.Canvas, error) {
	if err := capture.Validate(node); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := canvas.New(mm(node.Rect.Width), mm(node.Rect.Height))
	cc := canvas.NewContext(c)
	cc.SetCoordSystem(canvas.CartesianIV) // 使坐标与 Geometry 保持左上角为原点

	full := geometry.Rect{Width: node.Rect.Width, Height: node.Rect.Height}
	if !opts.BackgroundColor.IsTransparent() {
		fillRect(cc, full, opts.BackgroundColor)
	}
	chrome := node.Chrome()
	if !chrome.Background.IsTransparent() {
		fillRect(cc, full, chrome.Background)
	}
	for _, child := range node.Children {
		if err := r.drawNode(cc, child); err != nil {
			return nil, err
		}
	}
	if chrome.OutlineWidth > 0 && !chrome.Outline.IsTransparent() {
		half := chrome.OutlineWidth / 2
		cc.SetFillColor(color.RGBA{0, 0, 0, 0})
		cc.SetStrokeColor(colorOf(chrome.Outline, 1))
		cc.SetStrokeWidth(mm(chrome.OutlineWidth))
		cc.DrawPath(mm(half), mm(half), canvas.Rectangle(mm(full.Width-chrome.OutlineWidth), mm(full.Height-chrome.OutlineWidth)))
	}
	return c, nil
}

func (r *Renderer) drawNode(cc *canvas.Context, n *projector.Node) error {
	switch {
	case n.Glyph != nil:
		if err := drawIcon(cc, n); err != nil {
			return err
		}
	case n.Text != "":
		if err := r.drawText(cc, n); err != nil {
			return err
		}
	default:
		drawShape(cc, n)
	}
	for _, child := range n.Children {
		if err := r.drawNode(cc, child); err != nil {
			return err
		}
	}
	return nil
}

// drawShape 绘制背景或边框矩形
func drawShape(cc *canvas.Context, n *projector.Node) {
	if n.Fill == nil && n.StrokeWidth <= 0 {
		return
	}
	if n.Fill != nil {
		cc.SetFillColor(colorOf(*n.Fill, n.FillOpacity))
	} else {
		cc.SetFillColor(color.RGBA{0, 0, 0, 0})
	}
	if n.StrokeWidth > 0 {
		cc.SetStrokeColor(colorOf(n.Stroke, 1))
		cc.SetStrokeWidth(mm(n.StrokeWidth))
	} else {
		cc.SetStrokeColor(color.RGBA{0, 0, 0, 0})
		cc.SetStrokeWidth(0)
	}
	cc.DrawPath(mm(n.Rect.X), mm(n.Rect.Y), shapePath(n.Rect, n.Radius))
}

func shapePath(rect geometry.Rect, radius float64) *canvas.Path {
	if radius > 0 {
		return canvas.RoundedRectangle(mm(rect.Width), mm(rect.Height), mm(radius))
	}
	return canvas.Rectangle(mm(rect.Width), mm(rect.Height))
}

func drawIcon(cc *canvas.Context, n *projector.Node) error {
	glyph := n.Glyph
	if n.Rect.Width <= 0 || glyph.ViewBox <= 0 {
		return nil
	}
	path, err := canvas.ParseSVGPath(glyph.Path)
	if err != nil {
		return fmt.Errorf("解析图标 %s 路径失败: %w", glyph.Ref, err)
	}
	scale := mm(n.Rect.Width) / glyph.ViewBox
	path = path.Transform(canvas.Identity.Scale(scale, scale))

	if n.Fill != nil && n.FillOpacity > 0 {
		cc.SetFillColor(colorOf(*n.Fill, n.FillOpacity))
	} else {
		cc.SetFillColor(color.RGBA{0, 0, 0, 0})
	}
	if n.StrokeWidth > 0 {
		cc.SetStrokeColor(colorOf(n.Stroke, 1))
		cc.SetStrokeWidth(mm(n.StrokeWidth))
		cc.SetStrokeCapper(canvas.RoundCap)
		cc.SetStrokeJoiner(canvas.RoundJoin)
	} else {
		cc.SetStrokeColor(color.RGBA{0, 0, 0, 0})
		cc.SetStrokeWidth(0)
	}

	cc.Push()
	defer cc.Pop()
	if n.Rotation != 0 {
		cx, cy := n.Rect.Center()
		cc.RotateAbout(n.Rotation, mm(cx), mm(cy))
	}
	cc.DrawPath(mm(n.Rect.X), mm(n.Rect.Y), path)
	return nil
}

func (r *Renderer) drawText(cc *canvas.Context, n *projector.Node) error {
	col := settings.Color{A: 255}
	if n.Fill != nil {
		col = *n.Fill
	}
	face, err := r.fontFace(n.Font, n.FontSize*geometry.PxToPt, colorOf(col, n.FillOpacity))
	if err != nil {
		return err
	}
	line := canvas.NewTextLine(face, n.Text, canvas.Left)

	// 基线：文本框顶部加上使字形垂直居中的偏移，再加上上升部（mm）
	metrics := face.Metrics()
	glyphHeight := metrics.Ascent + metrics.Descent
	top := mm(n.Rect.Y) + (mm(n.Rect.Height)-glyphHeight)/2
	cc.DrawText(mm(n.Rect.X), top+metrics.Ascent, line)
	return nil
}

func fillRect(cc *canvas.Context, rect geometry.Rect, c settings.Color) {
	cc.SetFillColor(colorOf(c, 1))
	cc.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	cc.SetStrokeWidth(0)
	cc.DrawPath(mm(rect.X), mm(rect.Y), canvas.Rectangle(mm(rect.Width), mm(rect.Height)))
}

func (r *Renderer) fontFace(font geometry.Font, sizePt float64, col color.Color) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(sizePt, col, style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font geometry.Font) (*canvas.FontFamily, canvas.FontStyle, error) {
	resolved, _ := fonts.Resolve(font.Family, font.Weight)
	key := fontCacheKey(resolved)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(resolved.Weight)
	family := canvas.NewFontFamily(resolved.Family)
	if err := family.LoadFont(resolved.Data, 0, style); err != nil {
		fallback, fbStyle, fbErr := r.fallback()
		if fbErr != nil {
			return nil, canvas.FontRegular, fmt.Errorf("加载字体 %s 失败: %w", resolved.Name, err)
		}
		r.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: fbStyle}
		return fallback, fbStyle, nil
	}

	r.fontFamilies[key] = &fontFamilyEntry{family: family, style: style}
	return family, style, nil
}

func (r *Renderer) fallback() (*canvas.FontFamily, canvas.FontStyle, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, canvas.FontRegular, nil
	}
	data, err := fonts.Load("Go-Regular")
	if err != nil {
		return nil, canvas.FontRegular, err
	}
	family := canvas.NewFontFamily("logoforge-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, canvas.FontRegular, err
	}
	r.fallbackFamily = family
	return family, canvas.FontRegular, nil
}

// parseFontStyle 将 CSS 字重映射为 canvas 的字体样式。
func parseFontStyle(weight int) canvas.FontStyle {
	switch {
	case weight >= 900:
		return canvas.FontBlack
	case weight >= 800:
		return canvas.FontExtraBold
	case weight >= 700:
		return canvas.FontBold
	case weight >= 600:
		return canvas.FontSemiBold
	case weight >= 500:
		return canvas.FontMedium
	case weight > 0 && weight <= 300:
		return canvas.FontLight
	default:
		return canvas.FontRegular
	}
}

func fontCacheKey(face fonts.Face) string {
	return strings.Join([]string{face.Family, face.Name}, "|")
}

func colorOf(c settings.Color, opacity float64) color.Color {
	alpha := c.Alpha() * opacity
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, alpha)
}

// mm 将像素(px)转换为毫米(mm)。
func mm(px float64) float64 { return px * geometry.PxToMM }
