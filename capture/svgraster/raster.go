package svgraster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/logoforge/capture"
	"github.com/ByLCY/logoforge/fonts"
	"github.com/ByLCY/logoforge/geometry"
	"github.com/ByLCY/logoforge/projector"
	"github.com/ByLCY/logoforge/settings"
)

// Renderer 实现 capture.Service 与 geometry.TextMeasurer。
type Renderer struct {
	fontMu sync.Mutex
	parsed map[string]*opentype.Font
}

var (
	_ capture.Service       = (*Renderer)(nil)
	_ geometry.TextMeasurer = (*Renderer)(nil)
)

// New creates an svgo/oksvg based capture service.
func New() *Renderer {
	return &Renderer{parsed: map[string]*opentype.Font{}}
}

// Vectorize 输出包含文本层的 SVG 文档。
func (r *Renderer) Vectorize(ctx context.Context, node *projector.Node, opts capture.Options) ([]byte, error) {
	if err := capture.Validate(node); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return writeSVG(node, opts.BackgroundColor, true), nil
}

// Rasterize 先光栅化不含文字的 SVG，再把文本层绘制到同一张位图上。
func (r *Renderer) Rasterize(ctx context.Context, node *projector.Node, opts capture.Options) (image.Image, error) {
	if err := capture.Validate(node); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc := writeSVG(node, opts.BackgroundColor, false)
	icon, err := oksvg.ReadIconStream(bytes.NewReader(doc), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("解析 SVG 失败: %w", err)
	}

	w, h := capture.PixelSize(node, opts)
	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	icon.Draw(raster, 1.0)

	scale := float64(w) / node.Rect.Width
	var drawErr error
	node.Walk(func(n *projector.Node) {
		if drawErr != nil || n.Glyph != nil || n.Text == "" || n.Layer == projector.LayerRoot {
			return
		}
		drawErr = r.drawText(img, n, scale)
	})
	if drawErr != nil {
		return nil, drawErr
	}
	return img, nil
}

// MeasureText 使用 opentype 字形前进宽度测量文本（px）。
func (r *Renderer) MeasureText(content string, f geometry.Font, sizePx float64) (float64, error) {
	if sizePx <= 0 || content == "" {
		return 0, nil
	}
	face, err := r.face(f, sizePx)
	if err != nil {
		return 0, err
	}
	defer face.Close()
	return fixedToFloat(font.MeasureString(face, content)), nil
}

func (r *Renderer) drawText(img *image.RGBA, n *projector.Node, scale float64) error {
	face, err := r.face(n.Font, n.FontSize*scale)
	if err != nil {
		return err
	}
	defer face.Close()

	col := settings.Color{A: 255}
	if n.Fill != nil {
		col = *n.Fill
	}
	metrics := face.Metrics()
	ascent, descent := fixedToFloat(metrics.Ascent), fixedToFloat(metrics.Descent)
	top := n.Rect.Y*scale + (n.Rect.Height*scale-(ascent+descent))/2
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(nrgba(col, n.FillOpacity)),
		Face: face,
		Dot:  fixed.Point26_6{X: floatToFixed(n.Rect.X * scale), Y: floatToFixed(top + ascent)},
	}
	d.DrawString(n.Text)
	return nil
}

// face 创建像素字号的字体面；DPI 取 72 使 1pt 等于 1px。
func (r *Renderer) face(f geometry.Font, sizePx float64) (font.Face, error) {
	resolved, _ := fonts.Resolve(f.Family, f.Weight)
	parsed, err := r.parse(resolved)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: sizePx, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil, fmt.Errorf("创建字体 %s 失败: %w", resolved.Name, err)
	}
	return face, nil
}

func (r *Renderer) parse(face fonts.Face) (*opentype.Font, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if f, ok := r.parsed[face.Name]; ok {
		return f, nil
	}
	f, err := opentype.Parse(face.Data)
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", face.Name, err)
	}
	r.parsed[face.Name] = f
	return f, nil
}

func nrgba(c settings.Color, opacity float64) color.NRGBA {
	a := c.Alpha() * opacity
	return color.NRGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: uint8(a*255 + 0.5)}
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }

func floatToFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(v * 64) }
