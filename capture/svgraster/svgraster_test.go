package svgraster

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"image"
	"io"
	"strings"
	"testing"

	"github.com/ByLCY/logoforge/capture"
	"github.com/ByLCY/logoforge/geometry"
	"github.com/ByLCY/logoforge/icons"
	"github.com/ByLCY/logoforge/projector"
	"github.com/ByLCY/logoforge/settings"
	"github.com/ByLCY/logoforge/viewport"
)

func scene(t *testing.T, filled bool, mutate func(*settings.Settings)) *projector.Scene {
	t.Helper()
	s := settings.Default(viewport.Regular).SelectIcon(icons.Ref{Set: icons.DefaultSet, Name: "heart"}, "Heart", filled)
	if mutate != nil {
		mutate(&s)
	}
	return projector.Project(s, geometry.Resolve(s, geometry.Options{}), icons.Builtin())
}

func TestVectorizeDimensionsAndLayers(t *testing.T) {
	sc := scene(t, false, func(s *settings.Settings) {
		s.Mode = settings.ModeIconWithText
		s.Text = "A&B"
		s.Rotation = 90
		s.BorderWidth = 3
	})
	out, err := New().Vectorize(context.Background(), sc.Clean, capture.Options{})
	if err != nil {
		t.Fatalf("矢量化失败: %v", err)
	}
	doc := string(out)
	g := sc.Geometry
	for _, want := range []string{
		`width="` + num(g.ExportWidth) + `"`,
		`height="` + num(g.ExportHeight) + `"`,
		`rotate(90)`,
		`stroke-linecap="round"`,
		`A&amp;B`,
		`stroke="#1f2937"`,
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("SVG 缺少 %q:\n%s", want, doc)
		}
	}
	// 描边图标不填充
	if strings.Count(doc, `fill="none"`) == 0 {
		t.Fatalf("描边图标应使用 fill=none")
	}
}

func TestVectorizeEscapesUserAttributes(t *testing.T) {
	sc := scene(t, false, func(s *settings.Settings) {
		s.Mode = settings.ModeIconWithText
		s.Text = `say "hi" <now>`
		s.FontFamily = `Brand "Pro" & <Co>`
	})
	out, err := New().Vectorize(context.Background(), sc.Clean, capture.Options{})
	if err != nil {
		t.Fatalf("矢量化失败: %v", err)
	}

	var family, text string
	dec := xml.NewDecoder(bytes.NewReader(out))
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("SVG 不是合法的 XML: %v\n%s", err, out)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "text" {
				inText = true
				for _, a := range el.Attr {
					if a.Name.Local == "font-family" {
						family = a.Value
					}
				}
			}
		case xml.CharData:
			if inText {
				text += string(el)
			}
		case xml.EndElement:
			if el.Name.Local == "text" {
				inText = false
			}
		}
	}
	if !strings.HasPrefix(family, `Brand "Pro" & <Co>, `) {
		t.Fatalf("字体族应原样保留，实际 %q", family)
	}
	if text != `say "hi" <now>` {
		t.Fatalf("文本内容应原样保留，实际 %q", text)
	}
}

func TestVectorizeOmitsFillWhenTransparentOpacity(t *testing.T) {
	sc := scene(t, false, nil)
	out, err := New().Vectorize(context.Background(), sc.Clean, capture.Options{})
	if err != nil {
		t.Fatalf("矢量化失败: %v", err)
	}
	if strings.Contains(string(out), `fill="#ffffff"`) {
		t.Fatalf("填充透明度为 0 时不应写出填充颜色:\n%s", out)
	}
	filled, _ := New().Vectorize(context.Background(), scene(t, true, nil).Clean, capture.Options{})
	if !strings.Contains(string(filled), `fill="#ffffff"`) {
		t.Fatalf("填充图标应写出填充颜色:\n%s", filled)
	}
}

func TestRasterizeScalesAndKeepsTransparency(t *testing.T) {
	sc := scene(t, true, func(s *settings.Settings) {
		s.Mode = settings.ModeIconWithText
		s.Text = "Go"
	})
	img, err := New().Rasterize(context.Background(), sc.Clean, capture.Options{ScaleFactor: capture.DefaultScale})
	if err != nil {
		t.Fatalf("光栅化失败: %v", err)
	}
	wantW, wantH := capture.PixelSize(sc.Clean, capture.Options{ScaleFactor: capture.DefaultScale})
	if img.Bounds() != image.Rect(0, 0, wantW, wantH) {
		t.Fatalf("位图尺寸应为 %dx%d，实际 %v", wantW, wantH, img.Bounds())
	}
	if _, _, _, a := img.At(1, 1).RGBA(); a != 0 {
		t.Fatalf("透明背景下角落应透明")
	}
	cx, cy := sc.Geometry.Container.Center()
	if _, _, _, a := img.At(int(cx*3), int(cy*3)).RGBA(); a == 0 {
		t.Fatalf("容器中心应有内容")
	}
	if !hasInk(img, sc.Geometry.Text, 3) {
		t.Fatalf("文本区域应绘制文字")
	}
}

func TestRasterizeErrors(t *testing.T) {
	r := New()
	if _, err := r.Rasterize(context.Background(), &projector.Node{}, capture.Options{}); !errors.Is(err, capture.ErrEmptyNode) {
		t.Fatalf("零尺寸节点应返回 ErrEmptyNode，实际 %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Rasterize(ctx, scene(t, true, nil).Clean, capture.Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("应返回 context.Canceled，实际 %v", err)
	}
}

func TestMeasureText(t *testing.T) {
	r := New()
	f := geometry.Font{Family: "Go", Weight: 400}
	a, err := r.MeasureText("Logo", f, 58)
	if err != nil || a <= 0 {
		t.Fatalf("测量失败: %g %v", a, err)
	}
	b, _ := r.MeasureText("Logo Logo", f, 58)
	if b <= a {
		t.Fatalf("更长的文本应更宽: %g <= %g", b, a)
	}
}

func TestRectPath(t *testing.T) {
	if got := rectPath(geometry.Rect{X: 1, Y: 2, Width: 10, Height: 4}, 0); got != "M1 2H11V6H1Z" {
		t.Fatalf("直角矩形路径错误: %s", got)
	}
	if got := rectPath(geometry.Rect{Width: 10, Height: 10}, 50); !strings.Contains(got, "A5 5") {
		t.Fatalf("圆角应被限制为边长一半: %s", got)
	}
}

func hasInk(img image.Image, box *geometry.TextBox, scale float64) bool {
	if box == nil {
		return false
	}
	for y := int(box.Y * scale); y < int((box.Y+box.Height)*scale); y++ {
		for x := int(box.X * scale); x < int((box.X+box.Width)*scale); x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0 {
				return true
			}
		}
	}
	return false
}
