// Package projector 从同一份 Geometry 投影出两棵可视树：
// 展示树（带装饰、可交互）与干净树（仅供导出，显式像素尺寸）。
// 两者共享 layers 生成的图层，因此尺寸不会漂移。
package projector

import (
	"github.com/ByLCY/logoforge/geometry"
	"github.com/ByLCY/logoforge/icons"
	"github.com/ByLCY/logoforge/settings"
)

const (
	// DisplayID 是展示树根节点的稳定标识，在没有干净树时作为默认捕获目标。
	DisplayID = "logo-display"
	// CleanID 是干净树根节点的标识。
	CleanID = "logo-export"

	// LabelHeight 是展示树中图标名称标签占用的高度（px）。
	LabelHeight   = 28.0
	labelFontSize = 14.0

	// PlaceholderText 是未选择图标时展示树中的提示文字。
	PlaceholderText = "选择一个图标"
)

var (
	labelColor = settings.RGB(0x6b, 0x72, 0x80)
	hoverColor = settings.RGB(0x93, 0xc5, 0xfd)
)

// Scene 保存一次投影的结果。
type Scene struct {
	Geometry geometry.Geometry
	Display  *Node
	Clean    *Node // 未选择图标时为空
}

// Project 根据 Settings 与已解析的 Geometry 生成两棵树。
// 图标引用无法在目录中找到时按未选择处理。
func Project(s settings.Settings, g geometry.Geometry, catalog icons.Catalog) *Scene {
	var glyph *icons.Glyph
	if s.HasIcon() && catalog != nil {
		if found, ok := catalog.Lookup(s.Icon); ok {
			glyph = &found
		}
	}
	return &Scene{
		Geometry: g,
		Display:  displayTree(s, g, glyph),
		Clean:    cleanTree(s, g, glyph),
	}
}

// HasIcon 判断场景中是否有可导出的图标。
func (sc *Scene) HasIcon() bool { return sc != nil && sc.Clean != nil }

// NodeByID 按标识查找根节点。占位状态下的展示树不作为捕获目标。
func (sc *Scene) NodeByID(id string) *Node {
	if sc == nil {
		return nil
	}
	switch id {
	case CleanID:
		return sc.Clean
	case DisplayID:
		if sc.Display == nil || sc.Display.Find(LayerPlaceholder) != nil {
			return nil
		}
		return sc.Display
	}
	return nil
}

// SetHover 切换展示树的悬停描边。
func (sc *Scene) SetHover(on bool) {
	if sc == nil || sc.Display == nil {
		return
	}
	c := sc.Display.Chrome()
	if on {
		c.Outline = hoverColor
		c.OutlineWidth = 2
	} else {
		c.Outline = settings.Color{}
		c.OutlineWidth = 0
	}
	sc.Display.SetChrome(c)
}

func displayTree(s settings.Settings, g geometry.Geometry, glyph *icons.Glyph) *Node {
	root := &Node{
		ID:          DisplayID,
		Layer:       LayerRoot,
		Rect:        geometry.Rect{Width: g.ExportWidth, Height: g.ExportHeight + LabelHeight},
		Interactive: true,
		InFlow:      true,
	}
	root.Children = layers(s, g, glyph)
	if glyph == nil {
		root.Children = append(root.Children, &Node{
			Layer:       LayerPlaceholder,
			Rect:        g.Icon,
			Text:        PlaceholderText,
			Font:        geometry.Font{Family: s.FontFamily, Weight: 400},
			FontSize:    labelFontSize,
			Fill:        colorPtr(labelColor),
			FillOpacity: 1,
		})
		return root
	}
	label := s.IconName
	if label == "" {
		label = glyph.Title
	}
	root.Children = append(root.Children, &Node{
		Layer:       LayerLabel,
		Rect:        geometry.Rect{X: g.Container.X, Y: g.ExportHeight, Width: g.ContainerSize, Height: LabelHeight},
		Text:        label,
		Font:        geometry.Font{Family: s.FontFamily, Weight: 400},
		FontSize:    labelFontSize,
		Fill:        colorPtr(labelColor),
		FillOpacity: 1,
	})
	return root
}

func cleanTree(s settings.Settings, g geometry.Geometry, glyph *icons.Glyph) *Node {
	if glyph == nil {
		return nil
	}
	return &Node{
		ID:       CleanID,
		Layer:    LayerRoot,
		Rect:     geometry.Rect{Width: g.ExportWidth, Height: g.ExportHeight},
		Hidden:   true,
		Children: layers(s, g, glyph),
	}
}

// layers 生成两棵树共享的背景、边框、图标与文本图层。
func layers(s settings.Settings, g geometry.Geometry, glyph *icons.Glyph) []*Node {
	out := make([]*Node, 0, 4)

	bg := &Node{Layer: LayerBackground, Rect: g.Container, Radius: g.Radius}
	if !s.Background.IsTransparent() {
		bg.Fill = colorPtr(s.Background)
		bg.FillOpacity = 1
	}
	out = append(out, bg)

	if g.BorderWidth > 0 {
		// 描边沿路径中心绘制，向内收缩半个线宽使其完全落在容器内
		half := g.BorderWidth / 2
		out = append(out, &Node{
			Layer: LayerBorder,
			Rect: geometry.Rect{
				X:      g.Container.X + half,
				Y:      g.Container.Y + half,
				Width:  g.Container.Width - g.BorderWidth,
				Height: g.Container.Height - g.BorderWidth,
			},
			Radius:      max(g.Radius-half, 0),
			Stroke:      s.BorderColor,
			StrokeWidth: g.BorderWidth,
		})
	}

	if glyph != nil {
		icon := &Node{
			Layer:       LayerIcon,
			Rect:        g.Icon,
			Rotation:    g.Rotation,
			Glyph:       glyph,
			Stroke:      s.IconBorderColor,
			StrokeWidth: g.IconBorderWidth,
		}
		// 透明度为 0 时不读取填充颜色
		if g.FillOpacity > 0 {
			icon.Fill = colorPtr(s.FillColor)
			icon.FillOpacity = g.FillOpacity
		}
		out = append(out, icon)
	}

	if g.IsTextLayout && g.Text != nil {
		out = append(out, &Node{
			Layer:       LayerText,
			Rect:        geometry.Rect{X: g.Text.X, Y: g.Text.Y, Width: g.Text.Width, Height: g.Text.Height},
			Text:        g.Text.Content,
			Font:        geometry.Font{Family: s.FontFamily, Weight: s.FontWeight},
			FontSize:    g.Text.FontSize,
			Fill:        colorPtr(s.TextColor),
			FillOpacity: 1,
		})
	}
	return out
}

func colorPtr(c settings.Color) *settings.Color { return &c }
