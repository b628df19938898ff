package projector

import (
	"sync"

	"github.com/ByLCY/logoforge/geometry"
	"github.com/ByLCY/logoforge/icons"
	"github.com/ByLCY/logoforge/settings"
)

// Layer 标识节点在徽标中的角色。
type Layer string

const (
	LayerRoot        Layer = "root"
	LayerBackground  Layer = "background"
	LayerBorder      Layer = "border"
	LayerIcon        Layer = "icon"
	LayerText        Layer = "text"
	LayerLabel       Layer = "label"       // 仅展示树：图标名称
	LayerPlaceholder Layer = "placeholder" // 仅展示树：未选择图标时的占位
)

// Chrome 是节点上可变的外观状态（例如悬停描边、继承的背景）。
// 捕获后端会绘制它，因此导出前必须清除。
type Chrome struct {
	Outline      settings.Color
	OutlineWidth float64
	Background   settings.Color
}

// IsZero 判断是否没有任何外观装饰。
func (c Chrome) IsZero() bool {
	return c.OutlineWidth <= 0 && c.Background.IsTransparent()
}

// Node 是投影得到的可视树节点，坐标单位为 px，原点位于树根左上角。
type Node struct {
	ID    string
	Layer Layer
	Rect  geometry.Rect

	Radius      float64
	Fill        *settings.Color // 为空表示不填充
	FillOpacity float64
	Stroke      settings.Color
	StrokeWidth float64
	Rotation    float64 // 度，仅图标层使用

	Glyph    *icons.Glyph
	Text     string
	Font     geometry.Font
	FontSize float64

	Hidden      bool // 不可见（离屏渲染）
	Interactive bool
	InFlow      bool // 是否参与页面布局

	Children []*Node

	mu       sync.Mutex
	chrome   Chrome
	captures int    // 进行中的捕获数
	saved    Chrome // 第一次捕获前的外观，最后一次捕获结束时恢复
}

// Chrome 返回当前外观状态。
func (n *Node) Chrome() Chrome {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.chrome
}

// SetChrome 替换外观状态。捕获进行中只更新待恢复的值，节点保持清除状态。
func (n *Node) SetChrome(c Chrome) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.captures > 0 {
		n.saved = c
		return
	}
	n.chrome = c
}

// BeginCapture 清除外观以便捕获，可重入：只有第一次调用保存原外观。
// 返回的函数结束本次捕获，最后一个结束的捕获恢复外观，重复调用无效。
func (n *Node) BeginCapture() (end func()) {
	n.mu.Lock()
	if n.captures == 0 {
		n.saved = n.chrome
		n.chrome = Chrome{}
	}
	n.captures++
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			n.captures--
			if n.captures == 0 {
				n.chrome = n.saved
				n.saved = Chrome{}
			}
		})
	}
}

// Capturing 报告是否有捕获正在进行。
func (n *Node) Capturing() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.captures > 0
}

// Find 深度优先返回第一个指定层的节点。
func (n *Node) Find(layer Layer) *Node {
	if n == nil {
		return nil
	}
	if n.Layer == layer {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(layer); found != nil {
			return found
		}
	}
	return nil
}

// Walk 按绘制顺序（先父后子）遍历节点。
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// IconSize 返回图标槽的边长；占位状态下返回占位槽的边长。
func (n *Node) IconSize() float64 {
	if icon := n.Find(LayerIcon); icon != nil {
		return icon.Rect.Width
	}
	if slot := n.Find(LayerPlaceholder); slot != nil {
		return slot.Rect.Width
	}
	return 0
}

// ContainerSize 返回背景容器的边长。
func (n *Node) ContainerSize() float64 {
	if bg := n.Find(LayerBackground); bg != nil {
		return bg.Rect.Width
	}
	return 0
}
