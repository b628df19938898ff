// Package capture 定义把可视树节点转换为图像或矢量文件的服务边界。
// 具体后端位于子包 canvas 与 svgraster。
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/ByLCY/logoforge/projector"
	"github.com/ByLCY/logoforge/settings"
)

// DefaultScale 是 PNG 导出时的像素倍率。
const DefaultScale = 3.0

// ErrEmptyNode 表示传入的节点为空或尺寸为零。
var ErrEmptyNode = errors.New("捕获目标为空")

// Format 是导出文件格式。
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat 解析格式名称，大小写不敏感。
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatPNG:
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	}
	return "", fmt.Errorf("不支持的导出格式 %q", value)
}

// Ext 返回文件扩展名（不含点）。
func (f Format) Ext() string { return string(f) }

// MIME 返回数据 URI 使用的媒体类型。
func (f Format) MIME() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatSVG:
		return "image/svg+xml"
	}
	return "application/octet-stream"
}

// Options 控制一次捕获。
type Options struct {
	// BackgroundColor 为 settings.Transparent 时输出保持透明。
	BackgroundColor settings.Color
	// ScaleFactor 仅作用于位图输出，<=0 时按 1 处理。
	ScaleFactor float64
}

// Scale 返回有效的像素倍率。
func (o Options) Scale() float64 {
	if o.ScaleFactor <= 0 {
		return 1
	}
	return o.ScaleFactor
}

// Service 将节点转换为位图或 SVG 文本。
type Service interface {
	Rasterize(ctx context.Context, node *projector.Node, opts Options) (image.Image, error)
	Vectorize(ctx context.Context, node *projector.Node, opts Options) ([]byte, error)
}

// Validate 检查节点是否可以被捕获。
func Validate(node *projector.Node) error {
	if node == nil || node.Rect.Width <= 0 || node.Rect.Height <= 0 {
		return ErrEmptyNode
	}
	return nil
}

// PixelSize 返回位图输出的整数尺寸。
func PixelSize(node *projector.Node, opts Options) (int, int) {
	scale := opts.Scale()
	w := int(node.Rect.Width*scale + 0.5)
	h := int(node.Rect.Height*scale + 0.5)
	return max(w, 1), max(h, 1)
}
