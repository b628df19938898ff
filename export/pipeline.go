// Package export 负责把干净树交给捕获服务并生成可下载的文件。
// 无论捕获成功、失败还是 panic，目标节点的外观都会被恢复。
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"

	"github.com/disintegration/imaging"

	"github.com/ByLCY/logoforge/capture"
	"github.com/ByLCY/logoforge/projector"
	"github.com/ByLCY/logoforge/settings"
)

// GenericFailureNotice 是导出失败时展示给用户的唯一提示。
const GenericFailureNotice = "Sorry, the logo export failed. Please try again."

// ErrUnknownFormat 表示请求了不支持的导出格式。
var ErrUnknownFormat = errors.New("未知的导出格式")

// Downloader 根据文件名与数据 URI 保存文件。
type Downloader interface {
	Download(filename, dataURI string) error
}

// Notifier 向用户展示提示信息。
type Notifier interface {
	Notify(message string)
}

// NotifierFunc 让普通函数满足 Notifier。
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// NodeFinder 按标识查找可捕获的节点，*projector.Scene 实现了它。
type NodeFinder interface {
	NodeByID(id string) *projector.Node
}

// Target 描述一次导出的目标：优先使用 Clean，为空时按 DisplayID 在 Document 中查找。
type Target struct {
	Clean     *projector.Node
	DisplayID string
	Document  NodeFinder
}

// SceneTarget 由场景构造导出目标。
func SceneTarget(sc *projector.Scene) Target {
	if sc == nil {
		return Target{}
	}
	return Target{Clean: sc.Clean, DisplayID: projector.DisplayID, Document: sc}
}

func (t Target) resolve() *projector.Node {
	if t.Clean != nil {
		return t.Clean
	}
	if t.Document == nil || t.DisplayID == "" {
		return nil
	}
	return t.Document.NodeByID(t.DisplayID)
}

// Status 是导出结果的分类。
type Status int

const (
	Skipped Status = iota
	Downloaded
	Failed
)

func (s Status) String() string {
	switch s {
	case Downloaded:
		return "downloaded"
	case Failed:
		return "failed"
	default:
		return "skipped"
	}
}

// Outcome 是一次导出的结果。Failed 时 Err 非空且不会触发下载。
type Outcome struct {
	Status   Status
	Filename string
	Err      error
}

// Options 配置导出流水线，零值可用。
type Options struct {
	Logger   *log.Logger
	Notifier Notifier
	// Naming 决定文件名，默认 LogoName。
	Naming Naming
	// Scale 是 PNG 的像素倍率，<=0 时使用 capture.DefaultScale。
	Scale float64
}

// Pipeline 串联捕获服务与下载器。没有全局锁：每次调用只快照和恢复自己的目标。
type Pipeline struct {
	service    capture.Service
	downloader Downloader
	logger     *log.Logger
	notifier   Notifier
	naming     Naming
	scale      float64
}

// NewPipeline 创建导出流水线。
func NewPipeline(service capture.Service, downloader Downloader, opts Options) *Pipeline {
	p := &Pipeline{
		service:    service,
		downloader: downloader,
		logger:     opts.Logger,
		notifier:   opts.Notifier,
		naming:     opts.Naming,
		scale:      opts.Scale,
	}
	if p.logger == nil {
		p.logger = log.Default()
	}
	if p.naming == nil {
		p.naming = LogoName
	}
	if p.scale <= 0 {
		p.scale = capture.DefaultScale
	}
	return p
}

// Export 捕获目标并触发下载。没有可捕获的目标时静默跳过；
// 任何失败都会被记录、通知，并且不产生下载。
func (p *Pipeline) Export(ctx context.Context, format capture.Format, target Target) (out Outcome) {
	node := target.resolve()
	if node == nil {
		return Outcome{Status: Skipped}
	}

	release := acquire(node)
	defer release()
	defer func() {
		if r := recover(); r != nil {
			out = p.fail(format, fmt.Errorf("捕获过程异常: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return p.fail(format, err)
	}
	data, err := p.capture(ctx, format, node)
	if err != nil {
		return p.fail(format, err)
	}
	filename := p.naming(format)
	if err := p.downloader.Download(filename, DataURI(format, data)); err != nil {
		return p.fail(format, fmt.Errorf("下载 %s 失败: %w", filename, err))
	}
	return Outcome{Status: Downloaded, Filename: filename}
}

func (p *Pipeline) capture(ctx context.Context, format capture.Format, node *projector.Node) ([]byte, error) {
	opts := capture.Options{BackgroundColor: settings.Transparent}
	switch format {
	case capture.FormatPNG:
		opts.ScaleFactor = p.scale
		img, err := p.service.Rasterize(ctx, node, opts)
		if err != nil {
			return nil, fmt.Errorf("光栅化失败: %w", err)
		}
		if img == nil {
			return nil, fmt.Errorf("光栅化失败: %w", capture.ErrEmptyNode)
		}
		return encodePNG(fitPixels(img, node, opts))
	case capture.FormatSVG:
		data, err := p.service.Vectorize(ctx, node, opts)
		if err != nil {
			return nil, fmt.Errorf("矢量化失败: %w", err)
		}
		if len(data) == 0 {
			return nil, fmt.Errorf("矢量化失败: %w", capture.ErrEmptyNode)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func (p *Pipeline) fail(format capture.Format, err error) Outcome {
	p.logger.Printf("导出 %s 失败: %v", format, err)
	if p.notifier != nil {
		p.notifier.Notify(GenericFailureNotice)
	}
	return Outcome{Status: Failed, Err: err}
}

// acquire 清除节点外观，返回的函数负责恢复。同一节点上重叠的导出共享一次快照。
func acquire(node *projector.Node) func() {
	return node.BeginCapture()
}

// fitPixels 保证位图尺寸与导出尺寸乘以倍率完全一致，后端取整误差用重采样抹平。
func fitPixels(img image.Image, node *projector.Node, opts capture.Options) image.Image {
	w, h := capture.PixelSize(node, opts)
	if b := img.Bounds(); b.Dx() == w && b.Dy() == h {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}
