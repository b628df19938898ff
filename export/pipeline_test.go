package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ByLCY/logoforge/capture"
	"github.com/ByLCY/logoforge/geometry"
	"github.com/ByLCY/logoforge/icons"
	"github.com/ByLCY/logoforge/projector"
	"github.com/ByLCY/logoforge/settings"
	"github.com/ByLCY/logoforge/viewport"
)

type stubService struct {
	seen     []projector.Chrome
	opts     []capture.Options
	err      error
	panicMsg string
	img      image.Image
}

func (s *stubService) record(node *projector.Node, opts capture.Options) error {
	s.seen = append(s.seen, node.Chrome())
	s.opts = append(s.opts, opts)
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.err
}

func (s *stubService) Rasterize(_ context.Context, node *projector.Node, opts capture.Options) (image.Image, error) {
	if err := s.record(node, opts); err != nil {
		return nil, err
	}
	if s.img != nil {
		return s.img, nil
	}
	w, h := capture.PixelSize(node, opts)
	return image.NewNRGBA(image.Rect(0, 0, w, h)), nil
}

func (s *stubService) Vectorize(_ context.Context, node *projector.Node, opts capture.Options) ([]byte, error) {
	if err := s.record(node, opts); err != nil {
		return nil, err
	}
	return []byte("<svg/>"), nil
}

type stubDownloader struct {
	names []string
	uris  []string
	err   error
}

func (d *stubDownloader) Download(filename, dataURI string) error {
	if d.err != nil {
		return d.err
	}
	d.names = append(d.names, filename)
	d.uris = append(d.uris, dataURI)
	return nil
}

type harness struct {
	service  *stubService
	download *stubDownloader
	notices  []string
	logs     bytes.Buffer
	pipeline *Pipeline
}

func newHarness() *harness {
	h := &harness{service: &stubService{}, download: &stubDownloader{}}
	h.pipeline = NewPipeline(h.service, h.download, Options{
		Logger:   log.New(&h.logs, "", 0),
		Notifier: NotifierFunc(func(msg string) { h.notices = append(h.notices, msg) }),
	})
	return h
}

func sceneWithIcon(t *testing.T) *projector.Scene {
	t.Helper()
	s := settings.Default(viewport.Regular).SelectIcon(icons.Ref{Set: icons.DefaultSet, Name: "bolt"}, "Bolt", false)
	return projector.Project(s, geometry.Resolve(s, geometry.Options{}), icons.Builtin())
}

var hover = projector.Chrome{Outline: settings.RGB(255, 0, 0), OutlineWidth: 2, Background: settings.RGB(240, 240, 240)}

func TestExportClearsChromeDuringCaptureAndRestoresAfter(t *testing.T) {
	for _, format := range []capture.Format{capture.FormatPNG, capture.FormatSVG} {
		h := newHarness()
		sc := sceneWithIcon(t)
		sc.Clean.SetChrome(hover)

		out := h.pipeline.Export(context.Background(), format, SceneTarget(sc))
		if out.Status != Downloaded || out.Err != nil {
			t.Fatalf("%s: 应成功下载，实际 %v %v", format, out.Status, out.Err)
		}
		if len(h.service.seen) != 1 || !h.service.seen[0].IsZero() {
			t.Fatalf("%s: 捕获时外观应已清除: %+v", format, h.service.seen)
		}
		if sc.Clean.Chrome() != hover {
			t.Fatalf("%s: 导出后外观应恢复", format)
		}
		if out.Filename != "logo."+format.Ext() || h.download.names[0] != out.Filename {
			t.Fatalf("%s: 文件名错误 %q", format, out.Filename)
		}
		if !strings.HasPrefix(h.download.uris[0], "data:"+format.MIME()+";base64,") {
			t.Fatalf("%s: 数据 URI 错误", format)
		}
		if !h.service.opts[0].BackgroundColor.IsTransparent() {
			t.Fatalf("%s: 导出背景应透明", format)
		}
		if len(h.notices) != 0 {
			t.Fatalf("%s: 成功时不应通知", format)
		}
	}
}

func TestExportPNGUsesDefaultScale(t *testing.T) {
	h := newHarness()
	sc := sceneWithIcon(t)
	h.pipeline.Export(context.Background(), capture.FormatPNG, SceneTarget(sc))
	if got := h.service.opts[0].ScaleFactor; got != capture.DefaultScale {
		t.Fatalf("PNG 倍率应为 %g，实际 %g", capture.DefaultScale, got)
	}
	_, data, err := DecodeDataURI(h.download.uris[0])
	if err != nil {
		t.Fatalf("解析数据 URI 失败: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("输出不是 PNG: %v", err)
	}
	w, hh := capture.PixelSize(sc.Clean, capture.Options{ScaleFactor: capture.DefaultScale})
	if img.Bounds().Dx() != w || img.Bounds().Dy() != hh {
		t.Fatalf("PNG 尺寸应为 %dx%d，实际 %v", w, hh, img.Bounds())
	}
}

func TestExportResamplesOffByOneRaster(t *testing.T) {
	h := newHarness()
	sc := sceneWithIcon(t)
	w, hh := capture.PixelSize(sc.Clean, capture.Options{ScaleFactor: capture.DefaultScale})
	h.service.img = image.NewNRGBA(image.Rect(0, 0, w+1, hh-1))
	h.pipeline.Export(context.Background(), capture.FormatPNG, SceneTarget(sc))
	_, data, _ := DecodeDataURI(h.download.uris[0])
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width != w || cfg.Height != hh {
		t.Fatalf("位图应被校正为 %dx%d，实际 %+v %v", w, hh, cfg, err)
	}
}

func TestExportFailureRestoresAndNotifies(t *testing.T) {
	cases := map[string]func(h *harness){
		"capture error": func(h *harness) { h.service.err = errors.New("tainted canvas") },
		"panic":         func(h *harness) { h.service.panicMsg = "detached node" },
		"download":      func(h *harness) { h.download.err = errors.New("disk full") },
	}
	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness()
			setup(h)
			sc := sceneWithIcon(t)
			sc.Clean.SetChrome(hover)

			out := h.pipeline.Export(context.Background(), capture.FormatPNG, SceneTarget(sc))
			if out.Status != Failed || out.Err == nil {
				t.Fatalf("应返回失败，实际 %v", out.Status)
			}
			if sc.Clean.Chrome() != hover {
				t.Fatalf("失败后外观必须恢复")
			}
			if len(h.download.names) != 0 {
				t.Fatalf("失败时不应产生下载")
			}
			if len(h.notices) != 1 || h.notices[0] != GenericFailureNotice {
				t.Fatalf("应通知一次通用失败提示: %v", h.notices)
			}
			if !strings.Contains(h.logs.String(), "导出 png 失败") {
				t.Fatalf("失败应写日志: %q", h.logs.String())
			}
		})
	}
}

func TestExportUnknownFormat(t *testing.T) {
	h := newHarness()
	sc := sceneWithIcon(t)
	out := h.pipeline.Export(context.Background(), capture.Format("gif"), SceneTarget(sc))
	if out.Status != Failed || !errors.Is(out.Err, ErrUnknownFormat) {
		t.Fatalf("未知格式应失败并返回 ErrUnknownFormat，实际 %v", out.Err)
	}
	if len(h.service.seen) != 0 {
		t.Fatalf("未知格式不应调用捕获服务")
	}
}

func TestExportWithoutIconIsSilentNoop(t *testing.T) {
	h := newHarness()
	s := settings.Default(viewport.Compact)
	sc := projector.Project(s, geometry.Resolve(s, geometry.Options{}), icons.Builtin())

	out := h.pipeline.Export(context.Background(), capture.FormatSVG, SceneTarget(sc))
	if out.Status != Skipped || out.Err != nil {
		t.Fatalf("无图标时应静默跳过，实际 %v %v", out.Status, out.Err)
	}
	if len(h.service.seen) != 0 || len(h.download.names) != 0 || len(h.notices) != 0 || h.logs.Len() != 0 {
		t.Fatalf("无图标时不应有任何副作用")
	}
}

func TestExportFallsBackToDisplayTree(t *testing.T) {
	h := newHarness()
	sc := sceneWithIcon(t)
	sc.SetHover(true)
	target := Target{DisplayID: projector.DisplayID, Document: sc}

	out := h.pipeline.Export(context.Background(), capture.FormatSVG, target)
	if out.Status != Downloaded {
		t.Fatalf("没有干净树时应捕获展示树，实际 %v", out.Status)
	}
	if !h.service.seen[0].IsZero() {
		t.Fatalf("展示树的悬停外观在捕获时应被清除")
	}
	if sc.Display.Chrome().IsZero() {
		t.Fatalf("捕获后悬停外观应恢复")
	}
}

func TestExportCancelledContext(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := h.pipeline.Export(ctx, capture.FormatPNG, SceneTarget(sceneWithIcon(t)))
	if out.Status != Failed || !errors.Is(out.Err, context.Canceled) {
		t.Fatalf("已取消的 context 应导致失败，实际 %v %v", out.Status, out.Err)
	}
	if len(h.service.seen) != 0 {
		t.Fatalf("取消后不应调用捕获服务")
	}
}

func TestTimestampedName(t *testing.T) {
	now := func() time.Time { return time.UnixMilli(1700000000123) }
	name := TimestampedName("beautified-screenshot", now)(capture.FormatPNG)
	if name != "beautified-screenshot-1700000000123.png" {
		t.Fatalf("时间戳文件名错误: %s", name)
	}
}

func TestFileDownloaderWritesDecodedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	d := FileDownloader{Dir: dir}
	if err := d.Download("logo.svg", DataURI(capture.FormatSVG, []byte("<svg/>"))); err != nil {
		t.Fatalf("下载失败: %v", err)
	}
	f, err := os.Open(filepath.Join(dir, "logo.svg"))
	if err != nil {
		t.Fatalf("文件未写入: %v", err)
	}
	defer f.Close()
	data, _ := io.ReadAll(f)
	if string(data) != "<svg/>" {
		t.Fatalf("文件内容错误: %q", data)
	}
	if err := d.Download("../escape.svg", DataURI(capture.FormatSVG, nil)); err == nil {
		t.Fatalf("包含路径的文件名应被拒绝")
	}
	if err := d.Download("x.png", "not-a-uri"); err == nil {
		t.Fatalf("非法数据 URI 应返回错误")
	}
}

// gatedService 在捕获中阻塞，直到测试放行，用于构造重叠的导出。
type gatedService struct {
	entered chan struct{}
	release chan struct{}
}

func (g *gatedService) Rasterize(ctx context.Context, node *projector.Node, opts capture.Options) (image.Image, error) {
	if _, err := g.Vectorize(ctx, node, opts); err != nil {
		return nil, err
	}
	w, h := capture.PixelSize(node, opts)
	return image.NewNRGBA(image.Rect(0, 0, w, h)), nil
}

func (g *gatedService) Vectorize(_ context.Context, node *projector.Node, _ capture.Options) ([]byte, error) {
	if !node.Chrome().IsZero() {
		return nil, errors.New("捕获时外观未清除")
	}
	g.entered <- struct{}{}
	<-g.release
	return []byte("<svg/>"), nil
}

type lockedDownloader struct {
	mu    sync.Mutex
	names []string
}

func (d *lockedDownloader) Download(filename, _ string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names = append(d.names, filename)
	return nil
}

func TestOverlappingExportsRestoreChrome(t *testing.T) {
	gate := &gatedService{entered: make(chan struct{}), release: make(chan struct{})}
	dl := &lockedDownloader{}
	pipeline := NewPipeline(gate, dl, Options{Logger: log.New(io.Discard, "", 0)})
	sc := sceneWithIcon(t)
	sc.Clean.SetChrome(hover)

	results := make(chan Outcome, 2)
	for _, format := range []capture.Format{capture.FormatPNG, capture.FormatSVG} {
		go func(format capture.Format) {
			results <- pipeline.Export(context.Background(), format, SceneTarget(sc))
		}(format)
	}
	<-gate.entered
	<-gate.entered
	if !sc.Clean.Chrome().IsZero() {
		t.Fatalf("两次捕获进行中外观应保持清除")
	}

	gate.release <- struct{}{}
	first := <-results
	if first.Status != Downloaded {
		t.Fatalf("第一次导出应成功，实际 %v %v", first.Status, first.Err)
	}
	if !sc.Clean.Chrome().IsZero() || !sc.Clean.Capturing() {
		t.Fatalf("仍有捕获进行中时不应恢复外观")
	}

	gate.release <- struct{}{}
	second := <-results
	if second.Status != Downloaded {
		t.Fatalf("第二次导出应成功，实际 %v %v", second.Status, second.Err)
	}
	if got := sc.Clean.Chrome(); got != hover {
		t.Fatalf("全部导出结束后外观应恢复为悬停样式，实际 %+v", got)
	}
	if len(dl.names) != 2 {
		t.Fatalf("应下载两个文件，实际 %v", dl.names)
	}
}
