package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/logoforge/capture"
	canvascapture "github.com/ByLCY/logoforge/capture/canvas"
	"github.com/ByLCY/logoforge/capture/svgraster"
	"github.com/ByLCY/logoforge/config"
	"github.com/ByLCY/logoforge/dsl"
	"github.com/ByLCY/logoforge/export"
	"github.com/ByLCY/logoforge/geometry"
	"github.com/ByLCY/logoforge/session"
	"github.com/ByLCY/logoforge/settings"
	"github.com/ByLCY/logoforge/viewport"
)

// flags 保存命令行参数，零值表示沿用配置文件或 .logo 文件中的值。
type flags struct {
	input       string
	outDir      string
	formats     string
	width       int
	scale       float64
	debug       string
	dataJSON    string
	configPath  string
	backend     string
	measureText bool
}

func main() {
	var f flags
	flag.StringVar(&f.input, "in", "examples/demo.logo", ".logo 描述文件路径")
	flag.StringVar(&f.outDir, "out", "", "输出目录（默认取配置文件中的 out_dir）")
	flag.StringVar(&f.formats, "format", "", "导出格式，逗号分隔：png,svg")
	flag.IntVar(&f.width, "width", 0, "模拟的视口宽度（px），决定默认尺寸预设")
	flag.Float64Var(&f.scale, "scale", 0, "PNG 像素倍率")
	flag.StringVar(&f.debug, "debug", "", "几何调试 JSON 输出路径")
	flag.StringVar(&f.dataJSON, "data", "", "用于 ${...} 插值的 JSON 数据")
	flag.StringVar(&f.configPath, "config", "", "YAML 配置文件路径")
	flag.StringVar(&f.backend, "backend", "", "捕获后端：canvas 或 svgraster")
	flag.BoolVar(&f.measureText, "measure-text", false, "使用字体实测文本宽度代替估算")
	flag.Parse()
	log.SetFlags(0)

	files, err := run(context.Background(), f, log.Default())
	if err != nil {
		log.Fatalf("导出徽标失败: %v", err)
	}
	for _, name := range files {
		fmt.Printf("已生成：%s\n", name)
	}
}

// run 串联配置、解析、会话与导出，返回生成的文件路径。
func run(ctx context.Context, f flags, logger *log.Logger) ([]string, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	applyFlags(&cfg, f)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var data any
	if f.dataJSON != "" {
		if err := json.Unmarshal([]byte(f.dataJSON), &data); err != nil {
			return nil, fmt.Errorf("解析 data JSON 失败: %w", err)
		}
	}

	file, err := os.Open(f.input)
	if err != nil {
		return nil, fmt.Errorf("无法打开描述文件 %s: %w", f.input, err)
	}
	defer file.Close()
	doc, err := dsl.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("解析描述文件失败: %w", err)
	}

	regular, compact := cfg.RegularPreset(), cfg.CompactPreset()
	base := settings.DefaultWithPresets(viewport.ClassFor(cfg.Width), regular, compact)
	logo, err := dsl.Decode(doc, base, data)
	if err != nil {
		return nil, fmt.Errorf("解码描述文件失败: %w", err)
	}

	formats, err := pickFormats(f, cfg, logo)
	if err != nil {
		return nil, err
	}
	scale := cfg.Scale
	if f.scale <= 0 && logo.Scale > 0 {
		scale = logo.Scale
	}

	service, measurer := newBackend(cfg.Backend)
	naming := export.LogoName
	if cfg.Naming == config.NamingTimestamp {
		naming = export.TimestampedName(cfg.Prefix, nil)
	}
	var failures []string
	pipeline := export.NewPipeline(service, export.FileDownloader{Dir: cfg.OutDir}, export.Options{
		Logger:   logger,
		Notifier: export.NotifierFunc(func(msg string) { failures = append(failures, msg) }),
		Naming:   naming,
		Scale:    scale,
	})

	opts := session.Options{Logger: logger, Regular: &regular, Compact: &compact, Pipeline: pipeline}
	if cfg.MeasureText {
		opts.Measurer = measurer
	}
	sess := session.New(cfg.Width, opts)
	sess.Update(logo.Settings)

	if f.debug != "" {
		if err := writeDebug(sess.Geometry(), f.debug); err != nil {
			return nil, err
		}
	}
	if !sess.Scene().HasIcon() {
		logger.Printf("%s 未选择图标，跳过导出", logo.Name)
		return nil, nil
	}

	var written []string
	for _, format := range formats {
		out := sess.Export(ctx, format)
		switch out.Status {
		case export.Downloaded:
			written = append(written, filepath.Join(cfg.OutDir, out.Filename))
		case export.Failed:
			return written, fmt.Errorf("%s: %w", strings.Join(failures, "; "), out.Err)
		}
	}
	return written, nil
}

func applyFlags(cfg *config.Config, f flags) {
	if f.outDir != "" {
		cfg.OutDir = f.outDir
	}
	if f.width > 0 {
		cfg.Width = f.width
	}
	if f.scale > 0 {
		cfg.Scale = f.scale
	}
	if f.backend != "" {
		cfg.Backend = f.backend
	}
	if f.measureText {
		cfg.MeasureText = true
	}
}

// pickFormats 的优先级：命令行 > .logo 文件的 export 指令 > 配置文件。
func pickFormats(f flags, cfg config.Config, logo *dsl.Logo) ([]capture.Format, error) {
	if f.formats != "" {
		var out []capture.Format
		for _, part := range strings.Split(f.formats, ",") {
			format, err := capture.ParseFormat(part)
			if err != nil {
				return nil, err
			}
			out = append(out, format)
		}
		return out, nil
	}
	if len(logo.Formats) > 0 {
		return logo.Formats, nil
	}
	return cfg.ExportFormats()
}

func newBackend(name string) (capture.Service, geometry.TextMeasurer) {
	if name == config.BackendSVGRaster {
		r := svgraster.New()
		return r, r
	}
	r := canvascapture.New()
	return r, r
}

func writeDebug(g geometry.Geometry, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := geometry.WriteDebugJSON(g, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
