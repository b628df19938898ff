// Package session 维护一次徽标编辑会话：持有当前 Settings，
// 每次整体替换后重新计算 Geometry 与两棵可视树，并在视口跨越断点时重新应用尺寸预设。
//
// Session 不是并发安全的，应由单个 goroutine 驱动；导出本身可以并发。
package session

import (
	"context"
	"errors"
	"log"

	"github.com/ByLCY/logoforge/capture"
	"github.com/ByLCY/logoforge/export"
	"github.com/ByLCY/logoforge/geometry"
	"github.com/ByLCY/logoforge/icons"
	"github.com/ByLCY/logoforge/projector"
	"github.com/ByLCY/logoforge/settings"
	"github.com/ByLCY/logoforge/viewport"
)

// ErrNoPipeline 表示会话未配置导出流水线。
var ErrNoPipeline = errors.New("会话未配置导出流水线")

// Options 配置会话，零值可用。
type Options struct {
	Logger   *log.Logger
	Catalog  icons.Catalog         // 为空时使用 icons.Builtin()
	Measurer geometry.TextMeasurer // 为空时使用宽度估算
	Regular  *settings.Preset      // 为空时使用内置预设
	Compact  *settings.Preset
	Pipeline *export.Pipeline
}

// Session 是一次编辑会话。
type Session struct {
	logger   *log.Logger
	catalog  icons.Catalog
	measurer geometry.TextMeasurer
	regular  settings.Preset
	compact  settings.Preset
	pipeline *export.Pipeline

	observer *viewport.Observer
	current  settings.Settings
	geometry geometry.Geometry
	scene    *projector.Scene
	hover    bool
}

// New 按视口宽度选择默认设置并创建会话。
func New(width int, opts Options) *Session {
	s := &Session{
		logger:   opts.Logger,
		catalog:  opts.Catalog,
		measurer: opts.Measurer,
		regular:  settings.RegularPreset,
		compact:  settings.CompactPreset,
		pipeline: opts.Pipeline,
		observer: viewport.NewObserver(width),
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.catalog == nil {
		s.catalog = icons.Builtin()
	}
	if opts.Regular != nil {
		s.regular = *opts.Regular
	}
	if opts.Compact != nil {
		s.compact = *opts.Compact
	}
	s.Update(settings.DefaultWithPresets(s.observer.Class(), s.regular, s.compact))
	return s
}

// Settings 返回当前设置的副本。
func (s *Session) Settings() settings.Settings { return s.current }

// Class 返回当前视口类别。
func (s *Session) Class() viewport.Class { return s.observer.Class() }

// Geometry 返回最近一次解析的几何结果。
func (s *Session) Geometry() geometry.Geometry { return s.geometry }

// Scene 返回最近一次投影的可视树。
func (s *Session) Scene() *projector.Scene { return s.scene }

// Update 用完整的新记录替换当前设置并重新计算。
func (s *Session) Update(next settings.Settings) {
	s.current = next
	s.geometry = geometry.Resolve(next, geometry.Options{Measurer: s.measurer})
	s.scene = projector.Project(next, s.geometry, s.catalog)
	if s.hover {
		s.scene.SetHover(true)
	}
}

// OnIconSelect 是图标选择器的回调，按填充/描边变体调整联动参数。
func (s *Session) OnIconSelect(ref icons.Ref, name string, filled bool) {
	s.Update(s.current.SelectIcon(ref, name, filled))
}

// Resize 记录新的视口宽度。只有跨越断点时才重新应用尺寸预设，返回是否发生跨越。
func (s *Session) Resize(width int) bool {
	class, crossed := s.observer.Observe(width)
	if !crossed {
		return false
	}
	preset := s.regular
	if class == viewport.Compact {
		preset = s.compact
	}
	s.logger.Printf("视口宽度 %d 跨越断点，切换到 %s 预设", width, class)
	s.Update(s.current.WithPreset(preset))
	return true
}

// SetHover 切换展示树的悬停外观，重新投影后保持该状态。
func (s *Session) SetHover(on bool) {
	s.hover = on
	s.scene.SetHover(on)
}

// Export 导出当前场景。
func (s *Session) Export(ctx context.Context, format capture.Format) export.Outcome {
	if s.pipeline == nil {
		return export.Outcome{Status: export.Failed, Err: ErrNoPipeline}
	}
	return s.pipeline.Export(ctx, format, export.SceneTarget(s.scene))
}
