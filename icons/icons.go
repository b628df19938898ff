// Package icons 定义图标目录与核心之间的边界：不透明的图标引用与可绘制的字形。
package icons

import (
	"fmt"
	"strings"
)

// Ref 是图标的不透明引用，零值表示未选择图标。
type Ref struct {
	Set  string `json:"set" yaml:"set"`
	Name string `json:"name" yaml:"name"`
}

// IsZero 判断是否未选择图标。
func (r Ref) IsZero() bool { return r.Set == "" && r.Name == "" }

func (r Ref) String() string {
	if r.IsZero() {
		return ""
	}
	if r.Set == "" {
		return r.Name
	}
	return r.Set + ":" + r.Name
}

// ParseRef 解析 "set:name" 形式的引用；省略 set 时归入 DefaultSet。
func ParseRef(value string) (Ref, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return Ref{}, nil
	}
	set, name, found := strings.Cut(v, ":")
	if !found {
		return Ref{Set: DefaultSet, Name: v}, nil
	}
	if strings.TrimSpace(name) == "" {
		return Ref{}, fmt.Errorf("图标引用 %q 缺少名称", value)
	}
	return Ref{Set: strings.TrimSpace(set), Name: strings.TrimSpace(name)}, nil
}

// Glyph 是一个可绘制的矢量图标，Path 为 SVG path data，坐标位于 ViewBox×ViewBox 内。
type Glyph struct {
	Ref     Ref
	Title   string
	ViewBox float64
	Path    string
}

// Catalog 由外部图标目录实现；核心只依赖查找能力。
type Catalog interface {
	Lookup(ref Ref) (Glyph, bool)
}

// CatalogFunc 将普通函数适配为 Catalog。
type CatalogFunc func(ref Ref) (Glyph, bool)

func (f CatalogFunc) Lookup(ref Ref) (Glyph, bool) { return f(ref) }
