package icons

import "sort"

// DefaultSet 是内置图标集合的名称。
const DefaultSet = "lucide"

const builtinViewBox = 24

// 内置图标均为 24×24 单路径，既可描边（outline）也可填充（filled）。
var builtinPaths = map[string]struct {
	title string
	path  string
}{
	"star":     {"Star", "M12 2l3.09 6.26L22 9.27l-5 4.87 1.18 6.88L12 17.77l-6.18 3.25L7 14.14 2 9.27l6.91-1.01L12 2z"},
	"heart":    {"Heart", "M20.84 4.61a5.5 5.5 0 0 0-7.78 0L12 5.67l-1.06-1.06a5.5 5.5 0 0 0-7.78 7.78l1.06 1.06L12 21.23l7.78-7.78 1.06-1.06a5.5 5.5 0 0 0 0-7.78z"},
	"bolt":     {"Bolt", "M13 2L3 14h9l-1 8 10-12h-9l1-8z"},
	"circle":   {"Circle", "M22 12a10 10 0 1 1-20 0a10 10 0 1 1 20 0z"},
	"square":   {"Square", "M3 3h18v18H3z"},
	"home":     {"Home", "M3 9l9-7 9 7v11a2 2 0 0 1-2 2H5a2 2 0 0 1-2-2z"},
	"triangle": {"Triangle", "M12 2L22 20H2z"},
	"check":    {"Check", "M20 6L9 17l-5-5"},
	"shield":   {"Shield", "M12 22s8-4 8-10V5l-8-3-8 3v7c0 6 8 10 8 10z"},
}

type builtinCatalog struct{}

// Builtin 返回内置图标目录。
func Builtin() Catalog { return builtinCatalog{} }

func (builtinCatalog) Lookup(ref Ref) (Glyph, bool) {
	if ref.Set != "" && ref.Set != DefaultSet {
		return Glyph{}, false
	}
	entry, ok := builtinPaths[ref.Name]
	if !ok {
		return Glyph{}, false
	}
	return Glyph{
		Ref:     Ref{Set: DefaultSet, Name: ref.Name},
		Title:   entry.title,
		ViewBox: builtinViewBox,
		Path:    entry.path,
	}, true
}

// BuiltinNames 返回排好序的内置图标名称。
func BuiltinNames() []string {
	names := make([]string, 0, len(builtinPaths))
	for name := range builtinPaths {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
