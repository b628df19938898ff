package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultFamily 是未知字体族时使用的回退字体族。
const DefaultFamily = "Go"

// Face 描述一份内置字体文件。
type Face struct {
	Name   string // 例如 "Go-Bold"
	Family string
	Weight int
	Data   []byte
}

var builtin = map[string]Face{
	"Go-Regular":   {Name: "Go-Regular", Family: "Go", Weight: 400, Data: goregular.TTF},
	"Go-Medium":    {Name: "Go-Medium", Family: "Go", Weight: 500, Data: gomedium.TTF},
	"Go-Bold":      {Name: "Go-Bold", Family: "Go", Weight: 700, Data: gobold.TTF},
	"Go-Mono":      {Name: "Go-Mono", Family: "Go Mono", Weight: 400, Data: gomono.TTF},
	"Go-Mono-Bold": {Name: "Go-Mono-Bold", Family: "Go Mono", Weight: 700, Data: gomonobold.TTF},
}

// Load 返回内置字体的字节数据，name 可写为 "embed:Go-Bold" 或直接 "Go-Bold"。
func Load(name string) ([]byte, error) {
	clean := strings.TrimPrefix(strings.TrimSpace(name), "embed:")
	face, ok := builtin[clean]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 不存在", clean)
	}
	return face.Data, nil
}

// Names 返回全部内置字体名称（已排序）。
func Names() []string {
	out := make([]string, 0, len(builtin))
	for name := range builtin {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Resolve 按字体族与字重挑选最接近的内置字体。
// 未知字体族回退到 DefaultFamily，ok 为 false 表示发生了回退。
func Resolve(family string, weight int) (Face, bool) {
	want := normalizeFamily(family)
	ok := true
	candidates := facesOf(want)
	if len(candidates) == 0 {
		ok = false
		candidates = facesOf(normalizeFamily(DefaultFamily))
	}
	if weight <= 0 {
		weight = 400
	}
	best := candidates[0]
	for _, f := range candidates[1:] {
		if weightDistance(f.Weight, weight) < weightDistance(best.Weight, weight) {
			best = f
		}
	}
	return best, ok
}

func facesOf(family string) []Face {
	var out []Face
	for _, name := range Names() {
		if f := builtin[name]; normalizeFamily(f.Family) == family {
			out = append(out, f)
		}
	}
	return out
}

// weightDistance 遵循 CSS 字重匹配的大致倾向：目标超过 500 时优先更粗的字重。
func weightDistance(have, want int) int {
	d := have - want
	if d < 0 {
		d = -d
		if want > 500 {
			d++
		}
	}
	return d
}

func normalizeFamily(family string) string {
	f := strings.ToLower(strings.TrimSpace(family))
	f = strings.Trim(f, `"'`)
	f = strings.ReplaceAll(f, "-", " ")
	if f == "" || f == "sans serif" || f == "system ui" || f == "inter" {
		return "go"
	}
	if f == "monospace" {
		return "go mono"
	}
	return f
}
