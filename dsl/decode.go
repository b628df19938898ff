package dsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ByLCY/logoforge/capture"
	"github.com/ByLCY/logoforge/geometry"
	"github.com/ByLCY/logoforge/icons"
	"github.com/ByLCY/logoforge/settings"
)

// Logo 是 .logo 文件解码后的结果。
type Logo struct {
	Name     string
	Version  string
	Settings settings.Settings
	Formats  []capture.Format // export 指令声明的格式，未声明时为空
	Scale    float64          // export 指令中的 scale，未声明时为 0
}

// 作用域内的简写键到规范键的映射。
var scopeKeys = map[string]map[string]string{
	"container": {
		"size": "size", "padding": "padding", "radius": "radius",
		"border-width": "border-width", "border-color": "border-color", "background": "background",
	},
	"icon": {
		"stroke-width": "icon-border-width", "stroke-color": "icon-border-color",
		"fill-color": "fill-color", "fill-opacity": "fill-opacity",
		"rotation": "rotation", "rotate": "rotation", "name": "icon-name",
	},
	"text": {
		"font": "font-family", "family": "font-family", "weight": "font-weight",
		"size": "font-size", "color": "text-color", "gap": "gap",
	},
}

// Decode 按语句顺序把文档应用到 base 上。图标选择走 Settings.SelectIcon，
// 因此写在 icon 指令之后的描边/填充设置会覆盖联动默认值。
// 字符串中的 ${path} 使用 data 插值。
func Decode(doc *Document, base settings.Settings, data any) (*Logo, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	d := &decoder{data: data, logo: &Logo{Name: doc.Name, Version: doc.Version, Settings: base}}
	if doc.Version != "v1" {
		return nil, fmt.Errorf("不支持的文档版本 %s", doc.Version)
	}
	for _, st := range doc.Statements() {
		if err := d.statement(st); err != nil {
			return nil, err
		}
	}
	return d.logo, nil
}

type decoder struct {
	data any
	logo *Logo
}

func (d *decoder) statement(st *Statement) error {
	switch {
	case st.Assignment != nil:
		a := st.Assignment
		key := normalizeKey(a.Key)
		if a.Value.Map != nil {
			return d.inline(a.Pos, key, a.Value.Map.Entries)
		}
		if key == "formats" || key == "scale" {
			return d.exportEntry(a)
		}
		return d.assign(a.Pos, key, a.Value)
	case st.Command != nil:
		return d.command(st.Command)
	case st.Text != nil:
		return fmt.Errorf("顶层不允许出现文本字面量 %q", st.Text.Value)
	}
	return nil
}

func (d *decoder) command(cmd *Command) error {
	switch normalizeKey(cmd.Name) {
	case "icon":
		return d.iconCommand(cmd)
	case "container":
		if len(cmd.Args) > 0 {
			return posErr(cmd.Pos, "container 不接受参数")
		}
		return d.scoped(cmd, "container")
	case "text":
		return d.textCommand(cmd)
	case "rotate":
		if len(cmd.Args) == 0 {
			return posErr(cmd.Pos, "rotate 缺少角度")
		}
		v, err := parseNumber(joinLexemes(cmd.Args))
		if err != nil {
			return posErr(cmd.Pos, "rotate: %v", err)
		}
		d.logo.Settings.Rotation = v
		return nil
	case "export":
		return d.exportCommand(cmd)
	}
	return posErr(cmd.Pos, "未知指令 %s", cmd.Name)
}

// iconCommand 解析 `icon <set:name> [filled|outline] [name "标题"] { ... }`。
func (d *decoder) iconCommand(cmd *Command) error {
	var refParts []string
	filled := false
	name := ""
	for i := 0; i < len(cmd.Args); i++ {
		arg := cmd.Args[i]
		switch {
		case arg.Type == "Ident" && arg.Value == "filled":
			filled = true
		case arg.Type == "Ident" && arg.Value == "outline":
			filled = false
		case arg.Type == "Ident" && arg.Value == "name":
			if i+1 >= len(cmd.Args) {
				return posErr(arg.Pos, "name 缺少值")
			}
			i++
			name = Interpolate(cmd.Args[i].Value, d.data)
		default:
			refParts = append(refParts, arg.Value)
		}
	}
	ref, err := icons.ParseRef(Interpolate(strings.Join(refParts, ""), d.data))
	if err != nil {
		return posErr(cmd.Pos, "icon: %v", err)
	}
	if name == "" {
		name = ref.Name
	}
	d.logo.Settings = d.logo.Settings.SelectIcon(ref, name, filled)
	return d.scoped(cmd, "icon")
}

// textCommand 解析 `text "内容" { font: ...; size: ... }`，同时切换到 icon-with-text 模式。
func (d *decoder) textCommand(cmd *Command) error {
	var parts []string
	for _, arg := range cmd.Args {
		parts = append(parts, arg.Value)
	}
	if cmd.Block != nil {
		for _, st := range cmd.Block.Statements {
			if st.Text != nil {
				parts = append(parts, st.Text.Value)
			}
		}
	}
	d.logo.Settings.Text = Interpolate(strings.Join(parts, " "), d.data)
	d.logo.Settings.Mode = settings.ModeIconWithText
	return d.scoped(cmd, "text")
}

// exportCommand 解析 `export png svg scale 3` 或 `export png { scale: 3 }`。
func (d *decoder) exportCommand(cmd *Command) error {
	for i := 0; i < len(cmd.Args); i++ {
		arg := cmd.Args[i]
		if arg.Value == "scale" {
			if i+1 >= len(cmd.Args) {
				return posErr(arg.Pos, "scale 缺少值")
			}
			i++
			v, err := parseNumber(cmd.Args[i].Value)
			if err != nil {
				return posErr(arg.Pos, "scale: %v", err)
			}
			d.logo.Scale = v
			continue
		}
		if arg.Type == "Symbol" && arg.Value == "," {
			continue
		}
		format, err := capture.ParseFormat(arg.Value)
		if err != nil {
			return posErr(arg.Pos, "%v", err)
		}
		d.logo.Formats = append(d.logo.Formats, format)
	}
	if cmd.Block == nil {
		return nil
	}
	for _, st := range cmd.Block.Statements {
		if st.Assignment == nil {
			return posErr(cmd.Pos, "export 块只支持 formats 与 scale")
		}
		if err := d.exportEntry(st.Assignment); err != nil {
			return err
		}
	}
	return nil
}

// exportEntry 处理 `formats: [png, svg]` 与 `scale: 3`。formats 会替换已声明的格式。
func (d *decoder) exportEntry(a *Assignment) error {
	switch normalizeKey(a.Key) {
	case "scale":
		v, err := d.number(a.Value)
		if err != nil {
			return posErr(a.Pos, "scale: %v", err)
		}
		d.logo.Scale = v
		return nil
	case "formats":
		items := []*Value{a.Value}
		if a.Value.List != nil {
			items = a.Value.List.Items
		}
		formats := make([]capture.Format, 0, len(items))
		for _, item := range items {
			format, err := capture.ParseFormat(d.text(item))
			if err != nil {
				return posErr(a.Pos, "%v", err)
			}
			formats = append(formats, format)
		}
		d.logo.Formats = formats
		return nil
	}
	return posErr(a.Pos, "export 中未知属性 %s", a.Key)
}

// scoped 处理指令块中的赋值，键按作用域映射到规范键。
func (d *decoder) scoped(cmd *Command, scope string) error {
	if cmd.Block == nil {
		return nil
	}
	for _, st := range cmd.Block.Statements {
		switch {
		case st.Assignment != nil:
			if err := d.scopedEntry(scope, st.Assignment); err != nil {
				return err
			}
		case st.Command != nil:
			return posErr(st.Command.Pos, "%s 块中不允许嵌套指令 %s", scope, st.Command.Name)
		case st.Text != nil && scope != "text":
			return posErr(cmd.Pos, "%s 块中不允许文本字面量", scope)
		}
	}
	return nil
}

// inline 处理 `icon: { stroke-width: 2 }` 这类内联映射，等价于对应指令的块。
func (d *decoder) inline(pos lexer.Position, scope string, entries []*Assignment) error {
	if scope == "export" {
		for _, a := range entries {
			if err := d.exportEntry(a); err != nil {
				return err
			}
		}
		return nil
	}
	if _, ok := scopeKeys[scope]; !ok {
		return posErr(pos, "%s 不接受映射值", scope)
	}
	for _, a := range entries {
		if err := d.scopedEntry(scope, a); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) scopedEntry(scope string, a *Assignment) error {
	key, ok := scopeKeys[scope][normalizeKey(a.Key)]
	if !ok {
		return posErr(a.Pos, "%s 块中未知属性 %s", scope, a.Key)
	}
	return d.assign(a.Pos, key, a.Value)
}

func (d *decoder) assign(pos lexer.Position, key string, v *Value) error {
	if v != nil && (v.List != nil || v.Map != nil) {
		return posErr(pos, "%s 只接受单个值", key)
	}
	s := &d.logo.Settings
	var err error
	switch key {
	case "mode":
		mode, ok := settings.ParseMode(d.text(v))
		if !ok {
			return posErr(pos, "未知模式 %s", d.text(v))
		}
		s.Mode = mode
	case "icon":
		ref, perr := icons.ParseRef(d.text(v))
		if perr != nil {
			return posErr(pos, "icon: %v", perr)
		}
		*s = s.SelectIcon(ref, ref.Name, s.Filled)
	case "icon-name":
		s.IconName = d.text(v)
	case "filled":
		filled, perr := strconv.ParseBool(d.text(v))
		if perr != nil {
			return posErr(pos, "filled: %v", perr)
		}
		*s = s.SelectIcon(s.Icon, s.IconName, filled)
	case "size":
		s.Size, err = d.length(v, 0)
	case "padding":
		s.Padding, err = d.length(v, s.Size)
	case "radius":
		s.Radius, err = d.number(v)
	case "border-width":
		s.BorderWidth, err = d.length(v, 0)
	case "border-color":
		s.BorderColor, err = d.color(v)
	case "background":
		s.Background, err = d.color(v)
	case "icon-border-width":
		s.IconBorderWidth, err = d.length(v, 0)
	case "icon-border-color":
		s.IconBorderColor, err = d.color(v)
	case "fill-opacity":
		s.FillOpacity, err = d.number(v)
		if err == nil && strings.HasSuffix(d.text(v), "%") {
			s.FillOpacity /= 100
		}
	case "fill-color":
		s.FillColor, err = d.color(v)
	case "rotation", "rotate":
		s.Rotation, err = d.number(v)
	case "text":
		s.Text = d.text(v)
	case "font-family":
		s.FontFamily = d.text(v)
	case "font-weight":
		var w float64
		w, err = d.number(v)
		s.FontWeight = int(w)
	case "font-size":
		s.FontSize, err = d.length(v, 0)
	case "text-color":
		s.TextColor, err = d.color(v)
	case "gap":
		s.Gap, err = d.length(v, 0)
	default:
		return posErr(pos, "未知属性 %s", key)
	}
	if err != nil {
		return posErr(pos, "%s: %v", key, err)
	}
	return nil
}

// text 返回值的文本形式，字符串会经过插值。
func (d *decoder) text(v *Value) string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return Interpolate(*v.String, d.data)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Expr != nil:
		return joinLexemes(v.Expr.Parts)
	}
	return ""
}

func (d *decoder) number(v *Value) (float64, error) {
	return parseNumber(d.text(v))
}

// length 解析带单位的长度并换算为 px，百分比相对 reference。
func (d *decoder) length(v *Value, reference float64) (float64, error) {
	raw := d.text(v)
	neg := strings.HasPrefix(raw, "-")
	l, ok := geometry.ParseLength(strings.TrimPrefix(raw, "-"))
	if !ok {
		return 0, fmt.Errorf("无法解析长度 %q", raw)
	}
	px := l.Px(reference)
	if neg {
		px = -px
	}
	return px, nil
}

func (d *decoder) color(v *Value) (settings.Color, error) {
	return settings.ParseColor(d.text(v))
}

// parseNumber 解析数字，允许 %、deg 等单位后缀。
func parseNumber(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	for _, suf := range []string{"deg", "%", "x", "px"} {
		if strings.HasSuffix(trimmed, suf) {
			trimmed = strings.TrimSuffix(trimmed, suf)
			break
		}
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("无法解析数字 %q", raw)
	}
	return v, nil
}

func joinLexemes(parts []*Lexeme) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.Value)
	}
	return b.String()
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", "-")
}

func posErr(pos lexer.Position, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if pos.Line > 0 {
		return fmt.Errorf("第 %d 行: %s", pos.Line, msg)
	}
	return fmt.Errorf("%s", msg)
}
