// Package dsl 解析 .logo 描述文件并把它解码为徽标设置。
//
// 文件形如：
//
//	logo Acme v1 {
//	  icon lucide:star filled
//	  container { size: 140; radius: 24% }
//	  text: { size: 58; color: #111827 }
//	  formats: [png, svg]
//	}
package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	logoLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		// 颜色必须先于 # 注释匹配
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `(?:\d+\.\d+|\d+)(?:px|pt|mm|deg|%|x)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][(),.=+\-*/%<>!?;:]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	tokenKinds = map[lexer.TokenType]string{}

	logoParser = participle.MustBuild[Document](
		participle.Lexer(logoLexer),
		participle.Unquote("String"),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

func init() {
	for name, tt := range logoLexer.Symbols() {
		tokenKinds[tt] = name
	}
}

// Document 是 .logo 文件的语法树根。
type Document struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Name    string         `parser:"Newline* 'logo' @Ident"`
	Version string         `parser:"@Ident"`
	Body    *Block         `parser:"@@ Newline*"`
}

// Statements 返回顶层语句。
func (d *Document) Statements() []*Statement {
	if d == nil || d.Body == nil {
		return nil
	}
	return d.Body.Statements
}

// Block 是花括号内以换行或分号分隔的语句列表。
type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Statement 是赋值、指令或（仅 text 块内）字符串字面量之一。
type Statement struct {
	Assignment *Assignment  `parser:"  @@"`
	Command    *Command     `parser:"| @@"`
	Text       *TextLiteral `parser:"| @@"`
}

// Assignment 形如 `key: value`。
type Assignment struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident"`
	Value *Value         `parser:"':' Newline* @@"`
}

// Command 形如 `icon lucide:star filled { ... }`，参数保留为原始词元。
type Command struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"@Ident"`
	Args  []*Lexeme      `parser:"@@*"`
	Block *Block         `parser:"( Newline* @@ )?"`
}

// TextLiteral 是块内单独成行的字符串。
type TextLiteral struct {
	Value string `parser:"@String"`
}

// Value 是赋值右侧的值。
type Value struct {
	String *string       `parser:"  @String"`
	Number *string       `parser:"| @Number"`
	Color  *string       `parser:"| @Color"`
	List   *List         `parser:"| @@"`
	Map    *InlineObject `parser:"| @@"`
	Expr   *Expression   `parser:"| @@"`
}

// List 是 `[a, b]` 形式的列表，例如 `formats: [png, svg]`。
type List struct {
	Items []*Value `parser:"'[' Newline* ( @@ ( ',' | Newline )* )* ']'"`
}

// InlineObject 是 `{ key: value; ... }` 形式的内联映射，例如 `icon: { stroke-width: 2 }`。
type InlineObject struct {
	Entries []*Assignment `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Expression 收集到行尾（或逗号、右括号）为止的原始词元，例如 `icon-with-text`、`lucide:star`。
type Expression struct {
	Parts []*Lexeme
}

// Parse 实现 participle.Parseable。圆括号与方括号内的逗号和换行不结束表达式。
func (e *Expression) Parse(lex *lexer.PeekingLexer) error {
	depth := 0
	for !atBoundary(lex.Peek(), depth, true) {
		l, err := nextLexeme(lex)
		if err != nil {
			return err
		}
		switch l.Raw {
		case "(", "[":
			depth++
		case ")", "]":
			depth--
		}
		e.Parts = append(e.Parts, l)
	}
	if len(e.Parts) == 0 {
		return participle.NextMatch
	}
	return nil
}

// Lexeme 是一个原始词元；字符串的 Value 已去掉引号，Raw 为重新加引号的形式。
type Lexeme struct {
	Type  string         `json:"type"`
	Value string         `json:"value"`
	Raw   string         `json:"raw"`
	Pos   lexer.Position `json:"-"`
}

// Parse 实现 participle.Parseable，指令参数在换行、花括号或分号处结束。
func (l *Lexeme) Parse(lex *lexer.PeekingLexer) error {
	if atBoundary(lex.Peek(), 0, false) {
		return participle.NextMatch
	}
	next, err := nextLexeme(lex)
	if err != nil {
		return err
	}
	*l = *next
	return nil
}

// Parse 从 r 解析 .logo 文档。
func Parse(r io.Reader) (*Document, error) {
	return logoParser.Parse("", r)
}

// ParseString 从字符串解析 .logo 文档。
func ParseString(input string) (*Document, error) {
	return logoParser.ParseString("", input)
}

// atBoundary 判断 tok 是否结束当前参数或表达式。depth 为未闭合的括号层数；
// 表达式还会在逗号与多余的右括号处结束，以便嵌入列表。
func atBoundary(tok *lexer.Token, depth int, expr bool) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	switch tokenKinds[tok.Type] {
	case "Newline", "LBrace", "RBrace":
		return depth == 0
	case "Symbol":
		switch tok.Value {
		case ";":
			return depth == 0
		case ",":
			return expr && depth == 0
		case "]", ")":
			return expr && depth == 0
		}
	}
	return false
}

func nextLexeme(lex *lexer.PeekingLexer) (*Lexeme, error) {
	tok := lex.Next()
	if tok.EOF() {
		return nil, participle.NextMatch
	}
	kind, ok := tokenKinds[tok.Type]
	if !ok {
		kind = fmt.Sprintf("#%d", tok.Type)
	}
	l := &Lexeme{Type: kind, Value: tok.Value, Raw: tok.Value, Pos: tok.Pos}
	if kind == "String" {
		// participle.Unquote 已在词法阶段去掉引号
		l.Raw = strconv.Quote(tok.Value)
	}
	return l, nil
}
