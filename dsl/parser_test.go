package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/logoforge/dsl"
)

const sampleDSL = `
logo Acme v1 {
  // 布局模式
  mode: icon-with-text

  icon lucide:star filled name "Star"

  container {
    size: 140
    padding: 20px
    radius: 24%
    background: #0F62FE
  }

  text "Hello, ${brand.name}!" {
    font: "Go"
    weight: 700; size: 58
  }

  rotate -15deg
  export png, svg scale 3
}
`

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Name != "Acme" || doc.Version != "v1" {
		t.Fatalf("unexpected header %s %s", doc.Name, doc.Version)
	}

	stmts := doc.Statements()
	if len(stmts) != 6 {
		t.Fatalf("expected 6 statements, got %d", len(stmts))
	}

	mode := stmts[0].Assignment
	if mode == nil || mode.Key != "mode" || mode.Value.Expr == nil {
		t.Fatalf("expected mode assignment, got %+v", stmts[0])
	}
	if got := tokensToString(mode.Value.Expr.Parts); got != "icon-with-text" {
		t.Fatalf("unexpected mode tokens: %s", got)
	}

	icon := stmts[1].Command
	if icon == nil || icon.Name != "icon" {
		t.Fatalf("expected icon command, got %+v", stmts[1])
	}
	if got := tokensToString(icon.Args); got != "lucide : star filled name Star" {
		t.Fatalf("unexpected icon args: %s", got)
	}

	container := stmts[2].Command
	if container == nil || container.Block == nil || len(container.Block.Statements) != 4 {
		t.Fatalf("container block missing statements: %+v", stmts[2])
	}
	bg := container.Block.Statements[3].Assignment
	if bg == nil || bg.Value.Color == nil || *bg.Value.Color != "#0F62FE" {
		t.Fatalf("expected color literal, got %+v", container.Block.Statements[3])
	}
	radius := container.Block.Statements[2].Assignment
	if radius == nil || radius.Value.Number == nil || *radius.Value.Number != "24%" {
		t.Fatalf("expected percent number, got %+v", container.Block.Statements[2])
	}

	text := stmts[3].Command
	if text == nil || len(text.Args) != 1 || !strings.Contains(text.Args[0].Value, "${brand.name}") {
		t.Fatalf("text command should keep interpolation placeholder: %+v", text)
	}
	if len(text.Block.Statements) != 3 {
		t.Fatalf("expected semicolon separated statements, got %d", len(text.Block.Statements))
	}

	rotate := stmts[4].Command
	if rotate == nil || tokensToString(rotate.Args) != "- 15deg" {
		t.Fatalf("unexpected rotate args: %+v", rotate)
	}
}

func TestParseListsAndInlineMaps(t *testing.T) {
	doc, err := dsl.ParseString(`logo Maps v1 {
  formats: [png, "svg",
    png]
  icon: { stroke-width: 2.5; stroke-color: #ffffff }
  text: {
    size: 40
    font: "Go Mono"
  }
}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	stmts := doc.Statements()
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(stmts))
	}

	list := stmts[0].Assignment.Value.List
	if list == nil || len(list.Items) != 3 {
		t.Fatalf("expected 3 list items, got %+v", stmts[0].Assignment.Value)
	}
	if got := tokensToString(list.Items[0].Expr.Parts); got != "png" {
		t.Fatalf("unexpected first item %q", got)
	}
	if list.Items[1].String == nil || *list.Items[1].String != "svg" {
		t.Fatalf("string item should be unquoted: %+v", list.Items[1])
	}

	icon := stmts[1].Assignment.Value.Map
	if icon == nil || len(icon.Entries) != 2 || icon.Entries[1].Value.Color == nil {
		t.Fatalf("expected inline map with 2 entries, got %+v", stmts[1].Assignment.Value)
	}
	text := stmts[2].Assignment.Value.Map
	if text == nil || len(text.Entries) != 2 || *text.Entries[1].Value.String != "Go Mono" {
		t.Fatalf("expected multi-line inline map, got %+v", stmts[2].Assignment.Value)
	}
}

func TestParseKeepsQuotedCommandArgs(t *testing.T) {
	doc, err := dsl.ParseString("logo Q v1 {\n  icon star name \"Big \\\"Star\\\"\"\n}")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	args := doc.Statements()[0].Command.Args
	last := args[len(args)-1]
	if last.Type != "String" || last.Value != `Big "Star"` || last.Raw != `"Big \"Star\""` {
		t.Fatalf("unexpected string lexeme %+v", last)
	}
}

func TestParseRejectsMissingHeader(t *testing.T) {
	if _, err := dsl.ParseString(`doc Acme v1 { }`); err == nil {
		t.Fatalf("expected error for non-logo header")
	}
}

func tokensToString(parts []*dsl.Lexeme) string {
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		values = append(values, p.Value)
	}
	return strings.Join(values, " ")
}
