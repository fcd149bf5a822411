package domain

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"sidefx.dev/pkg/sidefx/internal/adapter"
	m "sidefx.dev/pkg/sidefx/internal/model"
)

// StripPureReads removes top-level expression statements whose expression is
// a pure read chain: identifiers, literals and this under member or
// subscript access. Calls, assignments and anything else stay put. The
// returned flag reports whether any statement was removed.
func StripPureReads(ctx context.Context, parser adapter.ScriptParserAdapter, code string) (string, bool, error) {
	src := []byte(code)

	tree, err := parser.Parse(ctx, m.Path("residue.js"), src)
	if err != nil {
		return "", false, fmt.Errorf("parse residue: %w", err)
	}
	defer tree.Close()

	type span struct{ start, end uint32 }

	var drop []span

	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() != "expression_statement" {
			continue
		}

		expr := stmt.NamedChild(0)
		if expr == nil || !isPureRead(expr) {
			continue
		}

		drop = append(drop, span{start: stmt.StartByte(), end: stmt.EndByte()})
	}

	if len(drop) == 0 {
		return code, false, nil
	}

	sort.Slice(drop, func(a, b int) bool { return drop[a].start < drop[b].start })

	var out strings.Builder

	var pos uint32

	for _, s := range drop {
		out.Write(src[pos:s.start])
		pos = s.end
	}

	out.Write(src[pos:])

	return out.String(), true, nil
}

// isPureRead reports whether evaluating the expression observes nothing but
// bindings and properties, assuming property reads themselves are pure.
func isPureRead(node *sitter.Node) bool {
	switch node.Type() {
	case "identifier", "this", "super",
		"string", "number", "true", "false", "null", "undefined":
		return true
	case "member_expression":
		object := node.ChildByFieldName("object")

		return object != nil && isPureRead(object)
	case "subscript_expression":
		object := node.ChildByFieldName("object")
		index := node.ChildByFieldName("index")

		return object != nil && isPureRead(object) && (index == nil || isPureRead(index))
	case "parenthesized_expression":
		inner := node.NamedChild(0)

		return inner != nil && isPureRead(inner)
	case "sequence_expression":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if !isPureRead(node.NamedChild(i)) {
				return false
			}
		}

		return true
	default:
		return false
	}
}
