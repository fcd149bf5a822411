package rules

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"sidefx.dev/pkg/sidefx/internal/adapter"
	m "sidefx.dev/pkg/sidefx/internal/model"
)

// ToplevelAccessMessage is the fixed message reported for every finding.
const ToplevelAccessMessage = "Avoid toplevel property access."

// opaqueKinds are definition nodes whose bodies do not execute merely by
// loading the module, so traversal stops at them. Both the current and the
// legacy grammar names for function expressions are listed.
var opaqueKinds = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"function":                       true,
	"function_expression":            true,
	"generator_function":             true,
	"arrow_function":                 true,
	"class_declaration":              true,
	"class":                          true,
	"method_definition":              true,
	"interface_declaration":          true,
}

// ToplevelAccess flags property and element access expressions reachable at
// module top level. Such reads can invoke getters, which defeats dead-code
// elimination: the eliminator cannot prove them effect-free and must keep
// them, turning an otherwise clean module into a side-effecting import.
//
// Chained access reports one finding per accessor: a.b.c yields two.
type ToplevelAccess struct {
	parser  adapter.ScriptParserAdapter
	filters []string
}

// NewToplevelAccess constructs the rule. When filters are given, only files
// whose path contains at least one of the substrings are examined.
func NewToplevelAccess(parser adapter.ScriptParserAdapter, filters []string) *ToplevelAccess {
	return &ToplevelAccess{parser: parser, filters: filters}
}

// Name implements Rule.
func (r *ToplevelAccess) Name() string {
	return "toplevel-property-access"
}

// Applies implements Rule.
func (r *ToplevelAccess) Applies(path m.Path) bool {
	if !adapter.IsScriptPath(path) {
		return false
	}

	if len(r.filters) == 0 {
		return true
	}

	for _, filter := range r.filters {
		if strings.Contains(string(path), filter) {
			return true
		}
	}

	return false
}

// Check implements Rule.
func (r *ToplevelAccess) Check(ctx context.Context, path m.Path, src []byte) ([]m.Finding, error) {
	tree, err := r.parser.Parse(ctx, path, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	var findings []m.Finding

	walk(tree.RootNode(), func(node *sitter.Node) {
		point := node.StartPoint()
		findings = append(findings, m.Finding{
			File:    path,
			Line:    point.Row + 1,
			Column:  point.Column + 1,
			Message: ToplevelAccessMessage,
		})
	})

	return findings, nil
}

// walk descends depth-first, stopping at opaque definitions and reporting
// every property or element access it passes through. A flagged access is
// still descended into, so nested accesses in a chain each report once.
func walk(node *sitter.Node, report func(*sitter.Node)) {
	if opaqueKinds[node.Type()] {
		return
	}

	switch node.Type() {
	case "member_expression", "subscript_expression":
		report(node)
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		walk(node.NamedChild(i), report)
	}
}
