package adapter

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	m "sidefx.dev/pkg/sidefx/internal/model"
)

// ScriptExtensions are the file extensions the parser (and therefore the
// lint scan) recognizes as JavaScript or TypeScript sources.
var ScriptExtensions = []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx"}

// IsScriptPath reports whether path has a recognized script extension.
func IsScriptPath(path m.Path) bool {
	ext := strings.ToLower(filepath.Ext(string(path)))
	for _, known := range ScriptExtensions {
		if ext == known {
			return true
		}
	}

	return false
}

// ScriptParserAdapter parses JavaScript/TypeScript sources into syntax trees
// for the static rules and the property-read purity pass.
type ScriptParserAdapter interface {
	// Parse builds a syntax tree for src. The grammar is chosen from the
	// path's extension; callers must Close the returned tree.
	Parse(ctx context.Context, path m.Path, src []byte) (*sitter.Tree, error)
}

// TreeSitterAdapter implements ScriptParserAdapter with tree-sitter grammars
// for JavaScript, TypeScript and TSX. A fresh parser is created per call so
// the adapter is safe for concurrent use by the lint scan.
type TreeSitterAdapter struct{}

// NewTreeSitterAdapter constructs a TreeSitterAdapter.
func NewTreeSitterAdapter() *TreeSitterAdapter {
	return &TreeSitterAdapter{}
}

// Parse parses src with the grammar matching the path's extension.
func (a *TreeSitterAdapter) Parse(ctx context.Context, path m.Path, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(languageFor(path))

	return parser.ParseCtx(ctx, nil, src)
}

func languageFor(path m.Path) *sitter.Language {
	switch strings.ToLower(filepath.Ext(string(path))) {
	case ".ts":
		return typescript.GetLanguage()
	case ".tsx":
		return tsx.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}
