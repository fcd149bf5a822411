// Package rules holds the static syntax checks sidefx can run over
// JavaScript and TypeScript sources, independent of the extraction pipeline.
package rules

import (
	"context"

	m "sidefx.dev/pkg/sidefx/internal/model"
)

// Rule is a pure static check over one source file. Rules never mutate or
// execute the source; they only report locations.
type Rule interface {
	// Name identifies the rule in reports and logs.
	Name() string

	// Applies reports whether the rule examines the file at path.
	Applies(path m.Path) bool

	// Check parses src and returns the rule's findings in source order.
	Check(ctx context.Context, path m.Path, src []byte) ([]m.Finding, error)
}
