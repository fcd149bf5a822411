// Package domain implements the core of sidefx: the synthetic entry builder,
// the side-effect extraction pipeline and the regression test harness.
package domain

import (
	"strings"

	m "sidefx.dev/pkg/sidefx/internal/model"
)

// MissingModulesError reports every module reference that did not resolve to
// an existing file. Missing paths are collected and reported together so a
// batch fails atomically instead of one path at a time.
type MissingModulesError struct {
	Paths []m.Path
}

func (e *MissingModulesError) Error() string {
	parts := make([]string, 0, len(e.Paths))
	for _, p := range e.Paths {
		parts = append(parts, string(p))
	}

	return "could not find modules: " + strings.Join(parts, ", ")
}
