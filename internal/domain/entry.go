package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"sidefx.dev/pkg/sidefx/internal/adapter"
	m "sidefx.dev/pkg/sidefx/internal/model"
)

const entryFileName = "entry.js"

// SyntheticEntry is a generated module that imports every target module, one
// bare import per line, in input order. It exists only for the duration of a
// single pipeline invocation; Release must run on every exit path.
type SyntheticEntry struct {
	// Path is the absolute path of the generated entry file.
	Path m.Path

	dir m.Path
	fs  adapter.SourceFSAdapter
}

// Release deletes the entry file's scratch directory. Partial cleanup is
// tolerated: failures are logged, never raised.
func (e *SyntheticEntry) Release() {
	if e == nil || e.dir == "" {
		return
	}

	if err := e.fs.RemoveAll(e.dir); err != nil {
		slog.Warn("failed to remove scratch dir", "dir", e.dir, "error", err)
	}

	e.dir = ""
}

// EntryBuilder materializes synthetic entry files. The bundler needs a
// concrete file on disk, not an in-memory string.
type EntryBuilder interface {
	// Build writes an entry importing the given already-resolved modules into
	// a uniquely named scratch directory.
	Build(ctx context.Context, modules []m.Path) (*SyntheticEntry, error)
}

type entryBuilder struct {
	fs adapter.SourceFSAdapter
}

// NewEntryBuilder constructs an EntryBuilder backed by the provided
// filesystem adapter.
func NewEntryBuilder(fsAdapter adapter.SourceFSAdapter) EntryBuilder {
	return &entryBuilder{fs: fsAdapter}
}

func (b *entryBuilder) Build(ctx context.Context, modules []m.Path) (*SyntheticEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := b.fs.CreateTempDir("sidefx-entry-")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}

	var body strings.Builder
	for _, mod := range modules {
		// Forward slashes keep the generated imports valid on every platform.
		body.WriteString(fmt.Sprintf("import %q;\n", filepath.ToSlash(string(mod))))
	}

	entryPath := b.fs.JoinPath(string(dir), entryFileName)
	if err := b.fs.WriteFile(entryPath, []byte(body.String()), 0o644); err != nil {
		if removeErr := b.fs.RemoveAll(dir); removeErr != nil {
			slog.Warn("failed to remove scratch dir", "dir", dir, "error", removeErr)
		}

		return nil, fmt.Errorf("write synthetic entry: %w", err)
	}

	slog.Debug("built synthetic entry", "path", entryPath, "modules", len(modules))

	return &SyntheticEntry{Path: entryPath, dir: dir, fs: b.fs}, nil
}
