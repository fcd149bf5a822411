package domain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"sidefx.dev/pkg/sidefx/internal/adapter"
	m "sidefx.dev/pkg/sidefx/internal/model"
)

// Extractor runs the side-effect extraction pipeline: it bundles the target
// modules through a synthetic entry under the configured purity assumptions
// and returns whatever dead-code elimination could not remove.
type Extractor interface {
	Extract(ctx context.Context, cfg m.Config, modules []m.Path) (m.Extraction, error)
}

type extractor struct {
	fs      adapter.SourceFSAdapter
	bundler adapter.BundlerAdapter
	entries EntryBuilder
	parser  adapter.ScriptParserAdapter
}

// NewExtractor constructs the pipeline from its collaborators.
func NewExtractor(
	fsAdapter adapter.SourceFSAdapter,
	bundler adapter.BundlerAdapter,
	entries EntryBuilder,
	parser adapter.ScriptParserAdapter,
) Extractor {
	return &extractor{
		fs:      fsAdapter,
		bundler: bundler,
		entries: entries,
		parser:  parser,
	}
}

func (x *extractor) Extract(ctx context.Context, cfg m.Config, modules []m.Path) (m.Extraction, error) {
	if len(modules) == 0 {
		return m.Extraction{}, fmt.Errorf("at least one module reference is required")
	}

	// Existence is validated for the whole batch before any scratch file is
	// created, so a failed invocation leaves nothing behind.
	resolved, err := x.resolveModules(cfg, modules)
	if err != nil {
		return m.Extraction{}, err
	}

	entry, err := x.entries.Build(ctx, resolved)
	if err != nil {
		return m.Extraction{}, err
	}
	defer entry.Release()

	req := adapter.BundleRequest{
		Entry:                 entry.Path,
		Define:                cfg.Define,
		SideEffectFreeModules: cfg.SideEffectFreeModules,
		ResolveExternals:      cfg.ResolveExternals,
		Metafile:              cfg.EmitDependencies,
		MinifySyntax:          cfg.UseMinifier,
		PureHelperCalls:       cfg.UseAnnotator,
	}

	if cfg.Output != "" {
		outfile, absErr := x.fs.Abs(x.joinCwd(cfg, cfg.Output))
		if absErr != nil {
			return m.Extraction{}, fmt.Errorf("resolve output path: %w", absErr)
		}

		req.Outfile = outfile
	}

	bundle, err := x.bundler.Bundle(ctx, req)
	if err != nil {
		// Collaborator faults propagate unchanged; no retries.
		return m.Extraction{}, err
	}

	result := m.Extraction{}

	if cfg.Warnings {
		result.Warnings = bundle.Warnings
	}

	if cfg.EmitDependencies {
		result.Dependencies = x.dependencyFiles(bundle.Inputs, entry.Path)
	}

	code := bundle.Code
	sourceMap := bundle.SourceMap

	if cfg.PureGetters {
		code, sourceMap, err = x.assumePureReads(ctx, code, sourceMap, cfg.UseMinifier)
		if err != nil {
			return m.Extraction{}, err
		}
	}

	result.Code = strings.TrimRight(code, "\n")

	if cfg.Output != "" {
		if err := x.persist(req.Outfile, result.Code, sourceMap); err != nil {
			return m.Extraction{}, err
		}

		result.OutputPath = req.Outfile
		result.SourceMapPath = req.Outfile + ".map"
	}

	slog.Debug("extraction complete",
		"modules", len(modules),
		"residue_bytes", len(result.Code),
	)

	return result, nil
}

// resolveModules turns every reference into an absolute path, failing with
// an aggregate error listing all missing references.
func (x *extractor) resolveModules(cfg m.Config, modules []m.Path) ([]m.Path, error) {
	resolved := make([]m.Path, 0, len(modules))

	var missing []m.Path

	for _, mod := range modules {
		abs, err := x.fs.Abs(x.joinCwd(cfg, mod))
		if err != nil {
			missing = append(missing, mod)
			continue
		}

		info, err := x.fs.FileInfo(abs)
		if err != nil || info.IsDir() {
			missing = append(missing, mod)
			continue
		}

		resolved = append(resolved, abs)
	}

	if len(missing) > 0 {
		return nil, &MissingModulesError{Paths: missing}
	}

	return resolved, nil
}

func (x *extractor) joinCwd(cfg m.Config, path m.Path) m.Path {
	if cfg.Cwd == "" || filepath.IsAbs(string(path)) {
		return path
	}

	return x.fs.JoinPath(string(cfg.Cwd), string(path))
}

// assumePureReads strips residual statements that only read properties, then
// re-shakes the result so bindings that became unused fold away. Under the
// pure-getters assumption this can only ever shrink the residue.
func (x *extractor) assumePureReads(ctx context.Context, code, sourceMap string, minify bool) (string, string, error) {
	if strings.TrimSpace(code) == "" {
		return code, sourceMap, nil
	}

	stripped, changed, err := StripPureReads(ctx, x.parser, code)
	if err != nil {
		return "", "", err
	}

	if !changed {
		return code, sourceMap, nil
	}

	shaken, err := x.bundler.Shake(ctx, stripped, minify)
	if err != nil {
		return "", "", err
	}

	// The original map no longer describes the stripped code.
	return shaken, "", nil
}

// dependencyFiles filters the synthetic entry out of the bundler's visited
// file list. The metafile may report inputs relative to the working
// directory, so matching goes by the unique scratch directory name.
func (x *extractor) dependencyFiles(inputs []string, entry m.Path) []string {
	scratch := filepath.Base(filepath.Dir(string(entry)))

	files := make([]string, 0, len(inputs))

	for _, input := range inputs {
		if strings.Contains(filepath.ToSlash(input), scratch+"/") {
			continue
		}

		files = append(files, input)
	}

	return files
}

func (x *extractor) persist(outfile m.Path, code, sourceMap string) error {
	dir := filepath.Dir(string(outfile))
	if err := x.fs.MkdirAll(m.Path(dir), 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}

	if err := x.fs.WriteFile(outfile, []byte(code+"\n"), os.FileMode(0o644)); err != nil {
		return fmt.Errorf("write output %s: %w", outfile, err)
	}

	mapPath := outfile + ".map"
	if err := x.fs.WriteFile(mapPath, []byte(sourceMap), os.FileMode(0o644)); err != nil {
		return fmt.Errorf("write source map %s: %w", mapPath, err)
	}

	return nil
}
