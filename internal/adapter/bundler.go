package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	m "sidefx.dev/pkg/sidefx/internal/model"
)

// tsHelperCalls are the compiler-generated helper calls the annotator marks
// as pure. They show up in transpiled output of class-heavy code and would
// otherwise pin the whole module into the residue.
var tsHelperCalls = []string{
	"__assign",
	"__awaiter",
	"__decorate",
	"__extends",
	"__generator",
	"__metadata",
	"__param",
	"__read",
	"__rest",
	"__spreadArray",
	"__values",
}

// BundleRequest describes one bundler invocation: the synthetic entry to
// build from and the elimination configuration derived from a model.Config.
type BundleRequest struct {
	// Entry is the absolute path of the synthetic entry file.
	Entry m.Path

	// Outfile, when set, makes the bundler compute a linked source map and
	// name its outputs after this path. The adapter never writes to disk
	// itself; callers persist the returned files.
	Outfile m.Path

	// Define maps global identifiers to literal replacements for constant
	// folding.
	Define map[string]string

	// SideEffectFreeModules are module-name substrings assumed free of
	// side effects; model.WildcardSideEffectFree matches everything. Imports
	// made directly by the synthetic entry are exempt so the tested modules
	// keep their own top-level code.
	SideEffectFreeModules []string

	// ResolveExternals bundles bare package imports instead of leaving them
	// external.
	ResolveExternals bool

	// Metafile requests the dependency file list.
	Metafile bool

	// MinifySyntax enables constant folding and dead-branch removal.
	// Identifier renaming stays off so the residue remains readable.
	MinifySyntax bool

	// PureHelperCalls enables the annotator's pure helper-call list.
	PureHelperCalls bool
}

// BundleResult is the raw bundler output before the pipeline interprets it.
type BundleResult struct {
	// Code is the concatenation of all emitted code chunks, in emission
	// order, with source map assets filtered out.
	Code string

	// SourceMap is the emitted source map, when Outfile was set.
	SourceMap string

	// Inputs lists every file the graph walk visited, sorted.
	Inputs []string

	// Warnings holds formatted build warnings.
	Warnings []string
}

// BundlerAdapter abstracts the tree-shaking toolchain. The concrete
// implementation is esbuild; the pipeline only depends on this contract.
type BundlerAdapter interface {
	// Bundle builds the module graph rooted at the request's entry and
	// returns whatever dead-code elimination could not remove.
	Bundle(ctx context.Context, req BundleRequest) (BundleResult, error)

	// Shake re-runs tree shaking over a standalone piece of code, dropping
	// bindings that became unused after the pipeline stripped statements.
	Shake(ctx context.Context, code string, minify bool) (string, error)
}

// BundleError wraps the messages of a failed bundler invocation. Per the
// error design, collaborator faults propagate unchanged and are not retried.
type BundleError struct {
	Messages []api.Message
}

func (e *BundleError) Error() string {
	lines := api.FormatMessages(e.Messages, api.FormatMessagesOptions{
		Kind: api.ErrorMessage,
	})

	return "bundle: " + strings.TrimSpace(strings.Join(lines, ""))
}

// EsbuildAdapter implements BundlerAdapter on the esbuild build and transform
// APIs. Tree shaking is always on; renaming and whitespace minification are
// always off.
type EsbuildAdapter struct{}

// NewEsbuildAdapter constructs an EsbuildAdapter.
func NewEsbuildAdapter() *EsbuildAdapter {
	return &EsbuildAdapter{}
}

// Bundle runs one esbuild build for the request.
func (a *EsbuildAdapter) Bundle(ctx context.Context, req BundleRequest) (BundleResult, error) {
	if err := ctx.Err(); err != nil {
		return BundleResult{}, err
	}

	opts := api.BuildOptions{
		EntryPoints: []string{string(req.Entry)},
		Bundle:      true,
		Write:       false,
		Format:      api.FormatESModule,
		Platform:    api.PlatformNeutral,
		MainFields:  []string{"module", "main"},
		TreeShaking: api.TreeShakingTrue,
		Define:      req.Define,
		Metafile:    req.Metafile,
		LogLevel:    api.LogLevelSilent,
	}

	opts.MinifySyntax = req.MinifySyntax

	if req.PureHelperCalls {
		opts.Pure = tsHelperCalls
	}

	if !req.ResolveExternals {
		opts.Packages = api.PackagesExternal
	}

	if req.Outfile != "" {
		opts.Outfile = string(req.Outfile)
		opts.Sourcemap = api.SourceMapLinked
	}

	if len(req.SideEffectFreeModules) > 0 {
		opts.Plugins = append(opts.Plugins, sideEffectFreePlugin(req))
	}

	result := api.Build(opts)
	if len(result.Errors) > 0 {
		return BundleResult{}, &BundleError{Messages: result.Errors}
	}

	out := BundleResult{
		Warnings: api.FormatMessages(result.Warnings, api.FormatMessagesOptions{
			Kind: api.WarningMessage,
		}),
	}

	var code strings.Builder

	for _, file := range result.OutputFiles {
		if strings.HasSuffix(file.Path, ".map") {
			out.SourceMap = string(file.Contents)
			continue
		}

		code.Write(file.Contents)
	}

	out.Code = code.String()

	if req.Metafile {
		inputs, err := metafileInputs(result.Metafile)
		if err != nil {
			return BundleResult{}, err
		}

		out.Inputs = inputs
	}

	return out, nil
}

// Shake tree-shakes a standalone module without bundling. Used to fold away
// bindings left unused after the property-read purity pass.
func (a *EsbuildAdapter) Shake(ctx context.Context, code string, minify bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	result := api.Transform(code, api.TransformOptions{
		Loader:       api.LoaderJS,
		Format:       api.FormatESModule,
		TreeShaking:  api.TreeShakingTrue,
		MinifySyntax: minify,
		LogLevel:     api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return "", &BundleError{Messages: result.Errors}
	}

	return string(result.Code), nil
}

// resolvedByPlugin marks resolve results produced by the side-effect-free
// plugin itself, so re-entrant resolution does not loop.
type resolvedByPlugin struct{}

// sideEffectFreePlugin declares modules matching the configured substrings
// unconditionally side-effect free. It resolves the import through esbuild's
// own resolver and then attaches the annotation to the result.
func sideEffectFreePlugin(req BundleRequest) api.Plugin {
	patterns := req.SideEffectFreeModules
	entry := string(req.Entry)

	return api.Plugin{
		Name: "side-effect-free-modules",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: `.*`}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				if args.Kind == api.ResolveEntryPoint {
					return api.OnResolveResult{}, nil
				}

				if _, ok := args.PluginData.(resolvedByPlugin); ok {
					return api.OnResolveResult{}, nil
				}

				// The tested modules are imported by the synthetic entry;
				// annotating them would erase the very effects under test.
				if args.Importer == entry {
					return api.OnResolveResult{}, nil
				}

				if !matchesAny(patterns, args.Path) {
					return api.OnResolveResult{}, nil
				}

				resolved := build.Resolve(args.Path, api.ResolveOptions{
					Importer:   args.Importer,
					Namespace:  args.Namespace,
					ResolveDir: args.ResolveDir,
					Kind:       args.Kind,
					PluginData: resolvedByPlugin{},
				})
				if len(resolved.Errors) > 0 {
					return api.OnResolveResult{Errors: resolved.Errors}, nil
				}

				return api.OnResolveResult{
					Path:        resolved.Path,
					External:    resolved.External,
					Namespace:   resolved.Namespace,
					SideEffects: api.SideEffectsFalse,
				}, nil
			})
		},
	}
}

func matchesAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if pattern == m.WildcardSideEffectFree || strings.Contains(path, pattern) {
			return true
		}
	}

	return false
}

// metafileInputs extracts the visited file paths from an esbuild metafile.
func metafileInputs(metafile string) ([]string, error) {
	var meta struct {
		Inputs map[string]json.RawMessage `json:"inputs"`
	}

	if err := json.Unmarshal([]byte(metafile), &meta); err != nil {
		return nil, fmt.Errorf("parse metafile: %w", err)
	}

	inputs := make([]string, 0, len(meta.Inputs))
	for path := range meta.Inputs {
		inputs = append(inputs, path)
	}

	sort.Strings(inputs)

	return inputs, nil
}
