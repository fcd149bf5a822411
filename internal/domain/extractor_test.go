package domain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sidefx.dev/pkg/sidefx/internal/adapter"
	m "sidefx.dev/pkg/sidefx/internal/model"
)

// trackingFS records the scratch directories handed out so tests can verify
// cleanup.
type trackingFS struct {
	*adapter.LocalSourceFSAdapter

	tempDirs []m.Path
}

func (f *trackingFS) CreateTempDir(pattern string) (m.Path, error) {
	dir, err := f.LocalSourceFSAdapter.CreateTempDir(pattern)
	if err == nil {
		f.tempDirs = append(f.tempDirs, dir)
	}

	return dir, err
}

// fakeBundler returns canned results and records whether it ran.
type fakeBundler struct {
	result adapter.BundleResult
	err    error

	calls []adapter.BundleRequest
}

func (b *fakeBundler) Bundle(_ context.Context, req adapter.BundleRequest) (adapter.BundleResult, error) {
	b.calls = append(b.calls, req)

	return b.result, b.err
}

func (b *fakeBundler) Shake(_ context.Context, code string, _ bool) (string, error) {
	return code, nil
}

func newTestExtractor(fs adapter.SourceFSAdapter, bundler adapter.BundlerAdapter) Extractor {
	return NewExtractor(fs, bundler, NewEntryBuilder(fs), adapter.NewTreeSitterAdapter())
}

func writeModule(t *testing.T, dir, name, content string) m.Path {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}

	return m.Path(path)
}

func TestExtractor_MissingModulesFailAtomically(t *testing.T) {
	fs := &trackingFS{LocalSourceFSAdapter: adapter.NewLocalSourceFSAdapter()}
	bundler := &fakeBundler{}
	x := newTestExtractor(fs, bundler)

	dir := t.TempDir()
	existing := writeModule(t, dir, "here.js", "console.log(1);\n")

	_, err := x.Extract(context.Background(), m.DefaultConfig(), []m.Path{
		existing,
		m.Path(filepath.Join(dir, "gone.js")),
		m.Path(filepath.Join(dir, "also-gone.js")),
	})

	var missing *MissingModulesError
	if !errors.As(err, &missing) {
		t.Fatalf("Extract() error = %v, want MissingModulesError", err)
	}

	if len(missing.Paths) != 2 {
		t.Fatalf("missing paths = %v, want both absent modules", missing.Paths)
	}

	for _, p := range missing.Paths {
		if !strings.Contains(err.Error(), string(p)) {
			t.Fatalf("error %q does not mention %s", err.Error(), p)
		}
	}

	if len(bundler.calls) != 0 {
		t.Fatalf("bundler ran despite missing modules")
	}

	if len(fs.tempDirs) != 0 {
		t.Fatalf("scratch dir was created before validation: %v", fs.tempDirs)
	}
}

func TestExtractor_ScratchReleasedOnBundleFault(t *testing.T) {
	fs := &trackingFS{LocalSourceFSAdapter: adapter.NewLocalSourceFSAdapter()}
	bundler := &fakeBundler{err: errors.New("boom")}
	x := newTestExtractor(fs, bundler)

	mod := writeModule(t, t.TempDir(), "mod.js", "console.log(1);\n")

	_, err := x.Extract(context.Background(), m.DefaultConfig(), []m.Path{mod})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("Extract() error = %v, want propagated bundler fault", err)
	}

	if len(fs.tempDirs) != 1 {
		t.Fatalf("expected one scratch dir, got %v", fs.tempDirs)
	}

	if _, statErr := os.Stat(string(fs.tempDirs[0])); !os.IsNotExist(statErr) {
		t.Fatalf("scratch dir %s survived a failed invocation", fs.tempDirs[0])
	}
}

func TestExtractor_TrimsTrailingNewline(t *testing.T) {
	fs := &trackingFS{LocalSourceFSAdapter: adapter.NewLocalSourceFSAdapter()}
	bundler := &fakeBundler{result: adapter.BundleResult{Code: "console.log(1);\n"}}
	x := newTestExtractor(fs, bundler)

	mod := writeModule(t, t.TempDir(), "mod.js", "console.log(1);\n")

	cfg := m.DefaultConfig()
	cfg.PureGetters = false

	extraction, err := x.Extract(context.Background(), cfg, []m.Path{mod})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if extraction.Code != "console.log(1);" {
		t.Fatalf("Code = %q, want trailing newline trimmed", extraction.Code)
	}
}

func TestExtractor_PureGettersStripPropertyReads(t *testing.T) {
	fs := &trackingFS{LocalSourceFSAdapter: adapter.NewLocalSourceFSAdapter()}
	bundler := &fakeBundler{result: adapter.BundleResult{Code: "const obj = {};\nobj.prop;\nconsole.log(1);\n"}}
	x := newTestExtractor(fs, bundler)

	mod := writeModule(t, t.TempDir(), "mod.js", "ignored\n")

	cfg := m.DefaultConfig()

	extraction, err := x.Extract(context.Background(), cfg, []m.Path{mod})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if strings.Contains(extraction.Code, "obj.prop") {
		t.Fatalf("property read survived pure-getters pass: %q", extraction.Code)
	}

	if !strings.Contains(extraction.Code, "console.log(1);") {
		t.Fatalf("call statement was dropped: %q", extraction.Code)
	}
}

func TestExtractor_Idempotent(t *testing.T) {
	fs := &trackingFS{LocalSourceFSAdapter: adapter.NewLocalSourceFSAdapter()}
	bundler := &fakeBundler{result: adapter.BundleResult{Code: "console.log(1);\n"}}
	x := newTestExtractor(fs, bundler)

	mod := writeModule(t, t.TempDir(), "mod.js", "console.log(1);\n")

	first, err := x.Extract(context.Background(), m.DefaultConfig(), []m.Path{mod})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	second, err := x.Extract(context.Background(), m.DefaultConfig(), []m.Path{mod})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if first.Code != second.Code {
		t.Fatalf("results differ across identical runs: %q vs %q", first.Code, second.Code)
	}
}

func TestExtractor_OnDiskOutput(t *testing.T) {
	fs := &trackingFS{LocalSourceFSAdapter: adapter.NewLocalSourceFSAdapter()}
	bundler := &fakeBundler{result: adapter.BundleResult{
		Code:      "console.log(1);\n",
		SourceMap: `{"version":3}`,
	}}
	x := newTestExtractor(fs, bundler)

	dir := t.TempDir()
	mod := writeModule(t, dir, "mod.js", "console.log(1);\n")

	cfg := m.DefaultConfig()
	cfg.PureGetters = false
	cfg.Output = m.Path(filepath.Join(dir, "out", "residue.js"))

	extraction, err := x.Extract(context.Background(), cfg, []m.Path{mod})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	code, err := os.ReadFile(string(extraction.OutputPath))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}

	if string(code) != "console.log(1);\n" {
		t.Fatalf("output file = %q", string(code))
	}

	if _, err := os.Stat(string(extraction.SourceMapPath)); err != nil {
		t.Fatalf("source map missing: %v", err)
	}
}

func TestExtractor_EndToEnd(t *testing.T) {
	fs := &trackingFS{LocalSourceFSAdapter: adapter.NewLocalSourceFSAdapter()}
	x := newTestExtractor(fs, adapter.NewEsbuildAdapter())

	dir := t.TempDir()
	writeModule(t, dir, "pure_a.js", "export const a = 1;\n")
	writeModule(t, dir, "pure_b.js", "export function b() { return 2; }\n")

	t.Run("module with only imports has empty residue", func(t *testing.T) {
		mod := writeModule(t, dir, "only_imports.js",
			"import \"./pure_a.js\";\nimport \"./pure_b.js\";\n")

		extraction, err := x.Extract(context.Background(), m.DefaultConfig(), []m.Path{mod})
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}

		if extraction.Code != "" {
			t.Fatalf("expected empty residue, got %q", extraction.Code)
		}
	})

	t.Run("import-time call shows up in residue", func(t *testing.T) {
		mod := writeModule(t, dir, "impure.js", "console.log(\"boot\");\n")

		extraction, err := x.Extract(context.Background(), m.DefaultConfig(), []m.Path{mod})
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}

		if !strings.Contains(extraction.Code, "console.log") {
			t.Fatalf("residue %q misses the side effect", extraction.Code)
		}
	})

	t.Run("pure getters assumption never adds residue", func(t *testing.T) {
		mod := writeModule(t, dir, "getters.js",
			"const obj = { prop: 1 };\nobj.prop;\nconsole.log(\"effect\");\n")

		strict := m.DefaultConfig()
		strict.PureGetters = false

		loose := m.DefaultConfig()

		strictResult, err := x.Extract(context.Background(), strict, []m.Path{mod})
		if err != nil {
			t.Fatalf("Extract(strict) error = %v", err)
		}

		looseResult, err := x.Extract(context.Background(), loose, []m.Path{mod})
		if err != nil {
			t.Fatalf("Extract(loose) error = %v", err)
		}

		if len(looseResult.Code) > len(strictResult.Code) {
			t.Fatalf("pure getters grew the residue: %q vs %q", looseResult.Code, strictResult.Code)
		}

		if !strings.Contains(looseResult.Code, "console.log") {
			t.Fatalf("real side effect hidden by pure getters: %q", looseResult.Code)
		}
	})

	t.Run("dependency files reported when requested", func(t *testing.T) {
		mod := writeModule(t, dir, "with_dep.js", "import \"./pure_a.js\";\n")

		cfg := m.DefaultConfig()
		cfg.EmitDependencies = true

		extraction, err := x.Extract(context.Background(), cfg, []m.Path{mod})
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}

		var found bool

		for _, dep := range extraction.Dependencies {
			if strings.Contains(dep, "pure_a.js") {
				found = true
			}

			if strings.Contains(dep, "entry.js") {
				t.Fatalf("synthetic entry leaked into dependencies: %v", extraction.Dependencies)
			}
		}

		if !found {
			t.Fatalf("pure_a.js not in dependencies: %v", extraction.Dependencies)
		}
	})
}
