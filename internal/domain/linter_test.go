package domain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sidefx.dev/pkg/sidefx/internal/adapter"
	"sidefx.dev/pkg/sidefx/internal/domain/rules"
	m "sidefx.dev/pkg/sidefx/internal/model"
)

func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", path, err)
		}

		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", path, err)
		}
	}
}

func TestLinter_Lint(t *testing.T) {
	fs := adapter.NewLocalSourceFSAdapter()
	checks := []rules.Rule{rules.NewToplevelAccess(adapter.NewTreeSitterAdapter(), nil)}

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"src/bad.js":                   "const v = obj.prop;\n",
		"src/nested/also_bad.ts":       "const v = obj.prop;\n",
		"src/clean.js":                 "export const a = 1;\n",
		"src/readme.md":                "obj.prop everywhere\n",
		"node_modules/dep.js":          "const v = obj.prop;\n",
		".cache/tmp.js":                "const v = obj.prop;\n",
		"src/node_modules/vendored.js": "const v = obj.prop;\n",
	})

	findings, err := NewLinter(fs).Lint(context.Background(), []m.Path{m.Path(dir)}, checks)
	if err != nil {
		t.Fatalf("Lint() error = %v", err)
	}

	if len(findings) != 2 {
		t.Fatalf("got %d finding(s), want 2: %v", len(findings), findings)
	}

	// Sorted by file path.
	if filepath.Base(string(findings[0].File)) != "bad.js" {
		t.Errorf("first finding in %s, want bad.js", findings[0].File)
	}

	if filepath.Base(string(findings[1].File)) != "also_bad.ts" {
		t.Errorf("second finding in %s, want also_bad.ts", findings[1].File)
	}
}

func TestLinter_SingleFileTarget(t *testing.T) {
	fs := adapter.NewLocalSourceFSAdapter()
	checks := []rules.Rule{rules.NewToplevelAccess(adapter.NewTreeSitterAdapter(), nil)}

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"bad.js":   "const v = obj.prop;\n",
		"other.js": "const v = obj.prop;\n",
	})

	target := m.Path(filepath.Join(dir, "bad.js"))

	findings, err := NewLinter(fs).Lint(context.Background(), []m.Path{target, target}, checks)
	if err != nil {
		t.Fatalf("Lint() error = %v", err)
	}

	if len(findings) != 1 {
		t.Fatalf("got %d finding(s), want 1 (no duplicates, no siblings): %v", len(findings), findings)
	}
}

func TestLinter_MissingTarget(t *testing.T) {
	fs := adapter.NewLocalSourceFSAdapter()

	_, err := NewLinter(fs).Lint(context.Background(), []m.Path{"/no/such/path"}, nil)

	var missing *MissingModulesError
	if !errors.As(err, &missing) {
		t.Fatalf("Lint() error = %v, want MissingModulesError", err)
	}
}
