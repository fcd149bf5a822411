package domain

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"sidefx.dev/pkg/sidefx/internal/adapter"
	"sidefx.dev/pkg/sidefx/internal/domain/rules"
	m "sidefx.dev/pkg/sidefx/internal/model"
)

// skipDirs are directory names the lint scan never descends into.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
}

// Linter runs static rules over every script file under the given paths.
// Unlike the extraction pipeline, the scan itself is read-only, so files are
// checked with bounded parallelism.
type Linter interface {
	Lint(ctx context.Context, paths []m.Path, checks []rules.Rule) ([]m.Finding, error)
}

type linter struct {
	fs adapter.SourceFSAdapter
}

// NewLinter constructs a Linter backed by the provided filesystem adapter.
func NewLinter(fsAdapter adapter.SourceFSAdapter) Linter {
	return &linter{fs: fsAdapter}
}

func (l *linter) Lint(ctx context.Context, paths []m.Path, checks []rules.Rule) ([]m.Finding, error) {
	if len(paths) == 0 {
		paths = []m.Path{"."}
	}

	files, err := l.collectFiles(paths)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex

	var findings []m.Finding

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.NumCPU())

	for _, file := range files {
		group.Go(func() error {
			fileFindings, err := l.checkFile(groupCtx, file, checks)
			if err != nil {
				return err
			}

			if len(fileFindings) == 0 {
				return nil
			}

			mu.Lock()
			findings = append(findings, fileFindings...)
			mu.Unlock()

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(findings, func(a, b int) bool {
		if findings[a].File != findings[b].File {
			return findings[a].File < findings[b].File
		}
		if findings[a].Line != findings[b].Line {
			return findings[a].Line < findings[b].Line
		}

		return findings[a].Column < findings[b].Column
	})

	return findings, nil
}

func (l *linter) collectFiles(paths []m.Path) ([]m.Path, error) {
	var files []m.Path

	seen := make(map[m.Path]bool)

	for _, root := range paths {
		info, err := l.fs.FileInfo(root)
		if err != nil {
			return nil, &MissingModulesError{Paths: []m.Path{root}}
		}

		if !info.IsDir() {
			if !seen[root] {
				seen[root] = true
				files = append(files, root)
			}

			continue
		}

		err = l.fs.Walk(root, true, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.IsDir() {
				if path != string(root) && (skipDirs[info.Name()] || strings.HasPrefix(info.Name(), ".")) {
					return filepath.SkipDir
				}

				return nil
			}

			p := m.Path(path)
			if adapter.IsScriptPath(p) && !seen[p] {
				seen[p] = true
				files = append(files, p)
			}

			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

func (l *linter) checkFile(ctx context.Context, file m.Path, checks []rules.Rule) ([]m.Finding, error) {
	var findings []m.Finding

	var src []byte

	for _, rule := range checks {
		if !rule.Applies(file) {
			continue
		}

		if src == nil {
			content, err := l.fs.ReadFile(file)
			if err != nil {
				return nil, err
			}

			src = content
		}

		ruleFindings, err := rule.Check(ctx, file, src)
		if err != nil {
			return nil, err
		}

		findings = append(findings, ruleFindings...)
	}

	return findings, nil
}
