// Package discover finds LookML source files under a project subtree.
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// Recognized LookML file suffixes.
const (
	ViewSuffix  = ".view.lkml"
	ModelSuffix = ".model.lkml"
)

var skipDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"build":        {},
	"dist":         {},
	"tmp":          {},
}

// Files walks the subtree rooted at dir and returns the relative paths of
// files with the given suffix, sorted. Hidden files and directories,
// symlinks, and gitignored paths are skipped. Returns an error when dir
// does not exist or is not a directory.
func Files(dir, suffix string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", dir)
	}

	gi := loadGitignore(dir)

	var results []string

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entry, skip
		}

		name := d.Name()

		if d.IsDir() {
			if path == dir {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if !strings.HasSuffix(name, suffix) {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		results = append(results, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(results)
	return results, nil
}

// ViewName derives a view name from a view file path by stripping the
// directory and the view-file suffix.
func ViewName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ViewSuffix)
}

// TopFolder returns the name of the path segment immediately below the
// searched root for a root-relative file path, or fallback when the file
// sits directly under the root.
func TopFolder(rel, fallback string) string {
	rel = filepath.ToSlash(rel)
	if i := strings.IndexByte(rel, '/'); i > 0 {
		return rel[:i]
	}
	return fallback
}

// loadGitignore looks for a .gitignore in dir or its parent. The parent
// is checked because dir is usually a subtree of the actual repository.
func loadGitignore(dir string) *ignore.GitIgnore {
	for _, p := range []string{
		filepath.Join(dir, ".gitignore"),
		filepath.Join(dir, "..", ".gitignore"),
	} {
		if gi, err := ignore.CompileIgnoreFile(p); err == nil {
			return gi
		}
	}
	return nil
}
