// Package fetch acquires a remote LookML repository for analysis.
package fetch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/datagrunn/lookmap/internal/ctxlog"
)

// Clone clones url into a fresh temporary directory and returns the
// detected project root together with a cleanup function that removes the
// clone. The caller owns cancellation and deadlines through ctx.
func Clone(ctx context.Context, url string) (string, func(), error) {
	if !looksLikeGitURL(url) {
		return "", nil, fmt.Errorf("%q does not look like a git URL", url)
	}

	dir, err := os.MkdirTemp("", "lookmap-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	ctxlog.FromContext(ctx).Info("cloning repository", "url", url)

	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", url, dir)
	if out, err := cmd.CombinedOutput(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("git clone: %v: %s", err, strings.TrimSpace(string(out)))
	}

	return DetectRoot(dir), cleanup, nil
}

// DetectRoot returns the directory holding the LookML project inside a
// checkout. When the models directory is not at the top level but exactly
// one subdirectory contains it, that subdirectory is the root.
func DetectRoot(dir string) string {
	if isDir(filepath.Join(dir, "models")) {
		return dir
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return dir
	}

	var candidate string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if isDir(filepath.Join(dir, e.Name(), "models")) {
			if candidate != "" {
				return dir // ambiguous, keep the checkout root
			}
			candidate = filepath.Join(dir, e.Name())
		}
	}
	if candidate != "" {
		return candidate
	}
	return dir
}

func looksLikeGitURL(url string) bool {
	return strings.HasPrefix(url, "https://") ||
		strings.HasPrefix(url, "http://") ||
		strings.HasPrefix(url, "git@") ||
		strings.HasPrefix(url, "ssh://")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
