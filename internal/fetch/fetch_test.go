package fetch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkdir(t *testing.T, parts ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(parts...), 0o755))
}

func TestDetectRootTopLevel(t *testing.T) {
	dir := t.TempDir()
	mkdir(t, dir, "models")

	assert.Equal(t, dir, DetectRoot(dir))
}

func TestDetectRootNested(t *testing.T) {
	dir := t.TempDir()
	mkdir(t, dir, "project", "models")
	mkdir(t, dir, ".git")

	assert.Equal(t, filepath.Join(dir, "project"), DetectRoot(dir))
}

func TestDetectRootAmbiguous(t *testing.T) {
	dir := t.TempDir()
	mkdir(t, dir, "a", "models")
	mkdir(t, dir, "b", "models")

	assert.Equal(t, dir, DetectRoot(dir))
}

func TestDetectRootNoModels(t *testing.T) {
	dir := t.TempDir()
	mkdir(t, dir, "docs")

	assert.Equal(t, dir, DetectRoot(dir))
}

func TestCloneRejectsBadURL(t *testing.T) {
	_, _, err := Clone(context.Background(), "not a url")
	require.Error(t, err)
}
