package discover

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("view: v { }\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFilesFindsSuffixSorted(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "finance", "orders.view.lkml"))
	writeFile(t, filepath.Join(dir, "customers.view.lkml"))
	writeFile(t, filepath.Join(dir, "notes.txt"))
	writeFile(t, filepath.Join(dir, "sales.model.lkml"))

	got, err := Files(dir, ViewSuffix)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	want := []string{"customers.view.lkml", filepath.Join("finance", "orders.view.lkml")}
	if len(got) != len(want) {
		t.Fatalf("Files = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Files[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFilesSkipsHiddenAndJunkDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".hidden", "a.view.lkml"))
	writeFile(t, filepath.Join(dir, "node_modules", "b.view.lkml"))
	writeFile(t, filepath.Join(dir, "ok.view.lkml"))

	got, err := Files(dir, ViewSuffix)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(got) != 1 || got[0] != "ok.view.lkml" {
		t.Errorf("Files = %v, want [ok.view.lkml]", got)
	}
}

func TestFilesMissingRoot(t *testing.T) {
	t.Parallel()

	if _, err := Files(filepath.Join(t.TempDir(), "absent"), ViewSuffix); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestFilesRootNotADirectory(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "plain")
	writeFile(t, file)
	if _, err := Files(file, ViewSuffix); err == nil {
		t.Error("expected error for non-directory root")
	}
}

func TestViewName(t *testing.T) {
	t.Parallel()

	if got := ViewName(filepath.Join("finance", "orders.view.lkml")); got != "orders" {
		t.Errorf("ViewName = %q, want orders", got)
	}
}

func TestTopFolder(t *testing.T) {
	t.Parallel()

	if got := TopFolder(filepath.Join("finance", "sub", "orders.view.lkml"), "(root)"); got != "finance" {
		t.Errorf("TopFolder = %q, want finance", got)
	}
	if got := TopFolder("orders.view.lkml", "(root)"); got != "(root)" {
		t.Errorf("TopFolder = %q, want (root)", got)
	}
}
