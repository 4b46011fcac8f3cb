// Package viewindex builds the per-view metadata index from the views
// subtree of a LookML project: folder placement, documentation coverage,
// extends declarations, and primary-key presence.
package viewindex

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/datagrunn/lookmap/internal/ctxlog"
	"github.com/datagrunn/lookmap/internal/discover"
	"github.com/datagrunn/lookmap/internal/lkml"
	"github.com/datagrunn/lookmap/internal/model"
)

// RootFolder is the folder name assigned to view files that sit directly
// under the views root.
const RootFolder = "(root)"

// fieldKeywords are the block keywords that define fields within a view.
var fieldKeywords = []string{"dimension", "dimension_group", "measure"}

// Index maps view names to the metadata gathered from a single scan of
// the views subtree. When two files declare the same view name, the later
// scan entry wins; the collision is recorded as a diagnostic.
type Index struct {
	Folders  map[string]string
	Coverage map[string]model.CoverageEntry
	Extends  map[string][]string

	// MultiViewFiles lists root-relative paths of files declaring more
	// than one view.
	MultiViewFiles []string

	Diagnostics []model.Diagnostic

	primaryKey map[string]bool
}

// HasPrimaryKey reports whether the named view defines a dimension with
// `primary_key: yes`. known is false when the view is not in the index.
func (x *Index) HasPrimaryKey(view string) (has, known bool) {
	has, known = x.primaryKey[view]
	return has, known
}

// Names returns all indexed view names, sorted.
func (x *Index) Names() []string {
	names := make([]string, 0, len(x.Folders))
	for name := range x.Folders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build scans the views subtree rooted at dir. Unreadable or malformed
// files become diagnostics; only a missing or non-directory root is fatal.
func Build(ctx context.Context, dir string) (*Index, error) {
	files, err := discover.Files(dir, discover.ViewSuffix)
	if err != nil {
		return nil, err
	}

	log := ctxlog.FromContext(ctx)

	x := &Index{
		Folders:    make(map[string]string),
		Coverage:   make(map[string]model.CoverageEntry),
		Extends:    make(map[string][]string),
		primaryKey: make(map[string]bool),
	}

	for _, rel := range files {
		data, err := os.ReadFile(filepath.Join(dir, rel))
		if err != nil {
			log.Warn("skipping unreadable view file", "file", rel, "err", err)
			x.Diagnostics = append(x.Diagnostics, model.Diagnostic{File: rel, Message: fmt.Sprintf("read: %v", err)})
			continue
		}
		x.addFile(rel, string(data))
	}

	return x, nil
}

func (x *Index) addFile(rel, raw string) {
	folder := discover.TopFolder(rel, RootFolder)
	text := lkml.StripComments(raw)

	blocks, errs := lkml.ExtractBlocks(text, "view")
	for _, err := range errs {
		x.Diagnostics = append(x.Diagnostics, model.Diagnostic{File: rel, Message: err.Error()})
	}

	if len(blocks) == 0 {
		// No parseable view block; still map the filename-derived name so
		// folder lookups keep working.
		x.record(discover.ViewName(rel), rel, folder)
		return
	}
	if len(blocks) > 1 {
		x.MultiViewFiles = append(x.MultiViewFiles, rel)
	}

	for _, b := range blocks {
		x.record(b.Name, rel, folder)
		x.Coverage[b.Name] = fieldCoverage(b.Name, b.Body)
		if ext := lkml.ParamList(b.Body, "extends"); ext != nil {
			x.Extends[b.Name] = ext
		}
		x.primaryKey[b.Name] = hasPrimaryKey(b.Body)
	}
}

func (x *Index) record(name, rel, folder string) {
	if prev, dup := x.Folders[name]; dup && prev != folder {
		x.Diagnostics = append(x.Diagnostics, model.Diagnostic{
			File:    rel,
			Message: fmt.Sprintf("view %q already mapped to folder %q, now %q", name, prev, folder),
		})
	}
	x.Folders[name] = folder
}

// fieldCoverage counts the view's top-level field blocks and how many of
// them carry a non-empty description parameter.
func fieldCoverage(name, body string) model.CoverageEntry {
	entry := model.CoverageEntry{View: name}
	for _, kw := range fieldKeywords {
		fields, _ := lkml.ExtractBlocks(body, kw)
		for _, f := range fields {
			entry.Total++
			if lkml.ParamValue(f.Body, "description") != "" {
				entry.Described++
			}
		}
	}
	return entry
}

func hasPrimaryKey(body string) bool {
	dims, _ := lkml.ExtractBlocks(body, "dimension")
	for _, d := range dims {
		if lkml.ParamValue(d.Body, "primary_key") == "yes" {
			return true
		}
	}
	return false
}
