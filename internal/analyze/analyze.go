// Package analyze orchestrates parsing of model files and merges the
// results with the view index into the final report.
package analyze

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/datagrunn/lookmap/internal/ctxlog"
	"github.com/datagrunn/lookmap/internal/discover"
	"github.com/datagrunn/lookmap/internal/lkml"
	"github.com/datagrunn/lookmap/internal/model"
	"github.com/datagrunn/lookmap/internal/viewindex"
)

// Options configures a run. ViewsDir and ModelsDir are the two project
// roots; Workers caps parse concurrency (0 means GOMAXPROCS).
type Options struct {
	ViewsDir  string
	ModelsDir string
	Workers   int
}

// Run analyzes a LookML project. Parsing one file is a pure function of
// its text, so model files are parsed concurrently and the merged rows
// are sorted afterwards; output does not depend on scheduling order.
// Per-file failures become diagnostics, not errors.
func Run(ctx context.Context, opts Options) (*model.Result, error) {
	idx, err := viewindex.Build(ctx, opts.ViewsDir)
	if err != nil {
		return nil, fmt.Errorf("views root: %w", err)
	}

	files, err := discover.Files(opts.ModelsDir, discover.ModelSuffix)
	if err != nil {
		return nil, fmt.Errorf("models root: %w", err)
	}

	parsed := parseConcurrent(ctx, opts.ModelsDir, files, opts.Workers)

	res := &model.Result{
		Coverage:       idx.Coverage,
		Extends:        idx.Extends,
		MultiViewFiles: idx.MultiViewFiles,
		Diagnostics:    idx.Diagnostics,
	}
	res.Stats.Views = len(idx.Folders)

	for _, p := range parsed {
		res.Diagnostics = append(res.Diagnostics, p.diags...)
		if len(p.rows) == 0 {
			continue
		}
		res.Stats.Models++
		res.Rows = append(res.Rows, p.rows...)
		res.Stats.Explores += p.explores
		res.Stats.Joins += p.joins
		res.Stats.ExploresDescribed += p.exploresDescribed
		res.Stats.JoinsDescribed += p.joinsDescribed
	}

	fillFolders(res.Rows, idx)
	sortRows(res.Rows)
	res.JoinedWithoutPK = joinedWithoutPK(res.Rows, idx)

	return res, nil
}

// fileResult is the outcome of parsing one model file.
type fileResult struct {
	rows  []model.UsageRow
	diags []model.Diagnostic

	explores, joins                   int
	exploresDescribed, joinsDescribed int
}

// ParseModel returns the usage rows found in one model file's text.
// modelFile is used only to label rows and diagnostics.
func ParseModel(modelFile, raw string) ([]model.UsageRow, []model.Diagnostic) {
	r := parseModel(modelFile, raw)
	return r.rows, r.diags
}

func parseModel(modelFile, raw string) fileResult {
	var r fileResult
	text := lkml.StripComments(raw)

	explores, errs := lkml.ExtractBlocks(text, "explore")
	for _, err := range errs {
		r.diags = append(r.diags, model.Diagnostic{File: modelFile, Message: err.Error()})
	}

	for _, exp := range explores {
		r.explores++
		if lkml.ParamValue(exp.Body, "description") != "" {
			r.exploresDescribed++
		}

		r.rows = append(r.rows, model.UsageRow{
			ModelFile: modelFile,
			Explore:   exp.Name,
			Role:      model.Primary,
			View:      lkml.ResolveViewRef(exp.Body, exp.Name),
		})

		joins, jerrs := lkml.ExtractBlocks(exp.Body, "join")
		for _, err := range jerrs {
			r.diags = append(r.diags, model.Diagnostic{File: modelFile, Message: err.Error()})
		}
		for _, j := range joins {
			r.joins++
			if lkml.ParamValue(j.Body, "description") != "" {
				r.joinsDescribed++
			}
			r.rows = append(r.rows, model.UsageRow{
				ModelFile: modelFile,
				Explore:   exp.Name,
				Role:      model.Join,
				JoinName:  j.Name,
				View:      lkml.ResolveViewRef(j.Body, j.Name),
			})
		}
	}

	return r
}

func parseConcurrent(ctx context.Context, dir string, files []string, workers int) []fileResult {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(files) {
		workers = len(files)
	}

	log := ctxlog.FromContext(ctx)

	work := make(chan int, len(files))
	results := make([]fileResult, len(files))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				if ctx.Err() != nil {
					return
				}
				rel := files[idx]
				data, err := os.ReadFile(filepath.Join(dir, rel))
				if err != nil {
					log.Warn("skipping unreadable model file", "file", rel, "err", err)
					results[idx] = fileResult{diags: []model.Diagnostic{{File: rel, Message: fmt.Sprintf("read: %v", err)}}}
					continue
				}
				results[idx] = parseModel(rel, string(data))
				log.Debug("parsed model file", "file", rel, "rows", len(results[idx].rows))
			}
		}()
	}

	for i := range files {
		work <- i
	}
	close(work)
	wg.Wait()

	return results
}

func fillFolders(rows []model.UsageRow, idx *viewindex.Index) {
	for i := range rows {
		rows[i].Folder = idx.Folders[rows[i].View]
	}
}

// sortRows fixes the output order: primary rows before joins within an
// explore, everything else lexicographic.
func sortRows(rows []model.UsageRow) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ModelFile != b.ModelFile {
			return a.ModelFile < b.ModelFile
		}
		if a.Explore != b.Explore {
			return a.Explore < b.Explore
		}
		if a.Role != b.Role {
			return a.Role == model.Primary
		}
		return a.JoinName < b.JoinName
	})
}

// joinedWithoutPK collects views used in joins that lack a primary_key
// dimension, including views whose file was never found.
func joinedWithoutPK(rows []model.UsageRow, idx *viewindex.Index) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, row := range rows {
		if row.Role != model.Join {
			continue
		}
		if _, dup := seen[row.View]; dup {
			continue
		}
		if has, known := idx.HasPrimaryKey(row.View); has && known {
			continue
		}
		seen[row.View] = struct{}{}
		out = append(out, row.View)
	}
	sort.Strings(out)
	return out
}
