// Package assess derives best-practice findings from an analysis result.
package assess

import (
	"fmt"
	"io"
	"regexp"
	"sort"

	"github.com/datagrunn/lookmap/internal/model"
)

// Severity classifies a finding.
type Severity string

const (
	Critical       Severity = "critical"
	Recommendation Severity = "recommendation"
)

// Finding is one best-practice violation with the items that triggered it.
type Finding struct {
	Severity Severity
	Title    string
	Detail   string
	Items    []string
}

// Report is the full assessment of a project.
type Report struct {
	Findings  []Finding
	Positives []string
	Stats     model.Stats
}

// Clean reports whether no violations were found.
func (r *Report) Clean() bool {
	return len(r.Findings) == 0
}

var snakeCase = regexp.MustCompile(`^[a-z0-9_]+$`)

// Evaluate inspects an analysis result and returns the assessment.
func Evaluate(res *model.Result) *Report {
	rep := &Report{Stats: res.Stats}

	unknown := unknownViews(res.Rows)
	if len(unknown) > 0 {
		rep.Findings = append(rep.Findings, Finding{
			Severity: Critical,
			Title:    "Missing view files",
			Detail:   "The model refers to views that could not be found under the views directory. This will cause validation errors in Looker.",
			Items:    unknown,
		})
	} else {
		rep.Positives = append(rep.Positives, "All views referenced in models were located under the views directory.")
	}

	if len(res.MultiViewFiles) > 0 {
		rep.Findings = append(rep.Findings, Finding{
			Severity: Recommendation,
			Title:    "One view per file",
			Detail:   "Defining a single view per .view.lkml file improves readability and reduces merge conflicts. These files contain multiple view definitions.",
			Items:    res.MultiViewFiles,
		})
	}

	if len(res.JoinedWithoutPK) > 0 {
		rep.Findings = append(rep.Findings, Finding{
			Severity: Critical,
			Title:    "Views joined without a primary key",
			Detail:   "A view needs a primary key to be safely joined; without one, joins can fan out and inflate measures.",
			Items:    res.JoinedWithoutPK,
		})
	} else if res.Stats.Joins > 0 {
		rep.Positives = append(rep.Positives, "All views used in joins have a primary key defined.")
	}

	if bad := nonSnakeCase(res.Rows, unknown); len(bad) > 0 {
		rep.Findings = append(rep.Findings, Finding{
			Severity: Recommendation,
			Title:    "View naming convention",
			Detail:   "View names are conventionally snake_case. These names deviate from that.",
			Items:    bad,
		})
	} else if len(res.Rows) > 0 {
		rep.Positives = append(rep.Positives, "All view names follow the snake_case convention.")
	}

	return rep
}

// Print writes the report as plain text. Stats and positives are only
// shown when there is something to fix, or when verbose is set.
func (r *Report) Print(w io.Writer, verbose bool) {
	if r.Clean() {
		fmt.Fprintln(w, "All good: no best-practice violations found.")
		if verbose {
			r.printPositives(w)
		}
		return
	}

	s := r.Stats
	fmt.Fprintf(w, "Project: %d model(s), %d view(s), %d explore(s), %d join(s)\n", s.Models, s.Views, s.Explores, s.Joins)
	if s.Explores > 0 {
		pct := s.ExploresDescribed * 100 / s.Explores
		fmt.Fprintf(w, "Explore descriptions: %d%% (%d of %d)\n", pct, s.ExploresDescribed, s.Explores)
	}
	fmt.Fprintln(w)

	for _, f := range r.Findings {
		fmt.Fprintf(w, "[%s] %s\n", f.Severity, f.Title)
		fmt.Fprintf(w, "  %s\n", f.Detail)
		for _, item := range f.Items {
			fmt.Fprintf(w, "    - %s\n", item)
		}
		fmt.Fprintln(w)
	}

	r.printPositives(w)
}

func (r *Report) printPositives(w io.Writer) {
	for _, p := range r.Positives {
		fmt.Fprintf(w, "ok: %s\n", p)
	}
}

func unknownViews(rows []model.UsageRow) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, row := range rows {
		if row.Folder != "" {
			continue
		}
		if _, dup := seen[row.View]; dup {
			continue
		}
		seen[row.View] = struct{}{}
		out = append(out, row.View)
	}
	sort.Strings(out)
	return out
}

func nonSnakeCase(rows []model.UsageRow, unknown []string) []string {
	skip := make(map[string]struct{}, len(unknown))
	for _, v := range unknown {
		skip[v] = struct{}{}
	}

	seen := make(map[string]struct{})
	var out []string
	for _, row := range rows {
		if _, missing := skip[row.View]; missing {
			continue
		}
		if snakeCase.MatchString(row.View) {
			continue
		}
		if _, dup := seen[row.View]; dup {
			continue
		}
		seen[row.View] = struct{}{}
		out = append(out, row.View)
	}
	sort.Strings(out)
	return out
}
