// Package model defines core data structures for lookmap.
package model

import "math"

// Role indicates how a view is used by an explore.
type Role string

const (
	Primary Role = "primary"
	Join    Role = "join"
)

// UsageRow records one use of a view by a model file: either the primary
// view of an explore, or a view attached through a join. Rows are immutable
// once emitted; ordering is fixed by the analyzer for deterministic output.
type UsageRow struct {
	ModelFile string
	Explore   string
	Role      Role
	JoinName  string // set only when Role == Join
	View      string // resolved view name
	Folder    string // empty when the view has no entry in the folder index
}

// CoverageEntry summarizes documentation coverage for one view's fields.
type CoverageEntry struct {
	View      string
	Described int
	Total     int
}

// Defined reports whether a coverage percentage exists for the view.
// A view with no fields has no defined coverage, which callers must
// render distinctly from 0%.
func (c CoverageEntry) Defined() bool {
	return c.Total > 0
}

// Percent returns the coverage percentage rounded to the nearest whole
// percent. Only meaningful when Defined returns true.
func (c CoverageEntry) Percent() int {
	if c.Total == 0 {
		return 0
	}
	return int(math.Round(float64(c.Described) / float64(c.Total) * 100))
}

// Diagnostic records a non-fatal problem encountered during a run.
// Diagnostics accompany the result rather than aborting the analysis.
type Diagnostic struct {
	File    string
	Message string
}

// Stats holds whole-project counts gathered during analysis.
type Stats struct {
	Models   int
	Views    int
	Explores int
	Joins    int

	// Explores and joins carrying a description parameter.
	ExploresDescribed int
	JoinsDescribed    int
}

// Result is the terminal artifact of an analysis run, created fresh per
// run with no persistence across runs.
type Result struct {
	Rows     []UsageRow
	Coverage map[string]CoverageEntry
	Extends  map[string][]string
	Stats    Stats

	// MultiViewFiles lists view files declaring more than one view.
	MultiViewFiles []string
	// JoinedWithoutPK lists views used in joins without a detectable
	// primary_key dimension (or whose view file was not found).
	JoinedWithoutPK []string

	Diagnostics []Diagnostic
}
