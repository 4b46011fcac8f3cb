// Package render formats analysis results as aligned text tables and CSV.
package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/datagrunn/lookmap/internal/model"
)

// undefined marks values that do not exist, such as the coverage of a
// view with no fields. Rendered distinctly from 0%.
const undefined = "n/a"

// usageColumns is the column order for the usage table and CSV export.
var usageColumns = []string{"model_file", "explore", "role", "join_name", "resolved_view", "view_folder"}

// coverageColumns extends the usage columns in the CSV export.
var coverageColumns = []string{"described_fields", "total_fields", "coverage_percent", "extends"}

// UsageTable renders the usage rows as an aligned text table.
func UsageTable(rows []model.UsageRow) string {
	table := [][]string{usageColumns}
	for _, r := range rows {
		table = append(table, usageCells(r))
	}
	return alignTable(table)
}

// CoverageTable renders per-view documentation coverage, sorted by view.
func CoverageTable(cov map[string]model.CoverageEntry, extends map[string][]string) string {
	names := make([]string, 0, len(cov))
	for name := range cov {
		names = append(names, name)
	}
	sort.Strings(names)

	table := [][]string{{"view", "described_fields", "total_fields", "coverage_percent", "extends"}}
	for _, name := range names {
		c := cov[name]
		table = append(table, []string{
			name,
			strconv.Itoa(c.Described),
			strconv.Itoa(c.Total),
			percentCell(c),
			strings.Join(extends[name], " "),
		})
	}
	return alignTable(table)
}

// Diagnostics writes one line per diagnostic.
func Diagnostics(w io.Writer, diags []model.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(w, "warning: %s: %s\n", d.File, d.Message)
	}
}

// WriteCSV writes the full report as UTF-8 CSV with a header row. Fields
// containing delimiters or quotes are quoted by the writer per standard
// CSV rules. Coverage columns are joined onto each usage row by view.
func WriteCSV(w io.Writer, res *model.Result) error {
	cw := csv.NewWriter(w)

	header := append(append([]string{}, usageColumns...), coverageColumns...)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range res.Rows {
		record := usageCells(r)
		if c, ok := res.Coverage[r.View]; ok {
			record = append(record,
				strconv.Itoa(c.Described),
				strconv.Itoa(c.Total),
				percentCell(c),
				strings.Join(res.Extends[r.View], " "),
			)
		} else {
			record = append(record, undefined, undefined, undefined, "")
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func usageCells(r model.UsageRow) []string {
	return []string{r.ModelFile, r.Explore, string(r.Role), r.JoinName, r.View, r.Folder}
}

func percentCell(c model.CoverageEntry) string {
	if !c.Defined() {
		return undefined
	}
	return strconv.Itoa(c.Percent())
}

// alignTable pads every cell to its column width. The first row is the
// header, separated from the body by a dashed rule.
func alignTable(table [][]string) string {
	if len(table) == 0 {
		return ""
	}

	widths := make([]int, len(table[0]))
	for _, row := range table {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	for rowIdx, row := range table {
		for i, cell := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-len(cell)))
			}
		}
		b.WriteByte('\n')
		if rowIdx == 0 {
			for i, w := range widths {
				if i > 0 {
					b.WriteString("  ")
				}
				b.WriteString(strings.Repeat("-", w))
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}
