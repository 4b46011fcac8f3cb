package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/datagrunn/lookmap/internal/cli"
	"github.com/datagrunn/lookmap/internal/render"
	"github.com/datagrunn/lookmap/internal/viewindex"
)

var coverageCmd = &cobra.Command{
	Use:   "coverage [path]",
	Short: "Report per-view documentation coverage",
	Long: `Scan the views directory and report, for every view, how many of its
dimensions, dimension groups, and measures carry a description.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := projectPath(args)

		idx, err := viewindex.Build(cmd.Context(), filepath.Join(root, cfg.ViewsDir))
		if err != nil {
			return cli.InputError("scanning views", err)
		}

		if !quiet {
			fmt.Print(render.CoverageTable(idx.Coverage, idx.Extends))
		}
		render.Diagnostics(os.Stderr, idx.Diagnostics)
		return nil
	},
}
