package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/datagrunn/lookmap/internal/analyze"
	"github.com/datagrunn/lookmap/internal/cli"
	"github.com/datagrunn/lookmap/internal/fetch"
	"github.com/datagrunn/lookmap/internal/model"
	"github.com/datagrunn/lookmap/internal/render"
)

var (
	analyzeRepo    string
	analyzeCSV     string
	analyzeWorkers int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Report explore/join view usage",
	Long: `Parse all model files, resolve every explore and join to its underlying
view, and print the usage table together with per-view documentation
coverage and any parse diagnostics.`,
	Example: `  # Analyze the project in the current directory
  lookmap analyze

  # Analyze a checkout and export the rows as CSV
  lookmap analyze ~/src/analytics --csv lookml_structure.csv

  # Clone and analyze a remote project
  lookmap analyze --repo https://github.com/example/analytics`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := runAnalysis(cmd.Context(), args)
		if err != nil {
			return err
		}

		if !quiet {
			fmt.Print(render.UsageTable(res.Rows))
			if len(res.Coverage) > 0 {
				fmt.Println()
				fmt.Print(render.CoverageTable(res.Coverage, res.Extends))
			}
		}
		render.Diagnostics(os.Stderr, res.Diagnostics)

		if csvPath := resolveString(analyzeCSV, cfg.Analyze.CSV); csvPath != "" {
			if err := writeCSVFile(csvPath, res); err != nil {
				return cli.GeneralError("writing CSV", err)
			}
			if !quiet {
				fmt.Fprintf(os.Stderr, "wrote %d rows to %s\n", len(res.Rows), csvPath)
			}
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeRepo, "repo", "", "git URL to clone and analyze instead of a local path")
	analyzeCmd.Flags().StringVar(&analyzeCSV, "csv", "", "write the usage rows to this CSV file")
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "parse concurrency (0 = one per CPU)")
}

// runAnalysis resolves the project root (cloning if --repo was given) and
// runs the full analysis. Shared by analyze and assess.
func runAnalysis(ctx context.Context, args []string) (*model.Result, error) {
	root := projectPath(args)

	if analyzeRepo != "" {
		cloned, cleanup, err := fetch.Clone(ctx, analyzeRepo)
		if err != nil {
			return nil, cli.GeneralError("fetching repository", err)
		}
		defer cleanup()
		root = cloned
	}
	return doRun(ctx, root)
}

func doRun(ctx context.Context, root string) (*model.Result, error) {
	res, err := analyze.Run(ctx, analyze.Options{
		ViewsDir:  filepath.Join(root, cfg.ViewsDir),
		ModelsDir: filepath.Join(root, cfg.ModelsDir),
		Workers:   resolveInt(analyzeWorkers, cfg.Workers),
	})
	if err != nil {
		return nil, cli.InputError("analyzing project", err)
	}
	return res, nil
}

func writeCSVFile(path string, res *model.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return render.WriteCSV(f, res)
}

// resolveString returns the first non-empty string, implementing
// flag > config precedence.
func resolveString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// resolveInt returns the first non-zero int.
func resolveInt(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
