package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/datagrunn/lookmap/internal/assess"
	"github.com/datagrunn/lookmap/internal/render"
)

var assessCmd = &cobra.Command{
	Use:   "assess [path]",
	Short: "Check the project against LookML best practices",
	Long: `Run the full analysis and evaluate the project against best practices:
missing view files, files declaring several views, views joined without a
primary key, and view naming conventions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := runAnalysis(cmd.Context(), args)
		if err != nil {
			return err
		}

		rep := assess.Evaluate(res)
		rep.Print(os.Stdout, verbose > 0)
		render.Diagnostics(os.Stderr, res.Diagnostics)
		return nil
	},
}

func init() {
	assessCmd.Flags().StringVar(&analyzeRepo, "repo", "", "git URL to clone and analyze instead of a local path")
}
