package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/datagrunn/lookmap/internal/cli"
	"github.com/datagrunn/lookmap/internal/ctxlog"
)

var (
	// Global state set during PersistentPreRunE.
	cfg *cli.Config

	// Persistent flags.
	cfgFile string
	verbose int
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "lookmap",
	Short: "LookML structure analyzer",
	Long: `lookmap - LookML structure analyzer

Lookmap parses the view and model files of a LookML project and reports
which explores and joins resolve to which underlying view, which folder
each view lives in, and how well each view's fields are documented.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "version" {
			return nil
		}

		configureLogging()
		cmd.SetContext(ctxlog.WithLogger(cmd.Context(), slog.Default()))

		var err error
		cfg, _, err = cli.LoadConfig(cfgFile)
		if err != nil {
			return cli.ConfigError("loading configuration", err)
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: auto-discover lookmap.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase verbosity (can be repeated)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(coverageCmd)
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(versionCmd)
}

func configureLogging() {
	level := slog.LevelWarn
	switch {
	case quiet:
		level = slog.LevelError
	case verbose == 1:
		level = slog.LevelInfo
	case verbose > 1:
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// projectPath returns the positional project path, defaulting to cwd.
func projectPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cli.ExitWithError(err)
	}
}
