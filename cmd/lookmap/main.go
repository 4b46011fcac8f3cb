// lookmap reconstructs the explore/join/view dependency structure of a
// LookML project and reports where each view lives and how well it is
// documented.
package main

import (
	"log/slog"
	"os"
)

func main() {
	// Minimal logger until flags configure the real one.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	Execute()
}
