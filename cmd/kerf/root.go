// Root command for the kerf CLI.
package main

import (
	"github.com/spf13/cobra"
)

// Version is the kerf release version.
const Version = "0.1.0"

// Global flag values.
var (
	flagConfig string
	flagJSON   bool
)

var rootCmd = &cobra.Command{
	Use:     "kerf",
	Short:   "Kerf is a 2D parametric sketching system",
	Version: Version,
	Long: `Kerf evaluates sketch scripts written in a small Lisp dialect into
2D geometry: points, lines, circles, arcs and splines, related by
geometric constraints that a least-squares solver reconciles.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: .kerf.yaml in the working directory)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(evalCmd)
}
