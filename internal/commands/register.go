// Package commands contains all CLI command definitions.
package commands

import (
	"github.com/spf13/cobra"

	"notion-importer/internal/analyze"
)

// NewRootCmd creates the root command. registry holds the destination types
// compiled into the binary.
func NewRootCmd(registry *analyze.Registry, getenv func(string) string) *cobra.Command {
	a := &app{registry: registry, getenv: getenv}

	rootCmd := &cobra.Command{
		Use:               "notion-importer",
		Short:             "Import Notion databases into typed assets",
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file (default ./notion-importer.toml when present)")
	rootCmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Only print errors and results")
	rootCmd.PersistentFlags().BoolVar(&a.noInput, "no-input", false, "Never prompt")

	rootCmd.AddCommand(
		newConnectCmd(a),
		newListCmd(a),
		newTypesCmd(a),
		newNewCmd(a),
		newShowCmd(a),
		newRunCmd(a),
		newInspectCmd(a),
	)

	return rootCmd
}
