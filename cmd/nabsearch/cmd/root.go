// Package cmd provides the CLI commands for nabsearch.
package cmd

import (
	"github.com/spf13/cobra"
)

// Persistent flags shared by every subcommand.
var (
	configPath string
	logLevel   string
)

// NewRootCmd creates the root command for the nabsearch CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nabsearch",
		Short: "Hybrid search over the Nablarch knowledge base",
		Long: `nabsearch runs hybrid retrieval (trigram keyword + vector similarity,
fused with Reciprocal Rank Fusion) over an indexed knowledge base of
Nablarch documentation and source code, with query analysis, metadata
filtering and cross-encoder reranking.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("nabsearch version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newHealthCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
