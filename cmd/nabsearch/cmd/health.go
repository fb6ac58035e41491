package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tislab/nabsearch/internal/health"
)

func newHealthCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check connectivity to the pipeline's dependencies",
		Long: `Probe the knowledge base, both embedding endpoints and the rerank
endpoint. Exits non-zero only when every component is down, because the
pipeline degrades gracefully as long as any component responds.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHealth(cmd, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}

func runHealth(cmd *cobra.Command, format string) error {
	a, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	report := a.checker.Check(cmd.Context())
	out := cmd.OutOrStdout()

	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "Status: %s\n", report.Status)
		names := make([]string, 0, len(report.Components))
		for name := range report.Components {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "  %-18s %s", name, report.Components[name])
			if detail := report.Details[name]; detail != "" {
				fmt.Fprintf(out, " (%s)", detail)
			}
			fmt.Fprintln(out)
		}
	}

	if report.Status != health.StatusUp {
		return fmt.Errorf("all components are down")
	}
	return nil
}
