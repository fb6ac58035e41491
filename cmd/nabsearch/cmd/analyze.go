package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tislab/nabsearch/internal/query"
	"github.com/tislab/nabsearch/internal/search"
)

func newAnalyzeCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "analyze <query>",
		Short: "Analyze a query without searching",
		Long: `Analyze a query: detect its language, extract framework entities,
expand it with synonyms and infer filters. Useful for debugging why a
search behaves the way it does.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, strings.Join(args, " "), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}

func runAnalyze(cmd *cobra.Command, queryText, format string) error {
	analyzer := query.NewAnalyzer()
	analysis, err := analyzer.Analyze(queryText)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		type jsonAnalysis struct {
			OriginalQuery    string               `json:"original_query"`
			ExpandedQuery    string               `json:"expanded_query"`
			Language         string               `json:"language"`
			Entities         []string             `json:"entities,omitempty"`
			SuggestedFilters search.SearchFilters `json:"suggested_filters"`
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonAnalysis{
			OriginalQuery:    analysis.OriginalQuery,
			ExpandedQuery:    analysis.ExpandedQuery,
			Language:         string(analysis.Language),
			Entities:         analysis.Entities,
			SuggestedFilters: analysis.SuggestedFilters,
		})
	}

	fmt.Fprintf(out, "Query:    %s\n", analysis.OriginalQuery)
	fmt.Fprintf(out, "Language: %s\n", analysis.Language)
	if analysis.ExpandedQuery != analysis.OriginalQuery {
		fmt.Fprintf(out, "Expanded: %s\n", analysis.ExpandedQuery)
	}
	if len(analysis.Entities) > 0 {
		fmt.Fprintf(out, "Entities: %s\n", strings.Join(analysis.Entities, ", "))
	}
	if analysis.SuggestedFilters.HasAny() {
		if analysis.SuggestedFilters.Module != "" {
			fmt.Fprintf(out, "Suggested module filter:   %s\n", analysis.SuggestedFilters.Module)
		}
		if analysis.SuggestedFilters.AppType != "" {
			fmt.Fprintf(out, "Suggested app_type filter: %s\n", analysis.SuggestedFilters.AppType)
		}
	}
	return nil
}
