package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tislab/nabsearch/internal/pipeline"
	"github.com/tislab/nabsearch/internal/search"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	limit          int
	mode           string // "hybrid", "keyword", "vector"
	format         string // "text", "json"
	appType        string
	module         string
	source         string
	sourceType     string
	language       string
	version        string
	fqcnPrefix     string
	since          string // RFC 3339 lower bound on updated_at
	until          string // RFC 3339 upper bound on updated_at
	facets         bool
	noRerank       bool
	noExpand       bool
	suggestFilters bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the knowledge base",
		Long: `Search the knowledge base using hybrid retrieval.

Combines trigram keyword and vector similarity search with Reciprocal
Rank Fusion, then filters by metadata and reranks with a cross-encoder.

Examples:
  nabsearch search "ハンドラキューの設定方法"
  nabsearch search "universal-dao optimistic lock" --limit 5
  nabsearch search "validation" --app-type web --facets
  nabsearch search "DbConnectionManagementHandler" --mode keyword --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results (0 = configured default)")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "hybrid", "Search mode: hybrid, keyword, vector")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().StringVar(&opts.appType, "app-type", "", "Filter by application type (web, rest, batch, ...)")
	cmd.Flags().StringVar(&opts.module, "module", "", "Filter by module (e.g. nablarch-fw-web)")
	cmd.Flags().StringVar(&opts.source, "source", "", "Filter by source")
	cmd.Flags().StringVar(&opts.sourceType, "source-type", "", "Filter by source type")
	cmd.Flags().StringVar(&opts.language, "language", "", "Filter by language (e.g. ja, en, java)")
	cmd.Flags().StringVar(&opts.version, "framework-version", "", "Filter by framework version prefix (e.g. 6, 6.2)")
	cmd.Flags().StringVar(&opts.fqcnPrefix, "fqcn", "", "Filter by fully-qualified class name prefix")
	cmd.Flags().StringVar(&opts.since, "since", "", "Only results updated at or after this RFC 3339 timestamp")
	cmd.Flags().StringVar(&opts.until, "until", "", "Only results updated at or before this RFC 3339 timestamp")
	cmd.Flags().BoolVar(&opts.facets, "facets", false, "Include facet counts over the result set")
	cmd.Flags().BoolVar(&opts.noRerank, "no-rerank", false, "Skip the rerank stage")
	cmd.Flags().BoolVar(&opts.noExpand, "no-expand", false, "Skip synonym expansion")
	cmd.Flags().BoolVar(&opts.suggestFilters, "auto-filter", false, "Apply filters inferred from the query")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, queryText string, opts searchOptions) error {
	req, err := buildRequest(queryText, opts)
	if err != nil {
		return err
	}

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	resp, err := a.pipeline.Search(ctx, req)
	if err != nil {
		return err
	}

	switch opts.format {
	case "json":
		return formatJSON(cmd, resp)
	default:
		return formatText(cmd, queryText, resp)
	}
}

// buildRequest translates CLI flags into a pipeline request.
func buildRequest(queryText string, opts searchOptions) (pipeline.Request, error) {
	var mode search.SearchMode
	switch strings.ToLower(opts.mode) {
	case "", "hybrid":
		mode = search.ModeHybrid
	case "keyword":
		mode = search.ModeKeyword
	case "vector":
		mode = search.ModeVector
	default:
		return pipeline.Request{}, fmt.Errorf("unknown mode %q (want hybrid, keyword or vector)", opts.mode)
	}

	filters := search.ExtendedSearchFilters{
		Base: search.SearchFilters{
			AppType:    opts.appType,
			Module:     opts.module,
			Source:     opts.source,
			SourceType: opts.sourceType,
			Language:   opts.language,
		},
		Version:    opts.version,
		FQCNPrefix: opts.fqcnPrefix,
	}
	if opts.since != "" {
		t, err := time.Parse(time.RFC3339, opts.since)
		if err != nil {
			return pipeline.Request{}, fmt.Errorf("invalid --since timestamp: %w", err)
		}
		filters.DateFrom = &t
	}
	if opts.until != "" {
		t, err := time.Parse(time.RFC3339, opts.until)
		if err != nil {
			return pipeline.Request{}, fmt.Errorf("invalid --until timestamp: %w", err)
		}
		filters.DateTo = &t
	}

	return pipeline.Request{
		Query:                 queryText,
		Mode:                  mode,
		TopK:                  opts.limit,
		Filters:               filters,
		ApplySuggestedFilters: opts.suggestFilters,
		SkipExpansion:         opts.noExpand,
		SkipRerank:            opts.noRerank,
		IncludeFacets:         opts.facets,
	}, nil
}

// formatText outputs results in human-readable form.
func formatText(cmd *cobra.Command, queryText string, resp pipeline.Response) error {
	out := cmd.OutOrStdout()

	if len(resp.Results) == 0 {
		fmt.Fprintf(out, "No results found for %q\n", queryText)
		return nil
	}

	fmt.Fprintf(out, "Found %d results for %q (%s):\n\n", len(resp.Results), queryText, resp.Took.Round(time.Millisecond))
	for i, r := range resp.Results {
		location := r.SourceURL
		if location == "" {
			location = r.ID
		}
		fmt.Fprintf(out, "%d. %s (score: %.4f)\n", i+1, location, r.Score)
		for _, line := range snippet(r.Content, 3) {
			fmt.Fprintf(out, "   %s\n", line)
		}
		fmt.Fprintln(out)
	}

	if resp.Facets != nil {
		fmt.Fprintln(out, "Facets:")
		keys := make([]string, 0, len(resp.Facets))
		for k := range resp.Facets {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			values := make([]string, 0, len(resp.Facets[k]))
			for v := range resp.Facets[k] {
				values = append(values, v)
			}
			sort.Strings(values)
			fmt.Fprintf(out, "  %s:\n", k)
			for _, v := range values {
				fmt.Fprintf(out, "    %s: %d\n", v, resp.Facets[k][v])
			}
		}
	}
	return nil
}

// formatJSON outputs the full response as indented JSON.
func formatJSON(cmd *cobra.Command, resp pipeline.Response) error {
	type jsonResult struct {
		ID        string            `json:"id"`
		Score     float64           `json:"score"`
		Content   string            `json:"content"`
		SourceURL string            `json:"source_url,omitempty"`
		Metadata  map[string]string `json:"metadata,omitempty"`
	}
	type jsonResponse struct {
		RequestID string                    `json:"request_id"`
		Results   []jsonResult              `json:"results"`
		Facets    map[string]map[string]int `json:"facets,omitempty"`
		TookMs    int64                     `json:"took_ms"`
	}

	payload := jsonResponse{
		RequestID: resp.RequestID,
		Facets:    resp.Facets,
		TookMs:    resp.Took.Milliseconds(),
	}
	for _, r := range resp.Results {
		payload.Results = append(payload.Results, jsonResult{
			ID:        r.ID,
			Score:     r.Score,
			Content:   r.Content,
			SourceURL: r.SourceURL,
			Metadata:  r.Metadata,
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// snippet returns the first n non-trailing-blank lines of content.
func snippet(content string, n int) []string {
	lines := strings.Split(content, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
