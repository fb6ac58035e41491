package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/tislab/nabsearch/internal/config"
	"github.com/tislab/nabsearch/internal/search"
)

// JinaReranker calls the Jina rerank API (cross-encoder scoring of
// query/document pairs). The client holds no per-request state and is
// safe for concurrent use.
type JinaReranker struct {
	client    *http.Client
	transport *http.Transport
	cfg       config.RerankConfig
	log       *slog.Logger
}

var _ Reranker = (*JinaReranker)(nil)

// rerankRequest is the JSON request body.
type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

// rerankResponse is the JSON response body. Results reference candidates
// by their index in the request document list.
type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// NewJinaReranker creates a reranker for the configured endpoint.
func NewJinaReranker(cfg config.RerankConfig, log *slog.Logger) *JinaReranker {
	if log == nil {
		log = slog.Default()
	}
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
	}
	return &JinaReranker{
		client:    &http.Client{Transport: transport},
		transport: transport,
		cfg:       cfg,
		log:       log,
	}
}

// Rerank scores every candidate against the query and returns the topN
// most relevant, highest first, with relevance scores replacing the
// retrieval scores. Any failure (network, non-200 status, malformed
// response) falls back to the first topN candidates in their original
// order with their original scores.
func (j *JinaReranker) Rerank(ctx context.Context, query string, candidates []search.SearchResult, topN int) []search.SearchResult {
	if len(candidates) == 0 {
		return nil
	}
	if topN <= 0 {
		topN = j.cfg.TopN
	}

	scored, err := j.callAPI(ctx, query, candidates)
	if err != nil {
		j.log.Warn("rerank failed, falling back to retrieval order",
			slog.String("error", err.Error()),
			slog.Int("candidates", len(candidates)))
		return headOf(candidates, topN)
	}

	return headOf(scored, topN)
}

// callAPI performs one rerank request and maps the response back onto the
// candidates. Result entries with an index outside the candidate list are
// dropped; missing indexes simply do not appear in the output.
func (j *JinaReranker) callAPI(ctx context.Context, query string, candidates []search.SearchResult) ([]search.SearchResult, error) {
	documents := make([]string, len(candidates))
	for i, c := range candidates {
		documents[i] = c.Content
	}

	payload, err := json.Marshal(rerankRequest{
		Model:     j.cfg.Model,
		Query:     query,
		Documents: documents,
	})
	if err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, j.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, j.cfg.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+j.cfg.APIKey)

	resp, err := j.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("rerank request failed (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	// An empty results array means the model scored nothing; treat it as a
	// failure so callers fall back to the retrieval order.
	if len(parsed.Results) == 0 {
		return nil, fmt.Errorf("rerank response has no results")
	}

	reranked := make([]search.SearchResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.Index < 0 || r.Index >= len(candidates) {
			j.log.Warn("rerank response index out of range",
				slog.Int("index", r.Index), slog.Int("candidates", len(candidates)))
			continue
		}
		reranked = append(reranked, candidates[r.Index].WithScore(r.RelevanceScore))
	}

	sort.SliceStable(reranked, func(a, b int) bool {
		return reranked[a].Score > reranked[b].Score
	})
	return reranked, nil
}

// Available probes the endpoint with a minimal rerank request.
func (j *JinaReranker) Available(ctx context.Context) bool {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	probe := []search.SearchResult{{ID: "probe", Content: "ping"}}
	_, err := j.callAPI(checkCtx, "ping", probe)
	return err == nil
}

// Close releases idle connections.
func (j *JinaReranker) Close() error {
	j.transport.CloseIdleConnections()
	return nil
}
