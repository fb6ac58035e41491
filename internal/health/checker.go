// Package health probes the external dependencies of the search pipeline
// and aggregates their statuses. Aggregation is deliberately lenient: the
// pipeline degrades gracefully per component, so the service is considered
// up as long as any component responds.
package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/tislab/nabsearch/internal/embed"
	"github.com/tislab/nabsearch/internal/rerank"
	"github.com/tislab/nabsearch/internal/store"
)

// Status is a component or aggregate health status.
type Status string

const (
	StatusUp   Status = "UP"
	StatusDown Status = "DOWN"
)

// Component names reported by Check.
const (
	ComponentStore       = "store"
	ComponentDocEmbedder = "embedder_document"
	ComponentCodeEmbed   = "embedder_code"
	ComponentReranker    = "reranker"
)

// Report is the outcome of one health check round.
type Report struct {
	// Status is the aggregate: UP when at least one component is UP.
	Status Status
	// Components maps component name to its individual status.
	Components map[string]Status
	// Details holds the error message for each DOWN component.
	Details map[string]string
	// CheckedAt is when the round started.
	CheckedAt time.Time
}

// Checker probes all pipeline dependencies.
type Checker struct {
	store       store.ChunkStore
	docEmbedder embed.Embedder
	codeEmbed   embed.Embedder
	reranker    rerank.Reranker
	timeout     time.Duration
	log         *slog.Logger
}

// NewChecker creates a checker over the pipeline's dependencies. Any nil
// dependency is skipped. The per-component timeout defaults to 5 seconds.
func NewChecker(s store.ChunkStore, docEmbedder, codeEmbedder embed.Embedder, reranker rerank.Reranker, log *slog.Logger) *Checker {
	if log == nil {
		log = slog.Default()
	}
	return &Checker{
		store:       s,
		docEmbedder: docEmbedder,
		codeEmbed:   codeEmbedder,
		reranker:    reranker,
		timeout:     5 * time.Second,
		log:         log,
	}
}

// Check probes every configured component and aggregates. The aggregate is
// UP when at least one component is UP, because every stage has a degraded
// path; DOWN means the whole pipeline is unusable.
func (c *Checker) Check(ctx context.Context) Report {
	report := Report{
		Components: make(map[string]Status),
		Details:    make(map[string]string),
		CheckedAt:  time.Now(),
	}

	if c.store != nil {
		c.record(ctx, &report, ComponentStore, c.store.Ping)
	}
	if c.docEmbedder != nil {
		c.recordAvailable(ctx, &report, ComponentDocEmbedder, c.docEmbedder.Available)
	}
	if c.codeEmbed != nil {
		c.recordAvailable(ctx, &report, ComponentCodeEmbed, c.codeEmbed.Available)
	}
	if c.reranker != nil {
		c.recordAvailable(ctx, &report, ComponentReranker, c.reranker.Available)
	}

	report.Status = StatusDown
	for _, s := range report.Components {
		if s == StatusUp {
			report.Status = StatusUp
			break
		}
	}
	return report
}

func (c *Checker) record(ctx context.Context, report *Report, name string, probe func(context.Context) error) {
	probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := probe(probeCtx); err != nil {
		report.Components[name] = StatusDown
		report.Details[name] = err.Error()
		c.log.Warn("health check failed",
			slog.String("component", name), slog.String("error", err.Error()))
		return
	}
	report.Components[name] = StatusUp
}

func (c *Checker) recordAvailable(ctx context.Context, report *Report, name string, available func(context.Context) bool) {
	probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if !available(probeCtx) {
		report.Components[name] = StatusDown
		report.Details[name] = "not available"
		c.log.Warn("health check failed", slog.String("component", name))
		return
	}
	report.Components[name] = StatusUp
}
