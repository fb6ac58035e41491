package cmd

import (
	"context"

	"github.com/tislab/nabsearch/internal/config"
	"github.com/tislab/nabsearch/internal/embed"
	"github.com/tislab/nabsearch/internal/health"
	"github.com/tislab/nabsearch/internal/logging"
	"github.com/tislab/nabsearch/internal/pipeline"
	"github.com/tislab/nabsearch/internal/query"
	"github.com/tislab/nabsearch/internal/rerank"
	"github.com/tislab/nabsearch/internal/search"
	"github.com/tislab/nabsearch/internal/store"
)

// app holds the wired pipeline and its dependencies for one CLI run.
type app struct {
	cfg      *config.Config
	store    *store.PostgresStore
	docEmbed embed.Embedder
	codeEmb  embed.Embedder
	reranker rerank.Reranker
	pipeline *pipeline.Pipeline
	checker  *health.Checker
}

// buildApp loads configuration and assembles the full pipeline. Callers
// must invoke close when done.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logging.SetupDefault(cfg.LogLevel)
	log := logging.Setup(logging.Config{Level: cfg.LogLevel})

	pg, err := store.NewPostgresStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	docEmbed := embed.NewCachedEmbedder(
		embed.NewAPIEmbedder(cfg.Embeddings.Document), cfg.Embeddings.Document.CacheSize)
	codeEmb := embed.NewCachedEmbedder(
		embed.NewAPIEmbedder(cfg.Embeddings.Code), cfg.Embeddings.Code.CacheSize)

	var reranker rerank.Reranker
	if cfg.Rerank.APIKey != "" {
		reranker = rerank.NewJinaReranker(cfg.Rerank, log)
	} else {
		reranker = &rerank.NoOpReranker{DefaultTopN: cfg.Rerank.TopN}
	}

	keyword := search.NewKeywordSearcher(pg, log)
	vector := search.NewVectorSearcher(pg, docEmbed, codeEmb, log)
	hybrid := search.NewHybridSearcher(keyword, vector, search.HybridConfig{
		CandidateK:    cfg.Search.CandidateK,
		RRFConstant:   cfg.Search.RRFConstant,
		VectorTimeout: cfg.Search.VectorTimeout,
	}, log)

	return &app{
		cfg:      cfg,
		store:    pg,
		docEmbed: docEmbed,
		codeEmb:  codeEmb,
		reranker: reranker,
		pipeline: pipeline.New(query.NewAnalyzer(), hybrid, reranker, cfg.Search, log),
		checker:  health.NewChecker(pg, docEmbed, codeEmb, reranker, log),
	}, nil
}

// close releases connections and caches.
func (a *app) close() {
	_ = a.docEmbed.Close()
	_ = a.codeEmb.Close()
	if c, ok := a.reranker.(*rerank.JinaReranker); ok {
		_ = c.Close()
	}
	a.store.Close()
}
