// Package store provides read-only access to the two chunk collections of
// the knowledge base: document chunks and code chunks. Both collections are
// queried symmetrically; they differ only in their metadata columns.
package store

import (
	"context"
)

// Collection identifies one of the two chunk collections.
type Collection string

const (
	// Documents is the documentation chunk collection.
	Documents Collection = "document_chunks"
	// Code is the source-code chunk collection.
	Code Collection = "code_chunks"
)

// Collections lists both chunk collections in query order.
var Collections = []Collection{Documents, Code}

// Filters holds the equality filters pushed down to the store.
// Empty string means "no constraint on that field". Fields are applied
// only where the collection has the corresponding column.
type Filters struct {
	AppType    string
	Module     string
	Source     string
	SourceType string
	Language   string
}

// Row is a single chunk returned by a store query.
type Row struct {
	// ID is the chunk identifier, read as text.
	ID string
	// Content is the chunk text.
	Content string
	// Score is the store-level relevance score. For keyword queries this is
	// the trigram similarity between the whole query and the content; for
	// vector queries it is 1 - cosine_distance.
	Score float64
	// Metadata holds the collection-specific metadata columns, keyed by
	// column name. Blank values are omitted.
	Metadata map[string]string
	// SourceURL is the originating document URL (documents) or file path
	// (code). Empty if absent.
	SourceURL string
}

// ChunkStore issues the keyword and vector queries against one collection.
type ChunkStore interface {
	// KeywordSearch runs a conjunctive case-insensitive substring query over
	// tokens, scored by trigram similarity between rawQuery and the content.
	KeywordSearch(ctx context.Context, col Collection, tokens []string, rawQuery string, f Filters, limit int) ([]Row, error)

	// VectorSearch runs a nearest-neighbor cosine query with the given
	// query embedding, restricted to rows with a non-null embedding.
	VectorSearch(ctx context.Context, col Collection, embedding []float32, f Filters, limit int) ([]Row, error)

	// Ping verifies connectivity to the backing database.
	Ping(ctx context.Context) error

	// Close releases the connection pool.
	Close()
}
