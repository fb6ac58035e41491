package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/tislab/nabsearch/internal/config"
	nberrors "github.com/tislab/nabsearch/internal/errors"
)

// documentColumns and codeColumns are the metadata columns selected per
// collection, in SELECT order. The first entry of urlColumn maps to the
// row's SourceURL.
var (
	documentColumns = []string{"source", "source_type", "app_type", "module", "language", "fqcn", "nablarch_version", "updated_at"}
	codeColumns     = []string{"repo", "chunk_type", "module", "language", "fqcn", "updated_at"}
)

// urlColumn returns the column mapped to Row.SourceURL for a collection.
func urlColumn(col Collection) string {
	if col == Documents {
		return "url"
	}
	return "file_path"
}

// metadataColumns returns the metadata columns for a collection.
func metadataColumns(col Collection) []string {
	if col == Documents {
		return documentColumns
	}
	return codeColumns
}

// hasColumn reports whether a filter column exists on the collection.
// module and language exist on both; the remaining equality filters exist
// only on document_chunks.
func hasColumn(col Collection, name string) bool {
	switch name {
	case "module", "language":
		return true
	case "app_type", "source", "source_type":
		return col == Documents
	default:
		return false
	}
}

// PostgresStore implements ChunkStore against the knowledge base.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ ChunkStore = (*PostgresStore)(nil)

// NewPostgresStore connects a pool to the configured database.
func NewPostgresStore(ctx context.Context, cfg config.DatabaseConfig) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, cfg.ConnectionString())
	if err != nil {
		return nil, nberrors.Wrap(nberrors.ErrCodeStoreUnavailable, err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Ping verifies connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return nberrors.Wrap(nberrors.ErrCodeStoreUnavailable, err)
	}
	return nil
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// KeywordSearch runs the lexical query: every token must appear as a
// case-insensitive substring of the content, and matching rows are scored
// by pg_trgm similarity between the whole original query and the content.
func (s *PostgresStore) KeywordSearch(ctx context.Context, col Collection, tokens []string, rawQuery string, f Filters, limit int) ([]Row, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	sql, args := buildKeywordSQL(col, tokens, rawQuery, f, limit)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, nberrors.Wrap(nberrors.ErrCodeStoreQuery, err)
	}
	defer rows.Close()

	return scanRows(rows, col)
}

// VectorSearch runs the nearest-neighbor cosine query.
func (s *PostgresStore) VectorSearch(ctx context.Context, col Collection, embedding []float32, f Filters, limit int) ([]Row, error) {
	sql, args := buildVectorSQL(col, pgvector.NewVector(embedding), f, limit)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, nberrors.Wrap(nberrors.ErrCodeStoreQuery, err)
	}
	defer rows.Close()

	return scanRows(rows, col)
}

// buildKeywordSQL builds the lexical query for one collection.
func buildKeywordSQL(col Collection, tokens []string, rawQuery string, f Filters, limit int) (string, []any) {
	var sb strings.Builder
	args := make([]any, 0, len(tokens)+8)

	args = append(args, rawQuery)
	sb.WriteString("SELECT id::text, content, similarity(content, $1) AS score")
	for _, c := range metadataColumns(col) {
		sb.WriteString(", ")
		sb.WriteString(c)
	}
	sb.WriteString(", ")
	sb.WriteString(urlColumn(col))
	sb.WriteString(" FROM ")
	sb.WriteString(string(col))
	sb.WriteString(" WHERE ")

	for i, tok := range tokens {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		args = append(args, "%"+escapeLike(tok)+"%")
		fmt.Fprintf(&sb, "content ILIKE $%d", len(args))
	}

	appendFilterSQL(&sb, &args, col, f)

	args = append(args, limit)
	fmt.Fprintf(&sb, " ORDER BY score DESC LIMIT $%d", len(args))

	return sb.String(), args
}

// escapeLike neutralizes LIKE wildcards inside a token so it matches
// literally within the surrounding %...% pattern.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// buildVectorSQL builds the nearest-neighbor query for one collection.
func buildVectorSQL(col Collection, vec pgvector.Vector, f Filters, limit int) (string, []any) {
	var sb strings.Builder
	args := make([]any, 0, 8)

	args = append(args, vec)
	sb.WriteString("SELECT id::text, content, 1 - (embedding <=> $1) AS score")
	for _, c := range metadataColumns(col) {
		sb.WriteString(", ")
		sb.WriteString(c)
	}
	sb.WriteString(", ")
	sb.WriteString(urlColumn(col))
	sb.WriteString(" FROM ")
	sb.WriteString(string(col))
	sb.WriteString(" WHERE embedding IS NOT NULL")

	appendFilterSQL(&sb, &args, col, f)

	args = append(args, limit)
	fmt.Fprintf(&sb, " ORDER BY embedding <=> $1 LIMIT $%d", len(args))

	return sb.String(), args
}

// appendFilterSQL appends equality predicates for the filters whose column
// exists on the collection. Callers must have written at least one WHERE
// predicate already.
func appendFilterSQL(sb *strings.Builder, args *[]any, col Collection, f Filters) {
	appendEq := func(column, value string) {
		if value == "" || !hasColumn(col, column) {
			return
		}
		*args = append(*args, value)
		fmt.Fprintf(sb, " AND %s = $%d", column, len(*args))
	}
	appendEq("app_type", f.AppType)
	appendEq("module", f.Module)
	appendEq("source", f.Source)
	appendEq("source_type", f.SourceType)
	appendEq("language", f.Language)
}

// scanRows maps query rows to store Rows. Metadata columns are scanned as
// nullable text; blank values are omitted from the metadata map.
func scanRows(rows pgx.Rows, col Collection) ([]Row, error) {
	metaCols := metadataColumns(col)
	var out []Row

	for rows.Next() {
		row := Row{Metadata: make(map[string]string, len(metaCols))}

		dest := make([]any, 0, len(metaCols)+4)
		dest = append(dest, &row.ID, &row.Content, &row.Score)
		metaVals := make([]*string, len(metaCols))
		for i := range metaCols {
			dest = append(dest, &metaVals[i])
		}
		var url *string
		dest = append(dest, &url)

		if err := rows.Scan(dest...); err != nil {
			return nil, nberrors.Wrap(nberrors.ErrCodeStoreQuery, err)
		}

		for i, c := range metaCols {
			if metaVals[i] != nil && *metaVals[i] != "" {
				row.Metadata[c] = *metaVals[i]
			}
		}
		if url != nil {
			row.SourceURL = *url
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, nberrors.Wrap(nberrors.ErrCodeStoreQuery, err)
	}
	return out, nil
}
