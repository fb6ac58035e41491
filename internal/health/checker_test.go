package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tislab/nabsearch/internal/search"
	"github.com/tislab/nabsearch/internal/store"
)

type fakeStore struct {
	pingErr error
}

func (f *fakeStore) KeywordSearch(context.Context, store.Collection, []string, string, store.Filters, int) ([]store.Row, error) {
	return nil, nil
}

func (f *fakeStore) VectorSearch(context.Context, store.Collection, []float32, store.Filters, int) ([]store.Row, error) {
	return nil, nil
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }
func (f *fakeStore) Close()                     {}

type fakeAvailEmbedder struct {
	available bool
}

func (f *fakeAvailEmbedder) Embed(context.Context, string) ([]float32, error) { return nil, nil }
func (f *fakeAvailEmbedder) Dimensions() int                                  { return 1 }
func (f *fakeAvailEmbedder) ModelName() string                                { return "fake" }
func (f *fakeAvailEmbedder) Available(context.Context) bool                   { return f.available }
func (f *fakeAvailEmbedder) Close() error                                     { return nil }

type fakeReranker struct {
	available bool
}

func (f *fakeReranker) Rerank(_ context.Context, _ string, c []search.SearchResult, _ int) []search.SearchResult {
	return c
}

func (f *fakeReranker) Available(context.Context) bool { return f.available }

func TestCheck_AllComponentsUp(t *testing.T) {
	c := NewChecker(&fakeStore{}, &fakeAvailEmbedder{available: true},
		&fakeAvailEmbedder{available: true}, &fakeReranker{available: true}, nil)

	report := c.Check(context.Background())

	assert.Equal(t, StatusUp, report.Status)
	require.Len(t, report.Components, 4)
	for name, status := range report.Components {
		assert.Equal(t, StatusUp, status, name)
	}
	assert.Empty(t, report.Details)
}

func TestCheck_PartialOutageStillUp(t *testing.T) {
	// Given: only the store responds
	c := NewChecker(&fakeStore{}, &fakeAvailEmbedder{},
		&fakeAvailEmbedder{}, &fakeReranker{}, nil)

	// When
	report := c.Check(context.Background())

	// Then: degraded components reported individually, aggregate stays UP
	assert.Equal(t, StatusUp, report.Status)
	assert.Equal(t, StatusUp, report.Components[ComponentStore])
	assert.Equal(t, StatusDown, report.Components[ComponentDocEmbedder])
	assert.Equal(t, StatusDown, report.Components[ComponentReranker])
}

func TestCheck_EverythingDown(t *testing.T) {
	c := NewChecker(&fakeStore{pingErr: errors.New("refused")}, &fakeAvailEmbedder{},
		&fakeAvailEmbedder{}, &fakeReranker{}, nil)

	report := c.Check(context.Background())

	assert.Equal(t, StatusDown, report.Status)
	assert.Equal(t, "refused", report.Details[ComponentStore])
}

func TestCheck_NilComponentsSkipped(t *testing.T) {
	c := NewChecker(&fakeStore{}, nil, nil, nil, nil)

	report := c.Check(context.Background())

	assert.Equal(t, StatusUp, report.Status)
	assert.Len(t, report.Components, 1)
}
