package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/tislab/nabsearch/internal/config"
	nberrors "github.com/tislab/nabsearch/internal/errors"
)

// APIEmbedder calls an OpenAI-compatible embeddings endpoint with bearer
// authentication. Both providers in use speak this protocol:
//
//   - Jina embeddings v4 for documentation chunks
//   - Voyage code-3 for code chunks
type APIEmbedder struct {
	client    *http.Client
	transport *http.Transport
	cfg       config.ProviderConfig

	mu     sync.RWMutex
	closed bool
}

var _ Embedder = (*APIEmbedder)(nil)

// embeddingRequest is the JSON request body.
type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

// embeddingResponse is the JSON response body.
type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// NewAPIEmbedder creates an embedder for one provider configuration.
func NewAPIEmbedder(cfg config.ProviderConfig) *APIEmbedder {
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
	}
	return &APIEmbedder{
		client:    &http.Client{Transport: transport},
		transport: transport,
		cfg:       cfg,
	}
}

// Embed generates the embedding for a single text.
func (e *APIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return nil, nberrors.New(nberrors.ErrCodeEmbeddingFailed, "embedder is closed", nil)
	}
	e.mu.RUnlock()

	reqBody := embeddingRequest{
		Model:      e.cfg.Model,
		Input:      []string{text},
		Dimensions: e.cfg.Dimensions,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, nberrors.Wrap(nberrors.ErrCodeEmbeddingFailed, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, e.cfg.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, nberrors.Wrap(nberrors.ErrCodeEmbeddingFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, nberrors.Wrap(nberrors.ErrCodeEmbeddingFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, nberrors.New(nberrors.ErrCodeEmbeddingFailed,
			fmt.Sprintf("embedding request failed (status %d): %s", resp.StatusCode, string(body)), nil)
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, nberrors.Wrap(nberrors.ErrCodeEmbeddingFailed, err)
	}
	if len(parsed.Data) == 0 {
		return nil, nberrors.New(nberrors.ErrCodeEmbeddingFailed, "embedding response has no data", nil)
	}

	vec := parsed.Data[0].Embedding
	if len(vec) != e.cfg.Dimensions {
		return nil, nberrors.New(nberrors.ErrCodeEmbeddingFailed,
			fmt.Sprintf("embedding dimension mismatch: want %d, got %d", e.cfg.Dimensions, len(vec)), nil)
	}
	return vec, nil
}

// Dimensions returns the configured embedding dimension.
func (e *APIEmbedder) Dimensions() int {
	return e.cfg.Dimensions
}

// ModelName returns the model identifier.
func (e *APIEmbedder) ModelName() string {
	return e.cfg.Model
}

// Available probes the endpoint with a minimal embedding request.
func (e *APIEmbedder) Available(ctx context.Context) bool {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := e.Embed(checkCtx, "ping")
	return err == nil
}

// Close releases idle connections.
func (e *APIEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.transport.CloseIdleConnections()
	return nil
}
