// Package embedding provides description similarity via an OpenAI-compatible
// embeddings API. Vectors are fetched remotely; the cosine comparison is local.
package embedding

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/inbox-reconciler/internal/config"
	openai "github.com/sashabaranov/go-openai"
)

// Client fetches text embeddings and computes pairwise cosine similarity.
// Fetched vectors are cached by text for the lifetime of the client, since a
// matching run scores the same descriptions against many counterparts.
type Client struct {
	client *openai.Client
	model  openai.EmbeddingModel
	cfg    config.EmbeddingConfig

	mu    sync.Mutex
	cache map[string][]float32
}

// NewClient creates an embeddings client. BaseURL may point at any
// OpenAI-compatible endpoint; the default is used when empty.
func NewClient(cfg config.EmbeddingConfig) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(clientCfg),
		model:  openai.EmbeddingModel(cfg.Model),
		cfg:    cfg,
		cache:  make(map[string][]float32),
	}
}

// Similarity returns the cosine similarity of the two texts' embeddings,
// clamped to [0, 1]. Empty texts are the caller's concern; this always makes
// a lookup for anything it is given.
func (c *Client) Similarity(ctx context.Context, a, b string) (float64, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	vecA, err := c.embed(ctx, a)
	if err != nil {
		return 0, err
	}
	vecB, err := c.embed(ctx, b)
	if err != nil {
		return 0, err
	}

	return Cosine(vecA, vecB), nil
}

func (c *Client) embed(ctx context.Context, text string) ([]float32, error) {
	c.mu.Lock()
	if vec, ok := c.cache[text]; ok {
		c.mu.Unlock()
		return vec, nil
	}
	c.mu.Unlock()

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: c.model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no vectors")
	}

	vec := resp.Data[0].Embedding

	c.mu.Lock()
	c.cache[text] = vec
	c.mu.Unlock()

	return vec, nil
}

// Cosine computes the cosine similarity of two vectors, clamped to [0, 1].
// Mismatched lengths or a zero-norm vector yield 0 rather than an error.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
