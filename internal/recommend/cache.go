// CineMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 CineMatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinematch/cinematch

package recommend

import (
	"context"
	"fmt"
	"sync"
)

// EmbeddingCache holds the in-memory view of persisted movie embeddings.
// It is owned by the ContentEngine: population happens through Load and
// GenerateEmbeddings, invalidation through Invalidate or a model-tag
// mismatch on load. Vectors produced by a different encoder model are not
// comparable and never enter the cache.
type EmbeddingCache struct {
	mu      sync.RWMutex
	model   string
	vectors map[int][]float64
	loaded  bool
}

// NewEmbeddingCache creates an empty cache bound to one encoder model.
func NewEmbeddingCache(model string) *EmbeddingCache {
	return &EmbeddingCache{
		model:   model,
		vectors: make(map[int][]float64),
	}
}

// Model returns the encoder model this cache is bound to.
func (c *EmbeddingCache) Model() string {
	return c.model
}

// Load pulls all persisted embeddings from the repository, discarding rows
// tagged with a different encoder model. It is idempotent: once loaded,
// subsequent calls are no-ops until Invalidate.
func (c *EmbeddingCache) Load(ctx context.Context, movies MovieRepository) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return nil
	}

	rows, err := movies.MoviesWithEmbedding(ctx)
	if err != nil {
		return fmt.Errorf("load embeddings: %w", err)
	}

	for _, row := range rows {
		if row.Model != c.model || len(row.Vector) == 0 {
			continue
		}
		c.vectors[row.MovieID] = row.Vector
	}
	c.loaded = true
	return nil
}

// Get returns the cached embedding for a movie.
func (c *EmbeddingCache) Get(movieID int) ([]float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.vectors[movieID]
	return v, ok
}

// Put stores a freshly generated embedding.
func (c *EmbeddingCache) Put(movieID int, vector []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectors[movieID] = vector
	c.loaded = true
}

// Len returns the number of cached embeddings.
func (c *EmbeddingCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vectors)
}

// MovieIDs returns the IDs of all cached embeddings in unspecified order.
func (c *EmbeddingCache) MovieIDs() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]int, 0, len(c.vectors))
	for id := range c.vectors {
		ids = append(ids, id)
	}
	return ids
}

// Invalidate drops every cached vector and allows a subsequent Load.
func (c *EmbeddingCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectors = make(map[int][]float64)
	c.loaded = false
}
