// CineMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 CineMatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinematch/cinematch

package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cinematch/cinematch/internal/encoder"
)

// ContentEngine scores movies by semantic similarity between their text
// embeddings and either another movie or a user's preference profile.
type ContentEngine struct {
	ratings RatingRepository
	movies  MovieRepository
	enc     encoder.Encoder
	cache   *EmbeddingCache
	cfg     Config
	logger  zerolog.Logger
}

// NewContentEngine creates a content engine whose embedding cache is bound
// to the encoder's model tag.
func NewContentEngine(ratings RatingRepository, movies MovieRepository, enc encoder.Encoder, cfg Config, logger zerolog.Logger) *ContentEngine {
	return &ContentEngine{
		ratings: ratings,
		movies:  movies,
		enc:     enc,
		cache:   NewEmbeddingCache(enc.Model()),
		cfg:     cfg,
		logger:  logger.With().Str("component", "content").Logger(),
	}
}

// Cache exposes the engine's embedding cache.
func (e *ContentEngine) Cache() *EmbeddingCache {
	return e.cache
}

// FeatureText builds the canonical text representation of a movie for
// embedding: title, then genre names, then overview, space-joined with
// missing fields omitted. The order is fixed; changing it would make new
// embeddings incomparable with cached ones.
func FeatureText(m Movie) string {
	parts := make([]string, 0, 3)
	parts = append(parts, m.Title)
	if len(m.Genres) > 0 {
		parts = append(parts, strings.Join(m.Genres, " "))
	}
	if m.Overview != "" {
		parts = append(parts, m.Overview)
	}
	return strings.Join(parts, " ")
}

// GenerateEmbeddings encodes and persists an embedding for every catalog
// movie that does not already have one, or for every movie when force is
// set. Returns the number of embeddings generated.
//
// The operation is resumable: repository writes are flushed every
// EmbeddingBatchSize generated embeddings, so progress committed before an
// encoder failure is retained. Encoder failures propagate; they are never
// swallowed.
func (e *ContentEngine) GenerateEmbeddings(ctx context.Context, force bool) (int, error) {
	if force {
		e.cache.Invalidate()
	}
	if err := e.cache.Load(ctx, e.movies); err != nil {
		return 0, err
	}

	catalog, err := e.movies.AllMovies(ctx)
	if err != nil {
		return 0, fmt.Errorf("list movies: %w", err)
	}

	flusher, _ := e.movies.(EmbeddingFlusher)
	flush := func() error {
		if flusher == nil {
			return nil
		}
		return flusher.FlushEmbeddings(ctx)
	}

	generated := 0
	for _, m := range catalog {
		if err := ctx.Err(); err != nil {
			return generated, err
		}
		if !force {
			if _, ok := e.cache.Get(m.ID); ok {
				continue
			}
		}

		vector, err := e.enc.Encode(ctx, FeatureText(m))
		if err != nil {
			// Retain whatever the last flush committed.
			if ferr := flush(); ferr != nil {
				e.logger.Error().Err(ferr).Msg("flush after encoder failure")
			}
			return generated, fmt.Errorf("encode movie %d: %w", m.ID, err)
		}

		e.cache.Put(m.ID, vector)
		if err := e.movies.WriteEmbedding(ctx, m.ID, e.enc.Model(), vector); err != nil {
			return generated, fmt.Errorf("write embedding for movie %d: %w", m.ID, err)
		}

		generated++
		if generated%e.cfg.EmbeddingBatchSize == 0 {
			if err := flush(); err != nil {
				return generated, fmt.Errorf("flush embeddings: %w", err)
			}
			e.logger.Info().
				Int("generated", generated).
				Int("catalog", len(catalog)).
				Msg("embedding generation progress")
		}
	}

	if err := flush(); err != nil {
		return generated, fmt.Errorf("flush embeddings: %w", err)
	}

	e.logger.Info().
		Int("generated", generated).
		Int("cached", e.cache.Len()).
		Msg("embedding generation complete")
	return generated, nil
}

// Similarity returns the cosine similarity between two movies' cached
// embeddings, or 0.0 when either embedding is missing.
func (e *ContentEngine) Similarity(ctx context.Context, movieA, movieB int) (float64, error) {
	if err := e.cache.Load(ctx, e.movies); err != nil {
		return 0, err
	}

	a, okA := e.cache.Get(movieA)
	b, okB := e.cache.Get(movieB)
	if !okA || !okB {
		return 0, nil
	}
	return cosine(a, b), nil
}

// SimilarMovies scans all cached embeddings for the movies most similar to
// the query movie, excluding the query itself and anything below
// minSimilarity. A movie without a cached embedding yields an empty result.
func (e *ContentEngine) SimilarMovies(ctx context.Context, movieID, n int, minSimilarity float64) ([]Candidate, error) {
	if err := e.cache.Load(ctx, e.movies); err != nil {
		return nil, err
	}

	target, ok := e.cache.Get(movieID)
	if !ok {
		return nil, nil
	}

	candidates := make([]Candidate, 0, e.cache.Len())
	for _, otherID := range e.cache.MovieIDs() {
		if otherID == movieID {
			continue
		}
		other, _ := e.cache.Get(otherID)
		if sim := cosine(target, other); sim >= minSimilarity {
			candidates = append(candidates, Candidate{MovieID: otherID, Score: sim, Source: SourceContent})
		}
	}

	sortCandidates(candidates)
	if n > 0 && len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates, nil
}

// UserProfile builds the user's preference vector as the mean embedding of
// movies they rated at or above likedThreshold. Returns nil when the user
// has no qualifying ratings with a cached embedding, including unknown
// users.
func (e *ContentEngine) UserProfile(ctx context.Context, userID int, likedThreshold float64) ([]float64, error) {
	if err := e.cache.Load(ctx, e.movies); err != nil {
		return nil, err
	}

	ratings, err := e.ratings.RatingsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ratings for user %d: %w", userID, err)
	}

	var liked [][]float64
	for _, r := range ratings {
		if r.Value < likedThreshold {
			continue
		}
		if vec, ok := e.cache.Get(r.MovieID); ok {
			liked = append(liked, vec)
		}
	}
	return meanVector(liked), nil
}

// Recommend scores every unrated movie with a cached embedding against the
// user's preference profile and returns the top n at or above
// minSimilarity. An absent profile yields an empty list.
func (e *ContentEngine) Recommend(ctx context.Context, userID, n int, minSimilarity float64) ([]Candidate, error) {
	profile, err := e.UserProfile(ctx, userID, e.cfg.LikedThreshold)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}

	ratings, err := e.ratings.RatingsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ratings for user %d: %w", userID, err)
	}
	rated := make(map[int]struct{}, len(ratings))
	for _, r := range ratings {
		rated[r.MovieID] = struct{}{}
	}

	candidates := make([]Candidate, 0, e.cache.Len())
	for _, movieID := range e.cache.MovieIDs() {
		if _, ok := rated[movieID]; ok {
			continue
		}
		vec, _ := e.cache.Get(movieID)
		if sim := cosine(profile, vec); sim >= minSimilarity {
			candidates = append(candidates, Candidate{MovieID: movieID, Score: sim, Source: SourceContent})
		}
	}

	sortCandidates(candidates)
	if n > 0 && len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates, nil
}
