// CineMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 CineMatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinematch/cinematch

package recommend

import "fmt"

// Defaults and fixed policy constants.
const (
	// defaultK is the neighborhood size for k-NN prediction.
	defaultK = 10

	// defaultN is the result size when a request leaves it unset.
	defaultN = 10

	// maxN caps the result size of a single request.
	maxN = 50

	// adaptiveContentCutoff is the rating count below which the adaptive
	// algorithm routes to content-only instead of hybrid.
	adaptiveContentCutoff = 20

	// popularityFloor is the minimum rating count for a movie to qualify
	// for the popularity fallback. Deliberately independent of the
	// cold-start threshold.
	popularityFloor = 50
)

// Config tunes the recommendation engines and the selection policy.
type Config struct {
	// MinRatingsForRecommendations is the rating count below which a user
	// is treated as cold start and served the popularity fallback.
	MinRatingsForRecommendations int `koanf:"min_ratings_for_recommendations" json:"min_ratings_for_recommendations"`

	// CollaborativeWeight is the hybrid fusion weight for predicted
	// ratings. Weights are renormalized at use, so the pair does not need
	// to sum to 1.
	CollaborativeWeight float64 `koanf:"collaborative_weight" json:"collaborative_weight"`

	// ContentWeight is the hybrid fusion weight for content similarity.
	ContentWeight float64 `koanf:"content_weight" json:"content_weight"`

	// K is the neighborhood size for k-NN rating prediction.
	K int `koanf:"k" json:"k"`

	// MinPredictedRating filters collaborative recommendations below this
	// predicted rating.
	MinPredictedRating float64 `koanf:"min_predicted_rating" json:"min_predicted_rating"`

	// MinSimilarity filters content recommendations and similar-movie
	// lookups below this cosine similarity.
	MinSimilarity float64 `koanf:"min_similarity" json:"min_similarity"`

	// LikedThreshold is the rating at or above which a movie counts toward
	// the user's content profile (and toward "liked" in evaluation).
	LikedThreshold float64 `koanf:"liked_threshold" json:"liked_threshold"`

	// EmbeddingDim is the encoder's vector dimensionality. Determined by
	// the model; kept here so stores and engines can sanity-check vectors.
	EmbeddingDim int `koanf:"embedding_dim" json:"embedding_dim"`

	// EmbeddingBatchSize is the number of generated embeddings between
	// repository flushes during generation.
	EmbeddingBatchSize int `koanf:"embedding_batch_size" json:"embedding_batch_size"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		MinRatingsForRecommendations: 5,
		CollaborativeWeight:          0.6,
		ContentWeight:                0.4,
		K:                            defaultK,
		MinPredictedRating:           3.5,
		MinSimilarity:                0.3,
		LikedThreshold:               4.0,
		EmbeddingDim:                 384,
		EmbeddingBatchSize:           100,
	}
}

// Validate checks the configuration for values the engines cannot work with.
func (c Config) Validate() error {
	if c.MinRatingsForRecommendations < 0 {
		return fmt.Errorf("min_ratings_for_recommendations must be >= 0, got %d", c.MinRatingsForRecommendations)
	}
	if c.CollaborativeWeight < 0 || c.ContentWeight < 0 {
		return fmt.Errorf("fusion weights must be >= 0, got collaborative=%.3f content=%.3f",
			c.CollaborativeWeight, c.ContentWeight)
	}
	if c.CollaborativeWeight+c.ContentWeight == 0 {
		return fmt.Errorf("at least one fusion weight must be positive")
	}
	if c.K <= 0 {
		return fmt.Errorf("k must be > 0, got %d", c.K)
	}
	if c.EmbeddingDim <= 0 {
		return fmt.Errorf("embedding_dim must be > 0, got %d", c.EmbeddingDim)
	}
	if c.EmbeddingBatchSize <= 0 {
		return fmt.Errorf("embedding_batch_size must be > 0, got %d", c.EmbeddingBatchSize)
	}
	if c.LikedThreshold < 0.5 || c.LikedThreshold > 5.0 {
		return fmt.Errorf("liked_threshold must be within [0.5, 5.0], got %.2f", c.LikedThreshold)
	}
	return nil
}

// NormalizedWeights returns the fusion weights scaled to sum to 1.
func (c Config) NormalizedWeights() (wCollab, wContent float64) {
	total := c.CollaborativeWeight + c.ContentWeight
	if total == 0 {
		return 0.5, 0.5
	}
	return c.CollaborativeWeight / total, c.ContentWeight / total
}
