// CineMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 CineMatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinematch/cinematch

package recommend

import (
	"fmt"
	"math"
	"time"
)

// Rating represents a single user rating of a movie.
type Rating struct {
	// UserID is the internal user identifier.
	UserID int `json:"user_id"`

	// MovieID is the rated movie's identifier.
	MovieID int `json:"movie_id"`

	// Value is the rating on the 0.5-5.0 scale in 0.5 steps.
	Value float64 `json:"value"`

	// Timestamp is when the rating was submitted.
	Timestamp time.Time `json:"timestamp"`
}

// Validate checks that the rating value lies on the legal half-star scale.
func (r Rating) Validate() error {
	if r.Value < 0.5 || r.Value > 5.0 {
		return fmt.Errorf("rating %.2f out of range [0.5, 5.0]", r.Value)
	}
	if steps := r.Value * 2; steps != math.Trunc(steps) {
		return fmt.Errorf("rating %.2f is not a multiple of 0.5", r.Value)
	}
	return nil
}

// Movie represents a catalog entry with the metadata consumed by the engines.
// AvgRating and RatingCount are derived aggregates maintained by the rating
// write path, not by this package.
type Movie struct {
	// ID is the unique movie identifier.
	ID int `json:"id"`

	// Title is the movie title.
	Title string `json:"title"`

	// Year is the release year (0 if unknown).
	Year int `json:"year,omitempty"`

	// Overview is the plot synopsis used for content embeddings.
	Overview string `json:"overview,omitempty"`

	// Genres is the list of genre names.
	Genres []string `json:"genres,omitempty"`

	// AvgRating is the mean of all submitted ratings.
	AvgRating float64 `json:"avg_rating"`

	// RatingCount is the number of submitted ratings.
	RatingCount int `json:"rating_count"`
}

// MovieEmbedding is a cached content embedding for one movie, tagged with
// the encoder model that produced it. Vectors from a different model are
// not comparable and are discarded on load.
type MovieEmbedding struct {
	MovieID int       `json:"movie_id"`
	Model   string    `json:"model"`
	Vector  []float64 `json:"vector"`
}

// CandidateSource identifies which engine produced a candidate.
type CandidateSource int

const (
	// SourceCollaborative marks candidates scored on the 0-5 rating scale.
	SourceCollaborative CandidateSource = iota
	// SourceContent marks candidates scored as cosine similarities.
	SourceContent
)

// Candidate is an engine's scored suggestion before fusion. The score range
// depends on the source: predicted ratings for collaborative candidates,
// cosine similarity for content candidates.
type Candidate struct {
	MovieID int             `json:"movie_id"`
	Score   float64         `json:"score"`
	Source  CandidateSource `json:"source"`
}

// Recommendation is one entry of a ranked result list.
type Recommendation struct {
	// Movie is the full catalog record of the recommended movie.
	Movie Movie `json:"movie"`

	// Score is the recommendation score. Its scale depends on the reason:
	// predicted rating (0.5-5.0) for collaborative, cosine similarity for
	// content, and a [0, 1] blend for hybrid and popular.
	Score float64 `json:"score"`

	// Reason names the signal behind the recommendation: "collaborative",
	// "content-based", "hybrid", or "popular".
	Reason string `json:"reason"`
}

// Result is the ordered outcome of a recommendation request.
type Result struct {
	// Recommendations is the ranked list, best first.
	Recommendations []Recommendation `json:"recommendations"`

	// Algorithm is the algorithm actually used, which may differ from the
	// requested one: "popular (cold start)" marks the forced fallback.
	Algorithm string `json:"algorithm"`

	// UserRatingCount is the requesting user's rating count at request time.
	UserRatingCount int `json:"user_rating_count"`

	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id"`

	// LatencyMS is the total computation latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`
}

// SimilarMovie pairs a movie with its similarity to a query movie.
type SimilarMovie struct {
	Movie      Movie   `json:"movie"`
	Similarity float64 `json:"similarity"`
}

// EvalMetrics are offline quality metrics for one user and algorithm,
// computed against held-out ratings. Used for algorithm comparison, not
// served to end users.
type EvalMetrics struct {
	// Precision is |recommended AND liked| / |recommended|.
	Precision float64 `json:"precision"`

	// Recall is |recommended AND liked| / |liked|.
	Recall float64 `json:"recall"`

	// HitRate is 1 if at least one liked movie was recommended, else 0.
	HitRate float64 `json:"hit_rate"`

	// NumRecommendations is the size of the evaluated recommendation list.
	NumRecommendations int `json:"num_recommendations"`

	// NumRelevant is the number of liked movies in the held-out set.
	NumRelevant int `json:"num_relevant"`
}

// GenreCount is a genre name with the user's rating count in that genre.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// Stats summarizes a user's engagement and the catalog state.
type Stats struct {
	UserRatingCount       int          `json:"user_rating_count"`
	UserAvgRating         float64      `json:"user_avg_rating"`
	FavoriteGenres        []GenreCount `json:"favorite_genres"`
	TotalMovies           int          `json:"total_movies"`
	TotalRatings          int          `json:"total_ratings"`
	TotalUsers            int          `json:"total_users"`
	CanGetRecommendations bool         `json:"can_get_recommendations"`
}
