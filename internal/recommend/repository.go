// CineMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 CineMatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinematch/cinematch

package recommend

import (
	"context"
	"errors"
)

// ErrMovieNotFound is returned by similarity lookups that name a movie
// absent from the catalog. Unlike sparse-data outcomes, which resolve to
// empty results, this condition indicates a caller input error.
var ErrMovieNotFound = errors.New("movie not found")

// RatingRepository exposes read access to the rating set. Implementations
// live outside this package (see the store package); the engines only read.
type RatingRepository interface {
	// AllRatings returns every stored rating.
	AllRatings(ctx context.Context) ([]Rating, error)

	// RatingsByUser returns the given user's ratings. Unknown users yield
	// an empty slice, not an error.
	RatingsByUser(ctx context.Context, userID int) ([]Rating, error)

	// RatingsByMovie returns all ratings of the given movie.
	RatingsByMovie(ctx context.Context, movieID int) ([]Rating, error)

	// CountByUser returns the number of ratings the user has submitted.
	CountByUser(ctx context.Context, userID int) (int, error)
}

// MovieRepository exposes the movie catalog plus write access to cached
// embeddings and derived rating aggregates.
type MovieRepository interface {
	// MovieByID returns the movie or (nil, nil) when absent.
	MovieByID(ctx context.Context, id int) (*Movie, error)

	// AllMovies returns the full catalog.
	AllMovies(ctx context.Context) ([]Movie, error)

	// MoviesWithEmbedding returns every cached embedding with its model tag.
	MoviesWithEmbedding(ctx context.Context) ([]MovieEmbedding, error)

	// WriteEmbedding persists one movie's embedding for the given encoder
	// model, replacing any previous vector.
	WriteEmbedding(ctx context.Context, movieID int, model string, vector []float64) error

	// WriteAggregates persists the derived rating aggregates for a movie.
	// Callers must serialize aggregate updates per movie.
	WriteAggregates(ctx context.Context, movieID int, avgRating float64, count int) error
}

// EmbeddingFlusher is an optional repository capability. Stores that buffer
// embedding writes implement it so GenerateEmbeddings can commit in batches
// and bound transaction size on long runs.
type EmbeddingFlusher interface {
	FlushEmbeddings(ctx context.Context) error
}
