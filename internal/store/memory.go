// CineMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 CineMatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinematch/cinematch

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cinematch/cinematch/internal/recommend"
)

// MemoryStore is an in-memory implementation of the repository interfaces,
// used in tests and for ephemeral runs without a database file.
type MemoryStore struct {
	mu         sync.RWMutex
	movies     map[int]recommend.Movie
	ratings    map[int]map[int]recommend.Rating // userID -> movieID -> rating
	embeddings map[int]recommend.MovieEmbedding
}

var (
	_ recommend.RatingRepository = (*MemoryStore)(nil)
	_ recommend.MovieRepository  = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		movies:     make(map[int]recommend.Movie),
		ratings:    make(map[int]map[int]recommend.Rating),
		embeddings: make(map[int]recommend.MovieEmbedding),
	}
}

// AddMovie inserts or replaces a movie, preserving existing aggregates.
func (s *MemoryStore) AddMovie(_ context.Context, m recommend.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.movies[m.ID]; ok {
		m.AvgRating = old.AvgRating
		m.RatingCount = old.RatingCount
	}
	s.movies[m.ID] = m
	return nil
}

// AddRating upserts a rating and recomputes the movie's aggregates.
func (s *MemoryStore) AddRating(_ context.Context, r recommend.Rating) error {
	if err := r.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	if s.ratings[r.UserID] == nil {
		s.ratings[r.UserID] = make(map[int]recommend.Rating)
	}
	s.ratings[r.UserID][r.MovieID] = r

	if m, ok := s.movies[r.MovieID]; ok {
		var sum float64
		count := 0
		for _, byMovie := range s.ratings {
			if rt, ok := byMovie[r.MovieID]; ok {
				sum += rt.Value
				count++
			}
		}
		m.RatingCount = count
		m.AvgRating = 0
		if count > 0 {
			m.AvgRating = sum / float64(count)
		}
		s.movies[r.MovieID] = m
	}
	return nil
}

// AllRatings returns every rating, ordered by user then movie ID.
func (s *MemoryStore) AllRatings(_ context.Context) ([]recommend.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []recommend.Rating
	for _, byMovie := range s.ratings {
		for _, r := range byMovie {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].MovieID < out[j].MovieID
	})
	return out, nil
}

// RatingsByUser returns the user's ratings ordered by movie ID.
func (s *MemoryStore) RatingsByUser(_ context.Context, userID int) ([]recommend.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]recommend.Rating, 0, len(s.ratings[userID]))
	for _, r := range s.ratings[userID] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MovieID < out[j].MovieID })
	return out, nil
}

// RatingsByMovie returns the movie's ratings ordered by user ID.
func (s *MemoryStore) RatingsByMovie(_ context.Context, movieID int) ([]recommend.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []recommend.Rating
	for _, byMovie := range s.ratings {
		if r, ok := byMovie[movieID]; ok {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// CountByUser returns the number of ratings the user has made.
func (s *MemoryStore) CountByUser(_ context.Context, userID int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ratings[userID]), nil
}

// MovieByID returns the movie, or (nil, nil) when it does not exist.
func (s *MemoryStore) MovieByID(_ context.Context, id int) (*recommend.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.movies[id]; ok {
		return &m, nil
	}
	return nil, nil
}

// AllMovies returns the catalog ordered by ID.
func (s *MemoryStore) AllMovies(_ context.Context) ([]recommend.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]recommend.Movie, 0, len(s.movies))
	for _, m := range s.movies {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MoviesWithEmbedding returns all stored embeddings ordered by movie ID.
func (s *MemoryStore) MoviesWithEmbedding(_ context.Context) ([]recommend.MovieEmbedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]recommend.MovieEmbedding, 0, len(s.embeddings))
	for _, e := range s.embeddings {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MovieID < out[j].MovieID })
	return out, nil
}

// WriteEmbedding stores an embedding immediately; the memory store has no
// batching to defer.
func (s *MemoryStore) WriteEmbedding(_ context.Context, movieID int, model string, vector []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.embeddings[movieID] = recommend.MovieEmbedding{MovieID: movieID, Model: model, Vector: vector}
	return nil
}

// WriteAggregates overwrites a movie's precomputed rating aggregates.
func (s *MemoryStore) WriteAggregates(_ context.Context, movieID int, avgRating float64, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.movies[movieID]; ok {
		m.AvgRating = avgRating
		m.RatingCount = count
		s.movies[movieID] = m
	}
	return nil
}
