// CineMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 CineMatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinematch/cinematch

package store

import (
	"context"
	"math"
	"testing"

	"github.com/cinematch/cinematch/internal/recommend"
)

func TestMemoryStore_AggregatesFollowRatings(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.AddMovie(ctx, recommend.Movie{ID: 1, Title: "Heat"}); err != nil {
		t.Fatalf("AddMovie: %v", err)
	}
	for _, r := range []recommend.Rating{
		{UserID: 1, MovieID: 1, Value: 4.0},
		{UserID: 2, MovieID: 1, Value: 5.0},
	} {
		if err := s.AddRating(ctx, r); err != nil {
			t.Fatalf("AddRating: %v", err)
		}
	}

	m, err := s.MovieByID(ctx, 1)
	if err != nil || m == nil {
		t.Fatalf("MovieByID: %v, %v", m, err)
	}
	if m.RatingCount != 2 || math.Abs(m.AvgRating-4.5) > 1e-9 {
		t.Errorf("aggregates = (%v, %d), want (4.5, 2)", m.AvgRating, m.RatingCount)
	}

	// Replacing the movie record keeps the derived aggregates.
	if err := s.AddMovie(ctx, recommend.Movie{ID: 1, Title: "Heat (1995)"}); err != nil {
		t.Fatalf("AddMovie replace: %v", err)
	}
	m, _ = s.MovieByID(ctx, 1)
	if m.Title != "Heat (1995)" || m.RatingCount != 2 {
		t.Errorf("after replace: title %q count %d, want updated title with kept aggregates",
			m.Title, m.RatingCount)
	}
}

func TestMemoryStore_AddRating_Validates(t *testing.T) {
	s := NewMemoryStore()
	if err := s.AddRating(context.Background(), recommend.Rating{UserID: 1, MovieID: 1, Value: 0}); err == nil {
		t.Fatal("AddRating accepted a zero rating")
	}
}

func TestMemoryStore_DeterministicOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, r := range []recommend.Rating{
		{UserID: 2, MovieID: 30, Value: 3.0},
		{UserID: 1, MovieID: 20, Value: 4.0},
		{UserID: 1, MovieID: 10, Value: 5.0},
	} {
		if err := s.AddRating(ctx, r); err != nil {
			t.Fatalf("AddRating: %v", err)
		}
	}

	all, err := s.AllRatings(ctx)
	if err != nil {
		t.Fatalf("AllRatings: %v", err)
	}
	want := [][2]int{{1, 10}, {1, 20}, {2, 30}}
	for i, pair := range want {
		if all[i].UserID != pair[0] || all[i].MovieID != pair[1] {
			t.Errorf("row %d = (%d, %d), want (%d, %d)",
				i, all[i].UserID, all[i].MovieID, pair[0], pair[1])
		}
	}
}

func TestMemoryStore_Embeddings(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.WriteEmbedding(ctx, 7, "all-minilm", []float64{1, 2}); err != nil {
		t.Fatalf("WriteEmbedding: %v", err)
	}

	rows, err := s.MoviesWithEmbedding(ctx)
	if err != nil {
		t.Fatalf("MoviesWithEmbedding: %v", err)
	}
	if len(rows) != 1 || rows[0].MovieID != 7 || rows[0].Model != "all-minilm" {
		t.Errorf("rows = %+v, want one row for movie 7", rows)
	}
}
