// CineMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 CineMatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinematch/cinematch

package recommend

import (
	"math"
	"reflect"
	"testing"
)

func TestBuildUserItemMatrix(t *testing.T) {
	tests := []struct {
		name    string
		ratings []Rating
		verify  func(t *testing.T, m *UserItemMatrix)
	}{
		{
			name:    "empty rating set yields nil",
			ratings: nil,
			verify: func(t *testing.T, m *UserItemMatrix) {
				if m != nil {
					t.Fatalf("BuildUserItemMatrix(nil) = %v, want nil", m)
				}
			},
		},
		{
			name: "ids are sorted ascending",
			ratings: []Rating{
				{UserID: 9, MovieID: 30, Value: 3.0},
				{UserID: 2, MovieID: 10, Value: 4.0},
				{UserID: 5, MovieID: 20, Value: 5.0},
			},
			verify: func(t *testing.T, m *UserItemMatrix) {
				if got, want := m.UserIDs, []int{2, 5, 9}; !reflect.DeepEqual(got, want) {
					t.Errorf("UserIDs = %v, want %v", got, want)
				}
				if got, want := m.MovieIDs, []int{10, 20, 30}; !reflect.DeepEqual(got, want) {
					t.Errorf("MovieIDs = %v, want %v", got, want)
				}
			},
		},
		{
			name: "duplicate pair keeps last value",
			ratings: []Rating{
				{UserID: 1, MovieID: 1, Value: 2.0},
				{UserID: 1, MovieID: 1, Value: 4.5},
			},
			verify: func(t *testing.T, m *UserItemMatrix) {
				if got := m.Value(1, 1); got != 4.5 {
					t.Errorf("Value(1, 1) = %v, want 4.5", got)
				}
			},
		},
		{
			name: "missing cells are unrated",
			ratings: []Rating{
				{UserID: 1, MovieID: 1, Value: 3.0},
				{UserID: 2, MovieID: 2, Value: 4.0},
			},
			verify: func(t *testing.T, m *UserItemMatrix) {
				if got := m.Value(1, 2); got != Unrated {
					t.Errorf("Value(1, 2) = %v, want Unrated", got)
				}
				if got := m.Value(99, 1); got != Unrated {
					t.Errorf("Value(99, 1) = %v, want Unrated for unknown user", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.verify(t, BuildUserItemMatrix(tt.ratings))
		})
	}
}

func TestUserItemMatrix_RatedBy(t *testing.T) {
	m := BuildUserItemMatrix([]Rating{
		{UserID: 1, MovieID: 10, Value: 4.0},
		{UserID: 1, MovieID: 20, Value: 2.5},
		{UserID: 2, MovieID: 30, Value: 5.0},
	})

	rated := m.RatedBy(1)
	if len(rated) != 2 {
		t.Fatalf("len(RatedBy(1)) = %d, want 2", len(rated))
	}
	for _, id := range []int{10, 20} {
		if _, ok := rated[id]; !ok {
			t.Errorf("RatedBy(1) missing movie %d", id)
		}
	}

	if got := m.RatedBy(99); len(got) != 0 {
		t.Errorf("RatedBy(99) = %v, want empty for unknown user", got)
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{name: "identical vectors", a: []float64{1, 2, 3}, b: []float64{1, 2, 3}, want: 1.0},
		{name: "orthogonal vectors", a: []float64{1, 0}, b: []float64{0, 1}, want: 0.0},
		{name: "scaled vectors keep similarity 1", a: []float64{1, 1}, b: []float64{3, 3}, want: 1.0},
		{name: "zero vector", a: []float64{0, 0}, b: []float64{1, 2}, want: 0.0},
		{name: "length mismatch", a: []float64{1, 2}, b: []float64{1, 2, 3}, want: 0.0},
		{name: "empty vectors", a: nil, b: nil, want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosine(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestMeanVector(t *testing.T) {
	if got := meanVector(nil); got != nil {
		t.Errorf("meanVector(nil) = %v, want nil", got)
	}

	got := meanVector([][]float64{{1, 2}, {3, 4}})
	want := []float64{2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("meanVector = %v, want %v", got, want)
	}
}

func TestSortCandidates(t *testing.T) {
	cands := []Candidate{
		{MovieID: 3, Score: 0.8},
		{MovieID: 1, Score: 0.9},
		{MovieID: 5, Score: 0.8},
		{MovieID: 2, Score: 0.8},
	}
	sortCandidates(cands)

	wantOrder := []int{1, 2, 3, 5}
	for i, want := range wantOrder {
		if cands[i].MovieID != want {
			t.Errorf("position %d: movie %d, want %d (equal scores must break ties by ascending ID)",
				i, cands[i].MovieID, want)
		}
	}
}
