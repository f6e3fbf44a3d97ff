// CineMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 CineMatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinematch/cinematch

package recommend

import (
	"math"
	"testing"
)

// fixtureRatings builds a small rating set with a known structure:
// users 1 and 2 agree perfectly on movies 10 and 20, user 3 only rates
// movie 30, and user 2 also rates movie 30 with 5.0.
func fixtureRatings() []Rating {
	return []Rating{
		{UserID: 1, MovieID: 10, Value: 4.0},
		{UserID: 1, MovieID: 20, Value: 4.0},
		{UserID: 2, MovieID: 10, Value: 4.0},
		{UserID: 2, MovieID: 20, Value: 4.0},
		{UserID: 2, MovieID: 30, Value: 5.0},
		{UserID: 3, MovieID: 30, Value: 5.0},
	}
}

func TestNewCollaborativeEngine_SimilarityMatrix(t *testing.T) {
	e := NewCollaborativeEngine(BuildUserItemMatrix(fixtureRatings()))

	// Rows: u1=[4,4,0], u2=[4,4,5], u3=[0,0,5].
	wantSim12 := 32.0 / (math.Sqrt(32) * math.Sqrt(57))

	if got := e.similarity[0][1]; math.Abs(got-wantSim12) > 1e-9 {
		t.Errorf("similarity(1, 2) = %v, want %v", got, wantSim12)
	}
	if got := e.similarity[0][2]; got != 0 {
		t.Errorf("similarity(1, 3) = %v, want 0 for disjoint raters", got)
	}
	for i := range e.similarity {
		if got := e.similarity[i][i]; math.Abs(got-1.0) > 1e-9 {
			t.Errorf("self-similarity of row %d = %v, want 1", i, got)
		}
		for j := range e.similarity[i] {
			if e.similarity[i][j] != e.similarity[j][i] {
				t.Fatalf("similarity matrix not symmetric at (%d, %d)", i, j)
			}
		}
	}
}

func TestCollaborativeEngine_SimilarUsers(t *testing.T) {
	e := NewCollaborativeEngine(BuildUserItemMatrix(fixtureRatings()))

	tests := []struct {
		name      string
		userID    int
		k         int
		wantUsers []int
	}{
		{name: "best neighbor first, self excluded", userID: 1, k: 2, wantUsers: []int{2, 3}},
		{name: "k truncates", userID: 1, k: 1, wantUsers: []int{2}},
		{name: "unknown user", userID: 99, k: 3, wantUsers: nil},
		{name: "zero k", userID: 1, k: 0, wantUsers: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.SimilarUsers(tt.userID, tt.k)
			if len(got) != len(tt.wantUsers) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.wantUsers))
			}
			for i, want := range tt.wantUsers {
				if got[i].UserID != want {
					t.Errorf("neighbor %d = user %d, want %d", i, got[i].UserID, want)
				}
			}
		})
	}
}

func TestCollaborativeEngine_SimilarUsers_TieBreak(t *testing.T) {
	// Users 2 and 3 are both orthogonal to user 1; equal similarity must
	// order by ascending user ID.
	e := NewCollaborativeEngine(BuildUserItemMatrix([]Rating{
		{UserID: 1, MovieID: 10, Value: 4.0},
		{UserID: 3, MovieID: 20, Value: 4.0},
		{UserID: 2, MovieID: 30, Value: 4.0},
	}))

	got := e.SimilarUsers(1, 2)
	if len(got) != 2 || got[0].UserID != 2 || got[1].UserID != 3 {
		t.Errorf("SimilarUsers(1, 2) = %v, want users [2 3] by ascending ID on tie", got)
	}
}

func TestCollaborativeEngine_PredictRating(t *testing.T) {
	e := NewCollaborativeEngine(BuildUserItemMatrix(fixtureRatings()))

	tests := []struct {
		name    string
		userID  int
		movieID int
		want    float64
	}{
		// Only user 2 contributes weight for movie 30 (user 3's similarity
		// to user 1 is 0), so the prediction is user 2's rating exactly.
		{name: "weighted prediction", userID: 1, movieID: 30, want: 5.0},
		{name: "unknown user", userID: 99, movieID: 10, want: 0},
		{name: "unknown movie", userID: 1, movieID: 99, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.PredictRating(tt.userID, tt.movieID, 10); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PredictRating(%d, %d) = %v, want %v", tt.userID, tt.movieID, got, tt.want)
			}
		})
	}
}

func TestCollaborativeEngine_PredictRating_Range(t *testing.T) {
	// Every prediction is either exactly 0 or within the legal rating range.
	e := NewCollaborativeEngine(BuildUserItemMatrix(fixtureRatings()))

	for _, userID := range []int{1, 2, 3, 99} {
		for _, movieID := range []int{10, 20, 30, 99} {
			got := e.PredictRating(userID, movieID, 10)
			if got != 0 && (got < 0.5 || got > 5.0) {
				t.Errorf("PredictRating(%d, %d) = %v, want 0 or within [0.5, 5.0]",
					userID, movieID, got)
			}
		}
	}
}

func TestCollaborativeEngine_PredictRating_NoSimilarityMass(t *testing.T) {
	// User 3 shares no movies with user 1; every neighbor similarity is 0,
	// so the prediction must be 0, not NaN.
	e := NewCollaborativeEngine(BuildUserItemMatrix([]Rating{
		{UserID: 1, MovieID: 10, Value: 4.0},
		{UserID: 3, MovieID: 20, Value: 5.0},
	}))

	if got := e.PredictRating(1, 20, 10); got != 0 {
		t.Errorf("PredictRating = %v, want 0 when similarity mass is zero", got)
	}
}

func TestCollaborativeEngine_Recommend(t *testing.T) {
	e := NewCollaborativeEngine(BuildUserItemMatrix(fixtureRatings()))

	got := e.Recommend(1, 10, 10, 3.5)
	if len(got) != 1 {
		t.Fatalf("Recommend returned %d candidates, want 1", len(got))
	}
	if got[0].MovieID != 30 {
		t.Errorf("candidate movie = %d, want 30", got[0].MovieID)
	}
	if got[0].Source != SourceCollaborative {
		t.Errorf("candidate source = %v, want SourceCollaborative", got[0].Source)
	}
	if math.Abs(got[0].Score-5.0) > 1e-9 {
		t.Errorf("candidate score = %v, want 5.0", got[0].Score)
	}

	// Rated movies never come back.
	for _, c := range got {
		if c.MovieID == 10 || c.MovieID == 20 {
			t.Errorf("Recommend returned already-rated movie %d", c.MovieID)
		}
	}

	if got := e.Recommend(99, 10, 10, 3.5); got != nil {
		t.Errorf("Recommend(unknown user) = %v, want nil", got)
	}
}

func TestCollaborativeEngine_EmptyMatrix(t *testing.T) {
	e := NewCollaborativeEngine(nil)

	if got := e.SimilarUsers(1, 5); got != nil {
		t.Errorf("SimilarUsers on empty engine = %v, want nil", got)
	}
	if got := e.PredictRating(1, 1, 5); got != 0 {
		t.Errorf("PredictRating on empty engine = %v, want 0", got)
	}
	if got := e.Recommend(1, 5, 5, 0); got != nil {
		t.Errorf("Recommend on empty engine = %v, want nil", got)
	}
}
