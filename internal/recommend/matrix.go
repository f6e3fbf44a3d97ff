// CineMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 CineMatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinematch/cinematch

package recommend

import (
	"math"
	"sort"
)

// Unrated is the cell value marking a missing rating in the user-item
// matrix. The choice of 0 is safe only because the legal rating floor is
// 0.5; keep the named constant rather than a literal anywhere the sentinel
// is tested.
const Unrated = 0.0

// UserItemMatrix is the dense user x movie rating matrix. Rows follow
// UserIDs, columns follow MovieIDs; both are sorted ascending so repeated
// builds over the same rating set are byte-identical.
//
// The matrix is rebuilt in full from the rating set; there is no
// incremental update path.
type UserItemMatrix struct {
	// UserIDs holds the distinct user IDs in row order.
	UserIDs []int

	// MovieIDs holds the distinct movie IDs in column order.
	MovieIDs []int

	// Rows holds the rating values, Rows[i][j] being user UserIDs[i]'s
	// rating of movie MovieIDs[j], or Unrated.
	Rows [][]float64

	userIndex  map[int]int
	movieIndex map[int]int
}

// BuildUserItemMatrix constructs the matrix from the full rating set.
// Returns nil when there are no ratings at all. Duplicate (user, movie)
// pairs keep the last value seen; the write path treats re-rating as an
// update, so duplicates only occur in hand-built fixtures.
func BuildUserItemMatrix(ratings []Rating) *UserItemMatrix {
	if len(ratings) == 0 {
		return nil
	}

	userSet := make(map[int]struct{})
	movieSet := make(map[int]struct{})
	for _, r := range ratings {
		userSet[r.UserID] = struct{}{}
		movieSet[r.MovieID] = struct{}{}
	}

	m := &UserItemMatrix{
		UserIDs:    sortedKeys(userSet),
		MovieIDs:   sortedKeys(movieSet),
		userIndex:  make(map[int]int, len(userSet)),
		movieIndex: make(map[int]int, len(movieSet)),
	}
	for i, id := range m.UserIDs {
		m.userIndex[id] = i
	}
	for j, id := range m.MovieIDs {
		m.movieIndex[id] = j
	}

	m.Rows = make([][]float64, len(m.UserIDs))
	for i := range m.Rows {
		m.Rows[i] = make([]float64, len(m.MovieIDs))
	}
	for _, r := range ratings {
		m.Rows[m.userIndex[r.UserID]][m.movieIndex[r.MovieID]] = r.Value
	}

	return m
}

// UserIndex returns the row index of the user, or -1 when unknown.
func (m *UserItemMatrix) UserIndex(userID int) int {
	if i, ok := m.userIndex[userID]; ok {
		return i
	}
	return -1
}

// MovieIndex returns the column index of the movie, or -1 when unknown.
func (m *UserItemMatrix) MovieIndex(movieID int) int {
	if j, ok := m.movieIndex[movieID]; ok {
		return j
	}
	return -1
}

// Value returns the stored rating, or Unrated when either ID is unknown or
// the user has not rated the movie.
func (m *UserItemMatrix) Value(userID, movieID int) float64 {
	i, j := m.UserIndex(userID), m.MovieIndex(movieID)
	if i < 0 || j < 0 {
		return Unrated
	}
	return m.Rows[i][j]
}

// RatedBy returns the set of movie IDs the user has rated.
func (m *UserItemMatrix) RatedBy(userID int) map[int]struct{} {
	rated := make(map[int]struct{})
	i := m.UserIndex(userID)
	if i < 0 {
		return rated
	}
	for j, v := range m.Rows[i] {
		if v != Unrated {
			rated[m.MovieIDs[j]] = struct{}{}
		}
	}
	return rated
}

// cosine computes the cosine similarity of two equal-length vectors.
// Zero vectors yield 0.
func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// meanVector returns the element-wise mean of equal-length vectors.
// Returns nil for an empty input.
func meanVector(vectors [][]float64) []float64 {
	if len(vectors) == 0 {
		return nil
	}

	mean := make([]float64, len(vectors[0]))
	for _, v := range vectors {
		for i := range mean {
			mean[i] += v[i]
		}
	}
	for i := range mean {
		mean[i] /= float64(len(vectors))
	}
	return mean
}

func sortedKeys(set map[int]struct{}) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// sortCandidates orders candidates by score descending, breaking ties by
// ascending movie ID so equal scores rank deterministically.
func sortCandidates(cands []Candidate) {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].MovieID < cands[j].MovieID
	})
}
