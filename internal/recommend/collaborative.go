// CineMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 CineMatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinematch/cinematch

package recommend

import (
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// SimilarUser pairs a user with their similarity to the requesting user.
type SimilarUser struct {
	UserID     int     `json:"user_id"`
	Similarity float64 `json:"similarity"`
}

// CollaborativeEngine predicts unseen ratings from the behavior of similar
// users. Construction computes the full user-similarity matrix eagerly, so
// an engine instance is a consistent snapshot of the rating set it was
// built from; it performs no I/O afterwards and is safe for concurrent
// reads.
type CollaborativeEngine struct {
	matrix *UserItemMatrix

	// similarity[i][j] is the cosine similarity between the rating rows of
	// users UserIDs[i] and UserIDs[j]. Symmetric; diagonal 1 for users
	// with at least one rating.
	similarity [][]float64
}

// NewCollaborativeEngine builds the engine from a user-item matrix. A nil
// matrix (empty rating set) yields an engine whose every operation returns
// the empty result.
func NewCollaborativeEngine(matrix *UserItemMatrix) *CollaborativeEngine {
	e := &CollaborativeEngine{matrix: matrix}
	if matrix == nil {
		return e
	}

	n := len(matrix.UserIDs)
	e.similarity = make([][]float64, n)
	for i := range e.similarity {
		e.similarity[i] = make([]float64, n)
	}

	// The row loop is embarrassingly parallel; each worker owns a disjoint
	// set of rows. Only the upper triangle is computed.
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i := 0; i < n; i++ {
		g.Go(func() error {
			for j := i; j < n; j++ {
				sim := cosine(matrix.Rows[i], matrix.Rows[j])
				e.similarity[i][j] = sim
				e.similarity[j][i] = sim
			}
			return nil
		})
	}
	// Workers never fail; Wait only synchronizes.
	_ = g.Wait()

	return e
}

// SimilarUsers returns the k users most similar to the given user, best
// first, excluding the user themselves. Ties are broken by ascending user
// ID. Unknown users yield an empty result, not an error.
func (e *CollaborativeEngine) SimilarUsers(userID, k int) []SimilarUser {
	if e.matrix == nil || k <= 0 {
		return nil
	}
	row := e.matrix.UserIndex(userID)
	if row < 0 {
		return nil
	}

	neighbors := make([]SimilarUser, 0, len(e.matrix.UserIDs)-1)
	for i, id := range e.matrix.UserIDs {
		if i == row {
			continue
		}
		neighbors = append(neighbors, SimilarUser{UserID: id, Similarity: e.similarity[row][i]})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		return neighbors[i].UserID < neighbors[j].UserID
	})

	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}

// PredictRating estimates the user's rating of a movie as the
// similarity-weighted average over the k most similar users who have rated
// it. Returns 0.0 when the user or movie is unknown, no qualifying
// neighbor rated the movie, or the similarity mass is zero; any other
// result is clamped to [0.5, 5.0].
func (e *CollaborativeEngine) PredictRating(userID, movieID, k int) float64 {
	if e.matrix == nil {
		return 0
	}
	if e.matrix.UserIndex(userID) < 0 || e.matrix.MovieIndex(movieID) < 0 {
		return 0
	}

	var weighted, simSum float64
	for _, n := range e.SimilarUsers(userID, k) {
		rating := e.matrix.Value(n.UserID, movieID)
		if rating == Unrated {
			continue
		}
		weighted += n.Similarity * rating
		simSum += n.Similarity
	}
	if simSum == 0 {
		return 0
	}

	predicted := weighted / simSum
	if predicted < 0.5 {
		return 0.5
	}
	if predicted > 5.0 {
		return 5.0
	}
	return predicted
}

// Recommend predicts a rating for every movie the user has not rated,
// keeps predictions at or above minThreshold, and returns the top n as
// collaborative candidates sorted by predicted rating descending. Unknown
// users yield an empty list.
func (e *CollaborativeEngine) Recommend(userID, n, k int, minThreshold float64) []Candidate {
	if e.matrix == nil || n <= 0 {
		return nil
	}
	if e.matrix.UserIndex(userID) < 0 {
		return nil
	}

	rated := e.matrix.RatedBy(userID)

	candidates := make([]Candidate, 0, len(e.matrix.MovieIDs))
	for _, movieID := range e.matrix.MovieIDs {
		if _, ok := rated[movieID]; ok {
			continue
		}
		predicted := e.PredictRating(userID, movieID, k)
		if predicted >= minThreshold {
			candidates = append(candidates, Candidate{
				MovieID: movieID,
				Score:   predicted,
				Source:  SourceCollaborative,
			})
		}
	}

	sortCandidates(candidates)
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

// UserRated reports whether the user has rated the movie in this engine's
// snapshot.
func (e *CollaborativeEngine) UserRated(userID, movieID int) bool {
	return e.matrix != nil && e.matrix.Value(userID, movieID) != Unrated
}
