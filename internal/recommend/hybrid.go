// CineMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 CineMatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinematch/cinematch

package recommend

import "sort"

// FuseCandidates combines a collaborative and a content candidate list into
// a single ranked list of at most n hybrid candidates.
//
// Collaborative scores are divided by 5 to map the rating scale onto
// [0, 1]; content scores are cosine similarities and used as-is. The fused
// score over the union of both lists is
//
//	hybrid = wCollab*collab/5 + wContent*content
//
// where a movie absent from one list contributes 0 from that side. A movie
// strongly favored by only one engine can therefore rank below a movie
// mildly favored by both; that asymmetry is intentional.
//
// The weights are renormalized to sum to 1 before use.
func FuseCandidates(collab, content []Candidate, wCollab, wContent float64, n int) []Candidate {
	if total := wCollab + wContent; total > 0 {
		wCollab /= total
		wContent /= total
	} else {
		wCollab, wContent = 0.5, 0.5
	}

	collabScores := make(map[int]float64, len(collab))
	for _, c := range collab {
		collabScores[c.MovieID] = c.Score / 5.0
	}
	contentScores := make(map[int]float64, len(content))
	for _, c := range content {
		contentScores[c.MovieID] = c.Score
	}

	union := make(map[int]struct{}, len(collabScores)+len(contentScores))
	for id := range collabScores {
		union[id] = struct{}{}
	}
	for id := range contentScores {
		union[id] = struct{}{}
	}

	fused := make([]Candidate, 0, len(union))
	for id := range union {
		fused = append(fused, Candidate{
			MovieID: id,
			Score:   wCollab*collabScores[id] + wContent*contentScores[id],
		})
	}

	sortCandidates(fused)
	if n > 0 && len(fused) > n {
		fused = fused[:n]
	}
	return fused
}

// PopularMovies ranks the catalog's well-rated movies for the popularity
// fallback: only movies with at least popularityFloor ratings qualify,
// ordered by average rating descending with ascending-ID tie-break. Scores
// are the average rating mapped onto [0, 1].
func PopularMovies(catalog []Movie, n int) []Recommendation {
	qualified := make([]Movie, 0, len(catalog))
	for _, m := range catalog {
		if m.RatingCount >= popularityFloor {
			qualified = append(qualified, m)
		}
	}

	sort.Slice(qualified, func(i, j int) bool {
		if qualified[i].AvgRating != qualified[j].AvgRating {
			return qualified[i].AvgRating > qualified[j].AvgRating
		}
		return qualified[i].ID < qualified[j].ID
	})

	if n > 0 && len(qualified) > n {
		qualified = qualified[:n]
	}

	recs := make([]Recommendation, 0, len(qualified))
	for _, m := range qualified {
		recs = append(recs, Recommendation{
			Movie:  m,
			Score:  m.AvgRating / 5.0,
			Reason: "popular",
		})
	}
	return recs
}
