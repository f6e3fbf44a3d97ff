// CineMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 CineMatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinematch/cinematch

// Package recommend implements the hybrid movie recommendation engine.
//
// # Architecture
//
// Two independent signal sources are fused into a single ranked list:
//
//   - Collaborative Filtering: user-user cosine similarity over the rating
//     matrix with k-nearest-neighbor rating prediction
//   - Content-Based Filtering: cosine similarity between text embeddings of
//     movie metadata (title, genres, overview)
//
// The Service composes both engines behind an explicit algorithm-selection
// policy with graceful degradation: users below the configured rating
// minimum receive a popularity fallback, and the adaptive algorithm routes
// between content-only and hybrid based on history depth.
//
// # Algorithm Selection
//
//   - Cold start (< MinRatingsForRecommendations): popularity fallback,
//     regardless of the requested algorithm
//   - Adaptive with < 20 ratings: content-based only
//   - Adaptive otherwise: hybrid fusion of both engines
//
// # Data Access
//
// The package has no dependency on any concrete storage. The
// RatingRepository and MovieRepository interfaces defined here are
// implemented by the store package, keeping the core computable over any
// supplied data.
//
// # Performance
//
// The collaborative path rebuilds the full user-item matrix and recomputes
// the user-similarity matrix on every engine instantiation: O(ratings) to
// build plus O(users^2 x movies) for similarity. An incrementally
// maintained similarity structure (or an approximate-nearest-neighbor index
// on the content side) is the first optimization target at scale; the
// current shape favors correctness and auditability over throughput.
//
// # Usage
//
//	svc, err := recommend.NewService(ratings, movies, enc, cfg, logger)
//
//	res, err := svc.Recommend(ctx, userID, 10, recommend.AlgorithmHybrid)
//	for _, rec := range res.Recommendations {
//	    fmt.Println(rec.Movie.Title, rec.Score, rec.Reason)
//	}
package recommend
