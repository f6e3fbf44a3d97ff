// CineMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 CineMatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinematch/cinematch

package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cinematch/cinematch/internal/encoder"
	"github.com/cinematch/cinematch/internal/metrics"
)

// Service is the public entry point of the recommendation engine. It owns
// the algorithm-selection policy and composes the collaborative and content
// engines; callers wrap it in whatever hosting they need.
type Service struct {
	ratings RatingRepository
	movies  MovieRepository
	cfg     Config
	logger  zerolog.Logger

	// content is shared across requests: its embedding cache is expensive
	// to populate. The collaborative engine is rebuilt per request from
	// the current rating set (see package doc on the cost of doing so).
	content *ContentEngine
}

// NewService validates the configuration and assembles the service.
func NewService(ratings RatingRepository, movies MovieRepository, enc encoder.Encoder, cfg Config, logger zerolog.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		ratings: ratings,
		movies:  movies,
		cfg:     cfg,
		logger:  logger.With().Str("component", "recommend").Logger(),
		content: NewContentEngine(ratings, movies, enc, cfg, logger),
	}, nil
}

// Recommend produces a ranked recommendation list for the user. Unknown
// users are not an error: they have rating count 0 and take the cold-start
// path. The requested algorithm may be overridden by the selection policy;
// Result.Algorithm reports what actually ran.
func (s *Service) Recommend(ctx context.Context, userID, n int, algorithm Algorithm) (*Result, error) {
	start := time.Now()
	requestID := uuid.NewString()

	if n <= 0 {
		n = defaultN
	}
	if n > maxN {
		n = maxN
	}

	count, err := s.ratings.CountByUser(ctx, userID)
	if err != nil {
		metrics.RecommendationErrors.Inc()
		return nil, fmt.Errorf("count ratings for user %d: %w", userID, err)
	}

	used, label := s.selectAlgorithm(algorithm, count)

	logger := s.logger.With().
		Str("request_id", requestID).
		Int("user_id", userID).
		Str("requested", algorithm.String()).
		Str("used", label).
		Logger()
	logger.Debug().Int("rating_count", count).Msg("processing recommendation request")

	var recs []Recommendation
	switch used {
	case AlgorithmPopular:
		recs, err = s.recommendPopular(ctx, n)
	case AlgorithmCollaborative:
		recs, err = s.recommendCollaborative(ctx, userID, n)
	case AlgorithmContent:
		recs, err = s.recommendContent(ctx, userID, n)
	default:
		recs, err = s.recommendHybrid(ctx, userID, n)
	}
	if err != nil {
		metrics.RecommendationErrors.Inc()
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.RecommendationRequests.WithLabelValues(label).Inc()
	metrics.RecommendationDuration.WithLabelValues(used.String()).Observe(elapsed.Seconds())

	logger.Debug().
		Int("returned", len(recs)).
		Int64("latency_ms", elapsed.Milliseconds()).
		Msg("recommendation complete")

	return &Result{
		Recommendations: recs,
		Algorithm:       label,
		UserRatingCount: count,
		RequestID:       requestID,
		LatencyMS:       elapsed.Milliseconds(),
	}, nil
}

// selectAlgorithm applies the selection policy: the cold-start override
// first, then adaptive resolution. The returned label is what the result
// reports, which differs from the enum only for the forced fallback.
func (s *Service) selectAlgorithm(requested Algorithm, ratingCount int) (Algorithm, string) {
	if ratingCount < s.cfg.MinRatingsForRecommendations && requested != AlgorithmPopular {
		return AlgorithmPopular, "popular (cold start)"
	}

	resolved := requested
	if requested == AlgorithmAdaptive {
		if ratingCount < adaptiveContentCutoff {
			resolved = AlgorithmContent
		} else {
			resolved = AlgorithmHybrid
		}
	}
	return resolved, resolved.String()
}

func (s *Service) recommendPopular(ctx context.Context, n int) ([]Recommendation, error) {
	catalog, err := s.movies.AllMovies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return PopularMovies(catalog, n), nil
}

func (s *Service) recommendCollaborative(ctx context.Context, userID, n int) ([]Recommendation, error) {
	engine, err := s.buildCollaborative(ctx)
	if err != nil {
		return nil, err
	}
	cands := engine.Recommend(userID, n, s.cfg.K, s.cfg.MinPredictedRating)
	return s.attachMovies(ctx, cands, "collaborative")
}

func (s *Service) recommendContent(ctx context.Context, userID, n int) ([]Recommendation, error) {
	cands, err := s.content.Recommend(ctx, userID, n, s.cfg.MinSimilarity)
	if err != nil {
		return nil, err
	}
	return s.attachMovies(ctx, cands, "content-based")
}

func (s *Service) recommendHybrid(ctx context.Context, userID, n int) ([]Recommendation, error) {
	engine, err := s.buildCollaborative(ctx)
	if err != nil {
		return nil, err
	}

	// Overfetch both sides so the fused union still fills n slots.
	collab := engine.Recommend(userID, 2*n, s.cfg.K, s.cfg.MinPredictedRating)
	content, err := s.content.Recommend(ctx, userID, 2*n, s.cfg.MinSimilarity)
	if err != nil {
		return nil, err
	}

	fused := FuseCandidates(collab, content, s.cfg.CollaborativeWeight, s.cfg.ContentWeight, n)
	return s.attachMovies(ctx, fused, "hybrid")
}

// buildCollaborative snapshots the rating set into a fresh engine. Full
// recomputation per request is the dominant cost of the collaborative
// path.
func (s *Service) buildCollaborative(ctx context.Context) (*CollaborativeEngine, error) {
	all, err := s.ratings.AllRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return NewCollaborativeEngine(BuildUserItemMatrix(all)), nil
}

// attachMovies resolves candidates into full recommendation records.
// Candidates whose movie has vanished from the catalog are dropped.
func (s *Service) attachMovies(ctx context.Context, cands []Candidate, reason string) ([]Recommendation, error) {
	recs := make([]Recommendation, 0, len(cands))
	for _, c := range cands {
		movie, err := s.movies.MovieByID(ctx, c.MovieID)
		if err != nil {
			return nil, fmt.Errorf("movie %d: %w", c.MovieID, err)
		}
		if movie == nil {
			continue
		}
		recs = append(recs, Recommendation{Movie: *movie, Score: c.Score, Reason: reason})
	}
	return recs, nil
}

// SimilarMovies returns the movies most similar to the given one by
// content embedding. Naming a movie that is not in the catalog is a caller
// error and returns ErrMovieNotFound; a known movie without neighbors
// yields an empty list.
func (s *Service) SimilarMovies(ctx context.Context, movieID, n int) ([]SimilarMovie, error) {
	if n <= 0 {
		n = defaultN
	}
	if n > maxN {
		n = maxN
	}

	source, err := s.movies.MovieByID(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("movie %d: %w", movieID, err)
	}
	if source == nil {
		return nil, fmt.Errorf("movie %d: %w", movieID, ErrMovieNotFound)
	}

	metrics.SimilarMovieLookups.Inc()

	cands, err := s.content.SimilarMovies(ctx, movieID, n, s.cfg.MinSimilarity)
	if err != nil {
		return nil, err
	}

	similar := make([]SimilarMovie, 0, len(cands))
	for _, c := range cands {
		movie, err := s.movies.MovieByID(ctx, c.MovieID)
		if err != nil {
			return nil, fmt.Errorf("movie %d: %w", c.MovieID, err)
		}
		if movie == nil {
			continue
		}
		similar = append(similar, SimilarMovie{Movie: *movie, Similarity: c.Score})
	}
	return similar, nil
}

// InitializeEmbeddings generates missing content embeddings (or all of
// them when force is set) and reports the count generated. The operation
// is resumable; see ContentEngine.GenerateEmbeddings.
func (s *Service) InitializeEmbeddings(ctx context.Context, force bool) (int, error) {
	start := time.Now()

	generated, err := s.content.GenerateEmbeddings(ctx, force)
	metrics.EmbeddingsGenerated.Add(float64(generated))
	metrics.EmbeddingGenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return generated, err
	}

	s.logger.Info().
		Int("generated", generated).
		Bool("force", force).
		Dur("elapsed", time.Since(start)).
		Msg("embeddings initialized")
	return generated, nil
}

// Evaluate computes offline quality metrics for one user and algorithm
// against held-out ratings. "Liked" means a held-out rating at or above
// the liked threshold.
func (s *Service) Evaluate(ctx context.Context, userID int, algorithm Algorithm, heldOut []Rating) (EvalMetrics, error) {
	res, err := s.Recommend(ctx, userID, defaultN, algorithm)
	if err != nil {
		return EvalMetrics{}, err
	}

	recommended := make(map[int]struct{}, len(res.Recommendations))
	for _, rec := range res.Recommendations {
		recommended[rec.Movie.ID] = struct{}{}
	}

	liked := make(map[int]struct{})
	for _, r := range heldOut {
		if r.Value >= s.cfg.LikedThreshold {
			liked[r.MovieID] = struct{}{}
		}
	}

	m := EvalMetrics{
		NumRecommendations: len(recommended),
		NumRelevant:        len(liked),
	}
	if len(liked) == 0 {
		return m, nil
	}

	hits := 0
	for id := range liked {
		if _, ok := recommended[id]; ok {
			hits++
		}
	}

	if len(recommended) > 0 {
		m.Precision = float64(hits) / float64(len(recommended))
	}
	m.Recall = float64(hits) / float64(len(liked))
	if hits > 0 {
		m.HitRate = 1.0
	}
	return m, nil
}

// Stats summarizes the user's engagement and the catalog state.
func (s *Service) Stats(ctx context.Context, userID int) (*Stats, error) {
	userRatings, err := s.ratings.RatingsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ratings for user %d: %w", userID, err)
	}

	var avg float64
	for _, r := range userRatings {
		avg += r.Value
	}
	if len(userRatings) > 0 {
		avg /= float64(len(userRatings))
	}

	catalog, err := s.movies.AllMovies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	byID := make(map[int]Movie, len(catalog))
	for _, m := range catalog {
		byID[m.ID] = m
	}

	genreCounts := make(map[string]int)
	for _, r := range userRatings {
		if m, ok := byID[r.MovieID]; ok {
			for _, g := range m.Genres {
				genreCounts[g]++
			}
		}
	}
	favorites := make([]GenreCount, 0, len(genreCounts))
	for g, c := range genreCounts {
		favorites = append(favorites, GenreCount{Genre: g, Count: c})
	}
	sort.Slice(favorites, func(i, j int) bool {
		if favorites[i].Count != favorites[j].Count {
			return favorites[i].Count > favorites[j].Count
		}
		return favorites[i].Genre < favorites[j].Genre
	})
	if len(favorites) > 5 {
		favorites = favorites[:5]
	}

	allRatings, err := s.ratings.AllRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	users := make(map[int]struct{}, len(allRatings))
	for _, r := range allRatings {
		users[r.UserID] = struct{}{}
	}

	return &Stats{
		UserRatingCount:       len(userRatings),
		UserAvgRating:         avg,
		FavoriteGenres:        favorites,
		TotalMovies:           len(catalog),
		TotalRatings:          len(allRatings),
		TotalUsers:            len(users),
		CanGetRecommendations: len(userRatings) >= s.cfg.MinRatingsForRecommendations,
	}, nil
}
