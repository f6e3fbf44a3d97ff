// CineMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 CineMatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinematch/cinematch

// Package metrics provides Prometheus instrumentation for the
// recommendation engine. Collectors are registered on the default registry
// via promauto; callers expose them however they host the process.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendationRequests counts recommendation requests by the
	// algorithm actually used (after cold-start and adaptive resolution).
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total recommendation requests by algorithm used",
		},
		[]string{"algorithm"},
	)

	// RecommendationDuration observes end-to-end recommendation latency.
	// The collaborative path dominates: it rebuilds the similarity matrix
	// per request.
	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Recommendation computation latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"algorithm"},
	)

	// RecommendationErrors counts failed recommendation requests.
	RecommendationErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_errors_total",
			Help: "Total failed recommendation requests",
		},
	)

	// EmbeddingsGenerated counts embeddings produced by the text encoder.
	EmbeddingsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "embeddings_generated_total",
			Help: "Total movie embeddings generated",
		},
	)

	// EmbeddingGenerationDuration observes full embedding-generation runs,
	// which can take minutes on large catalogs.
	EmbeddingGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "embedding_generation_duration_seconds",
			Help:    "Duration of embedding generation runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	// SimilarMovieLookups counts similar-movie queries.
	SimilarMovieLookups = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "similar_movie_lookups_total",
			Help: "Total similar-movie lookups",
		},
	)
)
