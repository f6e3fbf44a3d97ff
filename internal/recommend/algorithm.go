// CineMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 CineMatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinematch/cinematch

package recommend

import "fmt"

// Algorithm selects the recommendation strategy. It is a closed set; the
// selection policy in Service.Recommend resolves Adaptive and the cold-start
// override before dispatch, so engines never see free-form strings.
type Algorithm int

const (
	// AlgorithmHybrid fuses collaborative and content scores.
	AlgorithmHybrid Algorithm = iota
	// AlgorithmCollaborative uses user-based collaborative filtering only.
	AlgorithmCollaborative
	// AlgorithmContent uses content-based filtering only.
	AlgorithmContent
	// AlgorithmAdaptive routes between content and hybrid by history depth.
	AlgorithmAdaptive
	// AlgorithmPopular returns popularity-ranked movies.
	AlgorithmPopular
)

// String returns the wire name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmHybrid:
		return "hybrid"
	case AlgorithmCollaborative:
		return "collaborative"
	case AlgorithmContent:
		return "content"
	case AlgorithmAdaptive:
		return "adaptive"
	case AlgorithmPopular:
		return "popular"
	default:
		return "unknown"
	}
}

// ParseAlgorithm converts a wire name into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "hybrid":
		return AlgorithmHybrid, nil
	case "collaborative":
		return AlgorithmCollaborative, nil
	case "content":
		return AlgorithmContent, nil
	case "adaptive":
		return AlgorithmAdaptive, nil
	case "popular":
		return AlgorithmPopular, nil
	default:
		return AlgorithmHybrid, fmt.Errorf("unknown algorithm %q", s)
	}
}
