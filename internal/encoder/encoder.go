// CineMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 CineMatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinematch/cinematch

// Package encoder turns movie feature text into fixed-dimension embedding
// vectors. The recommendation engine depends only on the Encoder interface;
// the Ollama implementation is the production backend.
package encoder

import "context"

// Encoder generates vector embeddings from text.
//
// Model identifies the backing model; embeddings produced by different
// models are not comparable, so consumers persist the model name alongside
// each vector and discard rows whose model no longer matches. Dim is the
// vector dimension every successful Encode call returns.
type Encoder interface {
	Model() string
	Dim() int
	Encode(ctx context.Context, text string) ([]float64, error)
}
