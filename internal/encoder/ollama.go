// CineMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 CineMatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinematch/cinematch

package encoder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

// OllamaEncoder generates embeddings via a local Ollama server.
type OllamaEncoder struct {
	endpoint string
	model    string
	dim      int
	client   *http.Client
}

type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewOllamaEncoder creates an encoder backed by the Ollama server at
// endpoint (e.g. "http://localhost:11434"). dim is the dimension the
// configured model produces; responses of any other length are rejected.
func NewOllamaEncoder(endpoint, model string, dim int, timeout time.Duration) *OllamaEncoder {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OllamaEncoder{
		endpoint: endpoint,
		model:    model,
		dim:      dim,
		client:   &http.Client{Timeout: timeout},
	}
}

// Model returns the configured model name.
func (e *OllamaEncoder) Model() string { return e.model }

// Dim returns the configured embedding dimension.
func (e *OllamaEncoder) Dim() int { return e.dim }

// Available reports whether the Ollama server is reachable and serves the
// configured model. Model names match with or without the ":latest" tag.
func (e *OllamaEncoder) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false
	}

	for _, m := range tags.Models {
		if m.Name == e.model || m.Name == e.model+":latest" {
			return true
		}
	}
	return false
}

// Encode generates an embedding for the given text.
func (e *OllamaEncoder) Encode(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("encode: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("encode: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("encode: request cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("encode: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("encode: ollama returned status %d: %s", resp.StatusCode, string(msg))
	}

	var embedResp ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("encode: parse response: %w", err)
	}

	if len(embedResp.Embeddings) == 0 {
		return nil, fmt.Errorf("encode: no embeddings returned")
	}
	vec := embedResp.Embeddings[0]
	if len(vec) != e.dim {
		return nil, fmt.Errorf("encode: model %q returned dimension %d, want %d", e.model, len(vec), e.dim)
	}
	return vec, nil
}
