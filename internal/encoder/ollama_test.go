// CineMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 CineMatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinematch/cinematch

package encoder

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

func TestOllamaEncoder_Encode(t *testing.T) {
	var gotReq ollamaEmbedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("path = %s, want /api/embed", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(ollamaEmbedResponse{
			Embeddings: [][]float64{{0.1, 0.2, 0.3}},
		})
	}))
	defer srv.Close()

	enc := NewOllamaEncoder(srv.URL, "all-minilm", 3, time.Second)

	vec, err := enc.Encode(context.Background(), "Heat Action Crime")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !reflect.DeepEqual(vec, []float64{0.1, 0.2, 0.3}) {
		t.Errorf("vector = %v, want [0.1 0.2 0.3]", vec)
	}
	if gotReq.Model != "all-minilm" || gotReq.Input != "Heat Action Crime" {
		t.Errorf("request = %+v, want configured model and input text", gotReq)
	}
}

func TestOllamaEncoder_Encode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not loaded", http.StatusInternalServerError)
			},
		},
		{
			name: "empty embeddings",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(ollamaEmbedResponse{})
			},
		},
		{
			name: "dimension mismatch",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(ollamaEmbedResponse{
					Embeddings: [][]float64{{1, 2}},
				})
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("{not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			enc := NewOllamaEncoder(srv.URL, "all-minilm", 3, time.Second)
			if _, err := enc.Encode(context.Background(), "text"); err == nil {
				t.Fatal("Encode succeeded, want error")
			}
		})
	}
}

func TestOllamaEncoder_Encode_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server watches the connection and cancels
		// the request context when the client disconnects; otherwise this
		// handler never unblocks and srv.Close deadlocks.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	enc := NewOllamaEncoder(srv.URL, "all-minilm", 3, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := enc.Encode(ctx, "text"); err == nil {
		t.Fatal("Encode succeeded despite cancelled context")
	}
}

func TestOllamaEncoder_Available(t *testing.T) {
	tests := []struct {
		name   string
		models []string
		want   bool
	}{
		{name: "exact match", models: []string{"all-minilm"}, want: true},
		{name: "latest tag matches", models: []string{"all-minilm:latest"}, want: true},
		{name: "model missing", models: []string{"other-model"}, want: false},
		{name: "no models", models: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/tags" {
					t.Errorf("path = %s, want /api/tags", r.URL.Path)
				}
				var resp ollamaTagsResponse
				for _, m := range tt.models {
					resp.Models = append(resp.Models, struct {
						Name string `json:"name"`
					}{Name: m})
				}
				json.NewEncoder(w).Encode(resp)
			}))
			defer srv.Close()

			enc := NewOllamaEncoder(srv.URL, "all-minilm", 3, time.Second)
			if got := enc.Available(context.Background()); got != tt.want {
				t.Errorf("Available = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOllamaEncoder_Accessors(t *testing.T) {
	enc := NewOllamaEncoder("http://localhost:11434", "all-minilm", 384, 0)
	if enc.Model() != "all-minilm" {
		t.Errorf("Model() = %q, want all-minilm", enc.Model())
	}
	if enc.Dim() != 384 {
		t.Errorf("Dim() = %d, want 384", enc.Dim())
	}
}
