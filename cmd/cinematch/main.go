// CineMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 CineMatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinematch/cinematch

// Package main is the entry point for the cinematch command-line tool.
//
// CineMatch is a hybrid movie recommendation engine combining user-user
// collaborative filtering with content-based filtering over text
// embeddings. The CLI runs one operation per invocation against the
// configured store:
//
//	cinematch add-movie -id 7 -title "Heat" [-year 1995] [-genres Action,Crime] [-overview "..."]
//	cinematch rate -user 42 -movie 7 -value 4.5
//	cinematch init-embeddings [-force]
//	cinematch recommend -user 42 [-n 10] [-algorithm hybrid]
//	cinematch similar -movie 7 [-n 10]
//	cinematch stats -user 42
//	cinematch evaluate -user 42 -holdout holdout.json [-algorithm hybrid]
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables with the CINEMATCH_ prefix
//   - Config file (config.yaml, or CINEMATCH_CONFIG_PATH)
//   - Built-in defaults
//
// Commonly overridden settings:
//   - CINEMATCH_STORE_DRIVER: sqlite or memory (default: sqlite)
//   - CINEMATCH_STORE_PATH: SQLite database file
//   - CINEMATCH_ENCODER_ENDPOINT: Ollama server URL
//   - CINEMATCH_ENCODER_MODEL: embedding model name
//   - CINEMATCH_RECOMMEND_K: neighborhood size for collaborative filtering
//   - CINEMATCH_LOG_LEVEL: trace, debug, info, warn, error
//
// All results are written to stdout as JSON; logs go to stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	json "github.com/goccy/go-json"

	"github.com/cinematch/cinematch/internal/config"
	"github.com/cinematch/cinematch/internal/encoder"
	"github.com/cinematch/cinematch/internal/logging"
	"github.com/cinematch/cinematch/internal/recommend"
	"github.com/cinematch/cinematch/internal/store"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		usage()
		return errors.New("missing command")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	enc := encoder.NewOllamaEncoder(cfg.Encoder.Endpoint, cfg.Encoder.Model,
		cfg.Recommend.EmbeddingDim, cfg.Encoder.Timeout)

	svc, err := recommend.NewService(st, st, enc, cfg.Recommend, logging.Logger())
	if err != nil {
		return err
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "add-movie":
		return runAddMovie(ctx, st, args)
	case "rate":
		return runRate(ctx, st, args)
	case "init-embeddings":
		return runInitEmbeddings(ctx, svc, args)
	case "recommend":
		return runRecommend(ctx, svc, args)
	case "similar":
		return runSimilar(ctx, svc, args)
	case "stats":
		return runStats(ctx, svc, args)
	case "evaluate":
		return runEvaluate(ctx, svc, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: cinematch <command> [flags]

commands:
  add-movie        add or update a catalog movie
  rate             add or update a user's rating of a movie
  init-embeddings  generate content embeddings for the catalog
  recommend        produce recommendations for a user
  similar          find movies similar to a given movie
  stats            summarize a user's activity and the catalog
  evaluate         score recommendation quality against held-out ratings`)
}

// movieStore is the write surface both store drivers share.
type movieStore interface {
	recommend.RatingRepository
	recommend.MovieRepository
	AddMovie(ctx context.Context, m recommend.Movie) error
	AddRating(ctx context.Context, r recommend.Rating) error
}

func openStore(cfg config.StoreConfig) (movieStore, func(), error) {
	switch cfg.Driver {
	case "memory":
		return store.NewMemoryStore(), func() {}, nil
	default:
		s, err := store.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				logging.Warn().Err(err).Msg("closing store")
			}
		}, nil
	}
}

func runAddMovie(ctx context.Context, st movieStore, args []string) error {
	fs := flag.NewFlagSet("add-movie", flag.ExitOnError)
	id := fs.Int("id", 0, "movie ID")
	title := fs.String("title", "", "movie title")
	year := fs.Int("year", 0, "release year")
	overview := fs.String("overview", "", "plot synopsis")
	genres := fs.String("genres", "", "comma-separated genre names")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 || *title == "" {
		return errors.New("add-movie: -id and -title are required")
	}

	m := recommend.Movie{ID: *id, Title: *title, Year: *year, Overview: *overview}
	if *genres != "" {
		for _, g := range strings.Split(*genres, ",") {
			if g = strings.TrimSpace(g); g != "" {
				m.Genres = append(m.Genres, g)
			}
		}
	}

	if err := st.AddMovie(ctx, m); err != nil {
		return fmt.Errorf("add movie %d: %w", m.ID, err)
	}
	return writeJSON(m)
}

func runRate(ctx context.Context, st movieStore, args []string) error {
	fs := flag.NewFlagSet("rate", flag.ExitOnError)
	userID := fs.Int("user", 0, "user ID")
	movieID := fs.Int("movie", 0, "movie ID")
	value := fs.Float64("value", 0, "rating value (0.5-5.0 in half steps)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r := recommend.Rating{UserID: *userID, MovieID: *movieID, Value: *value, Timestamp: time.Now()}
	if err := st.AddRating(ctx, r); err != nil {
		return fmt.Errorf("rate movie %d: %w", r.MovieID, err)
	}
	return writeJSON(r)
}

func runInitEmbeddings(ctx context.Context, svc *recommend.Service, args []string) error {
	fs := flag.NewFlagSet("init-embeddings", flag.ExitOnError)
	force := fs.Bool("force", false, "regenerate all embeddings, not just missing ones")
	if err := fs.Parse(args); err != nil {
		return err
	}

	generated, err := svc.InitializeEmbeddings(ctx, *force)
	if err != nil {
		return err
	}
	return writeJSON(struct {
		Generated int `json:"generated"`
	}{generated})
}

func runRecommend(ctx context.Context, svc *recommend.Service, args []string) error {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	userID := fs.Int("user", 0, "user ID")
	n := fs.Int("n", 10, "number of recommendations")
	algName := fs.String("algorithm", "hybrid", "hybrid, collaborative, content, adaptive, or popular")
	if err := fs.Parse(args); err != nil {
		return err
	}

	alg, err := recommend.ParseAlgorithm(*algName)
	if err != nil {
		return err
	}

	res, err := svc.Recommend(ctx, *userID, *n, alg)
	if err != nil {
		return err
	}
	return writeJSON(res)
}

func runSimilar(ctx context.Context, svc *recommend.Service, args []string) error {
	fs := flag.NewFlagSet("similar", flag.ExitOnError)
	movieID := fs.Int("movie", 0, "movie ID")
	n := fs.Int("n", 10, "number of similar movies")
	if err := fs.Parse(args); err != nil {
		return err
	}

	similar, err := svc.SimilarMovies(ctx, *movieID, *n)
	if err != nil {
		return err
	}
	return writeJSON(similar)
}

func runStats(ctx context.Context, svc *recommend.Service, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	userID := fs.Int("user", 0, "user ID")
	if err := fs.Parse(args); err != nil {
		return err
	}

	stats, err := svc.Stats(ctx, *userID)
	if err != nil {
		return err
	}
	return writeJSON(stats)
}

func runEvaluate(ctx context.Context, svc *recommend.Service, args []string) error {
	fs := flag.NewFlagSet("evaluate", flag.ExitOnError)
	userID := fs.Int("user", 0, "user ID")
	algName := fs.String("algorithm", "hybrid", "algorithm to evaluate")
	holdoutPath := fs.String("holdout", "", "JSON file with the held-out ratings")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *holdoutPath == "" {
		return errors.New("evaluate: -holdout is required")
	}

	alg, err := recommend.ParseAlgorithm(*algName)
	if err != nil {
		return err
	}

	var heldOut []recommend.Rating
	if err := readJSONFile(*holdoutPath, &heldOut); err != nil {
		return fmt.Errorf("evaluate holdout: %w", err)
	}

	metrics, err := svc.Evaluate(ctx, *userID, alg, heldOut)
	if err != nil {
		return err
	}
	return writeJSON(metrics)
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
