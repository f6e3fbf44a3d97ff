// CineMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 CineMatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinematch/cinematch

// Package store provides the persistence backends for the recommendation
// engine: a SQLite store for production and an in-memory store for tests
// and ephemeral runs. Both satisfy the repository interfaces defined in
// the recommend package.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/cinematch/cinematch/internal/recommend"
)

const schema = `
CREATE TABLE IF NOT EXISTS movies (
	id           INTEGER PRIMARY KEY,
	title        TEXT NOT NULL,
	year         INTEGER NOT NULL DEFAULT 0,
	overview     TEXT NOT NULL DEFAULT '',
	genres       TEXT NOT NULL DEFAULT '[]',
	avg_rating   REAL NOT NULL DEFAULT 0,
	rating_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS ratings (
	user_id    INTEGER NOT NULL,
	movie_id   INTEGER NOT NULL,
	rating     REAL NOT NULL,
	created_at INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, movie_id)
);

CREATE INDEX IF NOT EXISTS idx_ratings_movie ON ratings(movie_id);

CREATE TABLE IF NOT EXISTS embeddings (
	movie_id INTEGER PRIMARY KEY,
	model    TEXT NOT NULL,
	vector   TEXT NOT NULL
);
`

// pendingEmbedding is an embedding written but not yet flushed.
type pendingEmbedding struct {
	movieID int
	model   string
	vector  []float64
}

// SQLiteStore persists movies, ratings, and embeddings in a SQLite
// database via the pure-Go modernc driver. Embedding writes are buffered
// and committed in a single transaction by FlushEmbeddings, so bulk
// embedding generation pays one commit per batch rather than per row.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	pending []pendingEmbedding
}

// compile-time interface checks
var (
	_ recommend.RatingRepository = (*SQLiteStore)(nil)
	_ recommend.MovieRepository  = (*SQLiteStore)(nil)
	_ recommend.EmbeddingFlusher = (*SQLiteStore)(nil)
)

// OpenSQLite opens (and if necessary creates) the database at path and
// applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close flushes any pending embeddings and closes the database.
func (s *SQLiteStore) Close() error {
	if err := s.FlushEmbeddings(context.Background()); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}

// AddMovie inserts or replaces a movie. Aggregates are preserved when the
// movie already has ratings.
func (s *SQLiteStore) AddMovie(ctx context.Context, m recommend.Movie) error {
	genres, err := json.Marshal(m.Genres)
	if err != nil {
		return fmt.Errorf("marshal genres for movie %d: %w", m.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO movies (id, title, year, overview, genres, avg_rating, rating_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			year = excluded.year,
			overview = excluded.overview,
			genres = excluded.genres`,
		m.ID, m.Title, m.Year, m.Overview, string(genres), m.AvgRating, m.RatingCount)
	if err != nil {
		return fmt.Errorf("insert movie %d: %w", m.ID, err)
	}
	return nil
}

// AddRating upserts a rating and recomputes the movie's aggregates in the
// same transaction, so avg_rating and rating_count never drift from the
// rating rows.
func (s *SQLiteStore) AddRating(ctx context.Context, r recommend.Rating) error {
	if err := r.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO ratings (user_id, movie_id, rating, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, movie_id) DO UPDATE SET
			rating = excluded.rating,
			created_at = excluded.created_at`,
		r.UserID, r.MovieID, r.Value, ts.Unix())
	if err != nil {
		return fmt.Errorf("insert rating: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE movies SET
			avg_rating = COALESCE((SELECT AVG(rating) FROM ratings WHERE movie_id = ?), 0),
			rating_count = (SELECT COUNT(*) FROM ratings WHERE movie_id = ?)
		WHERE id = ?`,
		r.MovieID, r.MovieID, r.MovieID)
	if err != nil {
		return fmt.Errorf("update aggregates for movie %d: %w", r.MovieID, err)
	}

	return tx.Commit()
}

// AllRatings returns every rating in the store.
func (s *SQLiteStore) AllRatings(ctx context.Context) ([]recommend.Rating, error) {
	return s.queryRatings(ctx, `SELECT user_id, movie_id, rating, created_at FROM ratings`)
}

// RatingsByUser returns the user's ratings.
func (s *SQLiteStore) RatingsByUser(ctx context.Context, userID int) ([]recommend.Rating, error) {
	return s.queryRatings(ctx,
		`SELECT user_id, movie_id, rating, created_at FROM ratings WHERE user_id = ?`, userID)
}

// RatingsByMovie returns the movie's ratings.
func (s *SQLiteStore) RatingsByMovie(ctx context.Context, movieID int) ([]recommend.Rating, error) {
	return s.queryRatings(ctx,
		`SELECT user_id, movie_id, rating, created_at FROM ratings WHERE movie_id = ?`, movieID)
}

// CountByUser returns the number of ratings the user has made.
func (s *SQLiteStore) CountByUser(ctx context.Context, userID int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ratings WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count ratings for user %d: %w", userID, err)
	}
	return n, nil
}

func (s *SQLiteStore) queryRatings(ctx context.Context, query string, args ...any) ([]recommend.Rating, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	var ratings []recommend.Rating
	for rows.Next() {
		var r recommend.Rating
		var ts int64
		if err := rows.Scan(&r.UserID, &r.MovieID, &r.Value, &ts); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		r.Timestamp = time.Unix(ts, 0)
		ratings = append(ratings, r)
	}
	return ratings, rows.Err()
}

// MovieByID returns the movie, or (nil, nil) when it does not exist.
func (s *SQLiteStore) MovieByID(ctx context.Context, id int) (*recommend.Movie, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, year, overview, genres, avg_rating, rating_count
		FROM movies WHERE id = ?`, id)

	m, err := scanMovie(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query movie %d: %w", id, err)
	}
	return &m, nil
}

// AllMovies returns the full catalog ordered by ID.
func (s *SQLiteStore) AllMovies(ctx context.Context) ([]recommend.Movie, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, year, overview, genres, avg_rating, rating_count
		FROM movies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	var movies []recommend.Movie
	for rows.Next() {
		m, err := scanMovie(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

func scanMovie(scan func(...any) error) (recommend.Movie, error) {
	var m recommend.Movie
	var genres string
	if err := scan(&m.ID, &m.Title, &m.Year, &m.Overview, &genres, &m.AvgRating, &m.RatingCount); err != nil {
		return recommend.Movie{}, err
	}
	if err := json.Unmarshal([]byte(genres), &m.Genres); err != nil {
		return recommend.Movie{}, fmt.Errorf("unmarshal genres for movie %d: %w", m.ID, err)
	}
	return m, nil
}

// MoviesWithEmbedding returns stored embeddings. Pending unflushed writes
// are not included; callers hold those in their cache already.
func (s *SQLiteStore) MoviesWithEmbedding(ctx context.Context) ([]recommend.MovieEmbedding, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT movie_id, model, vector FROM embeddings`)
	if err != nil {
		return nil, fmt.Errorf("query embeddings: %w", err)
	}
	defer rows.Close()

	var embeddings []recommend.MovieEmbedding
	for rows.Next() {
		var e recommend.MovieEmbedding
		var vec string
		if err := rows.Scan(&e.MovieID, &e.Model, &vec); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		if err := json.Unmarshal([]byte(vec), &e.Vector); err != nil {
			return nil, fmt.Errorf("unmarshal vector for movie %d: %w", e.MovieID, err)
		}
		embeddings = append(embeddings, e)
	}
	return embeddings, rows.Err()
}

// WriteEmbedding buffers an embedding for the next FlushEmbeddings call.
func (s *SQLiteStore) WriteEmbedding(ctx context.Context, movieID int, model string, vector []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, pendingEmbedding{movieID: movieID, model: model, vector: vector})
	return nil
}

// FlushEmbeddings commits all buffered embeddings in one transaction.
// The buffer is retained on failure so a retry can flush it.
func (s *SQLiteStore) FlushEmbeddings(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO embeddings (movie_id, model, vector)
		VALUES (?, ?, ?)
		ON CONFLICT(movie_id) DO UPDATE SET
			model = excluded.model,
			vector = excluded.vector`)
	if err != nil {
		return fmt.Errorf("prepare embedding upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range s.pending {
		vec, err := json.Marshal(p.vector)
		if err != nil {
			return fmt.Errorf("marshal vector for movie %d: %w", p.movieID, err)
		}
		if _, err := stmt.ExecContext(ctx, p.movieID, p.model, string(vec)); err != nil {
			return fmt.Errorf("upsert embedding for movie %d: %w", p.movieID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit embeddings: %w", err)
	}
	s.pending = s.pending[:0]
	return nil
}

// WriteAggregates overwrites a movie's precomputed rating aggregates.
func (s *SQLiteStore) WriteAggregates(ctx context.Context, movieID int, avgRating float64, count int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE movies SET avg_rating = ?, rating_count = ? WHERE id = ?`,
		avgRating, count, movieID)
	if err != nil {
		return fmt.Errorf("write aggregates for movie %d: %w", movieID, err)
	}
	return nil
}
