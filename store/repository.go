package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seo-optimizer/pageaudit/analyzer"
)

// ErrNotFound is returned when an analysis id does not exist
var ErrNotFound = errors.New("analysis not found")

// DB is the subset of pgxpool.Pool the repository needs
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ analyzer.Repository = &Repository{}

// Repository stores analyses in the seo_analyses table
type Repository struct {
	pool DB
}

// NewRepository wraps a connection pool
func NewRepository(pool DB) *Repository {
	return &Repository{pool: pool}
}

// Connect opens a pgx pool and verifies it
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS seo_analyses (
	id          UUID PRIMARY KEY,
	url         TEXT NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	page_count  INTEGER NOT NULL DEFAULT 0,
	score       INTEGER NOT NULL DEFAULT 0,
	keywords    JSONB NOT NULL DEFAULT '[]',
	links       JSONB NOT NULL DEFAULT '[]',
	seo_score   JSONB NOT NULL DEFAULT '{}',
	suggestions JSONB NOT NULL DEFAULT '[]',
	niche       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS seo_analyses_created_at_idx ON seo_analyses (created_at DESC);
`

// Migrate creates the table if missing
func (r *Repository) Migrate(ctx context.Context) error {
	if r.pool == nil {
		return errors.New("database connection not available")
	}
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Save inserts an analysis
func (r *Repository) Save(ctx context.Context, result *analyzer.Result) error {
	if r.pool == nil {
		return errors.New("database connection not available")
	}

	keywords, err := json.Marshal(result.Keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}
	links, err := json.Marshal(result.Links)
	if err != nil {
		return fmt.Errorf("marshal links: %w", err)
	}
	seoScore, err := json.Marshal(result.SeoScore)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}
	suggestions, err := json.Marshal(result.Suggestions)
	if err != nil {
		return fmt.Errorf("marshal suggestions: %w", err)
	}

	query := `
		INSERT INTO seo_analyses
			(id, url, title, description, page_count, score, keywords, links, seo_score, suggestions, niche, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = r.pool.Exec(ctx, query,
		result.ID,
		result.URL,
		result.Title,
		result.Description,
		result.PageCount,
		result.SeoScore.Score,
		keywords,
		links,
		seoScore,
		suggestions,
		result.Niche,
		result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// Get loads a full analysis by id
func (r *Repository) Get(ctx context.Context, id string) (*analyzer.Result, error) {
	if r.pool == nil {
		return nil, errors.New("database connection not available")
	}

	query := `
		SELECT id::text, url, title, description, page_count, keywords, links, seo_score, suggestions, niche, created_at
		FROM seo_analyses
		WHERE id = $1
	`
	var result analyzer.Result
	var keywords, links, seoScore, suggestions []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&result.ID,
		&result.URL,
		&result.Title,
		&result.Description,
		&result.PageCount,
		&keywords,
		&links,
		&seoScore,
		&suggestions,
		&result.Niche,
		&result.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select analysis: %w", err)
	}

	for _, col := range []struct {
		name string
		data []byte
		dst  any
	}{
		{"keywords", keywords, &result.Keywords},
		{"links", links, &result.Links},
		{"seo_score", seoScore, &result.SeoScore},
		{"suggestions", suggestions, &result.Suggestions},
	} {
		if err := json.Unmarshal(col.data, col.dst); err != nil {
			return nil, fmt.Errorf("decode %s: %w", col.name, err)
		}
	}
	if result.Niche != "" {
		result.KeywordSource = analyzer.SourceProvider
	} else {
		result.KeywordSource = analyzer.SourceLocal
	}
	return &result, nil
}

// Summary is one row of the analysis history
type Summary struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Score     int       `json:"score"`
	PageCount int       `json:"pageCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// List returns the analysis history, newest first
func (r *Repository) List(ctx context.Context, limit, offset int) ([]Summary, error) {
	if r.pool == nil {
		return nil, errors.New("database connection not available")
	}

	query := `
		SELECT id::text, url, title, score, page_count, created_at
		FROM seo_analyses
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.URL, &s.Title, &s.Score, &s.PageCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return summaries, nil
}

// Delete removes an analysis
func (r *Repository) Delete(ctx context.Context, id string) error {
	if r.pool == nil {
		return errors.New("database connection not available")
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM seo_analyses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
