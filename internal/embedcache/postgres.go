package embedcache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists the embedding cache in a PostgreSQL table, one row
// per (template id, model) pair with the vector stored as JSONB.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to PostgreSQL and ensures the cache table exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS template_embeddings (
			template_id TEXT NOT NULL,
			model       TEXT NOT NULL,
			dimension   INT NOT NULL,
			embedding   JSONB NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (template_id, model)
		)
	`
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create template_embeddings table: %w", err)
	}
	return nil
}

// Load retrieves all embeddings recorded for the given model.
func (s *PostgresStore) Load(ctx context.Context, model string) (map[string][]float32, error) {
	query := `
		SELECT template_id, embedding
		FROM template_embeddings
		WHERE model = $1
	`
	rows, err := s.pool.Query(ctx, query, model)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer rows.Close()

	embeddings := make(map[string][]float32)
	for rows.Next() {
		var templateID string
		var embeddingJSON []byte
		if err := rows.Scan(&templateID, &embeddingJSON); err != nil {
			return nil, fmt.Errorf("failed to scan embedding row: %w", err)
		}

		var vec []float32
		if err := json.Unmarshal(embeddingJSON, &vec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal embedding for %s: %w", templateID, err)
		}
		embeddings[templateID] = vec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate embeddings: %w", err)
	}

	return embeddings, nil
}

// Save upserts every cached embedding for the given model.
func (s *PostgresStore) Save(ctx context.Context, model string, embeddings map[string][]float32) error {
	query := `
		INSERT INTO template_embeddings (template_id, model, dimension, embedding, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (template_id, model)
		DO UPDATE SET dimension = EXCLUDED.dimension, embedding = EXCLUDED.embedding, updated_at = now()
	`

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for templateID, vec := range embeddings {
		embeddingJSON, err := json.Marshal(vec)
		if err != nil {
			return fmt.Errorf("failed to marshal embedding for %s: %w", templateID, err)
		}
		if _, err := tx.Exec(ctx, query, templateID, model, len(vec), embeddingJSON); err != nil {
			return fmt.Errorf("failed to upsert embedding for %s: %w", templateID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit embeddings: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ensure PostgresStore implements CacheStore
var _ CacheStore = (*PostgresStore)(nil)
