package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"concierge-llm/internal/domain"
)

// KnowledgeRepository persiste y busca chunks de conocimiento por similitud.
type KnowledgeRepository interface {
	Insert(ctx context.Context, text, source string, embedding pgvector.Vector) error
	SearchByEmbedding(ctx context.Context, embedding pgvector.Vector, k int) ([]domain.ScoredChunk, error)
	Count(ctx context.Context) (int, error)
	Sources(ctx context.Context) ([]string, error)
}

type PgKnowledgeRepository struct {
	pool *pgxpool.Pool
}

func NewPgKnowledgeRepository(pool *pgxpool.Pool) *PgKnowledgeRepository {
	return &PgKnowledgeRepository{pool: pool}
}

func (r *PgKnowledgeRepository) Insert(ctx context.Context, text, source string, embedding pgvector.Vector) error {
	const query = `
		INSERT INTO knowledge_chunks (id, content, source, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		uuid.NewString(),
		text,
		source,
		embedding,
		time.Now().UTC(),
	)
	return err
}

// SearchByEmbedding ordena por distancia coseno y expone 1-distancia como
// score de similitud en el read model.
func (r *PgKnowledgeRepository) SearchByEmbedding(ctx context.Context, embedding pgvector.Vector, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		k = 5
	}
	const query = `
		SELECT content, source, 1 - (embedding <=> $1) AS score
		FROM knowledge_chunks
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, embedding, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanChunks(rows)
}

func (r *PgKnowledgeRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM knowledge_chunks`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PgKnowledgeRepository) Sources(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT source FROM knowledge_chunks ORDER BY source ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sources, nil
}

func scanChunks(rows pgxRows) ([]domain.ScoredChunk, error) {
	var chunks []domain.ScoredChunk
	for rows.Next() {
		var c domain.ScoredChunk
		var score float64
		if err := rows.Scan(&c.Text, &c.Source, &score); err != nil {
			return nil, err
		}
		c.Score = &score
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return chunks, nil
}

// pgxRows is a minimal interface to allow scanning from pgx rows and simplify testing.
type pgxRows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
	Close()
}
