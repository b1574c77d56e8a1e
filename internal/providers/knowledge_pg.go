package providers

import (
	"context"
	"fmt"
	"strings"

	pgvector "github.com/pgvector/pgvector-go"

	"concierge-llm/internal/domain"
	"concierge-llm/internal/llm"
	"concierge-llm/internal/repository"
)

// VectorKnowledge implementa Knowledge sobre Postgres+pgvector: vectoriza el
// texto con el embedder y delega la similitud al repositorio.
type VectorKnowledge struct {
	repo     repository.KnowledgeRepository
	embedder llm.EmbeddingClient
}

func NewVectorKnowledge(repo repository.KnowledgeRepository, embedder llm.EmbeddingClient) *VectorKnowledge {
	return &VectorKnowledge{repo: repo, embedder: embedder}
}

func (k *VectorKnowledge) Search(ctx context.Context, query string, limit int) ([]domain.ScoredChunk, error) {
	if strings.TrimSpace(query) == "" {
		return []domain.ScoredChunk{}, nil
	}

	vec, err := k.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return k.repo.SearchByEmbedding(ctx, pgvector.NewVector(vec), limit)
}

func (k *VectorKnowledge) Add(ctx context.Context, text, source string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ValidationError("knowledge text must not be empty")
	}
	if strings.TrimSpace(source) == "" {
		source = "user"
	}

	vec, err := k.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed chunk: %w", err)
	}
	return k.repo.Insert(ctx, text, source, pgvector.NewVector(vec))
}

func (k *VectorKnowledge) Stats(ctx context.Context) (map[string]any, error) {
	count, err := k.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	sources, err := k.repo.Sources(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"chunks": count, "topics": len(sources)}, nil
}

func (k *VectorKnowledge) Topics(ctx context.Context) ([]string, error) {
	return k.repo.Sources(ctx)
}

func (k *VectorKnowledge) Ping(ctx context.Context) error {
	_, err := k.repo.Count(ctx)
	return err
}
