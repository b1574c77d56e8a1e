package providers

import (
	"context"
	"sort"
	"strings"
	"sync"

	"concierge-llm/internal/domain"
)

// StaticKnowledge es un índice en memoria con ranking por solapamiento de
// términos. Sirve de colaborador demo del orquestador y del pipeline de
// retrieval cuando no hay Postgres con pgvector disponible.
type StaticKnowledge struct {
	mu     sync.RWMutex
	chunks []domain.ScoredChunk
}

func NewStaticKnowledge() *StaticKnowledge {
	k := &StaticKnowledge{}
	seed := []struct{ text, source string }{
		{"Paris is the capital of France, known for the Eiffel Tower and its museums.", "cities"},
		{"London sits on the Thames and is the capital of the United Kingdom.", "cities"},
		{"Tokyo is the most populous metropolitan area in the world.", "cities"},
		{"The Louvre in Paris holds the Mona Lisa among thirty five thousand works.", "museums"},
		{"Sydney Opera House hosts more than one thousand five hundred performances each year.", "landmarks"},
		{"New York is often called the city that never sleeps.", "cities"},
	}
	for _, s := range seed {
		k.chunks = append(k.chunks, domain.ScoredChunk{Text: s.text, Source: s.source})
	}
	return k
}

// Search rankea por fracción de términos del query presentes en el texto.
func (k *StaticKnowledge) Search(ctx context.Context, query string, limit int) ([]domain.ScoredChunk, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return []domain.ScoredChunk{}, nil
	}
	if limit <= 0 {
		limit = 5
	}

	k.mu.RLock()
	defer k.mu.RUnlock()

	var results []domain.ScoredChunk
	for _, chunk := range k.chunks {
		text := strings.ToLower(chunk.Text)
		matched := 0
		for _, term := range terms {
			if strings.Contains(text, term) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		score := float64(matched) / float64(len(terms))
		results = append(results, domain.ScoredChunk{Text: chunk.Text, Source: chunk.Source, Score: &score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return *results[i].Score > *results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (k *StaticKnowledge) Add(ctx context.Context, text, source string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ValidationError("knowledge text must not be empty")
	}
	if strings.TrimSpace(source) == "" {
		source = "user"
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.chunks = append(k.chunks, domain.ScoredChunk{Text: text, Source: source})
	return nil
}

func (k *StaticKnowledge) Stats(ctx context.Context) (map[string]any, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	sources := map[string]int{}
	for _, c := range k.chunks {
		sources[c.Source]++
	}
	return map[string]any{"chunks": len(k.chunks), "sources": sources}, nil
}

func (k *StaticKnowledge) Topics(ctx context.Context) ([]string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	seen := map[string]bool{}
	var topics []string
	for _, c := range k.chunks {
		if !seen[c.Source] {
			seen[c.Source] = true
			topics = append(topics, c.Source)
		}
	}
	sort.Strings(topics)
	return topics, nil
}

func (k *StaticKnowledge) Ping(ctx context.Context) error {
	return ctx.Err()
}
