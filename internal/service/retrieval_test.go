package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"concierge-llm/internal/domain"
	"concierge-llm/internal/llm"
)

func newRetrievalFixture(model *llm.MockClient, knowledge *mockKnowledge) *RetrievalService {
	return NewRetrievalService(model, knowledge, zap.NewNop())
}

func TestDecideQueryParsesStructuredResponse(t *testing.T) {
	model := &llm.MockClient{Response: `{"main_topic":"paris","information_needed":"landmarks","vector_query":"paris landmarks","reasoning":"sights"}`}
	svc := newRetrievalFixture(model, &mockKnowledge{})

	out := svc.DecideQuery(context.Background(), nil, "what should I see in Paris?", nil)
	if out.IsError() {
		t.Fatalf("unexpected error: %v", out.Err())
	}
	decision := out.Value()
	if decision.Query() != "paris landmarks" {
		t.Fatalf("expected parsed vector query, got %q", decision.Query())
	}
}

func TestDecideQueryPropagatesModelFailure(t *testing.T) {
	model := &llm.MockClient{Err: errors.New("model overloaded")}
	svc := newRetrievalFixture(model, &mockKnowledge{})

	out := svc.DecideQuery(context.Background(), nil, "hola", nil)
	if out.IsSuccess() {
		t.Fatalf("expected propagated model failure")
	}
	if domain.KindOf(out.Err()) != domain.ErrKindCollaborator {
		t.Fatalf("expected collaborator kind, got %v", out.Err())
	}
}

func TestDecideQueryNeverReturnsEmptyQuery(t *testing.T) {
	responses := []string{
		"completely unstructured rambling about nothing in particular",
		"```json\nnot even json\n```",
		"   ",
		`{"main_topic":"","vector_query":""}`,
	}
	for _, response := range responses {
		model := &llm.MockClient{Response: response}
		svc := newRetrievalFixture(model, &mockKnowledge{})

		out := svc.DecideQuery(context.Background(), nil, "hola", nil)
		if out.IsError() {
			t.Fatalf("response %q: fallback must not fail, got %v", response, out.Err())
		}
		if out.Value().Query() == "" {
			t.Fatalf("response %q: query must never be empty", response)
		}
	}
}

func TestDecideQueryUsesLastFourTurnsAndContextHint(t *testing.T) {
	model := &llm.MockClient{Response: `{"vector_query":"whatever"}`}
	svc := newRetrievalFixture(model, &mockKnowledge{})

	var history []domain.Message
	for i := 0; i < 7; i++ {
		history = append(history, domain.Message{
			Role:    domain.RoleUser,
			Content: fmt.Sprintf("turn %d", i),
		})
	}

	out := svc.DecideQuery(context.Background(), history, "current question", map[string]string{"city": "Paris"})
	if out.IsError() {
		t.Fatalf("unexpected error: %v", out.Err())
	}

	// system + 4 turnos de historial + mensaje actual.
	if len(model.LastSent) != 6 {
		t.Fatalf("expected 6 prompt messages, got %d", len(model.LastSent))
	}
	if model.LastSent[1].Content != "turn 3" {
		t.Fatalf("expected history window to start at turn 3, got %q", model.LastSent[1].Content)
	}
	last := model.LastSent[len(model.LastSent)-1]
	if !strings.Contains(last.Content, "current question") || !strings.Contains(last.Content, "city=Paris") {
		t.Fatalf("expected current message with context hint, got %q", last.Content)
	}
}

func scoreOf(v float64) *float64 { return &v }

func TestSearchWithFilteringKeepsHighScoresAndUnscored(t *testing.T) {
	knowledge := &mockKnowledge{chunks: []domain.ScoredChunk{
		{Text: "high", Score: scoreOf(0.92), Source: "a"},
		{Text: "low", Score: scoreOf(0.40), Source: "b"},
		{Text: "borderline", Score: scoreOf(0.85), Source: "c"},
		{Text: "unscored", Source: "d"},
	}}
	svc := newRetrievalFixture(&llm.MockClient{}, knowledge)

	out := svc.SearchWithFiltering(context.Background(), "query", 0.85, 20, nil)
	if out.IsError() {
		t.Fatalf("unexpected error: %v", out.Err())
	}
	results := out.Value()
	if len(results) != 3 {
		t.Fatalf("expected 3 kept chunks, got %d: %+v", len(results), results)
	}
	for _, chunk := range results {
		if chunk.Score != nil && *chunk.Score < 0.85 {
			t.Fatalf("chunk below threshold leaked: %+v", chunk)
		}
	}
}

func TestSearchWithFilteringCollaboratorErrorYieldsEmptySuccess(t *testing.T) {
	knowledge := &mockKnowledge{err: errors.New("vector store down")}
	svc := newRetrievalFixture(&llm.MockClient{}, knowledge)

	out := svc.SearchWithFiltering(context.Background(), "query", 0.85, 20, nil)
	if out.IsError() {
		t.Fatalf("absence of knowledge must not be a failure: %v", out.Err())
	}
	if len(out.Value()) != 0 {
		t.Fatalf("expected empty list, got %+v", out.Value())
	}
}

func TestSearchWithFilteringCancelledContextIsHardError(t *testing.T) {
	knowledge := &mockKnowledge{err: context.Canceled}
	svc := newRetrievalFixture(&llm.MockClient{}, knowledge)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := svc.SearchWithFiltering(ctx, "query", 0.85, 20, nil)
	if out.IsSuccess() {
		t.Fatalf("cancelled search must not degrade to empty success")
	}
	if domain.KindOf(out.Err()) != domain.ErrKindCollaborator {
		t.Fatalf("expected collaborator kind, got %v", out.Err())
	}
}

func TestSearchWithFilteringEmptyResultsAreSuccess(t *testing.T) {
	svc := newRetrievalFixture(&llm.MockClient{}, &mockKnowledge{})
	out := svc.SearchWithFiltering(context.Background(), "query", 0.85, 20, nil)
	if out.IsError() || out.Value() == nil || len(out.Value()) != 0 {
		t.Fatalf("expected empty success, got %v / %v", out.Err(), out.Value())
	}
}

func TestSearchWithFilteringCapsUnprivilegedCallers(t *testing.T) {
	var chunks []domain.ScoredChunk
	for i := 0; i < 15; i++ {
		chunks = append(chunks, domain.ScoredChunk{
			Text:  fmt.Sprintf("chunk %d", i),
			Score: scoreOf(0.95),
		})
	}
	knowledge := &mockKnowledge{chunks: chunks}
	svc := newRetrievalFixture(&llm.MockClient{}, knowledge)

	capped := svc.SearchWithFiltering(context.Background(), "query", 0.85, 20, map[string]string{"role": "guest"})
	if len(capped.Value()) != unprivilegedResultCap {
		t.Fatalf("expected cap of %d for non-privileged caller, got %d", unprivilegedResultCap, len(capped.Value()))
	}

	admin := svc.SearchWithFiltering(context.Background(), "query", 0.85, 20, map[string]string{"role": "admin"})
	if len(admin.Value()) != 15 {
		t.Fatalf("expected uncapped results for admin, got %d", len(admin.Value()))
	}

	internal := svc.SearchWithFiltering(context.Background(), "query", 0.85, 20, nil)
	if len(internal.Value()) != 15 {
		t.Fatalf("expected uncapped results for internal call, got %d", len(internal.Value()))
	}
}
