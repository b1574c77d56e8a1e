package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"concierge-llm/internal/domain"
	"concierge-llm/internal/llm"
	"concierge-llm/internal/outcome"
	"concierge-llm/internal/pipeline"
	"concierge-llm/internal/providers"
)

// Turnos de historial incluidos en el prompt de análisis.
const analysisHistoryTurns = 4

// Tope de resultados para llamadores sin privilegio.
const unprivilegedResultCap = 10

const decisionPrompt = `Analyze the conversation and the current message. Decide what to retrieve
from the knowledge base before answering. Respond ONLY with a JSON object:
{"main_topic": "...", "information_needed": "...", "vector_query": "...", "reasoning": "..."}`

// RetrievalService separa "qué preguntar" (un juicio del modelo que puede
// fallar y debe degradar con gracia) de "cómo filtrar" (un umbral numérico
// determinístico, testeable sin modelo).
type RetrievalService struct {
	completions llm.CompletionClient
	knowledge   providers.Knowledge
	parser      DecisionParser
	logger      *zap.Logger
}

func NewRetrievalService(completions llm.CompletionClient, knowledge providers.Knowledge, logger *zap.Logger) *RetrievalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetrievalService{
		completions: completions,
		knowledge:   knowledge,
		parser:      DefaultDecisionParser,
		logger:      logger,
	}
}

type decisionInput struct {
	history     []domain.Message
	current     string
	userContext map[string]string
}

// DecideQuery deriva la decisión de retrieval desde los últimos turnos y el
// mensaje actual. El fallo del modelo se propaga como error; una respuesta
// imposible de parsear NO: el fallback determinístico siempre produce una
// decisión y Query() nunca devuelve vacío.
func (s *RetrievalService) DecideQuery(ctx context.Context, history []domain.Message, currentMessage string, userContext map[string]string) outcome.Outcome[domain.RetrievalDecision, error] {
	buildPrompt := pipeline.Lift[decisionInput, []llm.ChatMessage, error](
		func(_ context.Context, in decisionInput) []llm.ChatMessage {
			return s.buildAnalysisMessages(in)
		})

	callModel := pipeline.Step[[]llm.ChatMessage, string, error](
		func(ctx context.Context, messages []llm.ChatMessage) outcome.Outcome[string, error] {
			raw, err := s.completions.Complete(ctx, messages)
			if err != nil {
				return outcome.Failure[string, error](
					domain.CollaboratorError("retrieval analysis completion", err))
			}
			return outcome.Success[string, error](raw)
		})

	parse := pipeline.Lift[string, domain.RetrievalDecision, error](
		func(_ context.Context, raw string) domain.RetrievalDecision {
			decision := s.parser.ParseDecisionSafe(raw)
			if decision.Reasoning == fallbackReasoning {
				s.logger.Debug("retrieval decision fell back to raw text",
					zap.Int("raw_length", len(raw)))
			}
			return decision
		})

	run := pipeline.Then(pipeline.Then(buildPrompt, callModel), parse)
	return run(ctx, decisionInput{history: history, current: currentMessage, userContext: userContext})
}

func (s *RetrievalService) buildAnalysisMessages(in decisionInput) []llm.ChatMessage {
	messages := []llm.ChatMessage{{Role: domain.RoleSystem, Content: decisionPrompt}}

	history := in.history
	if len(history) > analysisHistoryTurns {
		history = history[len(history)-analysisHistoryTurns:]
	}
	for _, turn := range history {
		messages = append(messages, llm.ChatMessage{Role: turn.Role, Content: turn.Content})
	}

	current := in.current
	if hint := compactUserContext(in.userContext); hint != "" {
		current = fmt.Sprintf("%s\n(user context: %s)", current, hint)
	}
	messages = append(messages, llm.ChatMessage{Role: domain.RoleUser, Content: current})
	return messages
}

func compactUserContext(userContext map[string]string) string {
	if len(userContext) == 0 {
		return ""
	}
	parts := make([]string, 0, len(userContext))
	for k, v := range userContext {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, "; ")
}

// SearchWithFiltering delega en el colaborador de búsqueda y filtra por
// score. La ausencia de conocimiento no es fallo: tanto un error del
// colaborador como cero resultados producen lista vacía exitosa; una
// cancelación de contexto en vuelo sí es error duro. Entradas
// sin score pasan el filtro incondicionalmente; un llamador sin privilegio
// queda capado a las primeras 10.
func (s *RetrievalService) SearchWithFiltering(ctx context.Context, query string, scoreThreshold float64, limit int, userContext map[string]string) outcome.Outcome[[]domain.ScoredChunk, error] {
	empty := []domain.ScoredChunk{}

	chunks, err := s.knowledge.Search(ctx, query, limit)
	if err != nil {
		if ctx.Err() != nil {
			return outcome.Failure[[]domain.ScoredChunk, error](
				domain.CollaboratorError("search cancelled", ctx.Err()))
		}
		s.logger.Warn("knowledge search degraded to empty results",
			zap.String("query", query), zap.Error(err))
		return outcome.Success[[]domain.ScoredChunk, error](empty)
	}
	if len(chunks) == 0 {
		return outcome.Success[[]domain.ScoredChunk, error](empty)
	}

	filtered := make([]domain.ScoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk.Score != nil && *chunk.Score < scoreThreshold {
			continue
		}
		filtered = append(filtered, chunk)
	}

	if !privilegedCaller(userContext) && len(filtered) > unprivilegedResultCap {
		filtered = filtered[:unprivilegedResultCap]
	}
	return outcome.Success[[]domain.ScoredChunk, error](filtered)
}

// privilegedCaller: sin contexto de usuario la llamada se asume interna y
// sin cap; con contexto, solo role=admin escapa al tope.
func privilegedCaller(userContext map[string]string) bool {
	if userContext == nil {
		return true
	}
	return userContext["role"] == "admin"
}
