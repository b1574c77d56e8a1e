package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"concierge-llm/internal/domain"
	"concierge-llm/internal/outcome"
	"concierge-llm/internal/pipeline"
	"concierge-llm/internal/providers"
)

// MaxEntityLength acota el nombre de entidad aceptado por el orquestador.
const MaxEntityLength = 100

const defaultKnowledgeResults = 3

// Orchestrator coordina los colaboradores de dominio detrás de dos entradas:
// el aggregate tolerante a fallos parciales y el router de request único.
type Orchestrator struct {
	weather   providers.Weather
	clock     providers.Clock
	places    providers.Places
	knowledge providers.Knowledge
	registry  *SessionRegistry
	logger    *zap.Logger

	validateEntity pipeline.Stage[string, error]
}

func NewOrchestrator(
	weather providers.Weather,
	clock providers.Clock,
	places providers.Places,
	knowledge providers.Knowledge,
	registry *SessionRegistry,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		weather:        weather,
		clock:          clock,
		places:         places,
		knowledge:      knowledge,
		registry:       registry,
		logger:         logger,
		validateEntity: entityValidator(),
	}
}

// entityValidator compone una sola vez los dos validadores estándar que
// preceden a toda llamada de colaborador.
func entityValidator() pipeline.Stage[string, error] {
	nonEmpty := pipeline.Validate[string, error](func(s string) bool {
		trimmed := strings.TrimSpace(s)
		return trimmed != "" && len(s) < MaxEntityLength
	}, domain.ValidationError("entity must be non-empty and under %d characters", MaxEntityLength))

	format := pipeline.Validate[string, error](func(s string) bool {
		for _, r := range s {
			if !unicode.IsLetter(r) && r != ' ' && r != '-' {
				return false
			}
		}
		return true
	}, domain.ValidationError("entity may only contain letters, spaces and hyphens"))

	return pipeline.Chain(nonEmpty, format)
}

// GatherAggregate consulta los cuatro colaboradores para una entidad y
// fusiona sus resultados. El fallo de un campo degrada la respuesta (queda
// como "<campo>_error") pero nunca la aborta: si la entidad pasó la
// validación, el Outcome es success. Una cancelación de contexto en vuelo
// sí es error duro, nunca un aggregate parcial como éxito.
func (o *Orchestrator) GatherAggregate(ctx context.Context, entity, sessionID string) outcome.Outcome[domain.Aggregate, error] {
	if validated := o.validateEntity(entity); validated.IsError() {
		return outcome.Failure[domain.Aggregate, error](validated.Err())
	}

	agg := domain.Aggregate{"entity": entity}

	type fieldCall struct {
		field string
		fetch func() (any, error)
	}
	calls := []fieldCall{
		{"weather", func() (any, error) { return o.weather.Summary(ctx, entity) }},
		{"time", func() (any, error) { return o.clock.Current(ctx, entity) }},
		{"country", func() (any, error) { return o.places.Country(ctx, entity) }},
		{"knowledge", func() (any, error) {
			return o.knowledge.Search(ctx, entity, defaultKnowledgeResults)
		}},
	}

	for _, call := range calls {
		if err := ctx.Err(); err != nil {
			return outcome.Failure[domain.Aggregate, error](
				domain.CollaboratorError("aggregate cancelled", err))
		}
		value, err := call.fetch()
		if err != nil {
			if ctx.Err() != nil {
				return outcome.Failure[domain.Aggregate, error](
					domain.CollaboratorError("aggregate cancelled", ctx.Err()))
			}
			o.logger.Warn("collaborator degraded",
				zap.String("field", call.field), zap.String("entity", entity), zap.Error(err))
			agg.SetError(call.field, err)
			continue
		}
		agg.Set(call.field, value)
	}

	if sessionID != "" && o.registry != nil {
		o.persistAggregateExchange(ctx, agg, entity, sessionID)
	}

	return outcome.Success[domain.Aggregate, error](agg)
}

// persistAggregateExchange guarda un par user/assistant que resume el
// aggregate. Es best-effort: un fallo queda registrado en la respuesta y en
// el log, sin cambiar el Outcome del aggregate.
func (o *Orchestrator) persistAggregateExchange(ctx context.Context, agg domain.Aggregate, entity, sessionID string) {
	exchange := []domain.Message{
		{Role: domain.RoleUser, Content: fmt.Sprintf("Tell me about %s", entity)},
		{Role: domain.RoleAssistant, Content: summarizeAggregate(agg, entity)},
	}
	saved := o.registry.SaveConversation(ctx, exchange, sessionID)
	if saved.IsError() {
		o.logger.Warn("aggregate persistence failed",
			zap.String("session_id", sessionID), zap.Error(saved.Err()))
		agg.SetError("session", saved.Err())
		return
	}
	agg.Set("session_id", sessionID)
}

func summarizeAggregate(agg domain.Aggregate, entity string) string {
	var parts []string
	for _, field := range []string{"weather", "time", "country", "knowledge"} {
		if agg.HasError(field) {
			parts = append(parts, field+" unavailable")
			continue
		}
		parts = append(parts, field+" ok")
	}
	return fmt.Sprintf("Aggregate for %s: %s", entity, strings.Join(parts, ", "))
}

// RouteRequest despacha a exactamente un colaborador según el requestType
// enumerado "<dominio>.<operación>". Un tipo no reconocido es error duro.
func (o *Orchestrator) RouteRequest(ctx context.Context, requestType string, params map[string]string) outcome.Outcome[any, error] {
	domainName, operation, found := strings.Cut(strings.TrimSpace(requestType), ".")
	if !found {
		return outcome.Failure[any, error](
			domain.ValidationError("request type must look like <domain>.<operation>, got %q", requestType))
	}

	entity := params["city"]
	if entity == "" {
		entity = params["entity"]
	}

	requireEntity := func() outcome.Outcome[any, error] {
		if validated := o.validateEntity(entity); validated.IsError() {
			return outcome.Failure[any, error](validated.Err())
		}
		return outcome.Success[any, error](nil)
	}

	wrap := func(value any, err error) outcome.Outcome[any, error] {
		if err != nil {
			return outcome.Failure[any, error](err)
		}
		return outcome.Success[any, error](value)
	}

	switch domainName {
	case "weather":
		if v := requireEntity(); v.IsError() {
			return v
		}
		switch operation {
		case "current":
			return wrap(o.weather.Current(ctx, entity))
		case "forecast":
			days := parsePositiveInt(params["days"], 3)
			return wrap(o.weather.Forecast(ctx, entity, days))
		case "alerts":
			return wrap(o.weather.Alerts(ctx, entity))
		case "summary":
			return wrap(o.weather.Summary(ctx, entity))
		}
		return unsupported("weather", operation)

	case "time":
		switch operation {
		case "worldclock":
			return wrap(o.clock.WorldClock(ctx))
		case "current", "timezone":
			if v := requireEntity(); v.IsError() {
				return v
			}
			if operation == "current" {
				return wrap(o.clock.Current(ctx, entity))
			}
			return wrap(o.clock.Timezone(ctx, entity))
		}
		return unsupported("time", operation)

	case "place":
		if v := requireEntity(); v.IsError() {
			return v
		}
		switch operation {
		case "info":
			return wrap(o.places.Info(ctx, entity))
		case "country":
			return wrap(o.places.Country(ctx, entity))
		}
		return unsupported("place", operation)

	case "knowledge":
		switch operation {
		case "search":
			query := strings.TrimSpace(params["query"])
			if query == "" {
				return outcome.Failure[any, error](
					domain.ValidationError("knowledge search requires a query"))
			}
			limit := parsePositiveInt(params["limit"], 5)
			return wrap(o.knowledge.Search(ctx, query, limit))
		case "add":
			err := o.knowledge.Add(ctx, params["text"], params["source"])
			if err != nil {
				return outcome.Failure[any, error](err)
			}
			return outcome.Success[any, error](map[string]any{"added": true})
		case "stats":
			return wrap(o.knowledge.Stats(ctx))
		case "topics":
			return wrap(o.knowledge.Topics(ctx))
		}
		return unsupported("knowledge", operation)
	}

	return outcome.Failure[any, error](
		domain.ValidationError("unknown request domain: %q", domainName))
}

func unsupported(domainName, operation string) outcome.Outcome[any, error] {
	return outcome.Failure[any, error](
		domain.ValidationError("Unsupported %s request type: %s", domainName, operation))
}

func parsePositiveInt(raw string, fallback int) int {
	n := 0
	for _, r := range raw {
		if r < '0' || r > '9' {
			return fallback
		}
		n = n*10 + int(r-'0')
	}
	if raw == "" || n <= 0 {
		return fallback
	}
	return n
}

// ServiceHealth sondea cada colaborador con su capability call barata. Un
// panic durante el probe marca unhealthy en vez de propagarse.
func (o *Orchestrator) ServiceHealth(ctx context.Context) outcome.Outcome[domain.HealthReport, error] {
	probes := map[string]func(context.Context) error{
		"weather":   o.weather.Ping,
		"time":      o.clock.Ping,
		"place":     o.places.Ping,
		"knowledge": o.knowledge.Ping,
	}

	report := domain.HealthReport{
		Healthy:       true,
		Collaborators: make(map[string]bool, len(probes)),
	}
	for name, ping := range probes {
		healthy := o.probe(ctx, name, ping)
		report.Collaborators[name] = healthy
		if !healthy {
			report.Healthy = false
		}
	}
	return outcome.Success[domain.HealthReport, error](report)
}

func (o *Orchestrator) probe(ctx context.Context, name string, ping func(context.Context) error) (healthy bool) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("health probe panicked",
				zap.String("collaborator", name), zap.Any("panic", r))
			healthy = false
		}
	}()

	if err := ping(ctx); err != nil {
		o.logger.Warn("health probe failed",
			zap.String("collaborator", name), zap.Error(err))
		return false
	}
	return true
}

// ServiceCapabilities devuelve el mapa estático colaborador → operaciones.
// No hace llamadas y no puede fallar.
func (o *Orchestrator) ServiceCapabilities() map[string][]string {
	return map[string][]string{
		"weather":   {"current", "forecast", "alerts", "summary"},
		"time":      {"current", "timezone", "worldclock"},
		"place":     {"info", "country"},
		"knowledge": {"search", "add", "stats", "topics"},
	}
}
