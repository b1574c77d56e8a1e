// Package providers define los colaboradores de dominio del orquestador.
// Cada componente recibe sus colaboradores por constructor: acá no hay
// registry global ni descubrimiento reflectivo, solo interfaces cerradas.
package providers

import (
	"context"

	"concierge-llm/internal/domain"
)

// Weather responde consultas meteorológicas por ciudad.
type Weather interface {
	Current(ctx context.Context, city string) (map[string]any, error)
	Forecast(ctx context.Context, city string, days int) (map[string]any, error)
	Alerts(ctx context.Context, city string) (map[string]any, error)
	Summary(ctx context.Context, city string) (map[string]any, error)
	Ping(ctx context.Context) error
}

// Clock responde consultas de hora y zona horaria por ciudad.
type Clock interface {
	Current(ctx context.Context, city string) (map[string]any, error)
	Timezone(ctx context.Context, city string) (map[string]any, error)
	WorldClock(ctx context.Context) (map[string]any, error)
	Ping(ctx context.Context) error
}

// Places responde datos geográficos por ciudad.
type Places interface {
	Info(ctx context.Context, city string) (map[string]any, error)
	Country(ctx context.Context, city string) (map[string]any, error)
	Ping(ctx context.Context) error
}

// Knowledge expone la búsqueda semántica y la única escritura de dominio
// permitida (Add). Las lecturas se asumen idempotentes y sin efectos.
type Knowledge interface {
	Search(ctx context.Context, query string, limit int) ([]domain.ScoredChunk, error)
	Add(ctx context.Context, text, source string) error
	Stats(ctx context.Context) (map[string]any, error)
	Topics(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}
