package providers

import (
	"context"
	"strings"

	"concierge-llm/internal/domain"
)

type placeEntry struct {
	Country    string
	Population int
	Landmarks  []string
}

// StaticPlaces sirve datos geográficos demo desde un mapa fijo.
type StaticPlaces struct {
	data map[string]placeEntry
}

func NewStaticPlaces() *StaticPlaces {
	return &StaticPlaces{
		data: map[string]placeEntry{
			"paris":    {Country: "France", Population: 2102650, Landmarks: []string{"Eiffel Tower", "Louvre"}},
			"london":   {Country: "United Kingdom", Population: 8799800, Landmarks: []string{"Big Ben", "Tower Bridge"}},
			"tokyo":    {Country: "Japan", Population: 13960000, Landmarks: []string{"Tokyo Tower", "Senso-ji"}},
			"new york": {Country: "United States", Population: 8336817, Landmarks: []string{"Statue of Liberty", "Central Park"}},
			"sydney":   {Country: "Australia", Population: 5312163, Landmarks: []string{"Opera House", "Harbour Bridge"}},
		},
	}
}

func (p *StaticPlaces) lookup(city string) (placeEntry, error) {
	entry, ok := p.data[strings.ToLower(strings.TrimSpace(city))]
	if !ok {
		return placeEntry{}, domain.NotFoundError("no place data for %q", city)
	}
	return entry, nil
}

func (p *StaticPlaces) Info(ctx context.Context, city string) (map[string]any, error) {
	entry, err := p.lookup(city)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"city":       city,
		"country":    entry.Country,
		"population": entry.Population,
		"landmarks":  entry.Landmarks,
	}, nil
}

func (p *StaticPlaces) Country(ctx context.Context, city string) (map[string]any, error) {
	entry, err := p.lookup(city)
	if err != nil {
		return nil, err
	}
	return map[string]any{"city": city, "country": entry.Country}, nil
}

func (p *StaticPlaces) Ping(ctx context.Context) error {
	return ctx.Err()
}
