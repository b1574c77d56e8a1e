package providers

import (
	"context"
	"fmt"
	"strings"

	"concierge-llm/internal/domain"
)

type weatherEntry struct {
	TempC     float64
	Condition string
	Humidity  int
	Alerts    []string
}

// StaticWeather sirve datos meteorológicos demo desde un mapa fijo.
type StaticWeather struct {
	data map[string]weatherEntry
}

func NewStaticWeather() *StaticWeather {
	return &StaticWeather{
		data: map[string]weatherEntry{
			"paris":    {TempC: 18.5, Condition: "partly cloudy", Humidity: 62},
			"london":   {TempC: 14.0, Condition: "light rain", Humidity: 78, Alerts: []string{"flood watch until Friday"}},
			"tokyo":    {TempC: 23.1, Condition: "clear", Humidity: 55},
			"new york": {TempC: 21.4, Condition: "sunny", Humidity: 48},
			"sydney":   {TempC: 19.8, Condition: "windy", Humidity: 60, Alerts: []string{"strong wind warning"}},
		},
	}
}

func (w *StaticWeather) lookup(city string) (weatherEntry, error) {
	entry, ok := w.data[strings.ToLower(strings.TrimSpace(city))]
	if !ok {
		return weatherEntry{}, domain.NotFoundError("no weather data for %q", city)
	}
	return entry, nil
}

func (w *StaticWeather) Current(ctx context.Context, city string) (map[string]any, error) {
	entry, err := w.lookup(city)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"city":        city,
		"temperature": entry.TempC,
		"condition":   entry.Condition,
		"humidity":    entry.Humidity,
	}, nil
}

func (w *StaticWeather) Forecast(ctx context.Context, city string, days int) (map[string]any, error) {
	entry, err := w.lookup(city)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 3
	}
	if days > 7 {
		days = 7
	}
	forecast := make([]map[string]any, 0, days)
	for i := 0; i < days; i++ {
		// Demo: deriva una serie estable a partir del valor actual.
		forecast = append(forecast, map[string]any{
			"day":         i + 1,
			"temperature": entry.TempC + float64(i%3) - 1,
			"condition":   entry.Condition,
		})
	}
	return map[string]any{"city": city, "days": days, "forecast": forecast}, nil
}

func (w *StaticWeather) Alerts(ctx context.Context, city string) (map[string]any, error) {
	entry, err := w.lookup(city)
	if err != nil {
		return nil, err
	}
	alerts := entry.Alerts
	if alerts == nil {
		alerts = []string{}
	}
	return map[string]any{"city": city, "alerts": alerts}, nil
}

func (w *StaticWeather) Summary(ctx context.Context, city string) (map[string]any, error) {
	entry, err := w.lookup(city)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"city":    city,
		"summary": fmt.Sprintf("%s, %.1f°C, humidity %d%%", entry.Condition, entry.TempC, entry.Humidity),
	}, nil
}

func (w *StaticWeather) Ping(ctx context.Context) error {
	return ctx.Err()
}
