package providers

import (
	"context"
	"strings"
	"time"

	"concierge-llm/internal/domain"
)

type clockEntry struct {
	Zone   string
	Offset int // horas respecto de UTC; demo sin DST
}

// StaticClock sirve hora y zona horaria demo con offsets fijos.
type StaticClock struct {
	zones map[string]clockEntry
	now   func() time.Time
}

func NewStaticClock() *StaticClock {
	return &StaticClock{
		zones: map[string]clockEntry{
			"paris":    {Zone: "Europe/Paris", Offset: 1},
			"london":   {Zone: "Europe/London", Offset: 0},
			"tokyo":    {Zone: "Asia/Tokyo", Offset: 9},
			"new york": {Zone: "America/New_York", Offset: -5},
			"sydney":   {Zone: "Australia/Sydney", Offset: 10},
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (c *StaticClock) lookup(city string) (clockEntry, error) {
	entry, ok := c.zones[strings.ToLower(strings.TrimSpace(city))]
	if !ok {
		return clockEntry{}, domain.NotFoundError("no timezone data for %q", city)
	}
	return entry, nil
}

func (c *StaticClock) localTime(entry clockEntry) time.Time {
	return c.now().Add(time.Duration(entry.Offset) * time.Hour)
}

func (c *StaticClock) Current(ctx context.Context, city string) (map[string]any, error) {
	entry, err := c.lookup(city)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"city":       city,
		"local_time": c.localTime(entry).Format("15:04"),
		"timezone":   entry.Zone,
	}, nil
}

func (c *StaticClock) Timezone(ctx context.Context, city string) (map[string]any, error) {
	entry, err := c.lookup(city)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"city":       city,
		"timezone":   entry.Zone,
		"utc_offset": entry.Offset,
	}, nil
}

func (c *StaticClock) WorldClock(ctx context.Context) (map[string]any, error) {
	clocks := make(map[string]string, len(c.zones))
	for city, entry := range c.zones {
		clocks[city] = c.localTime(entry).Format("15:04")
	}
	return map[string]any{"clocks": clocks}, nil
}

func (c *StaticClock) Ping(ctx context.Context) error {
	return ctx.Err()
}
