package controllers

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ForecastStore is an in-memory forecast store safe for concurrent use.
type ForecastStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]WeatherForecast
	order []uuid.UUID
}

// NewForecastStore returns a store holding seed in order.
func NewForecastStore(seed ...WeatherForecast) *ForecastStore {
	s := &ForecastStore{items: make(map[uuid.UUID]WeatherForecast, len(seed))}
	for _, f := range seed {
		s.Add(f)
	}
	return s
}

// List returns all forecasts in insertion order.
func (s *ForecastStore) List() []WeatherForecast {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]WeatherForecast, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// Get returns the forecast with id.
func (s *ForecastStore) Get(id uuid.UUID) (WeatherForecast, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.items[id]
	return f, ok
}

// Add stores f, replacing any forecast with the same id.
func (s *ForecastStore) Add(f WeatherForecast) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[f.ID]; !ok {
		s.order = append(s.order, f.ID)
	}
	s.items[f.ID] = f
}

// Len returns the number of stored forecasts.
func (s *ForecastStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.order)
}

// GenerateForecasts returns n forecasts for the days following start with
// random temperatures between -20 and 55 degrees Celsius.
func GenerateForecasts(n int, start time.Time, rnd *rand.Rand) []WeatherForecast {
	out := make([]WeatherForecast, 0, n)
	day := start.UTC().Truncate(24 * time.Hour)

	for i := 1; i <= n; i++ {
		c := rnd.IntN(75) - 20
		out = append(out, WeatherForecast{
			ID:           uuid.New(),
			Date:         day.AddDate(0, 0, i),
			TemperatureC: c,
			TemperatureF: Fahrenheit(c),
			Summary:      Summary(rnd.IntN(len(summaryNames))),
		})
	}
	return out
}
