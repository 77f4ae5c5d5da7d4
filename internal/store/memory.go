package store

import (
	"io"
	"slices"
	"sync"

	"github.com/i474232898/weather-vibe/internal/weather"
)

// MemoryFavorites is a concurrency-safe in-memory favorites store. Nothing
// survives the process.
type MemoryFavorites struct {
	mu     sync.RWMutex
	cities []string
}

var _ weather.FavoritesStore = (*MemoryFavorites)(nil)

// NewMemoryFavorites creates a store seeded with cities (deduplicated).
func NewMemoryFavorites(cities ...string) *MemoryFavorites {
	return &MemoryFavorites{cities: dedupe(cities)}
}

func (m *MemoryFavorites) Load() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.cities)
}

func (m *MemoryFavorites) Save(cities []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cities = dedupe(cities)
	return nil
}

func (m *MemoryFavorites) Add(city string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if city == "" || slices.Contains(m.cities, city) {
		return false, nil
	}
	m.cities = append(m.cities, city)
	return true, nil
}

func (m *MemoryFavorites) Remove(city string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.Index(m.cities, city)
	if i < 0 {
		return false, nil
	}
	m.cities = slices.Delete(m.cities, i, i+1)
	return true, nil
}

// MemoryHistory is a concurrency-safe in-memory observation log with the
// same append-only semantics as History.
type MemoryHistory struct {
	mu           sync.RWMutex
	observations []weather.Observation
}

var _ weather.HistoryStore = (*MemoryHistory)(nil)

// NewMemoryHistory creates an empty in-memory log.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

func (m *MemoryHistory) Load() []weather.Observation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]weather.Observation, len(m.observations))
	copy(out, m.observations)
	return out
}

func (m *MemoryHistory) Append(o weather.Observation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observations = append(m.observations, o)
	return nil
}

func (m *MemoryHistory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observations = nil
	return nil
}

// Export writes the log in the same CSV form as History.
func (m *MemoryHistory) Export(w io.Writer) (int, error) {
	obs := m.Load()
	records := make([][]string, 0, len(obs))
	for _, o := range obs {
		records = append(records, formatRecord(o))
	}
	if err := writeRecords(w, records); err != nil {
		return 0, err
	}
	return len(records), nil
}
