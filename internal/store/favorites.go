package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/i474232898/weather-vibe/internal/logging"
	"github.com/i474232898/weather-vibe/internal/weather"
)

// favoritesDocument is the on-disk shape: {"cities": [...]}.
type favoritesDocument struct {
	Cities []string `json:"cities"`
}

// Favorites is the JSON-file favorites store.
//
// Every mutation reads the whole document, changes it in memory and atomically
// rewrites it. The mutex serialises writers in this process only; two
// processes sharing a file can still lose an update.
type Favorites struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

var _ weather.FavoritesStore = (*Favorites)(nil)

// NewFavorites creates a favorites store backed by path.
func NewFavorites(path string, logger *slog.Logger) *Favorites {
	return &Favorites{
		path:   path,
		logger: logging.Default(logger).With("component", "favorites", "path", path),
	}
}

// Path returns the backing file.
func (f *Favorites) Path() string {
	return f.path
}

// Load returns the tracked cities, or an empty set when the document is
// missing or unreadable.
func (f *Favorites) Load() []string {
	cities, _ := f.LoadWithStatus()
	return cities
}

// LoadWithStatus is Load plus whether the document existed and parsed.
func (f *Favorites) LoadWithStatus() ([]string, LoadStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *Favorites) load() ([]string, LoadStatus) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.logger.Warn("favorites unreadable, using empty set", "error", err)
			return []string{}, StatusCorrupt
		}
		return []string{}, StatusMissing
	}

	var doc favoritesDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		f.logger.Warn("favorites unparsable, using empty set", "error", err)
		return []string{}, StatusCorrupt
	}
	return dedupe(doc.Cities), StatusLoaded
}

// Save replaces the document with cities, duplicates collapsed.
func (f *Favorites) Save(cities []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save(cities)
}

func (f *Favorites) save(cities []string) error {
	doc := favoritesDocument{Cities: dedupe(cities)}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal favorites: %w", err)
	}
	err = writeAtomic(f.path, data, func(b []byte) error {
		var check favoritesDocument
		return json.Unmarshal(b, &check)
	})
	if err != nil {
		return fmt.Errorf("save favorites: %w", err)
	}
	return nil
}

// Add inserts city and persists. An empty name or one already present
// (exact, case-sensitive match) is a no-op.
func (f *Favorites) Add(city string) (bool, error) {
	if city == "" {
		return false, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	cities, _ := f.load()
	if slices.Contains(cities, city) {
		return false, nil
	}
	if err := f.save(append(cities, city)); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes city and persists. A city that is not present is a no-op.
func (f *Favorites) Remove(city string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cities, _ := f.load()
	if !slices.Contains(cities, city) {
		return false, nil
	}
	kept := make([]string, 0, len(cities)-1)
	for _, c := range cities {
		if c != city {
			kept = append(kept, c)
		}
	}
	if err := f.save(kept); err != nil {
		return false, err
	}
	return true, nil
}

// dedupe drops repeated names, keeping the first occurrence.
func dedupe(cities []string) []string {
	seen := make(map[string]struct{}, len(cities))
	out := make([]string, 0, len(cities))
	for _, c := range cities {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
