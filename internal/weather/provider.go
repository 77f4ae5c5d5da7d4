package weather

import (
	"context"
	"io"
)

// Provider abstracts the current-conditions source (e.g. OpenWeatherMap).
// Fetch makes at most one request and returns a *FetchError on failure.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, q Query) (Reading, error)
}

// FavoritesStore is the durable set of tracked city names.
// Load never fails; a missing or unreadable document yields an empty set.
type FavoritesStore interface {
	Load() []string
	Save(cities []string) error
	Add(city string) (bool, error)
	Remove(city string) (bool, error)
}

// HistoryStore is the durable append-only observation log.
// Load never fails; a missing or unreadable document yields an empty log.
type HistoryStore interface {
	Load() []Observation
	Append(obs Observation) error
	Clear() error
	Export(w io.Writer) (int, error)
}
