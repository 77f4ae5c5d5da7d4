// Package home resolves where weather-vibe keeps its files.
//
// Layout:
//
//	<root>/
//	  favorite_cities.json   (tracked cities)
//	  weather_history.csv    (observation log)
package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	FavoritesFile = "favorite_cities.json"
	HistoryFile   = "weather_history.csv"
)

// Dir is a weather-vibe data directory.
type Dir struct {
	root string
}

// New creates a Dir with an explicit root path.
func New(root string) Dir {
	return Dir{root: root}
}

// Default returns the platform config location, e.g. ~/.config/weather-vibe on Linux.
func Default() (Dir, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return Dir{}, fmt.Errorf("determine config directory: %w", err)
	}
	return Dir{root: filepath.Join(base, "weather-vibe")}, nil
}

// Root returns the directory path.
func (d Dir) Root() string {
	return d.root
}

// FavoritesPath returns the path of the favorites document.
func (d Dir) FavoritesPath() string {
	return filepath.Join(d.root, FavoritesFile)
}

// HistoryPath returns the path of the history document.
func (d Dir) HistoryPath() string {
	return filepath.Join(d.root, HistoryFile)
}

// EnsureExists creates the directory (and parents) if needed.
func (d Dir) EnsureExists() error {
	if err := os.MkdirAll(d.root, 0o750); err != nil {
		return fmt.Errorf("create data directory %s: %w", d.root, err)
	}
	return nil
}
