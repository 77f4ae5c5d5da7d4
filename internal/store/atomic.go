package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// LoadStatus tells a freshly initialised store apart from a genuinely empty one.
type LoadStatus int

const (
	// StatusLoaded means the document existed and parsed.
	StatusLoaded LoadStatus = iota
	// StatusMissing means no document exists yet.
	StatusMissing
	// StatusCorrupt means the document exists but could not be parsed; it was
	// treated as empty.
	StatusCorrupt
)

func (s LoadStatus) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusMissing:
		return "missing"
	case StatusCorrupt:
		return "corrupt"
	default:
		return fmt.Sprintf("LoadStatus(%d)", int(s))
	}
}

// writeAtomic replaces path with data via a temp file and rename. validate,
// when non-nil, is run on the bytes read back from the temp file before the
// rename.
func writeAtomic(path string, data []byte, validate func([]byte) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil { //nolint:gosec // user data files, not secret
		return fmt.Errorf("write temp file: %w", err)
	}

	if validate != nil {
		check, err := os.ReadFile(tmpPath)
		if err != nil {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("read-back temp file: %w", err)
		}
		if err := validate(check); err != nil {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("round-trip validation failed: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
