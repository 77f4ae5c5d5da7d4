package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/i474232898/weather-vibe/internal/logging"
	"github.com/i474232898/weather-vibe/internal/weather"
)

// historyHeader is the fixed first row of the history document.
var historyHeader = []string{"timestamp", "city", "temperature_c", "humidity", "condition"}

// Accepted timestamp forms on load; the first is the one written.
var timestampLayouts = []string{
	weather.TimestampLayout,
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// History is the CSV-file observation log.
//
// Rows are kept as raw text between load and rewrite, so a row whose
// timestamp cannot be parsed is written back exactly as it was read. Append
// rewrites the whole file; there is no size cap.
type History struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

var _ weather.HistoryStore = (*History)(nil)

// NewHistory creates a history store backed by path.
func NewHistory(path string, logger *slog.Logger) *History {
	return &History{
		path:   path,
		logger: logging.Default(logger).With("component", "history", "path", path),
	}
}

// Path returns the backing file.
func (h *History) Path() string {
	return h.path
}

// Load returns all observations in append order, or an empty log when the
// document is missing or unreadable.
func (h *History) Load() []weather.Observation {
	obs, _ := h.LoadWithStatus()
	return obs
}

// LoadWithStatus is Load plus whether the document existed and parsed.
func (h *History) LoadWithStatus() ([]weather.Observation, LoadStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()

	records, status := h.read()
	obs := make([]weather.Observation, 0, len(records))
	for _, rec := range records {
		obs = append(obs, parseRecord(rec))
	}
	return obs, status
}

// Append adds one observation and rewrites the document.
func (h *History) Append(o weather.Observation) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	records, status := h.read()
	if status == StatusCorrupt {
		h.logger.Warn("history unparsable, starting a new log")
		records = nil
	}
	records = append(records, formatRecord(o))

	var buf bytes.Buffer
	if err := writeRecords(&buf, records); err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	err := writeAtomic(h.path, buf.Bytes(), func(b []byte) error {
		_, err := decodeRecords(b)
		return err
	})
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// Clear deletes the document. Clearing a log that does not exist succeeds.
func (h *History) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := os.Remove(h.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Export writes the full document, header included, to w and returns the
// number of data rows written.
func (h *History) Export(w io.Writer) (int, error) {
	h.mu.Lock()
	records, _ := h.read()
	h.mu.Unlock()

	if err := writeRecords(w, records); err != nil {
		return 0, fmt.Errorf("export history: %w", err)
	}
	return len(records), nil
}

// read returns the raw data rows, header excluded.
func (h *History) read() ([][]string, LoadStatus) {
	data, err := os.ReadFile(h.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, StatusMissing
		}
		h.logger.Warn("history unreadable, using empty log", "error", err)
		return nil, StatusCorrupt
	}

	records, err := decodeRecords(data)
	if err != nil {
		h.logger.Warn("history unparsable, using empty log", "error", err)
		return nil, StatusCorrupt
	}
	return records, StatusLoaded
}

// decodeRecords parses a history document and strips its header. Rows
// shorter than the header are padded with empty cells; longer rows make the
// document unparsable.
func decodeRecords(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	all, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, errors.New("empty document")
	}

	header := all[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if !slices.Equal(header, historyHeader) {
		return nil, fmt.Errorf("unexpected header %q", strings.Join(header, ","))
	}

	records := all[1:]
	for i, rec := range records {
		switch {
		case len(rec) > len(historyHeader):
			return nil, fmt.Errorf("row %d: expected %d fields, saw %d", i+2, len(historyHeader), len(rec))
		case len(rec) < len(historyHeader):
			padded := make([]string, len(historyHeader))
			copy(padded, rec)
			records[i] = padded
		}
	}
	return records, nil
}

func writeRecords(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(historyHeader); err != nil {
		return err
	}
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

func parseRecord(rec []string) weather.Observation {
	return weather.Observation{
		Timestamp:    parseTimestamp(rec[0]),
		City:         rec[1],
		TemperatureC: parseFloat(rec[2]),
		Humidity:     parseHumidity(rec[3]),
		Condition:    rec[4],
	}
}

func formatRecord(o weather.Observation) []string {
	ts := ""
	if o.HasTimestamp() {
		ts = o.Timestamp.Format(weather.TimestampLayout)
	}
	return []string{ts, o.City, formatFloat(o.TemperatureC), strconv.Itoa(o.Humidity), o.Condition}
}

// parseTimestamp returns the zero time for text that matches no known layout.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// parseFloat returns NaN for an empty or malformed cell.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// parseHumidity accepts "81" and "81.0"; malformed cells read as 0.
func parseHumidity(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return int(math.Round(v))
	}
	return 0
}

// formatFloat always keeps a decimal point ("10.0", "12.5"); NaN is written empty.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".InfE") {
		s += ".0"
	}
	return s
}
