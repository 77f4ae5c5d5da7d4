package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-vibe/internal/logging"
)

// ErrNoHistory is returned by ExportHistory when there is nothing to export.
var ErrNoHistory = errors.New("no weather history")

// Service ties the provider to the favorites and history stores.
type Service struct {
	provider  Provider
	favorites FavoritesStore
	history   HistoryStore
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logging.Default(logger).With("component", "weather") }
}

// WithClock overrides the clock used to stamp new observations.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new Service.
func NewService(provider Provider, favorites FavoritesStore, history HistoryStore, opts ...Option) *Service {
	s := &Service{
		provider:  provider,
		favorites: favorites,
		history:   history,
		logger:    logging.Discard(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CityResult is the outcome of fetching one city during a refresh.
type CityResult struct {
	City    string   `json:"city"`
	Reading *Reading `json:"reading,omitempty"`
	Err     error    `json:"-"`

	// PersistErr is set when the reading was fetched but could not be appended.
	PersistErr error `json:"-"`
}

// OK reports whether the city was fetched.
func (r CityResult) OK() bool {
	return r.Err == nil && r.Reading != nil
}

// Report is the outcome of one refresh across the session's cities.
type Report struct {
	ID        uuid.UUID    `json:"id"`
	StartedAt time.Time    `json:"startedAt"`
	Unit      Unit         `json:"unit"`
	Results   []CityResult `json:"results"`
}

// Cards returns display cards for the successful results in display order.
func (r Report) Cards() []Card {
	cards := make([]Card, 0, len(r.Results))
	for _, res := range r.Results {
		if res.OK() {
			cards = append(cards, res.Reading.Card(r.Unit))
		}
	}
	return cards
}

// DataPoints is the number of readings fetched by this refresh.
func (r Report) DataPoints() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// Failed returns the results that did not produce a reading.
func (r Report) Failed() []CityResult {
	var out []CityResult
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// FetchWeather fetches current conditions for one city and appends the
// observation to history. Failures are returned unchanged and nothing is appended.
func (s *Service) FetchWeather(ctx context.Context, q Query) (Reading, error) {
	if s.provider == nil {
		return Reading{}, NewFetchError(ErrUnexpected, q.City, errors.New("no weather provider configured"))
	}

	r, err := s.provider.Fetch(ctx, q)
	if err != nil {
		var fe *FetchError
		if !errors.As(err, &fe) {
			err = NewFetchError(ErrUnexpected, q.City, err)
		}
		return Reading{}, err
	}

	// History is keyed by the name the user asked for, stamped locally at
	// second precision.
	r.City = q.City
	r.Timestamp = s.now().Truncate(time.Second)

	if err := s.history.Append(r.Observation); err != nil {
		return r, fmt.Errorf("record observation for %s: %w", q.City, err)
	}
	return r, nil
}

// Refresh fetches every city of the session one after another, in order.
// A failure for one city is recorded in its result and does not stop the rest.
func (s *Service) Refresh(ctx context.Context, sess Session) Report {
	unit := sess.Unit
	if unit == "" {
		unit = UnitCelsius
	}
	report := Report{
		ID:        uuid.Must(uuid.NewV7()),
		StartedAt: s.now(),
		Unit:      unit,
		Results:   make([]CityResult, 0, len(sess.Cities)),
	}

	s.logger.Debug("refresh started", "id", report.ID, "cities", len(sess.Cities))

	for _, city := range sess.Cities {
		res := CityResult{City: city}

		r, err := s.FetchWeather(ctx, sess.Query(city))
		var fe *FetchError
		switch {
		case err == nil:
			res.Reading = &r
		case errors.As(err, &fe):
			res.Err = err
			s.logger.Warn("fetch failed", "id", report.ID, "city", city, "error", err)
		default:
			// Fetched, but history could not be written.
			res.Reading = &r
			res.PersistErr = err
			s.logger.Error("append observation failed", "id", report.ID, "city", city, "error", err)
		}

		report.Results = append(report.Results, res)
	}

	s.logger.Info("refresh completed", "id", report.ID,
		"cities", len(sess.Cities), "failed", len(report.Failed()))
	return report
}

// DefaultSelectionSize is how many favorites are shown when the caller has
// not picked any cities.
const DefaultSelectionSize = 3

// SelectCities returns preferred when non-empty, otherwise the first
// DefaultSelectionSize favorites.
func (s *Service) SelectCities(preferred []string) []string {
	if len(preferred) > 0 {
		return preferred
	}
	favs := s.favorites.Load()
	if len(favs) > DefaultSelectionSize {
		favs = favs[:DefaultSelectionSize]
	}
	return favs
}

// Favorites returns the tracked cities.
func (s *Service) Favorites() []string {
	return s.favorites.Load()
}

// SaveFavorites replaces the tracked cities; duplicates collapse.
func (s *Service) SaveFavorites(cities []string) error {
	return s.favorites.Save(cities)
}

// AddFavorite tracks city. It reports whether the set changed.
func (s *Service) AddFavorite(city string) (bool, error) {
	return s.favorites.Add(city)
}

// RemoveFavorite stops tracking city. It reports whether the set changed.
func (s *Service) RemoveFavorite(city string) (bool, error) {
	return s.favorites.Remove(city)
}

// History returns the full observation log in append order.
func (s *Service) History() []Observation {
	return s.history.Load()
}

// AppendObservation appends obs to history as-is.
func (s *Service) AppendObservation(obs Observation) error {
	return s.history.Append(obs)
}

// ClearHistory truncates history to empty.
func (s *Service) ClearHistory() error {
	if err := s.history.Clear(); err != nil {
		return err
	}
	s.logger.Info("history cleared")
	return nil
}

// ExportHistory writes the history document to w. It returns ErrNoHistory when
// the log is empty.
func (s *Service) ExportHistory(w io.Writer) (int, error) {
	if len(s.history.Load()) == 0 {
		return 0, ErrNoHistory
	}
	return s.history.Export(w)
}

// Trend returns the last limit observations for city in append order.
func (s *Service) Trend(city string, limit int) []Observation {
	return Trend(s.history.Load(), city, limit)
}

// TrendCities lists the cities that have history, in first-seen order.
func (s *Service) TrendCities() []string {
	return Cities(s.history.Load())
}

// Stats summarises tracked favorites, the session's selection and stored history.
func (s *Service) Stats(sess Session) Stats {
	return Stats{
		TrackedCities:   len(s.favorites.Load()),
		DisplayedCities: len(sess.Cities),
		RecordsStored:   len(s.history.Load()),
	}
}
