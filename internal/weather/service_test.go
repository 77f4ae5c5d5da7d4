package weather_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-vibe/internal/store"
	"github.com/i474232898/weather-vibe/internal/weather"
)

// fakeProvider answers from a per-city script of readings and errors.
type fakeProvider struct {
	temps map[string][]float64
	errs  map[string]error
	calls []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Fetch(_ context.Context, q weather.Query) (weather.Reading, error) {
	f.calls = append(f.calls, q.City)
	if q.Credential == "" {
		return weather.Reading{}, weather.NewFetchError(weather.ErrInvalidCredential, q.City, nil)
	}
	if err, ok := f.errs[q.City]; ok {
		return weather.Reading{}, err
	}
	temps := f.temps[q.City]
	if len(temps) == 0 {
		return weather.Reading{}, weather.NewFetchError(weather.ErrCityNotFound, q.City, nil)
	}
	t := temps[0]
	f.temps[q.City] = temps[1:]
	return weather.Reading{
		Observation: weather.Observation{City: q.City, TemperatureC: t, Humidity: 55, Condition: "Clear"},
		FeelsLikeC:  t - 1,
	}, nil
}

type failingHistory struct{ *store.MemoryHistory }

func (failingHistory) Append(weather.Observation) error { return errors.New("disk full") }

func fixedClock() func() time.Time {
	ts := time.Date(2024, 6, 1, 9, 30, 15, 999, time.Local)
	return func() time.Time {
		ts = ts.Add(time.Minute)
		return ts
	}
}

func newService(p weather.Provider, h weather.HistoryStore) *weather.Service {
	return weather.NewService(p, store.NewMemoryFavorites(), h, weather.WithClock(fixedClock()))
}

func TestFetchWeather_AppendsOnSuccess(t *testing.T) {
	p := &fakeProvider{temps: map[string][]float64{"Paris": {10.0, 12.5}}}
	h := store.NewMemoryHistory()
	svc := newService(p, h)
	q := weather.Query{Credential: "k", City: "Paris"}

	_, err := svc.FetchWeather(context.Background(), q)
	require.NoError(t, err)
	r, err := svc.FetchWeather(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 12.5, r.TemperatureC)
	assert.Zero(t, r.Timestamp.Nanosecond(), "timestamps have second precision")

	log := svc.History()
	require.Len(t, log, 2)
	assert.Equal(t, "Paris", log[0].City)
	assert.Equal(t, "Paris", log[1].City)

	trend := svc.Trend("Paris", 1)
	require.Len(t, trend, 1)
	assert.Equal(t, 12.5, trend[0].TemperatureC)
}

func TestFetchWeather_ErrorsDoNotAppend(t *testing.T) {
	p := &fakeProvider{
		temps: map[string][]float64{},
		errs:  map[string]error{"Lyon": weather.NewFetchError(weather.ErrInvalidCredential, "Lyon", nil)},
	}
	h := store.NewMemoryHistory()
	svc := newService(p, h)

	_, err := svc.FetchWeather(context.Background(), weather.Query{Credential: "k", City: "Atlantis"})
	assert.ErrorIs(t, err, weather.ErrCityNotFound)

	_, err = svc.FetchWeather(context.Background(), weather.Query{Credential: "k", City: "Lyon"})
	assert.ErrorIs(t, err, weather.ErrInvalidCredential)

	assert.Empty(t, h.Load())
}

func TestFetchWeather_EmptyCredential(t *testing.T) {
	svc := newService(&fakeProvider{temps: map[string][]float64{"Boston": {1}}}, store.NewMemoryHistory())

	_, err := svc.FetchWeather(context.Background(), weather.Query{City: "Boston"})
	assert.ErrorIs(t, err, weather.ErrInvalidCredential)
	assert.Empty(t, svc.History())
}

func TestFetchWeather_UnclassifiedProviderError(t *testing.T) {
	p := &fakeProvider{errs: map[string]error{"Paris": errors.New("boom")}}
	svc := newService(p, store.NewMemoryHistory())

	_, err := svc.FetchWeather(context.Background(), weather.Query{Credential: "k", City: "Paris"})
	assert.ErrorIs(t, err, weather.ErrUnexpected)
}

func TestRefresh_ContinuesPastFailures(t *testing.T) {
	p := &fakeProvider{temps: map[string][]float64{"Paris": {10}, "Rome": {20}}}
	svc := newService(p, store.NewMemoryHistory())

	report := svc.Refresh(context.Background(), weather.Session{
		Credential: "k",
		Unit:       weather.UnitFahrenheit,
		Cities:     []string{"Paris", "Atlantis", "Rome"},
	})

	assert.Equal(t, []string{"Paris", "Atlantis", "Rome"}, p.calls, "fetched sequentially in display order")
	require.Len(t, report.Results, 3)
	assert.True(t, report.Results[0].OK())
	assert.ErrorIs(t, report.Results[1].Err, weather.ErrCityNotFound)
	assert.True(t, report.Results[2].OK())
	assert.NotEqual(t, uuid.Nil, report.ID)

	cards := report.Cards()
	require.Len(t, cards, 2)
	assert.Equal(t, 50.0, cards[0].Temperature)
	assert.Equal(t, 68.0, cards[1].Temperature)

	assert.Equal(t, 2, report.DataPoints())

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "Atlantis", failed[0].City)

	assert.Len(t, svc.History(), 2)
}

func TestRefresh_PersistFailureKeepsReading(t *testing.T) {
	p := &fakeProvider{temps: map[string][]float64{"Paris": {10}}}
	svc := newService(p, failingHistory{store.NewMemoryHistory()})

	report := svc.Refresh(context.Background(), weather.Session{Credential: "k", Cities: []string{"Paris"}})
	require.Len(t, report.Results, 1)
	res := report.Results[0]
	assert.NoError(t, res.Err)
	assert.Error(t, res.PersistErr)
	assert.NotNil(t, res.Reading)
	assert.Equal(t, weather.UnitCelsius, report.Unit)
}

func TestFavoritesOperations(t *testing.T) {
	dir := t.TempDir()
	fav := store.NewFavorites(filepath.Join(dir, "favorite_cities.json"), nil)
	svc := weather.NewService(nil, fav, store.NewMemoryHistory())

	require.NoError(t, svc.SaveFavorites([]string{"A", "B", "A"}))
	assert.ElementsMatch(t, []string{"A", "B"}, svc.Favorites())

	added, err := svc.AddFavorite("C")
	require.NoError(t, err)
	assert.True(t, added)

	removed, err := svc.RemoveFavorite("A")
	require.NoError(t, err)
	assert.True(t, removed)

	assert.ElementsMatch(t, []string{"B", "C"}, svc.Favorites())
}

func TestHistoryOperations(t *testing.T) {
	h := store.NewHistory(filepath.Join(t.TempDir(), "weather_history.csv"), nil)
	svc := weather.NewService(nil, store.NewMemoryFavorites("Paris"), h)

	var buf bytes.Buffer
	_, err := svc.ExportHistory(&buf)
	assert.ErrorIs(t, err, weather.ErrNoHistory)

	o := weather.Observation{Timestamp: time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local), City: "Paris", TemperatureC: 3, Humidity: 90, Condition: "Mist"}
	require.NoError(t, svc.AppendObservation(o))
	require.NoError(t, svc.AppendObservation(o))

	n, err := svc.ExportHistory(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stats := svc.Stats(weather.Session{Cities: []string{"Paris", "Rome"}})
	assert.Equal(t, weather.Stats{TrackedCities: 1, DisplayedCities: 2, RecordsStored: 2}, stats)
	assert.Equal(t, []string{"Paris"}, svc.TrendCities())

	require.NoError(t, svc.ClearHistory())
	assert.Empty(t, svc.History())

	require.NoError(t, svc.AppendObservation(o))
	assert.Len(t, svc.History(), 1)
}

func TestFetchWeather_NoProvider(t *testing.T) {
	svc := weather.NewService(nil, store.NewMemoryFavorites(), store.NewMemoryHistory())
	_, err := svc.FetchWeather(context.Background(), weather.Query{Credential: "k", City: "Paris"})
	assert.ErrorIs(t, err, weather.ErrUnexpected)
}

func TestSelectCities(t *testing.T) {
	svc := weather.NewService(nil, store.NewMemoryFavorites("A", "B", "C", "D"), store.NewMemoryHistory())
	assert.Equal(t, []string{"X"}, svc.SelectCities([]string{"X"}))
	assert.Equal(t, []string{"A", "B", "C"}, svc.SelectCities(nil))

	empty := weather.NewService(nil, store.NewMemoryFavorites(), store.NewMemoryHistory())
	assert.Empty(t, empty.SelectCities(nil))
}
