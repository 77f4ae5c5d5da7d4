package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-vibe/internal/weather"
)

func TestWeatherAPI_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "Oslo", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"current": {"temp_c": -2.0, "feelslike_c": -6.5, "humidity": 90,
			"wind_kph": 18, "pressure_mb": 1003, "condition": {"text": "Light snow showers"}}}`))
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(srv.Client(), WithBaseURL(srv.URL))
	r, err := p.Fetch(context.Background(), weather.Query{Credential: "secret", City: "Oslo"})
	require.NoError(t, err)

	assert.Equal(t, -2.0, r.TemperatureC)
	assert.Equal(t, 90, r.Humidity)
	assert.Equal(t, "Snow", r.Condition)
	assert.InDelta(t, 5.0, r.WindSpeedMS, 1e-9)
	assert.Equal(t, 1003.0, r.PressureHpa)
}

func TestWeatherAPI_ErrorCodes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   error
	}{
		{"no location", http.StatusBadRequest, `{"error": {"code": 1006, "message": "No matching location found."}}`, weather.ErrCityNotFound},
		{"bad key", http.StatusUnauthorized, `{"error": {"code": 2006, "message": "API key is invalid."}}`, weather.ErrInvalidCredential},
		{"disabled key", http.StatusForbidden, `{"error": {"code": 2008, "message": "API key has been disabled."}}`, weather.ErrInvalidCredential},
		{"quota", http.StatusForbidden, `{"error": {"code": 2007, "message": "exceeded"}}`, weather.ErrProvider},
		{"plain 500", http.StatusInternalServerError, `oops`, weather.ErrProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newJSONServer(t, tt.status, tt.body, nil)
			p := NewWeatherAPIProvider(srv.Client(), WithBaseURL(srv.URL))

			_, err := p.Fetch(context.Background(), weather.Query{Credential: "k", City: "X"})
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestWeatherAPI_MalformedBody(t *testing.T) {
	bodies := map[string]string{
		"missing current":      `{"location": {"name": "Oslo"}}`,
		"missing humidity":     `{"current": {"temp_c": 1, "feelslike_c": 1, "wind_kph": 3.6, "pressure_mb": 1000, "condition": {"text": "Sunny"}}}`,
		"empty condition":      `{"current": {"temp_c": 1, "feelslike_c": 1, "humidity": 50, "wind_kph": 3.6, "pressure_mb": 1000, "condition": {"text": ""}}}`,
		"humidity above range": `{"current": {"temp_c": 1, "feelslike_c": 1, "humidity": 101, "wind_kph": 3.6, "pressure_mb": 1000, "condition": {"text": "Sunny"}}}`,
		"humidity below range": `{"current": {"temp_c": 1, "feelslike_c": 1, "humidity": -1, "wind_kph": 3.6, "pressure_mb": 1000, "condition": {"text": "Sunny"}}}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := newJSONServer(t, http.StatusOK, body, nil)
			p := NewWeatherAPIProvider(srv.Client(), WithBaseURL(srv.URL))

			_, err := p.Fetch(context.Background(), weather.Query{Credential: "k", City: "Oslo"})
			assert.ErrorIs(t, err, weather.ErrUnexpected)
		})
	}
}

func TestWeatherAPI_HumidityOutOfRange(t *testing.T) {
	srv := newJSONServer(t, http.StatusOK, `{"current": {"temp_c": 1, "feelslike_c": 1, "humidity": 120,
		"wind_kph": 3.6, "pressure_mb": 1000, "condition": {"text": "Sunny"}}}`, nil)
	p := NewWeatherAPIProvider(srv.Client(), WithBaseURL(srv.URL))

	_, err := p.Fetch(context.Background(), weather.Query{Credential: "k", City: "Oslo"})
	assert.ErrorIs(t, err, weather.ErrUnexpected)
	assert.ErrorContains(t, err, "humidity 120 out of range")
}

func TestWeatherAPI_EmptyCredential(t *testing.T) {
	p := NewWeatherAPIProvider(nil)
	_, err := p.Fetch(context.Background(), weather.Query{City: "Boston"})
	assert.ErrorIs(t, err, weather.ErrInvalidCredential)
}

func TestMapWeatherAPICondition(t *testing.T) {
	cases := map[string]string{
		"Sunny":                     "Clear",
		"Clear":                     "Clear",
		"Partly cloudy":             "Clouds",
		"Overcast":                  "Clouds",
		"Patchy light drizzle":      "Drizzle",
		"Moderate rain":             "Rain",
		"Thundery outbreaks nearby": "Thunderstorm",
		"Blizzard":                  "Snow",
		"Freezing fog":              "Fog",
		"Mist":                      "Mist",
		"Something new":             "Something new",
	}
	for in, want := range cases {
		assert.Equal(t, want, mapWeatherAPICondition(in), in)
	}
}
