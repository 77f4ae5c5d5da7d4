package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-vibe/internal/weather"
)

var configKeys = []string{
	"WEATHER_PROVIDER", "OPENWEATHER_API_KEY", "OPENWEATHER_BASE_URL", "WEATHERAPI_API_KEY",
	"WEATHERAPI_BASE_URL", "WEATHER_DATA_DIR", "WEATHER_FAVORITES_FILE", "WEATHER_HISTORY_FILE",
	"WEATHER_UNIT", "WEATHER_CITIES", "TREND_LIMIT", "BREAKER_MAX_FAILURES", "BREAKER_OPEN_TIMEOUT", "PROVIDER_RATE_LIMIT", "PORT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenWeather, cfg.Provider)
	assert.Empty(t, cfg.APIKey)
	assert.Equal(t, "weather-vibe", filepath.Base(cfg.DataDir))
	assert.Equal(t, filepath.Join(cfg.DataDir, "favorite_cities.json"), cfg.FavoritesFile)
	assert.Equal(t, filepath.Join(cfg.DataDir, "weather_history.csv"), cfg.HistoryFile)
	assert.Equal(t, weather.UnitCelsius, cfg.Unit)
	assert.Empty(t, cfg.Cities)
	assert.Equal(t, 7, cfg.TrendLimit)
	assert.Equal(t, 5, cfg.BreakerMaxFailures)
	assert.Equal(t, 30*time.Second, cfg.BreakerOpenTimeout)
	assert.Equal(t, 60, cfg.RateLimit)
	assert.Equal(t, "8080", cfg.Port)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("OPENWEATHER_API_KEY", "abc")
	t.Setenv("WEATHER_DATA_DIR", dir)
	t.Setenv("WEATHER_HISTORY_FILE", "h.csv")
	t.Setenv("WEATHER_FAVORITES_FILE", "/abs/favs.json")
	t.Setenv("WEATHER_UNIT", "F")
	t.Setenv("WEATHER_CITIES", "Paris, Rome,,Oslo ")
	t.Setenv("TREND_LIMIT", "3")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "abc", cfg.APIKey)
	assert.Equal(t, filepath.Join(dir, "h.csv"), cfg.HistoryFile)
	assert.Equal(t, "/abs/favs.json", cfg.FavoritesFile)
	assert.Equal(t, weather.UnitFahrenheit, cfg.Unit)
	assert.Equal(t, []string{"Paris", "Rome", "Oslo"}, cfg.Cities)
	assert.Equal(t, 3, cfg.TrendLimit)

	sess := cfg.Session()
	assert.Equal(t, "abc", sess.Credential)
	assert.Equal(t, weather.UnitFahrenheit, sess.Unit)
	sess.Cities[0] = "changed"
	assert.Equal(t, "Paris", cfg.Cities[0], "session holds its own copy")
}

func TestFromEnv_WeatherAPIProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEATHER_PROVIDER", "WeatherAPI")
	t.Setenv("WEATHERAPI_API_KEY", "wk")
	t.Setenv("OPENWEATHER_API_KEY", "ok")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ProviderWeatherAPI, cfg.Provider)
	assert.Equal(t, "wk", cfg.APIKey)
}

func TestFromEnv_Invalid(t *testing.T) {
	for key, val := range map[string]string{
		"WEATHER_PROVIDER":     "darksky",
		"WEATHER_UNIT":         "K",
		"TREND_LIMIT":          "0",
		"BREAKER_MAX_FAILURES": "-1",
		"BREAKER_OPEN_TIMEOUT": "soon",
		"PROVIDER_RATE_LIMIT":  "-5",
	} {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestSetDataDir(t *testing.T) {
	cfg := &AppConfig{}
	cfg.SetDataDir("/data")
	assert.Equal(t, "/data/favorite_cities.json", cfg.FavoritesFile)
	assert.Equal(t, "/data/weather_history.csv", cfg.HistoryFile)
}
