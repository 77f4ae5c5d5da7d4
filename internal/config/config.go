package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-vibe/internal/home"
	"github.com/i474232898/weather-vibe/internal/weather"
)

// Provider names accepted in WEATHER_PROVIDER.
const (
	ProviderOpenWeather = "openweathermap"
	ProviderWeatherAPI  = "weatherapi"
)

type AppConfig struct {
	// Provider selects the upstream API; APIKey is its default credential.
	Provider string
	APIKey   string
	BaseURL  string // empty means the provider's public endpoint

	// Data files.
	DataDir       string
	FavoritesFile string
	HistoryFile   string

	// Default session.
	Unit   weather.Unit
	Cities []string

	TrendLimit int

	// Circuit breaker in front of the provider.
	BreakerMaxFailures int
	BreakerOpenTimeout time.Duration

	// RateLimit caps outbound requests per minute; 0 disables it.
	RateLimit int

	Port string
}

// Session returns the default session built from configuration.
func (c *AppConfig) Session() weather.Session {
	return weather.Session{
		Credential: c.APIKey,
		Unit:       c.Unit,
		Cities:     append([]string(nil), c.Cities...),
	}
}

// Load reads configuration from the environment, after loading a .env file if
// one exists. Values already set in the environment win over .env.
func Load(logger *slog.Logger) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && logger != nil {
		logger.Debug("no .env file loaded", "error", err)
	}
	return FromEnv()
}

// FromEnv reads configuration from the environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.Provider = strings.ToLower(getenvDefault("WEATHER_PROVIDER", ProviderOpenWeather))
	switch cfg.Provider {
	case ProviderOpenWeather:
		cfg.APIKey = os.Getenv("OPENWEATHER_API_KEY")
		cfg.BaseURL = os.Getenv("OPENWEATHER_BASE_URL")
	case ProviderWeatherAPI:
		cfg.APIKey = os.Getenv("WEATHERAPI_API_KEY")
		cfg.BaseURL = os.Getenv("WEATHERAPI_BASE_URL")
	default:
		return nil, fmt.Errorf("invalid WEATHER_PROVIDER %q: want %s or %s", cfg.Provider, ProviderOpenWeather, ProviderWeatherAPI)
	}

	dataDir := os.Getenv("WEATHER_DATA_DIR")
	if dataDir == "" {
		d, err := home.Default()
		if err != nil {
			return nil, err
		}
		dataDir = d.Root()
	}
	cfg.SetDataDir(dataDir)
	if v := os.Getenv("WEATHER_FAVORITES_FILE"); v != "" {
		cfg.FavoritesFile = resolve(dataDir, v)
	}
	if v := os.Getenv("WEATHER_HISTORY_FILE"); v != "" {
		cfg.HistoryFile = resolve(dataDir, v)
	}

	unit, err := weather.ParseUnit(os.Getenv("WEATHER_UNIT"))
	if err != nil {
		return nil, fmt.Errorf("invalid WEATHER_UNIT: %w", err)
	}
	cfg.Unit = unit

	cfg.Cities = splitList(os.Getenv("WEATHER_CITIES"))

	cfg.TrendLimit = getenvInt("TREND_LIMIT", weather.DefaultTrendLimit)
	if cfg.TrendLimit <= 0 {
		return nil, fmt.Errorf("invalid TREND_LIMIT: must be positive")
	}

	cfg.BreakerMaxFailures = getenvInt("BREAKER_MAX_FAILURES", 5)
	if cfg.BreakerMaxFailures <= 0 {
		return nil, fmt.Errorf("invalid BREAKER_MAX_FAILURES: must be positive")
	}
	openTimeout, err := time.ParseDuration(getenvDefault("BREAKER_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid BREAKER_OPEN_TIMEOUT: %w", err)
	}
	cfg.BreakerOpenTimeout = openTimeout

	cfg.RateLimit = getenvInt("PROVIDER_RATE_LIMIT", 60)
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("invalid PROVIDER_RATE_LIMIT: must not be negative")
	}

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

// SetDataDir points the data files at dir using their default names.
func (c *AppConfig) SetDataDir(dir string) {
	d := home.New(dir)
	c.DataDir = d.Root()
	c.FavoritesFile = d.FavoritesPath()
	c.HistoryFile = d.HistoryPath()
}

// resolve makes relative file names relative to the data directory.
func resolve(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
