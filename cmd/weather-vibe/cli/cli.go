// Package cli implements the weather-vibe command tree.
package cli

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-vibe/internal/config"
	"github.com/i474232898/weather-vibe/internal/home"
	"github.com/i474232898/weather-vibe/internal/logging"
	"github.com/i474232898/weather-vibe/internal/store"
	"github.com/i474232898/weather-vibe/internal/weather"
	"github.com/i474232898/weather-vibe/internal/weather/providers"
)

// NewRootCommand returns the weather-vibe command with all subcommands wired in.
func NewRootCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "weather-vibe",
		Short:         "Track current weather for your favorite cities",
		Long:          "Fetch current conditions from OpenWeatherMap, keep a list of favorite cities, and record every reading to a local history for trend charts.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("home", "", "data directory (default: WEATHER_DATA_DIR or platform config dir)")
	pf.String("api-key", "", "provider API key (default: OPENWEATHER_API_KEY)")
	pf.String("unit", "", "temperature unit: C or F (default: WEATHER_UNIT or C)")
	pf.Bool("debug", false, "enable debug logging")
	pf.StringP("output", "o", "table", "output format: table or json")

	root.AddCommand(
		newServeCmd(),
		newFetchCmd(),
		newFavoritesCmd(),
		newHistoryCmd(),
		newTrendCmd(),
		newStatsCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
			},
		},
	)

	return root
}

// app is the per-invocation state shared by the subcommands.
type app struct {
	logger *slog.Logger
	cfg    *config.AppConfig
}

// loadApp builds the logger and configuration, applying persistent flag
// overrides on top of the environment.
func loadApp(cmd *cobra.Command) (*app, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	logger := logging.New(cmd.ErrOrStderr(), debug)

	cfg, err := config.Load(logger)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if dir, _ := cmd.Flags().GetString("home"); dir != "" {
		cfg.SetDataDir(dir)
	}
	if key, _ := cmd.Flags().GetString("api-key"); key != "" {
		cfg.APIKey = key
	}
	if raw, _ := cmd.Flags().GetString("unit"); raw != "" {
		unit, err := weather.ParseUnit(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --unit: %w", err)
		}
		cfg.Unit = unit
	}

	return &app{logger: logger, cfg: cfg}, nil
}

// provider builds the configured upstream provider behind its circuit breaker.
func (a *app) provider() weather.Provider {
	opts := []providers.Option{
		providers.WithBreaker(providers.BreakerConfig{
			MaxFailures: uint32(a.cfg.BreakerMaxFailures),
			OpenTimeout: a.cfg.BreakerOpenTimeout,
		}),
		providers.WithRateLimit(a.cfg.RateLimit),
		providers.WithLogger(a.logger),
	}
	if a.cfg.BaseURL != "" {
		opts = append(opts, providers.WithBaseURL(a.cfg.BaseURL))
	}

	client := &http.Client{Timeout: providers.RequestTimeout}
	switch a.cfg.Provider {
	case config.ProviderWeatherAPI:
		return providers.NewWeatherAPIProvider(client, opts...)
	default:
		return providers.NewOpenWeatherProvider(client, opts...)
	}
}

// service wires the provider to file-backed stores, or to in-memory stores
// when ephemeral is set.
func (a *app) service(ephemeral bool) (*weather.Service, error) {
	if ephemeral {
		a.logger.Info("using in-memory stores; nothing will be persisted")
		return weather.NewService(a.provider(), store.NewMemoryFavorites(a.cfg.Cities...), store.NewMemoryHistory(),
			weather.WithLogger(a.logger)), nil
	}

	if err := home.New(a.cfg.DataDir).EnsureExists(); err != nil {
		return nil, err
	}

	favorites := store.NewFavorites(a.cfg.FavoritesFile, a.logger)
	history := store.NewHistory(a.cfg.HistoryFile, a.logger)

	favs, favStatus := favorites.LoadWithStatus()
	obs, histStatus := history.LoadWithStatus()
	a.logger.Debug("opened data files",
		"favorites", favorites.Path(), "favorites_status", favStatus.String(), "tracked", len(favs),
		"history", history.Path(), "history_status", histStatus.String(), "records", len(obs))

	return weather.NewService(a.provider(), favorites, history, weather.WithLogger(a.logger)), nil
}

// outputFormat returns "json" or "table" from the --output flag.
func outputFormat(cmd *cobra.Command) string {
	f, _ := cmd.Flags().GetString("output")
	return f
}
