package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-vibe/internal/weather"
)

// errNoAPIKey is returned before any request is made.
var errNoAPIKey = errors.New("no API key: set OPENWEATHER_API_KEY or pass --api-key")

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [city...]",
		Short: "Fetch current weather and record it to history",
		Long:  "Fetches current conditions for the given cities, or WEATHER_CITIES, or the first three favorites. Each successful reading is appended to history.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			if a.cfg.APIKey == "" {
				return errNoAPIKey
			}
			svc, err := a.service(false)
			if err != nil {
				return err
			}

			preferred := args
			if len(preferred) == 0 {
				preferred = a.cfg.Cities
			}
			cities := svc.SelectCities(preferred)
			if len(cities) == 0 {
				return errors.New("no cities: pass city names or add favorites")
			}

			sess := a.cfg.Session()
			sess.Cities = cities
			report := svc.Refresh(cmd.Context(), sess)

			p := newPrinter(cmd)
			if p.isJSON() {
				if err := p.json(newFetchJSON(report)); err != nil {
					return err
				}
			} else {
				printCards(p, report)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nData points: %d\n", report.DataPoints())
				for _, res := range report.Failed() {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", res.City, res.Err)
				}
			}
			for _, res := range report.Results {
				if res.PersistErr != nil {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: not saved to history: %v\n", res.City, res.PersistErr)
				}
			}

			if failed := len(report.Failed()); failed > 0 {
				return fmt.Errorf("%d of %d cities failed", failed, len(report.Results))
			}
			return nil
		},
	}
}

func printCards(p *printer, report weather.Report) {
	cards := report.Cards()
	rows := make([][]string, 0, len(cards))
	for _, c := range cards {
		rows = append(rows, []string{
			c.City,
			formatTemp(c.Temperature, c.Unit),
			formatTemp(c.FeelsLike, c.Unit),
			strconv.Itoa(c.Humidity) + "%",
			strconv.FormatFloat(c.WindSpeedMS, 'f', 1, 64) + " m/s",
			strconv.FormatFloat(c.PressureHpa, 'f', 0, 64) + " hPa",
			c.Condition,
		})
	}
	p.table([]string{"CITY", "TEMP", "FEELS LIKE", "HUMIDITY", "WIND", "PRESSURE", "CONDITION"}, rows)
}

type fetchFailure struct {
	City       string `json:"city"`
	Kind       string `json:"kind"`
	StatusCode int    `json:"statusCode,omitempty"`
	Error      string `json:"error"`
}

type fetchJSON struct {
	ID         string         `json:"id"`
	StartedAt  time.Time      `json:"startedAt"`
	Unit       weather.Unit   `json:"unit"`
	DataPoints int            `json:"dataPoints"`
	Cards      []weather.Card `json:"cards"`
	Failures   []fetchFailure `json:"failures"`
}

func newFetchJSON(r weather.Report) fetchJSON {
	out := fetchJSON{
		ID:         r.ID.String(),
		StartedAt:  r.StartedAt,
		Unit:       r.Unit,
		DataPoints: r.DataPoints(),
		Cards:      r.Cards(),
		Failures:   []fetchFailure{},
	}
	for _, res := range r.Failed() {
		f := fetchFailure{City: res.City, Kind: weather.Kind(res.Err).Error(), Error: res.Err.Error()}
		var fe *weather.FetchError
		if errors.As(res.Err, &fe) {
			f.StatusCode = fe.StatusCode
		}
		out.Failures = append(out.Failures, f)
	}
	return out
}
