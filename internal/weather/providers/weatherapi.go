package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/i474232898/weather-vibe/internal/weather"
)

// WeatherAPIURL is WeatherAPI.com's current conditions endpoint.
const WeatherAPIURL = "https://api.weatherapi.com/v1/current.json"

// WeatherAPI error codes that carry meaning beyond the HTTP status.
const (
	weatherAPINoLocation   = 1006
	weatherAPIKeyMissing   = 1002
	weatherAPIKeyInvalid   = 2006
	weatherAPIKeyDisabled  = 2008
	weatherAPIQueryMissing = 1003
)

// WeatherAPIProvider implements weather.Provider for WeatherAPI.com. Its
// condition text is folded into OpenWeatherMap-style labels so history stays
// comparable across providers.
type WeatherAPIProvider struct {
	name      string
	baseURL   string
	transport *transport
	logger    *slog.Logger
}

var _ weather.Provider = (*WeatherAPIProvider)(nil)

func NewWeatherAPIProvider(client *http.Client, opts ...Option) *WeatherAPIProvider {
	o := buildOptions("weatherapi", WeatherAPIURL, opts)
	return &WeatherAPIProvider{
		name:      "weatherapi",
		baseURL:   o.baseURL,
		transport: newTransport("weatherapi", client, o),
		logger:    o.logger,
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

type weatherAPIPayload struct {
	Current *struct {
		TempC      *float64 `json:"temp_c"`
		FeelsLikeC *float64 `json:"feelslike_c"`
		Humidity   *float64 `json:"humidity"`
		WindKph    *float64 `json:"wind_kph"`
		PressureMb *float64 `json:"pressure_mb"`
		Condition  struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

type weatherAPIError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, q weather.Query) (weather.Reading, error) {
	if q.Credential == "" {
		fe := weather.NewFetchError(weather.ErrInvalidCredential, q.City, nil)
		fe.Detail = "api key is empty"
		return weather.Reading{}, fe
	}

	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	values := url.Values{}
	values.Set("key", q.Credential)
	values.Set("q", q.City)

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), nil)
	if err != nil {
		return weather.Reading{}, weather.NewFetchError(weather.ErrUnexpected, q.City, err)
	}

	resp, err := p.transport.do(ctx, q.City, req)
	if err != nil {
		return weather.Reading{}, err
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.logger.Debug("provider rejected request", "city", q.City, "status", resp.StatusCode)
		return weather.Reading{}, weatherAPIStatusError(q.City, resp)
	}

	var payload weatherAPIPayload
	if err := decodeBody(q.City, resp.Body, &payload); err != nil {
		return weather.Reading{}, err
	}
	return payload.reading(q.City)
}

// weatherAPIStatusError refines the generic status mapping with the error
// code in the body: an unknown location comes back as 400/1006 and a bad key
// as 401 or 403.
func weatherAPIStatusError(city string, resp *http.Response) error {
	var body weatherAPIError
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err == nil {
		switch body.Error.Code {
		case weatherAPINoLocation, weatherAPIQueryMissing:
			return &weather.FetchError{Kind: weather.ErrCityNotFound, City: city, StatusCode: resp.StatusCode, Detail: body.Error.Message}
		case weatherAPIKeyMissing, weatherAPIKeyInvalid, weatherAPIKeyDisabled:
			return &weather.FetchError{Kind: weather.ErrInvalidCredential, City: city, StatusCode: resp.StatusCode, Detail: body.Error.Message}
		}
	}
	return statusError(city, resp.StatusCode)
}

func (pl weatherAPIPayload) reading(city string) (weather.Reading, error) {
	var missing []string
	if pl.Current == nil {
		missing = append(missing, "current")
	} else {
		c := pl.Current
		for name, v := range map[string]*float64{
			"current.temp_c":      c.TempC,
			"current.feelslike_c": c.FeelsLikeC,
			"current.humidity":    c.Humidity,
			"current.wind_kph":    c.WindKph,
			"current.pressure_mb": c.PressureMb,
		} {
			if v == nil {
				missing = append(missing, name)
			}
		}
		if c.Condition.Text == "" {
			missing = append(missing, "current.condition.text")
		}
	}
	if err := missingFields(city, missing); err != nil {
		return weather.Reading{}, err
	}

	c := pl.Current
	if *c.Humidity < 0 || *c.Humidity > 100 {
		return weather.Reading{}, &weather.FetchError{
			Kind:   weather.ErrUnexpected,
			City:   city,
			Detail: fmt.Sprintf("humidity %v out of range", *c.Humidity),
		}
	}

	return weather.Reading{
		Observation: weather.Observation{
			City:         city,
			TemperatureC: *c.TempC,
			Humidity:     int(math.Round(*c.Humidity)),
			Condition:    mapWeatherAPICondition(c.Condition.Text),
		},
		FeelsLikeC: *c.FeelsLikeC,
		// kph to m/s
		WindSpeedMS: *c.WindKph / 3.6,
		PressureHpa: *c.PressureMb,
	}, nil
}

// mapWeatherAPICondition folds WeatherAPI's free text ("Patchy light rain")
// into the primary labels OpenWeatherMap uses.
func mapWeatherAPICondition(text string) string {
	switch {
	case contains(text, "thunder"), contains(text, "storm"):
		return "Thunderstorm"
	case contains(text, "drizzle"):
		return "Drizzle"
	case contains(text, "rain"), contains(text, "shower"):
		return "Rain"
	case contains(text, "snow"), contains(text, "sleet"), contains(text, "blizzard"), contains(text, "ice"):
		return "Snow"
	case contains(text, "fog"):
		return "Fog"
	case contains(text, "mist"):
		return "Mist"
	case contains(text, "cloud"), contains(text, "overcast"):
		return "Clouds"
	case contains(text, "sunny"), contains(text, "clear"):
		return "Clear"
	default:
		return text
	}
}

func contains(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
