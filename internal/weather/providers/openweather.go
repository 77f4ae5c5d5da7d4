package providers

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"

	"github.com/i474232898/weather-vibe/internal/weather"
)

// OpenWeatherURL is the current-conditions-by-city endpoint.
const OpenWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// OpenWeatherProvider implements weather.Provider for OpenWeatherMap.
// The credential travels with each Query; the provider holds none.
type OpenWeatherProvider struct {
	name      string
	baseURL   string
	transport *transport
	logger    *slog.Logger
}

var _ weather.Provider = (*OpenWeatherProvider)(nil)

// NewOpenWeatherProvider creates the provider. A nil client gets a default one
// with RequestTimeout.
func NewOpenWeatherProvider(client *http.Client, opts ...Option) *OpenWeatherProvider {
	o := buildOptions("openweathermap", OpenWeatherURL, opts)
	return &OpenWeatherProvider{
		name:      "openweathermap",
		baseURL:   o.baseURL,
		transport: newTransport("openweathermap", client, o),
		logger:    o.logger,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type openWeatherPayload struct {
	Main *struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Humidity  *float64 `json:"humidity"`
		Pressure  *float64 `json:"pressure"`
	} `json:"main"`
	Wind *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
}

// Fetch requests current conditions for q.City in metric units. One attempt
// is made; an empty credential fails without any request.
func (p *OpenWeatherProvider) Fetch(ctx context.Context, q weather.Query) (weather.Reading, error) {
	if q.Credential == "" {
		fe := weather.NewFetchError(weather.ErrInvalidCredential, q.City, nil)
		fe.Detail = "api key is empty"
		return weather.Reading{}, fe
	}

	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	values := url.Values{}
	values.Set("q", q.City)
	values.Set("appid", q.Credential)
	values.Set("units", "metric")

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), nil)
	if err != nil {
		return weather.Reading{}, weather.NewFetchError(weather.ErrUnexpected, q.City, err)
	}

	resp, err := p.transport.do(ctx, q.City, req)
	if err != nil {
		return weather.Reading{}, err
	}
	defer drain(resp)

	if err := statusError(q.City, resp.StatusCode); err != nil {
		p.logger.Debug("provider rejected request", "city", q.City, "status", resp.StatusCode)
		return weather.Reading{}, err
	}

	var payload openWeatherPayload
	if err := decodeBody(q.City, resp.Body, &payload); err != nil {
		return weather.Reading{}, err
	}
	return payload.reading(q.City)
}

func (pl openWeatherPayload) reading(city string) (weather.Reading, error) {
	var missing []string
	if pl.Main == nil {
		missing = append(missing, "main")
	} else {
		if pl.Main.Temp == nil {
			missing = append(missing, "main.temp")
		}
		if pl.Main.FeelsLike == nil {
			missing = append(missing, "main.feels_like")
		}
		if pl.Main.Humidity == nil {
			missing = append(missing, "main.humidity")
		}
		if pl.Main.Pressure == nil {
			missing = append(missing, "main.pressure")
		}
	}
	if pl.Wind == nil || pl.Wind.Speed == nil {
		missing = append(missing, "wind.speed")
	}
	if len(pl.Weather) == 0 || pl.Weather[0].Main == "" {
		missing = append(missing, "weather[0].main")
	}
	if err := missingFields(city, missing); err != nil {
		return weather.Reading{}, err
	}

	humidity := *pl.Main.Humidity
	if humidity < 0 || humidity > 100 {
		return weather.Reading{}, &weather.FetchError{
			Kind:   weather.ErrUnexpected,
			City:   city,
			Detail: fmt.Sprintf("humidity %v out of range", humidity),
		}
	}

	return weather.Reading{
		Observation: weather.Observation{
			City:         city,
			TemperatureC: *pl.Main.Temp,
			Humidity:     int(math.Round(humidity)),
			Condition:    pl.Weather[0].Main,
		},
		FeelsLikeC:  *pl.Main.FeelsLike,
		WindSpeedMS: *pl.Wind.Speed,
		PressureHpa: *pl.Main.Pressure,
	}, nil
}
