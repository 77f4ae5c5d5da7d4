package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-vibe/internal/weather"
)

var validate = validator.New()

// Options carries the configured defaults the API falls back to.
type Options struct {
	Defaults   weather.Session
	TrendLimit int
}

type handler struct {
	service *weather.Service
	opts    Options
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, opts Options) {
	if opts.TrendLimit <= 0 {
		opts.TrendLimit = weather.DefaultTrendLimit
	}
	h := &handler{service: service, opts: opts}

	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", h.current)
	v1.Post("/weather/refresh", h.refresh)

	v1.Get("/favorites", h.listFavorites)
	v1.Post("/favorites", h.addFavorite)
	v1.Put("/favorites", h.saveFavorites)
	v1.Delete("/favorites/:city", h.removeFavorite)

	v1.Get("/history", h.history)
	v1.Delete("/history", h.clearHistory)
	v1.Get("/history/export", h.exportHistory)
	v1.Get("/history/trend", h.trend)
	v1.Get("/history/cities", h.trendCities)

	v1.Get("/stats", h.stats)
}

// ErrorHandler renders every error as {"error": true, "message": ...} with a
// status derived from fetch error kinds where applicable.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	var fetchErr *weather.FetchError
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.As(err, &fetchErr):
		code = statusForKind(weather.Kind(fetchErr))
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

func statusForKind(kind error) int {
	switch kind {
	case weather.ErrInvalidCredential:
		return fiber.StatusUnauthorized
	case weather.ErrCityNotFound:
		return fiber.StatusNotFound
	case weather.ErrNetworkUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusBadGateway
	}
}

// credential picks the API key: X-API-Key header, then appid query, then config.
func (h *handler) credential(c *fiber.Ctx) string {
	if k := c.Get("X-API-Key"); k != "" {
		return k
	}
	if k := c.Query("appid"); k != "" {
		return k
	}
	return h.opts.Defaults.Credential
}

func (h *handler) unit(raw string) (weather.Unit, error) {
	if raw == "" {
		if h.opts.Defaults.Unit != "" {
			return h.opts.Defaults.Unit, nil
		}
		return weather.UnitCelsius, nil
	}
	u, err := weather.ParseUnit(raw)
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return u, nil
}

type currentQuery struct {
	City string `validate:"required,max=200"`
}

func (h *handler) current(c *fiber.Ctx) error {
	q := currentQuery{City: c.Query("city")}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	unit, err := h.unit(c.Query("unit"))
	if err != nil {
		return err
	}

	r, err := h.service.FetchWeather(c.UserContext(), weather.Query{Credential: h.credential(c), City: q.City})
	var fe *weather.FetchError
	if errors.As(err, &fe) {
		return err
	}

	resp := fiber.Map{
		"reading": newReadingView(r),
		"card":    r.Card(unit),
	}
	if err != nil {
		resp["warning"] = err.Error()
	}
	return c.JSON(resp)
}

type refreshRequest struct {
	Cities []string `json:"cities" validate:"omitempty,max=50,dive,required"`
	Unit   string   `json:"unit" validate:"omitempty,oneof=C F c f"`
}

func (h *handler) refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	unit, err := h.unit(req.Unit)
	if err != nil {
		return err
	}

	cred := h.credential(c)
	if cred == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "an API key is required")
	}

	cities := req.Cities
	if len(cities) == 0 {
		cities = h.service.SelectCities(h.opts.Defaults.Cities)
	}
	if len(cities) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no cities selected")
	}

	report := h.service.Refresh(c.UserContext(), weather.Session{Credential: cred, Unit: unit, Cities: cities})
	return c.JSON(newReportView(report))
}

func (h *handler) listFavorites(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"cities": h.service.Favorites()})
}

type favoriteRequest struct {
	City string `json:"city" validate:"required,max=200"`
}

func (h *handler) addFavorite(c *fiber.Ctx) error {
	var req favoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	added, err := h.service.AddFavorite(req.City)
	if err != nil {
		return err
	}
	status := fiber.StatusOK
	if added {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"added": added, "cities": h.service.Favorites()})
}

type favoritesRequest struct {
	Cities []string `json:"cities" validate:"dive,required"`
}

func (h *handler) saveFavorites(c *fiber.Ctx) error {
	var req favoritesRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := h.service.SaveFavorites(req.Cities); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"cities": h.service.Favorites()})
}

func (h *handler) removeFavorite(c *fiber.Ctx) error {
	city, err := url.PathUnescape(c.Params("city"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid city")
	}
	removed, err := h.service.RemoveFavorite(city)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"removed": removed, "cities": h.service.Favorites()})
}

func (h *handler) history(c *fiber.Ctx) error {
	obs := h.service.History()
	return c.JSON(fiber.Map{
		"count":        len(obs),
		"observations": newObservationViews(obs),
	})
}

func (h *handler) clearHistory(c *fiber.Ctx) error {
	if err := h.service.ClearHistory(); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) exportHistory(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if _, err := h.service.ExportHistory(&buf); err != nil {
		if errors.Is(err, weather.ErrNoHistory) {
			return fiber.NewError(fiber.StatusNotFound, "no weather history to export")
		}
		return err
	}

	name := fmt.Sprintf("weather_data_%s.csv", time.Now().Format("20060102_150405"))
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Attachment(name)
	return c.Send(buf.Bytes())
}

type trendQuery struct {
	City  string `validate:"required"`
	Limit int    `validate:"min=1,max=1000"`
}

func (h *handler) trend(c *fiber.Ctx) error {
	q := trendQuery{City: c.Query("city"), Limit: h.opts.TrendLimit}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "limit must be an integer")
		}
		q.Limit = n
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(fiber.Map{
		"city":         q.City,
		"limit":        q.Limit,
		"observations": newObservationViews(h.service.Trend(q.City, q.Limit)),
	})
}

func (h *handler) trendCities(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"cities": h.service.TrendCities()})
}

func (h *handler) stats(c *fiber.Ctx) error {
	sess := h.opts.Defaults
	sess.Cities = h.service.SelectCities(sess.Cities)
	return c.JSON(h.service.Stats(sess))
}

// observationView renders a missing timestamp and a missing temperature as null.
type observationView struct {
	Timestamp    *string  `json:"timestamp"`
	City         string   `json:"city"`
	TemperatureC *float64 `json:"temperatureC"`
	Humidity     int      `json:"humidityPercent"`
	Condition    string   `json:"condition"`
}

func newObservationView(o weather.Observation) observationView {
	v := observationView{City: o.City, Humidity: o.Humidity, Condition: o.Condition}
	if o.HasTimestamp() {
		ts := o.Timestamp.Format(weather.TimestampLayout)
		v.Timestamp = &ts
	}
	if !math.IsNaN(o.TemperatureC) && !math.IsInf(o.TemperatureC, 0) {
		t := o.TemperatureC
		v.TemperatureC = &t
	}
	return v
}

func newObservationViews(obs []weather.Observation) []observationView {
	out := make([]observationView, 0, len(obs))
	for _, o := range obs {
		out = append(out, newObservationView(o))
	}
	return out
}

type readingView struct {
	observationView
	FeelsLikeC  float64 `json:"feelsLikeC"`
	WindSpeedMS float64 `json:"windSpeedMs"`
	PressureHpa float64 `json:"pressureHpa"`
}

func newReadingView(r weather.Reading) readingView {
	return readingView{
		observationView: newObservationView(r.Observation),
		FeelsLikeC:      r.FeelsLikeC,
		WindSpeedMS:     r.WindSpeedMS,
		PressureHpa:     r.PressureHpa,
	}
}

type resultView struct {
	City         string       `json:"city"`
	OK           bool         `json:"ok"`
	Reading      *readingView `json:"reading,omitempty"`
	ErrorKind    string       `json:"errorKind,omitempty"`
	Error        string       `json:"error,omitempty"`
	StatusCode   int          `json:"statusCode,omitempty"`
	PersistError string       `json:"persistError,omitempty"`
}

type reportView struct {
	ID         string         `json:"id"`
	StartedAt  time.Time      `json:"startedAt"`
	Unit       weather.Unit   `json:"unit"`
	DataPoints int            `json:"dataPoints"`
	Cards      []weather.Card `json:"cards"`
	Results    []resultView   `json:"results"`
}

func newReportView(r weather.Report) reportView {
	v := reportView{
		ID:         r.ID.String(),
		StartedAt:  r.StartedAt,
		Unit:       r.Unit,
		DataPoints: r.DataPoints(),
		Cards:      r.Cards(),
		Results:    make([]resultView, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		rv := resultView{City: res.City, OK: res.OK()}
		if res.Reading != nil {
			reading := newReadingView(*res.Reading)
			rv.Reading = &reading
		}
		if res.Err != nil {
			rv.ErrorKind = weather.Kind(res.Err).Error()
			rv.Error = res.Err.Error()
			var fe *weather.FetchError
			if errors.As(res.Err, &fe) {
				rv.StatusCode = fe.StatusCode
			}
		}
		if res.PersistErr != nil {
			rv.PersistError = res.PersistErr.Error()
		}
		v.Results = append(v.Results, rv)
	}
	return v
}
